package communication

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/JrMarcco/easy-kit/xsync"
	"github.com/simonmuehling/educafric-platform-sub010/internal/domain"
	"github.com/simonmuehling/educafric-platform-sub010/internal/errs"
	"github.com/simonmuehling/educafric-platform-sub010/internal/pkg/idempotent"
	"github.com/simonmuehling/educafric-platform-sub010/internal/pkg/isolation"
	"github.com/simonmuehling/educafric-platform-sub010/internal/repository"
	"github.com/simonmuehling/educafric-platform-sub010/internal/service/notification"
	"github.com/simonmuehling/educafric-platform-sub010/internal/service/stats"
	"go.uber.org/zap"
)

const (
	// PassingGrade 20 分制下 12 分及以上使用 NEW_GRADE 模板
	PassingGrade = 12

	// AlertGrade 低于 10 分时提高优先级
	AlertGrade = 10

	StatsPeriodDays           = 30
	RecentCommunicationsLimit = 10
	DefaultParentLimit        = 50

	dateLayout = "02/01/2006"
	timeLayout = "15:04"
)

//go:generate mockgen -source=./service.go -destination=./mock/communication.mock.go -package=communicationmock -typed Service

// Service 学校与家长之间的通讯用例。
//
// 每个发送用例在分发完成后写通讯记录，写入失败只记录日志，
// 调用方始终拿到带成功失败计数的汇总。
type Service interface {
	SendSchoolAnnouncement(ctx context.Context, req domain.AnnouncementReq) (domain.Summary, error)
	SendGradeNotification(ctx context.Context, req domain.GradeReq) (domain.Summary, error)
	SendAttendanceAlert(ctx context.Context, req domain.AttendanceReq) (domain.Summary, error)
	CommunicationStats(ctx context.Context, schoolId uint64) (domain.CommunicationStats, error)
	ParentCommunications(ctx context.Context, parentId uint64) ([]domain.CommunicationLog, error)
}

// Config 通讯用例配置
type Config struct {
	// Location 渲染日期时间使用的时区
	Location    *time.Location
	ParentLimit int
}

var _ Service = (*DefaultService)(nil)

type DefaultService struct {
	sendSvc notification.SendService
	tracker stats.Tracker

	recipientRepo repository.RecipientRepo
	studentRepo   repository.StudentRepo
	schoolRepo    repository.SchoolRepo
	logRepo       repository.CommunicationLogRepo

	dedupe idempotent.Strategy

	schoolNames xsync.Map[uint64, string]

	loc         *time.Location
	parentLimit int
	now         func() time.Time
	logger      *zap.Logger
}

func (s *DefaultService) SendSchoolAnnouncement(ctx context.Context, req domain.AnnouncementReq) (domain.Summary, error) {
	if err := req.Validate(); err != nil {
		return domain.Summary{}, err
	}

	ctx = isolation.WithDispatchPath(ctx)
	recipients, err := s.recipientRepo.FindByIds(ctx, req.RecipientIds)
	if err != nil {
		return domain.Summary{}, err
	}
	if len(recipients) == 0 {
		return domain.Summary{}, fmt.Errorf("%w: ids = %v", errs.ErrNoValidRecipients, req.RecipientIds)
	}

	channel := req.Channel
	if channel == "" {
		channel = domain.ChannelSMS
	}
	tpl := req.Template
	if tpl == "" {
		tpl = domain.TemplateSchoolAnnouncement
	}
	priority := domain.PriorityMedium
	if req.Urgent {
		priority = domain.PriorityUrgent
	}

	now := s.now()
	payload := domain.NotificationPayload{
		Channel:    channel,
		Template:   tpl,
		Recipients: recipients,
		Data: s.withSchool(ctx, req.SchoolId, map[string]string{
			"title":        req.Subject,
			"subject":      req.Subject,
			"announcement": req.Message,
			"date":         now.In(s.loc).Format(dateLayout),
		}),
		Priority: priority,
		SchoolId: req.SchoolId,
		SenderId: req.SenderId,
		Metadata: map[string]string{
			"subject":           req.Subject,
			"communicationType": domain.CommunicationSchoolAnnouncement.String(),
		},
	}

	return s.dispatch(ctx, payload, domain.CommunicationLog{
		SenderId: req.SenderId,
		SchoolId: req.SchoolId,
		// 多收件人时以第一个收件人作为主收件人
		RecipientId: req.RecipientIds[0],
		Type:        domain.CommunicationSchoolAnnouncement,
		Subject:     req.Subject,
		Message:     req.Message,
	})
}

func (s *DefaultService) SendGradeNotification(ctx context.Context, req domain.GradeReq) (domain.Summary, error) {
	if err := req.Validate(); err != nil {
		return domain.Summary{}, err
	}

	ctx = isolation.WithDispatchPath(ctx)
	student, guardian, err := s.guardianOf(ctx, req.StudentId)
	if err != nil {
		return domain.Summary{}, err
	}

	tpl := domain.TemplateLowGradeAlert
	if req.Grade >= PassingGrade {
		tpl = domain.TemplateNewGrade
	}
	priority := domain.PriorityMedium
	if req.Grade < AlertGrade {
		priority = domain.PriorityHigh
	}

	grade := strconv.FormatFloat(req.Grade, 'f', -1, 64) + "/20"
	payload := domain.NotificationPayload{
		Channel:    domain.ChannelSMS,
		Template:   tpl,
		Recipients: []domain.Recipient{guardian},
		Data: map[string]string{
			"childName": student.FullName(),
			"className": student.ClassName,
			"subject":   req.Subject,
			"grade":     grade,
			"teacher":   req.TeacherName,
			"comment":   req.Comment,
		},
		Priority: priority,
		SchoolId: student.SchoolId,
		SenderId: req.TeacherId,
		Metadata: map[string]string{
			"studentId":         strconv.FormatUint(student.Id, 10),
			"subject":           req.Subject,
			"grade":             grade,
			"communicationType": domain.CommunicationGradeNotification.String(),
		},
	}

	return s.dispatch(ctx, payload, domain.CommunicationLog{
		SenderId:    req.TeacherId,
		SchoolId:    student.SchoolId,
		RecipientId: student.ParentId,
		Type:        domain.CommunicationGradeNotification,
		Subject:     req.Subject,
		Message:     fmt.Sprintf("%s: %s %s", student.FullName(), req.Subject, grade),
	})
}

func (s *DefaultService) SendAttendanceAlert(ctx context.Context, req domain.AttendanceReq) (domain.Summary, error) {
	if err := req.Validate(); err != nil {
		return domain.Summary{}, err
	}

	ctx = isolation.WithDispatchPath(ctx)
	student, guardian, err := s.guardianOf(ctx, req.StudentId)
	if err != nil {
		return domain.Summary{}, err
	}

	now := s.now().In(s.loc)

	// 同一学生同一类型的考勤提醒每天只发一次
	key := fmt.Sprintf("attendance:%d:%s:%s", student.Id, req.Type, now.Format(time.DateOnly))
	claimed, err := s.dedupe.Claim(ctx, key)
	if err != nil {
		return domain.Summary{}, err
	}
	if !claimed {
		return domain.Summary{}, fmt.Errorf("%w: student = %d, type = %s", errs.ErrDuplicateAlert, student.Id, req.Type)
	}

	payload := domain.NotificationPayload{
		Channel:    domain.ChannelSMS,
		Template:   attendanceTemplate(req.Type),
		Recipients: []domain.Recipient{guardian},
		Data: s.withSchool(ctx, student.SchoolId, map[string]string{
			"childName": student.FullName(),
			"className": student.ClassName,
			"time":      now.Format(timeLayout),
			"details":   req.Details,
		}),
		Priority: domain.PriorityHigh,
		SchoolId: student.SchoolId,
		SenderId: req.SenderId,
		Metadata: map[string]string{
			"studentId":         strconv.FormatUint(student.Id, 10),
			"attendanceType":    req.Type.String(),
			"communicationType": domain.CommunicationAttendanceAlert.String(),
		},
	}

	summary, err := s.dispatch(ctx, payload, domain.CommunicationLog{
		SenderId:    req.SenderId,
		SchoolId:    student.SchoolId,
		RecipientId: student.ParentId,
		Type:        domain.CommunicationAttendanceAlert,
		Subject:     "Attendance Alert - " + req.Type.String(),
		Message:     req.Details,
	})
	if err != nil || summary.SuccessCount == 0 {
		// 未送达时释放幂等 key 允许重试
		if rErr := s.dedupe.Release(ctx, key); rErr != nil {
			s.logger.Warn("[educafric] failed to release attendance alert key", zap.String("key", key), zap.Error(rErr))
		}
	}
	return summary, err
}

func attendanceTemplate(t domain.AttendanceType) domain.TemplateKey {
	switch t {
	case domain.AttendanceLate:
		return domain.TemplateLateArrival
	case domain.AttendanceEarlyDeparture:
		return domain.TemplateSchoolDeparture
	default:
		return domain.TemplateAbsenceAlert
	}
}

func (s *DefaultService) CommunicationStats(ctx context.Context, schoolId uint64) (domain.CommunicationStats, error) {
	if schoolId == 0 {
		return domain.CommunicationStats{}, fmt.Errorf("%w: school id is required", errs.ErrInvalidParam)
	}

	since := s.now().AddDate(0, 0, -StatsPeriodDays)
	recent, err := s.logRepo.FindRecentBySchool(ctx, schoolId, since, RecentCommunicationsLimit)
	if err != nil {
		return domain.CommunicationStats{}, err
	}
	total, err := s.logRepo.CountBySchool(ctx, schoolId, since)
	if err != nil {
		return domain.CommunicationStats{}, err
	}

	return domain.CommunicationStats{
		DeliveryStats:        s.tracker.AllStats(),
		RecentCommunications: recent,
		TotalSent:            total,
		PeriodDays:           StatsPeriodDays,
	}, nil
}

func (s *DefaultService) ParentCommunications(ctx context.Context, parentId uint64) ([]domain.CommunicationLog, error) {
	parent, err := s.recipientRepo.FindById(ctx, parentId)
	if err != nil {
		return nil, err
	}
	if parent.Role != domain.RoleParent {
		return nil, fmt.Errorf("%w: user %d is not a parent", errs.ErrInvalidParam, parentId)
	}
	return s.logRepo.FindByRecipient(ctx, parentId, s.parentLimit)
}

// dispatch 发送载荷并在完成后写通讯记录
func (s *DefaultService) dispatch(ctx context.Context, payload domain.NotificationPayload, log domain.CommunicationLog) (domain.Summary, error) {
	results, err := s.sendSvc.Send(ctx, payload)
	if err != nil {
		return domain.Summary{}, err
	}

	success, failure := domain.CountResults(results)
	sentAt := s.now()

	log.Channel = payload.Channel
	log.Template = payload.Template
	log.Status = domain.StatusOf(success, failure)
	log.RecipientCount = len(payload.Recipients)
	log.SuccessCount = success
	log.FailureCount = failure
	log.Results = results
	log.SentAt = sentAt

	summary := domain.Summary{
		Template:       payload.Template,
		Priority:       payload.Priority,
		RecipientCount: len(payload.Recipients),
		SuccessCount:   success,
		FailureCount:   failure,
		Results:        results,
		SentAt:         sentAt,
	}

	logId, err := s.logRepo.Create(ctx, log)
	if err != nil {
		s.logger.Error(
			"[educafric] failed to create communication log",
			zap.String("type", log.Type.String()),
			zap.Uint64("school_id", log.SchoolId),
			zap.Int("success", success),
			zap.Int("failure", failure),
			zap.Error(err),
		)
		return summary, nil
	}

	summary.LogId = logId
	summary.Logged = true
	return summary, nil
}

// guardianOf 查询学生及其监护人
func (s *DefaultService) guardianOf(ctx context.Context, studentId uint64) (domain.Student, domain.Recipient, error) {
	student, err := s.studentRepo.FindById(ctx, studentId)
	if err != nil {
		return domain.Student{}, domain.Recipient{}, err
	}
	if student.ParentId == 0 {
		return domain.Student{}, domain.Recipient{}, fmt.Errorf("%w: student %d has no guardian", errs.ErrGuardianNotFound, studentId)
	}

	guardian, err := s.recipientRepo.FindById(ctx, student.ParentId)
	if err != nil {
		if errors.Is(err, errs.ErrUserNotFound) {
			return domain.Student{}, domain.Recipient{}, fmt.Errorf("%w: parent id = %d", errs.ErrGuardianNotFound, student.ParentId)
		}
		return domain.Student{}, domain.Recipient{}, err
	}
	guardian.Role = domain.RoleParent
	return student, guardian, nil
}

// withSchool 补充学校名称，查询失败时不写入，由模板使用默认值
func (s *DefaultService) withSchool(ctx context.Context, schoolId uint64, data map[string]string) map[string]string {
	if name := s.schoolName(ctx, schoolId); name != "" {
		data["schoolName"] = name
	}
	return data
}

func (s *DefaultService) schoolName(ctx context.Context, schoolId uint64) string {
	if schoolId == 0 {
		return ""
	}
	if name, ok := s.schoolNames.Load(schoolId); ok {
		return name
	}

	school, err := s.schoolRepo.FindById(ctx, schoolId)
	if err != nil {
		s.logger.Warn("[educafric] failed to resolve school name", zap.Uint64("school_id", schoolId), zap.Error(err))
		return ""
	}
	s.schoolNames.Store(schoolId, school.Name)
	return school.Name
}

// Option DefaultService 可选配置
type Option func(s *DefaultService)

func WithClock(now func() time.Time) Option {
	return func(s *DefaultService) {
		s.now = now
	}
}

func NewDefaultService(
	sendSvc notification.SendService,
	tracker stats.Tracker,
	recipientRepo repository.RecipientRepo,
	studentRepo repository.StudentRepo,
	schoolRepo repository.SchoolRepo,
	logRepo repository.CommunicationLogRepo,
	dedupe idempotent.Strategy,
	cfg Config,
	logger *zap.Logger,
	opts ...Option,
) *DefaultService {
	if cfg.Location == nil {
		cfg.Location = time.FixedZone("WAT", 3600)
	}
	if cfg.ParentLimit <= 0 {
		cfg.ParentLimit = DefaultParentLimit
	}

	s := &DefaultService{
		sendSvc:       sendSvc,
		tracker:       tracker,
		recipientRepo: recipientRepo,
		studentRepo:   studentRepo,
		schoolRepo:    schoolRepo,
		logRepo:       logRepo,
		dedupe:        dedupe,
		loc:           cfg.Location,
		parentLimit:   cfg.ParentLimit,
		now:           time.Now,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
