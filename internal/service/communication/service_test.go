package communication

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/simonmuehling/educafric-platform-sub010/internal/domain"
	"github.com/simonmuehling/educafric-platform-sub010/internal/errs"
	"github.com/simonmuehling/educafric-platform-sub010/internal/pkg/idempotent"
	"github.com/simonmuehling/educafric-platform-sub010/internal/pkg/isolation"
	"github.com/simonmuehling/educafric-platform-sub010/internal/service/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2026, 10, 16, 7, 30, 0, 0, time.UTC)

type fakeSendService struct {
	mu       sync.Mutex
	payloads []domain.NotificationPayload
	fail     bool
	dispatch bool
}

func (f *fakeSendService) Send(ctx context.Context, payload domain.NotificationPayload) ([]domain.NotificationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, payload)
	f.dispatch = isolation.IsDispatchPath(ctx)

	results := make([]domain.NotificationResult, 0, len(payload.Recipients))
	for _, r := range payload.Recipients {
		if f.fail {
			results = append(results, domain.FailedResult(r.Id, errors.New("network unreachable")))
			continue
		}
		results = append(results, domain.DeliveredResult(r.Id, "sim_"+r.Id, fixedNow, 0.03))
	}
	return results, nil
}

type fakeRecipientRepo struct {
	users map[uint64]domain.Recipient
}

func (f *fakeRecipientRepo) FindById(_ context.Context, userId uint64) (domain.Recipient, error) {
	if r, ok := f.users[userId]; ok {
		return r, nil
	}
	return domain.Recipient{}, fmt.Errorf("%w: user id = %d", errs.ErrUserNotFound, userId)
}

func (f *fakeRecipientRepo) FindByIds(_ context.Context, userIds []uint64) ([]domain.Recipient, error) {
	var res []domain.Recipient
	for _, id := range userIds {
		if r, ok := f.users[id]; ok {
			res = append(res, r)
		}
	}
	return res, nil
}

type fakeStudentRepo struct {
	students map[uint64]domain.Student
}

func (f *fakeStudentRepo) FindById(_ context.Context, id uint64) (domain.Student, error) {
	if s, ok := f.students[id]; ok {
		return s, nil
	}
	return domain.Student{}, fmt.Errorf("%w: student id = %d", errs.ErrStudentNotFound, id)
}

type fakeSchoolRepo struct {
	calls int
}

func (f *fakeSchoolRepo) FindById(_ context.Context, id uint64) (domain.School, error) {
	f.calls++
	if id == 1 {
		return domain.School{Id: 1, Name: "Lycée de Yaoundé"}, nil
	}
	return domain.School{}, errs.ErrSchoolNotFound
}

type fakeLogRepo struct {
	mu        sync.Mutex
	logs      []domain.CommunicationLog
	createErr error
	since     time.Time
}

func (f *fakeLogRepo) Create(_ context.Context, log domain.CommunicationLog) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.logs = append(f.logs, log)
	return uint64(len(f.logs)), nil
}

func (f *fakeLogRepo) FindRecentBySchool(_ context.Context, schoolId uint64, since time.Time, limit int) ([]domain.CommunicationLog, error) {
	f.since = since
	var res []domain.CommunicationLog
	for _, log := range f.logs {
		if log.SchoolId == schoolId && len(res) < limit {
			res = append(res, log)
		}
	}
	return res, nil
}

func (f *fakeLogRepo) CountBySchool(_ context.Context, schoolId uint64, _ time.Time) (int, error) {
	cnt := 0
	for _, log := range f.logs {
		if log.SchoolId == schoolId {
			cnt++
		}
	}
	return cnt, nil
}

func (f *fakeLogRepo) FindByRecipient(_ context.Context, recipientId uint64, limit int) ([]domain.CommunicationLog, error) {
	var res []domain.CommunicationLog
	for _, log := range f.logs {
		if log.RecipientId == recipientId && len(res) < limit {
			res = append(res, log)
		}
	}
	return res, nil
}

type fixture struct {
	send    *fakeSendService
	schools *fakeSchoolRepo
	logs    *fakeLogRepo
	tracker *stats.ShardedTracker
	svc     *DefaultService
}

func newFixture() *fixture {
	users := map[uint64]domain.Recipient{
		1:  {Id: "1", Name: "Aminata Diallo", Phone: "+237650000001", PreferredLanguage: domain.LanguageFR, Role: domain.RoleParent},
		2:  {Id: "2", Name: "John Tabe", Phone: "+237650000002", PreferredLanguage: domain.LanguageEN, Role: domain.RoleParent},
		30: {Id: "30", Name: "Mme Essomba", Email: "essomba@example.cm", Role: domain.RoleTeacher},
	}
	students := map[uint64]domain.Student{
		100: {Id: 100, FirstName: "Junior", LastName: "Diallo", ClassName: "CM2", ParentId: 1, SchoolId: 1},
		101: {Id: 101, FirstName: "Kevin", LastName: "Tabe", ParentId: 0, SchoolId: 1},
		102: {Id: 102, FirstName: "Lina", LastName: "Moto", ParentId: 77, SchoolId: 1},
	}

	f := &fixture{
		send:    &fakeSendService{},
		schools: &fakeSchoolRepo{},
		logs:    &fakeLogRepo{},
		tracker: stats.NewShardedTracker(),
	}
	f.svc = NewDefaultService(
		f.send,
		f.tracker,
		&fakeRecipientRepo{users: users},
		&fakeStudentRepo{students: students},
		f.schools,
		f.logs,
		idempotent.NewLocalStrategy(time.Hour),
		Config{Location: time.UTC},
		zap.NewNop(),
		WithClock(func() time.Time { return fixedNow }),
	)
	return f
}

func TestDefaultService_SendSchoolAnnouncement(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name         string
		req          domain.AnnouncementReq
		wantErr      error
		wantChannel  domain.Channel
		wantTemplate domain.TemplateKey
		wantPriority domain.Priority
		wantCount    int
	}{
		{
			name: "defaults and skip missing recipients",
			req: domain.AnnouncementReq{
				SenderId: 30, SchoolId: 1, RecipientIds: []uint64{1, 99, 2},
				Subject: "Réunion parents", Message: "Samedi à 10h",
			},
			wantChannel:  domain.ChannelSMS,
			wantTemplate: domain.TemplateSchoolAnnouncement,
			wantPriority: domain.PriorityMedium,
			wantCount:    2,
		}, {
			name: "urgent email with explicit template",
			req: domain.AnnouncementReq{
				SenderId: 30, SchoolId: 1, RecipientIds: []uint64{2},
				Channel: domain.ChannelEmail, Template: domain.TemplateEmergencyAlert,
				Subject: "Fermeture", Message: "École fermée", Urgent: true,
			},
			wantChannel:  domain.ChannelEmail,
			wantTemplate: domain.TemplateEmergencyAlert,
			wantPriority: domain.PriorityUrgent,
			wantCount:    1,
		}, {
			name: "no valid recipients",
			req: domain.AnnouncementReq{
				SenderId: 30, SchoolId: 1, RecipientIds: []uint64{98, 99},
			},
			wantErr: errs.ErrNoValidRecipients,
		}, {
			name:    "missing school",
			req:     domain.AnnouncementReq{SenderId: 30, RecipientIds: []uint64{1}},
			wantErr: errs.ErrInvalidParam,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture()
			summary, err := f.svc.SendSchoolAnnouncement(t.Context(), tc.req)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Empty(t, f.send.payloads)
				assert.Empty(t, f.logs.logs)
				return
			}
			require.NoError(t, err)

			require.Len(t, f.send.payloads, 1)
			payload := f.send.payloads[0]
			assert.True(t, f.send.dispatch)
			assert.Equal(t, tc.wantChannel, payload.Channel)
			assert.Equal(t, tc.wantTemplate, payload.Template)
			assert.Equal(t, tc.wantPriority, payload.Priority)
			assert.Len(t, payload.Recipients, tc.wantCount)
			assert.Equal(t, "Lycée de Yaoundé", payload.Data["schoolName"])
			assert.Equal(t, tc.req.Subject, payload.Data["title"])
			assert.Equal(t, "16/10/2026", payload.Data["date"])
			assert.Equal(t, "school_announcement", payload.Metadata["communicationType"])

			assert.True(t, summary.Logged)
			assert.Equal(t, uint64(1), summary.LogId)
			assert.Equal(t, tc.wantCount, summary.RecipientCount)
			assert.Equal(t, tc.wantCount, summary.SuccessCount)
			assert.Zero(t, summary.FailureCount)

			require.Len(t, f.logs.logs, 1)
			log := f.logs.logs[0]
			assert.Equal(t, tc.req.RecipientIds[0], log.RecipientId)
			assert.Equal(t, domain.CommunicationSchoolAnnouncement, log.Type)
			assert.Equal(t, domain.CommunicationStatusSent, log.Status)
			assert.Equal(t, tc.wantCount, log.SuccessCount)
			assert.Equal(t, fixedNow, log.SentAt)
		})
	}
}

func TestDefaultService_SchoolNameCached(t *testing.T) {
	t.Parallel()

	f := newFixture()
	req := domain.AnnouncementReq{SenderId: 30, SchoolId: 1, RecipientIds: []uint64{1}, Subject: "Sortie"}

	_, err := f.svc.SendSchoolAnnouncement(t.Context(), req)
	require.NoError(t, err)
	_, err = f.svc.SendSchoolAnnouncement(t.Context(), req)
	require.NoError(t, err)

	assert.Equal(t, 1, f.schools.calls)
}

func TestDefaultService_SendGradeNotification(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name         string
		req          domain.GradeReq
		wantErr      error
		wantTemplate domain.TemplateKey
		wantPriority domain.Priority
		wantGrade    string
	}{
		{
			name:         "good grade",
			req:          domain.GradeReq{TeacherId: 30, TeacherName: "Mme Essomba", StudentId: 100, Subject: "Maths", Grade: 15},
			wantTemplate: domain.TemplateNewGrade,
			wantPriority: domain.PriorityMedium,
			wantGrade:    "15/20",
		}, {
			name:         "passing threshold",
			req:          domain.GradeReq{TeacherId: 30, StudentId: 100, Subject: "Maths", Grade: 12},
			wantTemplate: domain.TemplateNewGrade,
			wantPriority: domain.PriorityMedium,
			wantGrade:    "12/20",
		}, {
			name:         "below passing",
			req:          domain.GradeReq{TeacherId: 30, StudentId: 100, Subject: "Maths", Grade: 11},
			wantTemplate: domain.TemplateLowGradeAlert,
			wantPriority: domain.PriorityMedium,
			wantGrade:    "11/20",
		}, {
			name:         "failing grade",
			req:          domain.GradeReq{TeacherId: 30, StudentId: 100, Subject: "Physique", Grade: 8.5, Comment: "Revoir les bases"},
			wantTemplate: domain.TemplateLowGradeAlert,
			wantPriority: domain.PriorityHigh,
			wantGrade:    "8.5/20",
		}, {
			name:    "student not found",
			req:     domain.GradeReq{StudentId: 999, Subject: "Maths", Grade: 10},
			wantErr: errs.ErrStudentNotFound,
		}, {
			name:    "student without guardian",
			req:     domain.GradeReq{StudentId: 101, Subject: "Maths", Grade: 10},
			wantErr: errs.ErrGuardianNotFound,
		}, {
			name:    "guardian record missing",
			req:     domain.GradeReq{StudentId: 102, Subject: "Maths", Grade: 10},
			wantErr: errs.ErrGuardianNotFound,
		}, {
			name:    "grade out of range",
			req:     domain.GradeReq{StudentId: 100, Subject: "Maths", Grade: 21},
			wantErr: errs.ErrInvalidParam,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture()
			summary, err := f.svc.SendGradeNotification(t.Context(), tc.req)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Empty(t, f.send.payloads)
				return
			}
			require.NoError(t, err)

			require.Len(t, f.send.payloads, 1)
			payload := f.send.payloads[0]
			assert.Equal(t, tc.wantTemplate, payload.Template)
			assert.Equal(t, tc.wantPriority, payload.Priority)
			assert.Equal(t, tc.wantGrade, payload.Data["grade"])
			assert.Equal(t, "Junior Diallo", payload.Data["childName"])
			assert.Equal(t, tc.req.Comment, payload.Data["comment"])
			require.Len(t, payload.Recipients, 1)
			assert.Equal(t, "1", payload.Recipients[0].Id)

			assert.Equal(t, tc.wantTemplate, summary.Template)
			assert.Equal(t, 1, summary.SuccessCount)
			require.Len(t, f.logs.logs, 1)
			assert.Equal(t, uint64(1), f.logs.logs[0].RecipientId)
			assert.Equal(t, domain.CommunicationGradeNotification, f.logs.logs[0].Type)
		})
	}
}

func TestDefaultService_SendAttendanceAlert(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name         string
		typ          domain.AttendanceType
		wantTemplate domain.TemplateKey
	}{
		{name: "absent", typ: domain.AttendanceAbsent, wantTemplate: domain.TemplateAbsenceAlert},
		{name: "late", typ: domain.AttendanceLate, wantTemplate: domain.TemplateLateArrival},
		{name: "early departure", typ: domain.AttendanceEarlyDeparture, wantTemplate: domain.TemplateSchoolDeparture},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture()
			summary, err := f.svc.SendAttendanceAlert(t.Context(), domain.AttendanceReq{
				SenderId: 30, StudentId: 100, Type: tc.typ, Details: "1ère heure",
			})
			require.NoError(t, err)

			require.Len(t, f.send.payloads, 1)
			payload := f.send.payloads[0]
			assert.Equal(t, tc.wantTemplate, payload.Template)
			assert.Equal(t, domain.PriorityHigh, payload.Priority)
			assert.Equal(t, "07:30", payload.Data["time"])
			assert.Equal(t, "Lycée de Yaoundé", payload.Data["schoolName"])
			assert.Equal(t, "CM2", payload.Data["className"])
			assert.Equal(t, tc.typ.String(), payload.Metadata["attendanceType"])

			assert.True(t, summary.Logged)
			assert.Equal(t, domain.CommunicationAttendanceAlert, f.logs.logs[0].Type)
		})
	}
}

func TestDefaultService_SendAttendanceAlertDedupe(t *testing.T) {
	t.Parallel()

	f := newFixture()
	req := domain.AttendanceReq{SenderId: 30, StudentId: 100, Type: domain.AttendanceAbsent}

	_, err := f.svc.SendAttendanceAlert(t.Context(), req)
	require.NoError(t, err)

	_, err = f.svc.SendAttendanceAlert(t.Context(), req)
	assert.ErrorIs(t, err, errs.ErrDuplicateAlert)

	// 不同类型不受影响
	req.Type = domain.AttendanceLate
	_, err = f.svc.SendAttendanceAlert(t.Context(), req)
	require.NoError(t, err)

	assert.Len(t, f.send.payloads, 2)
}

func TestDefaultService_SendAttendanceAlertRetryAfterFailure(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.send.fail = true
	req := domain.AttendanceReq{SenderId: 30, StudentId: 100, Type: domain.AttendanceAbsent}

	summary, err := f.svc.SendAttendanceAlert(t.Context(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.FailureCount)
	assert.Equal(t, domain.CommunicationStatusFailed, f.logs.logs[0].Status)

	// 未送达的提醒可以重发
	f.send.fail = false
	summary, err = f.svc.SendAttendanceAlert(t.Context(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.SuccessCount)
}

func TestDefaultService_LogFailureKeepsSummary(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.logs.createErr = errs.ErrFailedToCreateCommunicationLog

	summary, err := f.svc.SendSchoolAnnouncement(t.Context(), domain.AnnouncementReq{
		SenderId: 30, SchoolId: 1, RecipientIds: []uint64{1, 2}, Subject: "Examens",
	})
	require.NoError(t, err)
	assert.False(t, summary.Logged)
	assert.Zero(t, summary.LogId)
	assert.Equal(t, 2, summary.RecipientCount)
	assert.Equal(t, 2, summary.SuccessCount)
	assert.Len(t, summary.Results, 2)
}

func TestDefaultService_CommunicationStats(t *testing.T) {
	t.Parallel()

	f := newFixture()
	for i := range 12 {
		_, err := f.svc.SendSchoolAnnouncement(t.Context(), domain.AnnouncementReq{
			SenderId: 30, SchoolId: 1, RecipientIds: []uint64{1}, Subject: "Annonce " + strconv.Itoa(i),
		})
		require.NoError(t, err)
	}
	f.tracker.Record(domain.TemplateSchoolAnnouncement, domain.NotificationResult{Success: true, Cost: 0.03})

	st, err := f.svc.CommunicationStats(t.Context(), 1)
	require.NoError(t, err)
	assert.Len(t, st.RecentCommunications, RecentCommunicationsLimit)
	assert.Equal(t, 12, st.TotalSent)
	assert.Equal(t, StatsPeriodDays, st.PeriodDays)
	assert.Equal(t, fixedNow.AddDate(0, 0, -30), f.logs.since)
	assert.Equal(t, 1, st.DeliveryStats[domain.TemplateSchoolAnnouncement].Total)

	_, err = f.svc.CommunicationStats(t.Context(), 0)
	assert.ErrorIs(t, err, errs.ErrInvalidParam)
}

func TestDefaultService_ParentCommunications(t *testing.T) {
	t.Parallel()

	f := newFixture()
	_, err := f.svc.SendGradeNotification(t.Context(), domain.GradeReq{TeacherId: 30, StudentId: 100, Subject: "Maths", Grade: 14})
	require.NoError(t, err)

	logs, err := f.svc.ParentCommunications(t.Context(), 1)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, domain.CommunicationGradeNotification, logs[0].Type)

	_, err = f.svc.ParentCommunications(t.Context(), 30)
	assert.ErrorIs(t, err, errs.ErrInvalidParam)

	_, err = f.svc.ParentCommunications(t.Context(), 404)
	assert.ErrorIs(t, err, errs.ErrUserNotFound)
}
