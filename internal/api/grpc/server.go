package grpc

import (
	"context"
	"errors"

	"github.com/simonmuehling/educafric-platform-sub010/internal/domain"
	"github.com/simonmuehling/educafric-platform-sub010/internal/errs"
	"github.com/simonmuehling/educafric-platform-sub010/internal/service/communication"
	"github.com/simonmuehling/educafric-platform-sub010/internal/service/notification"
	"github.com/simonmuehling/educafric-platform-sub010/internal/service/sender"
	"github.com/simonmuehling/educafric-platform-sub010/internal/service/stats"
	"github.com/simonmuehling/educafric-platform-sub010/internal/service/template"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var _ NotificationServiceServer = (*NotificationServer)(nil)

type NotificationServer struct {
	sendSvc    notification.SendService
	bulkSender sender.BulkSender
	tracker    stats.Tracker
	templates  template.Registry
	commSvc    communication.Service
}

func (s *NotificationServer) Send(ctx context.Context, req *SendReq) (*SendResp, error) {
	results, err := s.sendSvc.Send(ctx, req.Payload)
	if err != nil {
		return nil, toStatus(err)
	}

	success, failure := domain.CountResults(results)
	return &SendResp{
		Results:      results,
		SuccessCount: success,
		FailureCount: failure,
	}, nil
}

func (s *NotificationServer) BulkSend(ctx context.Context, req *BulkSendReq) (*BulkSendResp, error) {
	results, err := s.bulkSender.BulkSend(ctx, req.Payloads)
	if err != nil {
		return nil, toStatus(err)
	}
	return &BulkSendResp{Results: results}, nil
}

func (s *NotificationServer) GetStats(_ context.Context, req *GetStatsReq) (*GetStatsResp, error) {
	if req.Template == "" {
		// 未发送过的模板也返回零值统计
		all := s.tracker.AllStats()
		for _, key := range s.templates.Keys() {
			if _, ok := all[key]; !ok {
				all[key] = s.tracker.Stats(key)
			}
		}
		return &GetStatsResp{Stats: all}, nil
	}
	return &GetStatsResp{
		Stats: map[domain.TemplateKey]domain.DeliveryStats{
			req.Template: s.tracker.Stats(req.Template),
		},
	}, nil
}

func (s *NotificationServer) SendAnnouncement(ctx context.Context, req *domain.AnnouncementReq) (*domain.Summary, error) {
	summary, err := s.commSvc.SendSchoolAnnouncement(ctx, *req)
	if err != nil {
		return nil, toStatus(err)
	}
	return &summary, nil
}

func (s *NotificationServer) SendGradeNotification(ctx context.Context, req *domain.GradeReq) (*domain.Summary, error) {
	summary, err := s.commSvc.SendGradeNotification(ctx, *req)
	if err != nil {
		return nil, toStatus(err)
	}
	return &summary, nil
}

func (s *NotificationServer) SendAttendanceAlert(ctx context.Context, req *domain.AttendanceReq) (*domain.Summary, error) {
	summary, err := s.commSvc.SendAttendanceAlert(ctx, *req)
	if err != nil {
		return nil, toStatus(err)
	}
	return &summary, nil
}

func (s *NotificationServer) GetCommunicationStats(ctx context.Context, req *GetCommunicationStatsReq) (*domain.CommunicationStats, error) {
	st, err := s.commSvc.CommunicationStats(ctx, req.SchoolId)
	if err != nil {
		return nil, toStatus(err)
	}
	return &st, nil
}

func (s *NotificationServer) ListParentCommunications(
	ctx context.Context, req *ListParentCommunicationsReq,
) (*ListParentCommunicationsResp, error) {
	logs, err := s.commSvc.ParentCommunications(ctx, req.ParentId)
	if err != nil {
		return nil, toStatus(err)
	}
	return &ListParentCommunicationsResp{Communications: logs}, nil
}

// toStatus 将业务错误转换为 gRPC 状态码
func toStatus(err error) error {
	var code codes.Code
	switch {
	case errors.Is(err, errs.ErrInvalidParam), errors.Is(err, errs.ErrInvalidChannel):
		code = codes.InvalidArgument
	case errors.Is(err, errs.ErrStudentNotFound),
		errors.Is(err, errs.ErrGuardianNotFound),
		errors.Is(err, errs.ErrUserNotFound),
		errors.Is(err, errs.ErrSchoolNotFound),
		errors.Is(err, errs.ErrNoValidRecipients):
		code = codes.NotFound
	case errors.Is(err, errs.ErrDuplicateAlert):
		code = codes.AlreadyExists
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	default:
		code = codes.Internal
	}
	return status.Error(code, err.Error())
}

func NewNotificationServer(
	sendSvc notification.SendService,
	bulkSender sender.BulkSender,
	tracker stats.Tracker,
	templates template.Registry,
	commSvc communication.Service,
) *NotificationServer {
	return &NotificationServer{
		sendSvc:    sendSvc,
		bulkSender: bulkSender,
		tracker:    tracker,
		templates:  templates,
		commSvc:    commSvc,
	}
}
