package grpc

import (
	"context"

	"github.com/simonmuehling/educafric-platform-sub010/internal/domain"
	ggrpc "google.golang.org/grpc"
)

const ServiceName = "educafric.notification.v1.NotificationService"

// NotificationServiceServer 通知服务接口，消息以 json 编码传输
type NotificationServiceServer interface {
	Send(ctx context.Context, req *SendReq) (*SendResp, error)
	BulkSend(ctx context.Context, req *BulkSendReq) (*BulkSendResp, error)
	GetStats(ctx context.Context, req *GetStatsReq) (*GetStatsResp, error)
	SendAnnouncement(ctx context.Context, req *domain.AnnouncementReq) (*domain.Summary, error)
	SendGradeNotification(ctx context.Context, req *domain.GradeReq) (*domain.Summary, error)
	SendAttendanceAlert(ctx context.Context, req *domain.AttendanceReq) (*domain.Summary, error)
	GetCommunicationStats(ctx context.Context, req *GetCommunicationStatsReq) (*domain.CommunicationStats, error)
	ListParentCommunications(ctx context.Context, req *ListParentCommunicationsReq) (*ListParentCommunicationsResp, error)
}

func RegisterNotificationServiceServer(s ggrpc.ServiceRegistrar, srv NotificationServiceServer) {
	s.RegisterService(&NotificationServiceDesc, srv)
}

// unaryHandler 生成统一的 unary 方法处理函数
func unaryHandler[Req any, Resp any](
	method string,
	call func(srv NotificationServiceServer, ctx context.Context, req *Req) (*Resp, error),
) ggrpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor ggrpc.UnaryServerInterceptor) (any, error) {
		req := new(Req)
		if err := dec(req); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(NotificationServiceServer), ctx, req)
		}

		info := &ggrpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/" + ServiceName + "/" + method,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(NotificationServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, req, info, handler)
	}
}

var NotificationServiceDesc = ggrpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*NotificationServiceServer)(nil),
	Methods: []ggrpc.MethodDesc{
		{
			MethodName: "Send",
			Handler:    unaryHandler("Send", NotificationServiceServer.Send),
		},
		{
			MethodName: "BulkSend",
			Handler:    unaryHandler("BulkSend", NotificationServiceServer.BulkSend),
		},
		{
			MethodName: "GetStats",
			Handler:    unaryHandler("GetStats", NotificationServiceServer.GetStats),
		},
		{
			MethodName: "SendAnnouncement",
			Handler:    unaryHandler("SendAnnouncement", NotificationServiceServer.SendAnnouncement),
		},
		{
			MethodName: "SendGradeNotification",
			Handler:    unaryHandler("SendGradeNotification", NotificationServiceServer.SendGradeNotification),
		},
		{
			MethodName: "SendAttendanceAlert",
			Handler:    unaryHandler("SendAttendanceAlert", NotificationServiceServer.SendAttendanceAlert),
		},
		{
			MethodName: "GetCommunicationStats",
			Handler:    unaryHandler("GetCommunicationStats", NotificationServiceServer.GetCommunicationStats),
		},
		{
			MethodName: "ListParentCommunications",
			Handler:    unaryHandler("ListParentCommunications", NotificationServiceServer.ListParentCommunications),
		},
	},
	Streams:  []ggrpc.StreamDesc{},
	Metadata: "educafric/notification/v1/notification.json",
}

// NotificationServiceClient 通知服务客户端
type NotificationServiceClient struct {
	cc ggrpc.ClientConnInterface
}

func (c *NotificationServiceClient) invoke(ctx context.Context, method string, req, resp any, opts ...ggrpc.CallOption) error {
	opts = append([]ggrpc.CallOption{ggrpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, req, resp, opts...)
}

func (c *NotificationServiceClient) Send(ctx context.Context, req *SendReq, opts ...ggrpc.CallOption) (*SendResp, error) {
	resp := new(SendResp)
	if err := c.invoke(ctx, "Send", req, resp, opts...); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *NotificationServiceClient) BulkSend(ctx context.Context, req *BulkSendReq, opts ...ggrpc.CallOption) (*BulkSendResp, error) {
	resp := new(BulkSendResp)
	if err := c.invoke(ctx, "BulkSend", req, resp, opts...); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *NotificationServiceClient) GetStats(ctx context.Context, req *GetStatsReq, opts ...ggrpc.CallOption) (*GetStatsResp, error) {
	resp := new(GetStatsResp)
	if err := c.invoke(ctx, "GetStats", req, resp, opts...); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *NotificationServiceClient) SendAnnouncement(ctx context.Context, req *domain.AnnouncementReq, opts ...ggrpc.CallOption) (*domain.Summary, error) {
	resp := new(domain.Summary)
	if err := c.invoke(ctx, "SendAnnouncement", req, resp, opts...); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *NotificationServiceClient) SendGradeNotification(ctx context.Context, req *domain.GradeReq, opts ...ggrpc.CallOption) (*domain.Summary, error) {
	resp := new(domain.Summary)
	if err := c.invoke(ctx, "SendGradeNotification", req, resp, opts...); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *NotificationServiceClient) SendAttendanceAlert(ctx context.Context, req *domain.AttendanceReq, opts ...ggrpc.CallOption) (*domain.Summary, error) {
	resp := new(domain.Summary)
	if err := c.invoke(ctx, "SendAttendanceAlert", req, resp, opts...); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *NotificationServiceClient) GetCommunicationStats(
	ctx context.Context, req *GetCommunicationStatsReq, opts ...ggrpc.CallOption,
) (*domain.CommunicationStats, error) {
	resp := new(domain.CommunicationStats)
	if err := c.invoke(ctx, "GetCommunicationStats", req, resp, opts...); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *NotificationServiceClient) ListParentCommunications(
	ctx context.Context, req *ListParentCommunicationsReq, opts ...ggrpc.CallOption,
) (*ListParentCommunicationsResp, error) {
	resp := new(ListParentCommunicationsResp)
	if err := c.invoke(ctx, "ListParentCommunications", req, resp, opts...); err != nil {
		return nil, err
	}
	return resp, nil
}

func NewNotificationServiceClient(cc ggrpc.ClientConnInterface) *NotificationServiceClient {
	return &NotificationServiceClient{
		cc: cc,
	}
}
