package grpc

import (
	"github.com/simonmuehling/educafric-platform-sub010/internal/domain"
)

type SendReq struct {
	Payload domain.NotificationPayload `json:"payload"`
}

type SendResp struct {
	Results      []domain.NotificationResult `json:"results"`
	SuccessCount int                         `json:"success_count"`
	FailureCount int                         `json:"failure_count"`
}

type BulkSendReq struct {
	Payloads []domain.NotificationPayload `json:"payloads"`
}

type BulkSendResp struct {
	Results [][]domain.NotificationResult `json:"results"`
}

// GetStatsReq Template 为空时返回所有模板的统计
type GetStatsReq struct {
	Template domain.TemplateKey `json:"template,omitempty"`
}

type GetStatsResp struct {
	Stats map[domain.TemplateKey]domain.DeliveryStats `json:"stats"`
}

type GetCommunicationStatsReq struct {
	SchoolId uint64 `json:"school_id"`
}

type ListParentCommunicationsReq struct {
	ParentId uint64 `json:"parent_id"`
}

type ListParentCommunicationsResp struct {
	Communications []domain.CommunicationLog `json:"communications"`
}
