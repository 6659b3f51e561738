package domain

import (
	"time"
)

// NotificationResult 单个收件人的发送结果，创建后不再修改。
type NotificationResult struct {
	Success     bool       `json:"success"`
	MessageId   string     `json:"message_id,omitempty"`
	RecipientId string     `json:"recipient_id"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	Error       string     `json:"error,omitempty"`
	Cost        float64    `json:"cost,omitempty"`

	// TransportFailure 供应商或传输层失败，调用方错误（缺少联系方式、模板错误）为 false
	TransportFailure bool `json:"-"`
}

// FailedResult 构造失败结果
func FailedResult(recipientId string, err error) NotificationResult {
	res := NotificationResult{
		Success:     false,
		RecipientId: recipientId,
	}
	if err != nil {
		res.Error = err.Error()
	}
	return res
}

// TransportFailedResult 构造传输失败结果
func TransportFailedResult(recipientId string, err error) NotificationResult {
	res := FailedResult(recipientId, err)
	res.TransportFailure = true
	return res
}

// DeliveredResult 构造成功结果
func DeliveredResult(recipientId, messageId string, deliveredAt time.Time, cost float64) NotificationResult {
	return NotificationResult{
		Success:     true,
		MessageId:   messageId,
		RecipientId: recipientId,
		DeliveredAt: &deliveredAt,
		Cost:        cost,
	}
}

// CountResults 统计成功与失败数量
func CountResults(results []NotificationResult) (success, failure int) {
	for _, res := range results {
		if res.Success {
			success++
			continue
		}
		failure++
	}
	return success, failure
}

// DeliveryStats 某个模板的投递统计，按需计算。
type DeliveryStats struct {
	Total       int    `json:"total"`
	Successful  int    `json:"successful"`
	Failed      int    `json:"failed"`
	SuccessRate string `json:"success_rate"`
	TotalCost   string `json:"total_cost"`
	AverageCost string `json:"average_cost"`
}
