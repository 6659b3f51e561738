package domain

import (
	"fmt"

	"github.com/simonmuehling/educafric-platform-sub010/internal/errs"
)

// NotificationPayload 消息载荷领域对象。
//
// 一个载荷只对应一个渠道和一个模板，但可以有多个收件人。
// 构造完成后视为不可变，分发过程不会修改它。
type NotificationPayload struct {
	Channel    Channel           `json:"channel"`
	Template   TemplateKey       `json:"template"`
	Recipients []Recipient       `json:"recipients"`
	Data       map[string]string `json:"data"`
	Priority   Priority          `json:"priority"`
	SchoolId   uint64            `json:"school_id,omitempty"`
	SenderId   uint64            `json:"sender_id,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Validate 校验载荷结构，失败说明调用方违反约定，整个调用直接失败。
func (p NotificationPayload) Validate() error {
	if !p.Channel.Validate() {
		return fmt.Errorf("%w: channel = %q", errs.ErrInvalidChannel, p.Channel)
	}

	if len(p.Recipients) == 0 {
		return fmt.Errorf("%w: recipients should not be empty", errs.ErrInvalidParam)
	}

	if p.Template == "" {
		return fmt.Errorf("%w: template should not be empty", errs.ErrInvalidParam)
	}

	if !p.Priority.Validate() {
		return fmt.Errorf("%w: priority = %q", errs.ErrInvalidParam, p.Priority)
	}

	for i, r := range p.Recipients {
		if r.Id == "" {
			return fmt.Errorf("%w: recipient at index %d has empty id", errs.ErrInvalidParam, i)
		}
	}
	return nil
}

// Value 读取载荷数据，不存在时返回空字符串
func (p NotificationPayload) Value(key string) string {
	if p.Data == nil {
		return ""
	}
	return p.Data[key]
}
