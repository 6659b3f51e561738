package domain

// Channel 发送渠道（短信/邮件/WhatsApp/推送）
type Channel string

const (
	ChannelSMS      Channel = "sms"
	ChannelEmail    Channel = "email"
	ChannelWhatsApp Channel = "whatsapp"
	ChannelPush     Channel = "push"
)

func (c Channel) String() string {
	return string(c)
}

func (c Channel) Validate() bool {
	switch c {
	case ChannelSMS, ChannelEmail, ChannelWhatsApp, ChannelPush:
		return true
	default:
		return false
	}
}

// RequiresPhone 短信和 WhatsApp 需要收件人手机号
func (c Channel) RequiresPhone() bool {
	return c == ChannelSMS || c == ChannelWhatsApp
}

func (c Channel) RequiresEmail() bool {
	return c == ChannelEmail
}

// Priority 消息优先级，只供下游排队参考，不影响单次分发内的发送顺序。
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) String() string {
	return string(p)
}

func (p Priority) Validate() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	default:
		return false
	}
}
