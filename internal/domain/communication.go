package domain

import (
	"fmt"
	"time"

	"github.com/simonmuehling/educafric-platform-sub010/internal/errs"
)

// Student 学生领域对象（只读，由外部数据源维护）
type Student struct {
	Id        uint64 `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	ClassName string `json:"class_name"`
	ParentId  uint64 `json:"parent_id"`
	SchoolId  uint64 `json:"school_id"`
}

func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// School 学校领域对象
type School struct {
	Id   uint64 `json:"id"`
	Name string `json:"name"`
}

// AttendanceType 考勤事件类型
type AttendanceType string

const (
	AttendanceAbsent         AttendanceType = "absent"
	AttendanceLate           AttendanceType = "late"
	AttendanceEarlyDeparture AttendanceType = "early_departure"
)

func (t AttendanceType) String() string {
	return string(t)
}

func (t AttendanceType) Validate() bool {
	return t == AttendanceAbsent || t == AttendanceLate || t == AttendanceEarlyDeparture
}

// CommunicationType 通讯记录类型
type CommunicationType string

const (
	CommunicationSchoolAnnouncement CommunicationType = "school_announcement"
	CommunicationGradeNotification  CommunicationType = "grade_notification"
	CommunicationAttendanceAlert    CommunicationType = "attendance_alert"
)

func (t CommunicationType) String() string {
	return string(t)
}

// CommunicationStatus 根据投递结果得出的记录状态
type CommunicationStatus string

const (
	CommunicationStatusSent    CommunicationStatus = "sent"
	CommunicationStatusPartial CommunicationStatus = "partial"
	CommunicationStatusFailed  CommunicationStatus = "failed"
)

func (s CommunicationStatus) String() string {
	return string(s)
}

// StatusOf 根据成功失败数量计算记录状态
func StatusOf(success, failure int) CommunicationStatus {
	switch {
	case failure == 0 && success > 0:
		return CommunicationStatusSent
	case success == 0:
		return CommunicationStatusFailed
	default:
		return CommunicationStatusPartial
	}
}

// CommunicationLog 通讯记录，在分发完成后写入，反映真实投递结果。
type CommunicationLog struct {
	Id             uint64               `json:"id"`
	SenderId       uint64               `json:"sender_id"`
	SchoolId       uint64               `json:"school_id"`
	RecipientId    uint64               `json:"recipient_id"`
	Type           CommunicationType    `json:"type"`
	Channel        Channel              `json:"channel"`
	Template       TemplateKey          `json:"template"`
	Subject        string               `json:"subject"`
	Message        string               `json:"message"`
	Status         CommunicationStatus  `json:"status"`
	RecipientCount int                  `json:"recipient_count"`
	SuccessCount   int                  `json:"success_count"`
	FailureCount   int                  `json:"failure_count"`
	Results        []NotificationResult `json:"results"`
	SentAt         time.Time            `json:"sent_at"`
}

// AnnouncementReq 学校公告请求
type AnnouncementReq struct {
	SenderId     uint64      `json:"sender_id"`
	SchoolId     uint64      `json:"school_id"`
	RecipientIds []uint64    `json:"recipient_ids"`
	Channel      Channel     `json:"channel"`
	Template     TemplateKey `json:"template"`
	Subject      string      `json:"subject"`
	Message      string      `json:"message"`
	Urgent       bool        `json:"urgent"`
}

func (r AnnouncementReq) Validate() error {
	if r.SenderId == 0 || r.SchoolId == 0 {
		return fmt.Errorf("%w: sender id and school id are required", errs.ErrInvalidParam)
	}
	if len(r.RecipientIds) == 0 {
		return fmt.Errorf("%w: recipients required", errs.ErrInvalidParam)
	}
	if r.Channel != "" && !r.Channel.Validate() {
		return fmt.Errorf("%w: channel = %q", errs.ErrInvalidChannel, r.Channel)
	}
	return nil
}

// GradeReq 成绩通知请求，成绩为 20 分制
type GradeReq struct {
	TeacherId   uint64  `json:"teacher_id"`
	TeacherName string  `json:"teacher_name"`
	StudentId   uint64  `json:"student_id"`
	Subject     string  `json:"subject"`
	Grade       float64 `json:"grade"`
	Comment     string  `json:"comment"`
}

func (r GradeReq) Validate() error {
	if r.StudentId == 0 {
		return fmt.Errorf("%w: student id is required", errs.ErrInvalidParam)
	}
	if r.Subject == "" {
		return fmt.Errorf("%w: subject is required", errs.ErrInvalidParam)
	}
	if r.Grade < 0 || r.Grade > 20 {
		return fmt.Errorf("%w: grade should be in [0, 20], got %v", errs.ErrInvalidParam, r.Grade)
	}
	return nil
}

// AttendanceReq 考勤提醒请求
type AttendanceReq struct {
	SenderId  uint64         `json:"sender_id"`
	StudentId uint64         `json:"student_id"`
	Type      AttendanceType `json:"type"`
	Details   string         `json:"details"`
}

func (r AttendanceReq) Validate() error {
	if r.StudentId == 0 {
		return fmt.Errorf("%w: student id is required", errs.ErrInvalidParam)
	}
	if !r.Type.Validate() {
		return fmt.Errorf("%w: attendance type = %q", errs.ErrInvalidParam, r.Type)
	}
	return nil
}

// Summary 通讯用例返回的投递汇总，始终携带明确的成功失败计数。
type Summary struct {
	LogId          uint64               `json:"log_id"`
	Logged         bool                 `json:"logged"`
	Template       TemplateKey          `json:"template"`
	Priority       Priority             `json:"priority"`
	RecipientCount int                  `json:"recipient_count"`
	SuccessCount   int                  `json:"success_count"`
	FailureCount   int                  `json:"failure_count"`
	Results        []NotificationResult `json:"results"`
	SentAt         time.Time            `json:"sent_at"`
}

// CommunicationStats 学校通讯统计
type CommunicationStats struct {
	DeliveryStats        map[TemplateKey]DeliveryStats `json:"delivery_stats"`
	RecentCommunications []CommunicationLog            `json:"recent_communications"`
	TotalSent            int                           `json:"total_sent"`
	PeriodDays           int                           `json:"period_days"`
}
