package domain

// TemplateKey 消息模板标识
type TemplateKey string

const (
	// 考勤
	TemplateAbsenceAlert    TemplateKey = "ABSENCE_ALERT"
	TemplateLateArrival     TemplateKey = "LATE_ARRIVAL"
	TemplateSchoolArrival   TemplateKey = "SCHOOL_ARRIVAL"
	TemplateSchoolDeparture TemplateKey = "SCHOOL_DEPARTURE"

	// 成绩
	TemplateNewGrade      TemplateKey = "NEW_GRADE"
	TemplateLowGradeAlert TemplateKey = "LOW_GRADE_ALERT"

	// 缴费
	TemplateSchoolFeesDue    TemplateKey = "SCHOOL_FEES_DUE"
	TemplatePaymentConfirmed TemplateKey = "PAYMENT_CONFIRMED"

	// 紧急
	TemplateEmergencyAlert  TemplateKey = "EMERGENCY_ALERT"
	TemplateMedicalIncident TemplateKey = "MEDICAL_INCIDENT"
	TemplatePanicButton     TemplateKey = "PANIC_BUTTON"

	// 通用
	TemplateSchoolAnnouncement TemplateKey = "SCHOOL_ANNOUNCEMENT"
	TemplatePasswordReset      TemplateKey = "PASSWORD_RESET"
	TemplateHomeworkReminder   TemplateKey = "HOMEWORK_REMINDER"
)

func (k TemplateKey) String() string {
	return string(k)
}
