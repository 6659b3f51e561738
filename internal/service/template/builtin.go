package template

import (
	"github.com/simonmuehling/educafric-platform-sub010/internal/domain"
)

const classSuffix = "{{with .className}} ({{.}}){{end}}"

// 学校名称缺失时使用通用称呼
const (
	schoolEN = "{{with .schoolName}}{{.}}{{else}}school{{end}}"
	schoolFR = "{{with .schoolName}}{{.}}{{else}}l'école{{end}}"
)

var builtinDefinitions = []Definition{
	{
		Key:      domain.TemplateAbsenceAlert,
		Required: []string{"childName", "time"},
		Bodies: map[domain.Language]string{
			domain.LanguageEN: "{{.childName}}" + classSuffix + " absent {{.time}}. Contact school if needed.",
			domain.LanguageFR: "{{.childName}}" + classSuffix + " absent {{.time}}. Contactez école si nécessaire.",
		},
		Subjects: map[domain.Language]string{
			domain.LanguageEN: "Attendance Update - {{.childName}}",
			domain.LanguageFR: "Mise à jour de présence - {{.childName}}",
		},
	},
	{
		Key:      domain.TemplateLateArrival,
		Required: []string{"childName", "time"},
		Bodies: map[domain.Language]string{
			domain.LanguageEN: "{{.childName}}" + classSuffix + " arrived late at {{.time}}.",
			domain.LanguageFR: "{{.childName}}" + classSuffix + " arrivé en retard à {{.time}}.",
		},
		Subjects: map[domain.Language]string{
			domain.LanguageEN: "Attendance Update - {{.childName}}",
			domain.LanguageFR: "Mise à jour de présence - {{.childName}}",
		},
	},
	{
		Key:      domain.TemplateSchoolArrival,
		Required: []string{"childName", "time"},
		Bodies: map[domain.Language]string{
			domain.LanguageEN: "{{.childName}} arrived at " + schoolEN + " at {{.time}}. Attendance confirmed.",
			domain.LanguageFR: "{{.childName}} arrivé à " + schoolFR + " à {{.time}}. Présence confirmée.",
		},
	},
	{
		Key:      domain.TemplateSchoolDeparture,
		Required: []string{"childName", "time"},
		Bodies: map[domain.Language]string{
			domain.LanguageEN: "{{.childName}} left " + schoolEN + " at {{.time}}. Pickup confirmed.",
			domain.LanguageFR: "{{.childName}} a quitté " + schoolFR + " à {{.time}}. Récupération confirmée.",
		},
	},
	{
		Key:      domain.TemplateNewGrade,
		Required: []string{"childName", "subject", "grade"},
		Bodies: map[domain.Language]string{
			domain.LanguageEN: "{{.childName}}: {{.subject}} grade {{.grade}}. Well done!",
			domain.LanguageFR: "{{.childName}}: note {{.subject}} {{.grade}}. Bravo!",
		},
		Subjects: map[domain.Language]string{
			domain.LanguageEN: "Grade Update - {{.childName}}",
			domain.LanguageFR: "Mise à jour Note - {{.childName}}",
		},
	},
	{
		Key:      domain.TemplateLowGradeAlert,
		Required: []string{"childName", "subject", "grade"},
		Bodies: map[domain.Language]string{
			domain.LanguageEN: "{{.childName}}: {{.subject}} {{.grade}}. Needs support. Contact teacher.",
			domain.LanguageFR: "{{.childName}}: {{.subject}} {{.grade}}. Besoin aide. Contactez prof.",
		},
		Subjects: map[domain.Language]string{
			domain.LanguageEN: "Grade Alert - {{.childName}}",
			domain.LanguageFR: "Alerte Note - {{.childName}}",
		},
	},
	{
		Key:      domain.TemplateSchoolFeesDue,
		Required: []string{"childName", "amount", "dueDate"},
		Bodies: map[domain.Language]string{
			domain.LanguageEN: "{{.childName}}: School fees {{.amount}} due {{.dueDate}}. Pay via app.",
			domain.LanguageFR: "{{.childName}}: Frais {{.amount}} dus {{.dueDate}}. Payez via app.",
		},
	},
	{
		Key:      domain.TemplatePaymentConfirmed,
		Required: []string{"childName", "amount", "reference"},
		Bodies: map[domain.Language]string{
			domain.LanguageEN: "{{.childName}}: Payment {{.amount}} received. Ref: {{.reference}}. Thank you!",
			domain.LanguageFR: "{{.childName}}: Paiement {{.amount}} reçu. Réf: {{.reference}}. Merci!",
		},
	},
	{
		Key:      domain.TemplateEmergencyAlert,
		Required: []string{"personName", "situation"},
		Bodies: map[domain.Language]string{
			domain.LanguageEN: "URGENT: {{.personName}} - {{.situation}}. Contact school immediately.",
			domain.LanguageFR: "URGENT: {{.personName}} - {{.situation}}. Contactez école immédiatement.",
		},
		Subjects: map[domain.Language]string{
			domain.LanguageEN: "URGENT - {{.personName}}",
			domain.LanguageFR: "URGENT - {{.personName}}",
		},
	},
	{
		Key:      domain.TemplateMedicalIncident,
		Required: []string{"childName", "incident"},
		Bodies: map[domain.Language]string{
			domain.LanguageEN: "{{.childName}}: {{.incident}}. Please collect from school nurse.",
			domain.LanguageFR: "{{.childName}}: {{.incident}}. Veuillez venir chercher à infirmerie.",
		},
	},
	{
		Key:      domain.TemplatePanicButton,
		Required: []string{"childName", "location", "time"},
		Bodies: map[domain.Language]string{
			domain.LanguageEN: "EMERGENCY: {{.childName}} activated panic button at {{.location}}, {{.time}}. Call immediately!",
			domain.LanguageFR: "URGENCE: {{.childName}} a activé alarme à {{.location}}, {{.time}}. Appelez immédiatement!",
		},
	},
	{
		Key:      domain.TemplateSchoolAnnouncement,
		Required: []string{"title", "date"},
		Bodies: map[domain.Language]string{
			domain.LanguageEN: "{{with .schoolName}}{{.}}{{else}}School{{end}}: {{.title}} - {{.date}}. Check app for details.",
			domain.LanguageFR: "{{with .schoolName}}{{.}}{{else}}École{{end}}: {{.title}} - {{.date}}. Vérifiez app pour détails.",
		},
		Subjects: map[domain.Language]string{
			domain.LanguageEN: "{{.title}}",
			domain.LanguageFR: "{{.title}}",
		},
	},
	{
		Key:      domain.TemplatePasswordReset,
		Required: []string{"code"},
		Bodies: map[domain.Language]string{
			domain.LanguageEN: "Your Educafric password reset code: {{.code}}. Valid for 10 minutes.",
			domain.LanguageFR: "Votre code Educafric: {{.code}}. Valide 10 minutes.",
		},
	},
	{
		Key:      domain.TemplateHomeworkReminder,
		Required: []string{"childName", "subject", "dueDate"},
		Bodies: map[domain.Language]string{
			domain.LanguageEN: "{{.childName}}: {{.subject}} homework due {{.dueDate}}. Check app.",
			domain.LanguageFR: "{{.childName}}: Devoir {{.subject}} pour {{.dueDate}}. Voir app.",
		},
	},
}
