package template

import (
	"testing"

	"github.com/simonmuehling/educafric-platform-sub010/internal/domain"
	"github.com/simonmuehling/educafric-platform-sub010/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticRegistry_Resolve(t *testing.T) {
	t.Parallel()

	r := NewDefaultRegistry()

	tcs := []struct {
		name    string
		key     domain.TemplateKey
		lang    domain.Language
		data    map[string]string
		wantMsg string
		wantErr error
	}{
		{
			name:    "absence alert in french",
			key:     domain.TemplateAbsenceAlert,
			lang:    domain.LanguageFR,
			data:    map[string]string{"childName": "Junior", "time": "09:30"},
			wantMsg: "Junior absent 09:30. Contactez école si nécessaire.",
		}, {
			name:    "absence alert with class name",
			key:     domain.TemplateAbsenceAlert,
			lang:    domain.LanguageEN,
			data:    map[string]string{"childName": "Junior", "time": "09:30", "className": "CM2"},
			wantMsg: "Junior (CM2) absent 09:30. Contact school if needed.",
		}, {
			name:    "named fields ignore map order",
			key:     domain.TemplateNewGrade,
			lang:    domain.LanguageEN,
			data:    map[string]string{"grade": "15/20", "subject": "Maths", "childName": "Awa"},
			wantMsg: "Awa: Maths grade 15/20. Well done!",
		}, {
			name:    "announcement falls back to generic school name",
			key:     domain.TemplateSchoolAnnouncement,
			lang:    domain.LanguageFR,
			data:    map[string]string{"title": "Réunion", "date": "12/10/2026"},
			wantMsg: "École: Réunion - 12/10/2026. Vérifiez app pour détails.",
		}, {
			name:    "departure falls back to generic school name",
			key:     domain.TemplateSchoolDeparture,
			lang:    domain.LanguageFR,
			data:    map[string]string{"childName": "Junior", "time": "15:10"},
			wantMsg: "Junior a quitté l'école à 15:10. Récupération confirmée.",
		}, {
			name:    "arrival with school name",
			key:     domain.TemplateSchoolArrival,
			lang:    domain.LanguageEN,
			data:    map[string]string{"childName": "Junior", "time": "07:45", "schoolName": "Lycée de Yaoundé"},
			wantMsg: "Junior arrived at Lycée de Yaoundé at 07:45. Attendance confirmed.",
		}, {
			name:    "unknown template",
			key:     "DOES_NOT_EXIST",
			lang:    domain.LanguageEN,
			wantErr: errs.ErrTemplateNotFound,
		}, {
			name:    "unsupported language",
			key:     domain.TemplateAbsenceAlert,
			lang:    "sw",
			wantErr: errs.ErrTemplateLanguageNotSupported,
		}, {
			name:    "missing required field",
			key:     domain.TemplateAbsenceAlert,
			lang:    domain.LanguageEN,
			data:    map[string]string{"childName": "Junior"},
			wantErr: errs.ErrTemplateDataMissing,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f, err := r.Resolve(tc.key, tc.lang)
			if err == nil {
				var msg string
				msg, err = f.Format(tc.data)
				if tc.wantErr == nil {
					require.NoError(t, err)
					assert.Equal(t, tc.wantMsg, msg)
					return
				}
			}
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestStaticRegistry_DistinctResolutionErrors(t *testing.T) {
	t.Parallel()

	r, err := NewRegistry(Definition{
		Key:    "EN_ONLY",
		Bodies: map[domain.Language]string{domain.LanguageEN: "hello {{.name}}"},
	})
	require.NoError(t, err)

	_, err = r.Resolve("EN_ONLY", domain.LanguageFR)
	assert.ErrorIs(t, err, errs.ErrTemplateLanguageNotSupported)
	assert.NotErrorIs(t, err, errs.ErrTemplateNotFound)

	_, err = r.Resolve("MISSING", domain.LanguageEN)
	assert.ErrorIs(t, err, errs.ErrTemplateNotFound)
	assert.NotErrorIs(t, err, errs.ErrTemplateLanguageNotSupported)
}

func TestFormatter_Subject(t *testing.T) {
	t.Parallel()

	r := NewDefaultRegistry()

	f, err := r.Resolve(domain.TemplateAbsenceAlert, domain.LanguageEN)
	require.NoError(t, err)
	subject, err := f.Subject(map[string]string{"childName": "Junior"})
	require.NoError(t, err)
	assert.Equal(t, "Attendance Update - Junior", subject)

	f, err = r.Resolve(domain.TemplatePasswordReset, domain.LanguageEN)
	require.NoError(t, err)
	subject, err = f.Subject(nil)
	require.NoError(t, err)
	assert.Equal(t, defaultSubject, subject)
}

func TestNewRegistry_InvalidTemplate(t *testing.T) {
	t.Parallel()

	_, err := NewRegistry(Definition{
		Key:    "BROKEN",
		Bodies: map[domain.Language]string{domain.LanguageEN: "{{.name"},
	})
	assert.Error(t, err)
}

func TestStaticRegistry_BuiltinsCoverBothLanguages(t *testing.T) {
	t.Parallel()

	r := NewDefaultRegistry()
	keys := r.Keys()
	assert.Len(t, keys, len(builtinDefinitions))

	for _, key := range keys {
		for _, lang := range []domain.Language{domain.LanguageEN, domain.LanguageFR} {
			_, err := r.Resolve(key, lang)
			assert.NoError(t, err, "template %s language %s", key, lang)
		}
	}
}
