package template

import (
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/simonmuehling/educafric-platform-sub010/internal/domain"
	"github.com/simonmuehling/educafric-platform-sub010/internal/errs"
)

const defaultSubject = "Educafric"

// Definition 模板定义，每种语言一份正文，占位符按名称引用（{{.childName}}）。
type Definition struct {
	Key      domain.TemplateKey
	Required []string
	Bodies   map[domain.Language]string
	Subjects map[domain.Language]string
}

// Formatter 某个模板在某种语言下的渲染器
type Formatter struct {
	key      domain.TemplateKey
	required []string
	body     *template.Template
	subject  *template.Template
}

// Format 使用载荷数据渲染正文，缺少必填占位符时返回 errs.ErrTemplateDataMissing。
func (f Formatter) Format(data map[string]string) (string, error) {
	if err := f.checkRequired(data); err != nil {
		return "", err
	}
	return f.execute(f.body, data)
}

// Subject 渲染邮件标题，模板未定义标题时使用默认标题。
func (f Formatter) Subject(data map[string]string) (string, error) {
	if f.subject == nil {
		return defaultSubject, nil
	}
	return f.execute(f.subject, data)
}

func (f Formatter) checkRequired(data map[string]string) error {
	var missing []string
	for _, name := range f.required {
		if data[name] == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: template = %s, fields = %s", errs.ErrTemplateDataMissing, f.key, strings.Join(missing, ","))
	}
	return nil
}

func (f Formatter) execute(tpl *template.Template, data map[string]string) (string, error) {
	if data == nil {
		data = map[string]string{}
	}
	var sb strings.Builder
	if err := tpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("[educafric] render template %s: %w", f.key, err)
	}
	return sb.String(), nil
}

// Registry 模板注册表，进程启动时构建，运行期间只读。
type Registry interface {
	// Resolve 获取模板渲染器。
	// 模板不存在返回 errs.ErrTemplateNotFound，语言不支持返回 errs.ErrTemplateLanguageNotSupported。
	Resolve(key domain.TemplateKey, lang domain.Language) (Formatter, error)
	Keys() []domain.TemplateKey
}

var _ Registry = (*StaticRegistry)(nil)

type StaticRegistry struct {
	entries map[domain.TemplateKey]map[domain.Language]Formatter
}

func (r *StaticRegistry) Resolve(key domain.TemplateKey, lang domain.Language) (Formatter, error) {
	byLang, ok := r.entries[key]
	if !ok {
		return Formatter{}, fmt.Errorf("%w: template = %s", errs.ErrTemplateNotFound, key)
	}
	f, ok := byLang[lang]
	if !ok {
		return Formatter{}, fmt.Errorf("%w: template = %s, language = %s", errs.ErrTemplateLanguageNotSupported, key, lang)
	}
	return f, nil
}

func (r *StaticRegistry) Keys() []domain.TemplateKey {
	keys := make([]domain.TemplateKey, 0, len(r.entries))
	for key := range r.entries {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// NewRegistry 编译模板定义，任意模板解析失败都返回错误。
func NewRegistry(defs ...Definition) (*StaticRegistry, error) {
	entries := make(map[domain.TemplateKey]map[domain.Language]Formatter, len(defs))
	for _, def := range defs {
		if def.Key == "" {
			return nil, fmt.Errorf("%w: template key should not be empty", errs.ErrInvalidParam)
		}

		byLang := make(map[domain.Language]Formatter, len(def.Bodies))
		for lang, body := range def.Bodies {
			name := def.Key.String() + "." + lang.String()
			bodyTpl, err := template.New(name).Option("missingkey=zero").Parse(body)
			if err != nil {
				return nil, fmt.Errorf("[educafric] parse template %s: %w", name, err)
			}

			f := Formatter{
				key:      def.Key,
				required: def.Required,
				body:     bodyTpl,
			}
			if subject, ok := def.Subjects[lang]; ok {
				subjectTpl, err := template.New(name + ".subject").Option("missingkey=zero").Parse(subject)
				if err != nil {
					return nil, fmt.Errorf("[educafric] parse template subject %s: %w", name, err)
				}
				f.subject = subjectTpl
			}
			byLang[lang] = f
		}
		entries[def.Key] = byLang
	}
	return &StaticRegistry{entries: entries}, nil
}

// NewDefaultRegistry 使用内置模板构建注册表
func NewDefaultRegistry() *StaticRegistry {
	r, err := NewRegistry(builtinDefinitions...)
	if err != nil {
		panic(err)
	}
	return r
}
