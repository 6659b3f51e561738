package domain

import (
	"golang.org/x/text/language"
)

// Language 模板支持的语言
type Language string

const (
	LanguageEN Language = "en"
	LanguageFR Language = "fr"

	// DefaultLanguage 用户未设置偏好语言时默认使用法语
	DefaultLanguage = LanguageFR
)

var (
	supportedTags = []language.Tag{language.French, language.English}
	langMatcher   = language.NewMatcher(supportedTags)
)

func (l Language) String() string {
	return string(l)
}

func (l Language) Validate() bool {
	return l == LanguageEN || l == LanguageFR
}

// ParseLanguage 将 BCP 47 语言标签（如 "fr-CM"、"en-GB"）归一化为受支持的语言。
//
// 空字符串返回 DefaultLanguage。无法匹配受支持语言的标签原样返回，
// 由模板解析报告语言不支持。
func ParseLanguage(raw string) Language {
	if raw == "" {
		return DefaultLanguage
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return Language(raw)
	}

	_, idx, conf := langMatcher.Match(tag)
	if conf == language.No {
		return Language(raw)
	}
	base, _ := supportedTags[idx].Base()
	return Language(base.String())
}

// Role 收件人角色
type Role string

const (
	RoleParent   Role = "Parent"
	RoleStudent  Role = "Student"
	RoleTeacher  Role = "Teacher"
	RoleDirector Role = "Director"
	RoleAdmin    Role = "Admin"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) Validate() bool {
	switch r {
	case RoleParent, RoleStudent, RoleTeacher, RoleDirector, RoleAdmin:
		return true
	default:
		return false
	}
}

// Recipient 收件人领域对象
type Recipient struct {
	Id                string   `json:"id"`
	Name              string   `json:"name"`
	Email             string   `json:"email,omitempty"`
	Phone             string   `json:"phone,omitempty"`
	PreferredLanguage Language `json:"preferred_language"`
	Role              Role     `json:"role"`
}

// Language 返回收件人偏好语言，未设置时返回默认语言，不支持的语言原样返回
func (r Recipient) Language() Language {
	if r.PreferredLanguage.Validate() {
		return r.PreferredLanguage
	}
	return ParseLanguage(r.PreferredLanguage.String())
}

// HasContactFor 判断收件人是否具备渠道所需的联系方式
func (r Recipient) HasContactFor(c Channel) bool {
	switch {
	case c.RequiresPhone():
		return r.Phone != ""
	case c.RequiresEmail():
		return r.Email != ""
	default:
		return true
	}
}
