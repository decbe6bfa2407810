package domain

import "time"

// Template scopes. A provider or project template shadows the global one.
const (
	ScopeGlobal   = "global"
	ScopeProject  = "project"
	ScopeProvider = "provider"
)

// Template overrides a builtin prompt for one scope.
type Template struct {
	ID        int64     `json:"id"`
	Scope     string    `json:"scope"`
	RefID     *int64    `json:"ref_id"` // nil for ScopeGlobal
	Type      string    `json:"type"`
	Role      string    `json:"role"`
	Body      string    `json:"body"`
	IsDefault bool      `json:"is_default"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ScopedTo reports whether the template applies to an owner in scope.
func ScopedTo(scope string) bool {
	return scope == ScopeProject || scope == ScopeProvider
}

// SettingLanguage holds the UI language chosen by the user.
const SettingLanguage = "window/language"

// CacheKey identifies a machine translation. Text is the source with its
// placeholders masked, so messages that differ only in context share it.
type CacheKey struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
	Provider   string `json:"provider"`
	Model      string `json:"model"`
}

type CacheEntry struct {
	CacheKey
	ID          int64     `json:"id"`
	Translation string    `json:"translation"`
	CreatedAt   time.Time `json:"created_at"`
}
