package domain

import "time"

// Project is a translation prefix such as "HydrogenVR". Each of its locales
// is shipped as one table file named by TableName.
type Project struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	SourceLang string    `json:"source_lang"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName returns the TS file name of the project's table for locale.
func (p *Project) TableName(locale string) string {
	return p.Name + "_" + locale + ".ts"
}

// ProjectLocale is a target language the project is translated into.
type ProjectLocale struct {
	ID        int64     `json:"id"`
	ProjectID int64     `json:"project_id"`
	Locale    string    `json:"locale"`
	CreatedAt time.Time `json:"created_at"`
}
