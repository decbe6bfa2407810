package domain

import "time"

type Translation struct {
	ID                int64     `json:"id"`
	UnitID            int64     `json:"unit_id"`
	Locale            string    `json:"locale"`
	Text              string    `json:"text"`
	NumerusForms      []string  `json:"numerus_forms"`
	TranslatorComment string    `json:"translator_comment"`
	Status            Status    `json:"status"`
	ProviderID        *int64    `json:"provider_id"`
	Confidence        *float64  `json:"confidence"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TranslationFromMessage splits the target side off m.
func TranslationFromMessage(unitID int64, locale string, m *Message) *Translation {
	status := m.Status
	if status == "" {
		status = StatusFinished
	}
	return &Translation{
		UnitID:            unitID,
		Locale:            locale,
		Text:              m.Translation,
		NumerusForms:      m.NumerusForms,
		TranslatorComment: m.TranslatorComment,
		Status:            status,
	}
}
