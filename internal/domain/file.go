package domain

import "time"

// File is one imported translation table.
type File struct {
	ID        int64     `json:"id"`
	ProjectID int64     `json:"project_id"`
	Path      string    `json:"path"`
	Format    string    `json:"format"`
	Locale    string    `json:"locale"`
	Hash      string    `json:"hash"`
	CreatedAt time.Time `json:"created_at"`
}

// Unit is the source side of a message, shared by every locale of a file.
type Unit struct {
	ID           int64      `json:"id"`
	FileID       int64      `json:"file_id"`
	Key          string     `json:"key"`
	Context      string     `json:"context"`
	MessageID    string     `json:"message_id"`
	SourceText   string     `json:"source_text"`
	OldSource    string     `json:"old_source"`
	Comment      string     `json:"comment"`
	OldComment   string     `json:"old_comment"`
	ExtraComment string     `json:"extra_comment"`
	Numerus      bool       `json:"numerus"`
	Locations    []Location `json:"locations"`
	Position     int        `json:"position"`
	CreatedAt    time.Time  `json:"created_at"`
}

// UnitFromMessage splits the source side off m.
func UnitFromMessage(fileID int64, position int, m *Message) *Unit {
	return &Unit{
		FileID:       fileID,
		Key:          m.Key(),
		Context:      m.Context,
		MessageID:    m.ID,
		SourceText:   m.Source,
		OldSource:    m.OldSource,
		Comment:      m.Comment,
		OldComment:   m.OldComment,
		ExtraComment: m.ExtraComment,
		Numerus:      m.Numerus,
		Locations:    m.Locations,
		Position:     position,
	}
}

// Message joins u with its translation t, which may be nil.
func (u *Unit) Message(t *Translation) *Message {
	m := &Message{
		Context:      u.Context,
		ID:           u.MessageID,
		Source:       u.SourceText,
		OldSource:    u.OldSource,
		Comment:      u.Comment,
		OldComment:   u.OldComment,
		ExtraComment: u.ExtraComment,
		Numerus:      u.Numerus,
		Locations:    u.Locations,
		Status:       StatusUnfinished,
	}
	if t != nil {
		m.Translation = t.Text
		m.NumerusForms = t.NumerusForms
		m.TranslatorComment = t.TranslatorComment
		m.Status = t.Status
	}
	return m
}
