package domain

import "time"

// Job is one fill run over a file or a set of units, with its
// JSON-encoded start parameters in ParamsRaw.
type Job struct {
	ID         int64     `json:"id"`
	Type       string    `json:"type"`   // translate_file (whole file) or translate_units (picked units)
	Status     string    `json:"status"` // queued, running, done, failed, canceled
	ProjectID  *int64    `json:"project_id"`
	ProviderID *int64    `json:"provider_id"`
	ParamsRaw  string    `json:"params_json"`
	Progress   int       `json:"progress"`
	Total      int       `json:"total"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// JobItem tracks one (unit, locale) pair of a job.
type JobItem struct {
	ID        int64     `json:"id"`
	JobID     int64     `json:"job_id"`
	UnitID    *int64    `json:"unit_id"`
	Locale    *string   `json:"locale"`
	Status    string    `json:"status"`
	Error     string    `json:"error"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// JobLog is a line of the job's log, also emitted as a job.log event.
type JobLog struct {
	ID      int64     `json:"id"`
	JobID   int64     `json:"job_id"`
	Time    time.Time `json:"ts"`
	Level   string    `json:"level"`
	Message string    `json:"message"`
}
