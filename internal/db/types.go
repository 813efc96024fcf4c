package db

import (
	"time"

	"github.com/google/uuid"
)

// Run represents a harvest run record
type Run struct {
	ID          uuid.UUID  `json:"id"`
	Source      string     `json:"source"`
	Total       int        `json:"total"`
	Status      string     `json:"status"` // one of the types.RunStatus* values
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// RunRow is one company's recorded outcome within a run
type RunRow struct {
	RunID     uuid.UUID `json:"run_id"`
	Position  int       `json:"position"`
	Company   string    `json:"company"`
	Outcome   string    `json:"outcome"`
	Emails    []string  `json:"emails"`
	Website   string    `json:"website,omitempty"`
	Error     string    `json:"error,omitempty"`
	Cached    bool      `json:"cached"`
	CreatedAt time.Time `json:"created_at"`
}
