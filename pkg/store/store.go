// Package store provides storage for evaluation history records.
package store

import (
	"time"

	"github.com/google/uuid"
)

// Record is one completed evaluation: the source text and either its
// result or its error, with any log lines emitted along the way.
type Record struct {
	ID         string    `json:"id"`
	Session    string    `json:"session,omitempty"`
	Expression string    `json:"expression"`
	Result     string    `json:"result,omitempty"`
	Type       string    `json:"type,omitempty"`
	Error      string    `json:"error,omitempty"`
	Logs       []string  `json:"logs,omitempty"`
	CreateTime time.Time `json:"createTime"`
}

// NewRecord creates a record with a fresh ID and timestamp. The result
// fields are filled in by the caller.
func NewRecord(session, expression string) *Record {
	return &Record{
		ID:         uuid.NewString(),
		Session:    session,
		Expression: expression,
		CreateTime: time.Now().UTC(),
	}
}

// Store is the interface for history persistence.
type Store interface {
	// Add appends a record to the history.
	Add(rec *Record) error
	// History returns records, newest first, optionally filtered by
	// session. A limit <= 0 means no limit.
	History(session string, limit int) ([]*Record, error)
	// Close releases resources.
	Close() error
}
