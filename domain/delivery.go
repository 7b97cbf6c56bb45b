package domain

import (
	"time"

	"github.com/google/uuid"
)

// Delivery is the outcome of one webhook POST.
type Delivery struct {
	ID         uuid.UUID
	EventID    string
	URL        string
	StatusCode int
	Err        error
	Duration   time.Duration
	At         time.Time
}

func (d Delivery) Succeeded() bool {
	return d.Err == nil
}

type JournalKind string

const (
	JournalRegister   JournalKind = "register"
	JournalUnregister JournalKind = "unregister"
	JournalDelivery   JournalKind = "delivery"
	JournalSend       JournalKind = "send"
)

// JournalEntry is one line of the audit journal.
type JournalEntry struct {
	ID     uuid.UUID   `json:"id"`
	Kind   JournalKind `json:"kind"`
	URL    string      `json:"url,omitempty"`
	Target string      `json:"target,omitempty"`
	Status string      `json:"status"`
	Error  string      `json:"error,omitempty"`
	At     time.Time   `json:"at"`
}

const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)
