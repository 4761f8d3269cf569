// Package domain describes notification intents recorded alongside the state
// change they announce.
package domain

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

const KindApprovalNotify = "approval.notify"

type Entry struct {
	ID            string    `firestore:"-" json:"id"`
	Kind          string    `firestore:"kind" json:"kind"`
	DocType       string    `firestore:"docType" json:"docType"`
	DocID         string    `firestore:"docId" json:"docId"`
	ProjectID     string    `firestore:"projectId" json:"projectId"`
	Status        Status    `firestore:"status" json:"status"`
	Attempts      int       `firestore:"attempts" json:"attempts"`
	NextAttemptAt time.Time `firestore:"nextAttemptAt" json:"nextAttemptAt"`
	LastError     string    `firestore:"lastError" json:"lastError,omitempty"`
	RetryKey      string    `firestore:"retryKey" json:"retryKey"`
	CreatedAt     time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time `firestore:"updatedAt" json:"updatedAt"`
}

// NewApprovalEntry returns a pending entry that is due immediately. The retry
// key stays fixed across attempts so the provider can drop duplicates.
func NewApprovalEntry(docType, docID, projectID string, now time.Time) *Entry {
	return &Entry{
		ID:            uuid.NewString(),
		Kind:          KindApprovalNotify,
		DocType:       docType,
		DocID:         docID,
		ProjectID:     projectID,
		Status:        StatusPending,
		NextAttemptAt: now,
		RetryKey:      uuid.NewString(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Backoff returns the delay before attempt number attempts+1:
// base * 2^(attempts-1), capped at max.
func Backoff(attempts int, base, max time.Duration) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	d := base
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= max {
			return max
		}
	}
	if d > max {
		return max
	}
	return d
}
