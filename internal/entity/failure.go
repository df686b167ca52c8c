package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type FailureKind string

const (
	FailureListMirror FailureKind = "list_mirror"
	FailureOptInEmail FailureKind = "optin_email"
	FailureAlertEmail FailureKind = "alert_email"
)

// SideEffectFailure records a best-effort call that failed after the
// record-store write already succeeded.
type SideEffectFailure struct {
	ID         string      `json:"id"`
	Kind       FailureKind `json:"kind"`
	Email      string      `json:"email"`
	Error      string      `json:"error"`
	OccurredAt time.Time   `json:"occurred_at"`
}

func NewSideEffectFailure(kind FailureKind, email string, err error) SideEffectFailure {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return SideEffectFailure{
		ID:         uuid.New().String(),
		Kind:       kind,
		Email:      email,
		Error:      msg,
		OccurredAt: time.Now().UTC(),
	}
}

type FailureRepositoryInterface interface {
	Save(ctx context.Context, f SideEffectFailure) error
}
