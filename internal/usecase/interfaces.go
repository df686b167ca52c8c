package usecase

import (
	"context"

	"github.com/gr8terthings/signup-proxy/internal/entity"
)

// RecordStore is the subscriber source of truth. FindByEmail returns nil, nil
// when nothing matches.
type RecordStore interface {
	FindByEmail(ctx context.Context, email string) (*entity.Subscriber, error)
	Create(ctx context.Context, s *entity.Subscriber) (*entity.Subscriber, error)
	Update(ctx context.Context, id string, patch *entity.Subscriber) (*entity.Subscriber, error)
}

// ListStore is the mailing-list mirror. FindContact returns nil, nil when the
// contact does not exist.
type ListStore interface {
	FindContact(ctx context.Context, email string) (*entity.ListContact, error)
	CreateContact(ctx context.Context, email string, fields map[string]string) error
	UpdateContact(ctx context.Context, id string, fields map[string]string) error
}

type Mailer interface {
	SendOptIn(ctx context.Context, to, firstName string) error
	SendAlert(ctx context.Context, subject, text string) error
}

type FailureReporter interface {
	ReportFailure(ctx context.Context, f entity.SideEffectFailure) error
}
