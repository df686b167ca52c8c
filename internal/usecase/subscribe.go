package usecase

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gr8terthings/signup-proxy/internal/entity"
)

type SubscribeUseCase struct {
	Records  RecordStore
	List     ListStore
	Mailer   Mailer
	Failures FailureReporter
	Logger   *log.Logger
	Now      func() time.Time
}

// List, mailer and failures may be nil; the matching side effect is skipped.
func NewSubscribeUseCase(
	records RecordStore,
	list ListStore,
	mailer Mailer,
	failures FailureReporter,
	logger *log.Logger,
) *SubscribeUseCase {
	return &SubscribeUseCase{
		Records:  records,
		List:     list,
		Mailer:   mailer,
		Failures: failures,
		Logger:   logger,
		Now:      time.Now,
	}
}

func (uc *SubscribeUseCase) Execute(ctx context.Context, input SubscribeInput) (*SubscribeOutput, error) {
	incoming := normalizeSubscribeInput(input)
	if incoming.Email == "" {
		return nil, ErrMissingEmail
	}

	existing, err := uc.Records.FindByEmail(ctx, incoming.Email)
	if err != nil {
		return nil, &TechnicalError{Code: "RECORD_LOOKUP_FAILED", Message: "record store lookup failed", Err: err}
	}

	effects := NewSideEffects(uc.Logger, uc.Failures, incoming.Email)
	status := StatusUpdated

	if existing == nil {
		status = StatusCreated

		record := *incoming
		record.SubscribedDate = entity.FormatTimestamp(uc.Now())
		record.Source = strings.TrimSpace(input.Source)
		if record.Source == "" {
			record.Source = entity.DefaultSource
		}
		record.Status = entity.StatusPending

		created, err := uc.Records.Create(ctx, &record)
		if err != nil {
			return nil, &TechnicalError{Code: "RECORD_CREATE_FAILED", Message: "record store create failed", Err: err}
		}
		uc.Logger.Printf("✅ subscriber created: %s (%s)", created.ID, incoming.Email)

		if uc.Mailer != nil {
			effects.AddOperation("double opt-in email", entity.FailureOptInEmail, func(ctx context.Context) error {
				return uc.Mailer.SendOptIn(ctx, incoming.Email, incoming.FirstName)
			})
		}
	} else if incoming.IsEmptyUpdate() {
		uc.Logger.Printf("subscriber %s unchanged, nothing to patch", existing.ID)
	} else {
		if _, err := uc.Records.Update(ctx, existing.ID, incoming); err != nil {
			return nil, &TechnicalError{Code: "RECORD_UPDATE_FAILED", Message: "record store update failed", Err: err}
		}
		uc.Logger.Printf("✅ subscriber updated: %s (%s)", existing.ID, incoming.Email)
	}

	if uc.List != nil {
		effects.AddOperation("list mirror", entity.FailureListMirror, func(ctx context.Context) error {
			return uc.mirror(ctx, incoming)
		})
	}

	effects.Execute(ctx)

	return &SubscribeOutput{Status: status}, nil
}

func (uc *SubscribeUseCase) mirror(ctx context.Context, s *entity.Subscriber) error {
	fields := entity.MirrorFields(s)

	contact, err := uc.List.FindContact(ctx, s.Email)
	if err != nil {
		return err
	}
	if contact != nil {
		return uc.List.UpdateContact(ctx, contact.ID, fields)
	}
	return uc.List.CreateContact(ctx, s.Email, fields)
}
