package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gr8terthings/signup-proxy/internal/entity"
)

type SurveyUseCase struct {
	Records  RecordStore
	Mailer   Mailer
	Failures FailureReporter
	Logger   *log.Logger
	Now      func() time.Time
}

func NewSurveyUseCase(records RecordStore, mailer Mailer, failures FailureReporter, logger *log.Logger) *SurveyUseCase {
	return &SurveyUseCase{
		Records:  records,
		Mailer:   mailer,
		Failures: failures,
		Logger:   logger,
		Now:      time.Now,
	}
}

func (uc *SurveyUseCase) Execute(ctx context.Context, input SurveyInput) (*SurveyOutput, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return nil, ErrMissingEmail
	}
	// response is optional; an empty one still appends a timestamped block
	response := strings.TrimSpace(input.Response)

	record, err := uc.Records.FindByEmail(ctx, email)
	if err != nil {
		return nil, &TechnicalError{Code: "RECORD_LOOKUP_FAILED", Message: "record store lookup failed", Err: err}
	}
	if record == nil {
		return found(false), nil
	}
	if input.CheckOnly {
		return found(true), nil
	}

	patch := &entity.Subscriber{
		WhySubscribe: AppendSurveyResponse(record.WhySubscribe, response, uc.Now()),
	}
	if _, err := uc.Records.Update(ctx, record.ID, patch); err != nil {
		return nil, &TechnicalError{Code: "RECORD_UPDATE_FAILED", Message: "record store update failed", Err: err}
	}
	uc.Logger.Printf("✅ survey response appended to %s", record.ID)

	if uc.Mailer != nil {
		effects := NewSideEffects(uc.Logger, uc.Failures, email)
		effects.AddOperation("survey alert email", entity.FailureAlertEmail, func(ctx context.Context) error {
			subject := fmt.Sprintf("New WhySubscribe response from %s", email)
			text := fmt.Sprintf("The subscriber %s just submitted the following response:\n\n%s", email, response)
			return uc.Mailer.SendAlert(ctx, subject, text)
		})
		effects.Execute(ctx)
	}

	return &SurveyOutput{Status: StatusSubmitted}, nil
}

// AppendSurveyResponse adds a timestamped block after whatever is stored.
// Earlier responses are never touched.
func AppendSurveyResponse(existing, response string, at time.Time) string {
	block := fmt.Sprintf("[%s]\n%s", entity.FormatTimestamp(at), response)
	if strings.TrimSpace(existing) == "" {
		return block
	}
	return existing + "\n\n" + block
}
