package usecase

import (
	"context"
	"log"

	"github.com/gr8terthings/signup-proxy/internal/entity"
)

// SideEffects runs best-effort calls in order after the record-store write.
// A failing call is logged and reported, never rolled back, and never stops
// the calls after it.
type SideEffects struct {
	logger     *log.Logger
	reporter   FailureReporter
	email      string
	operations []Operation
}

type Operation struct {
	Name string
	Kind entity.FailureKind
	Fn   func(context.Context) error
}

func NewSideEffects(logger *log.Logger, reporter FailureReporter, email string) *SideEffects {
	return &SideEffects{
		logger:   logger,
		reporter: reporter,
		email:    email,
	}
}

func (s *SideEffects) AddOperation(name string, kind entity.FailureKind, fn func(context.Context) error) {
	s.operations = append(s.operations, Operation{Name: name, Kind: kind, Fn: fn})
}

// Execute returns the number of operations that failed.
func (s *SideEffects) Execute(ctx context.Context) int {
	failed := 0
	for _, op := range s.operations {
		if err := op.Fn(ctx); err != nil {
			failed++
			s.logger.Printf("⚠️ %s failed for %s: %v", op.Name, s.email, err)
			s.report(ctx, entity.NewSideEffectFailure(op.Kind, s.email, err))
		}
	}
	return failed
}

func (s *SideEffects) report(ctx context.Context, f entity.SideEffectFailure) {
	if s.reporter == nil {
		return
	}
	if err := s.reporter.ReportFailure(ctx, f); err != nil {
		s.logger.Printf("❌ could not report %s failure %s: %v", f.Kind, f.ID, err)
	}
}
