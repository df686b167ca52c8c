package usecase_test

import (
	"bytes"
	"context"
	"log"

	"github.com/stretchr/testify/mock"

	"github.com/gr8terthings/signup-proxy/internal/entity"
)

type MockRecordStore struct {
	mock.Mock
}

func (m *MockRecordStore) FindByEmail(ctx context.Context, email string) (*entity.Subscriber, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Subscriber), args.Error(1)
}

func (m *MockRecordStore) Create(ctx context.Context, s *entity.Subscriber) (*entity.Subscriber, error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Subscriber), args.Error(1)
}

func (m *MockRecordStore) Update(ctx context.Context, id string, patch *entity.Subscriber) (*entity.Subscriber, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Subscriber), args.Error(1)
}

type MockListStore struct {
	mock.Mock
}

func (m *MockListStore) FindContact(ctx context.Context, email string) (*entity.ListContact, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ListContact), args.Error(1)
}

func (m *MockListStore) CreateContact(ctx context.Context, email string, fields map[string]string) error {
	args := m.Called(ctx, email, fields)
	return args.Error(0)
}

func (m *MockListStore) UpdateContact(ctx context.Context, id string, fields map[string]string) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendOptIn(ctx context.Context, to, firstName string) error {
	args := m.Called(ctx, to, firstName)
	return args.Error(0)
}

func (m *MockMailer) SendAlert(ctx context.Context, subject, text string) error {
	args := m.Called(ctx, subject, text)
	return args.Error(0)
}

type MockFailureReporter struct {
	mock.Mock
}

func (m *MockFailureReporter) ReportFailure(ctx context.Context, f entity.SideEffectFailure) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func testLogger() (*log.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return log.New(&buf, "", 0), &buf
}
