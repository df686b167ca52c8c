package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gr8terthings/signup-proxy/internal/entity"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	args := m.Called(ctx, exchange, key, mandatory, immediate, msg)
	return args.Error(0)
}

type MockFailureStore struct {
	mock.Mock
}

func (m *MockFailureStore) Save(ctx context.Context, f entity.SideEffectFailure) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func TestReportFailurePublishesPersistentJSON(t *testing.T) {
	ctx := context.Background()
	pub := new(MockPublisher)
	pub.On("PublishWithContext", ctx, ExchangeName, RoutingKey, false, false, mock.Anything).Return(nil)

	f := entity.SideEffectFailure{
		ID:         "7d3c1d0e-0000-4000-8000-000000000001",
		Kind:       entity.FailureListMirror,
		Email:      "a@x.com",
		Error:      "emailoctopus: status 500",
		OccurredAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, (&RabbitMQProducer{Ch: pub}).ReportFailure(ctx, f))

	msg := pub.Calls[0].Arguments.Get(5).(amqp.Publishing)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, f.ID, msg.MessageId)
	assert.Equal(t, "list_mirror", msg.Type)

	var decoded entity.SideEffectFailure
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, f, decoded)
}

func TestReportFailurePublishError(t *testing.T) {
	pub := new(MockPublisher)
	pub.On("PublishWithContext", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("channel closed"))

	err := (&RabbitMQProducer{Ch: pub}).ReportFailure(context.Background(), entity.NewSideEffectFailure(entity.FailureAlertEmail, "a@x.com", nil))
	assert.ErrorContains(t, err, "channel closed")
}

func newTestWorker(store *MockFailureStore) (*Worker, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewWorker(nil, store, log.New(&buf, "", 0)), &buf
}

func TestWorkerHandleSavesFailure(t *testing.T) {
	ctx := context.Background()
	store := new(MockFailureStore)
	store.On("Save", ctx, mock.MatchedBy(func(f entity.SideEffectFailure) bool {
		return f.ID == "id-1" && f.Kind == entity.FailureOptInEmail
	})).Return(nil)

	w, buf := newTestWorker(store)
	require.NoError(t, w.handle(ctx, []byte(`{"id":"id-1","kind":"optin_email","email":"a@x.com","error":"boom","occurred_at":"2025-01-01T00:00:00Z"}`)))
	store.AssertExpectations(t)
	assert.Contains(t, buf.String(), "recorded optin_email failure for a@x.com")
}

func TestWorkerHandleRejectsBadMessages(t *testing.T) {
	store := new(MockFailureStore)
	w, _ := newTestWorker(store)

	assert.Error(t, w.handle(context.Background(), []byte("not json")))
	assert.Error(t, w.handle(context.Background(), []byte(`{"email":"a@x.com"}`)))
	store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestWorkerHandleStoreError(t *testing.T) {
	store := new(MockFailureStore)
	store.On("Save", mock.Anything, mock.Anything).Return(errors.New("db down"))
	w, _ := newTestWorker(store)

	err := w.handle(context.Background(), []byte(`{"id":"id-2","kind":"alert_email"}`))
	assert.ErrorContains(t, err, "db down")
}
