package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gr8terthings/signup-proxy/internal/entity"
	"github.com/gr8terthings/signup-proxy/internal/usecase"
)

var fixedNow = time.Date(2025, 3, 14, 9, 26, 53, 589000000, time.UTC)

func newSubscribeUseCase(records usecase.RecordStore, list usecase.ListStore, mailer usecase.Mailer, failures usecase.FailureReporter) *usecase.SubscribeUseCase {
	logger, _ := testLogger()
	uc := usecase.NewSubscribeUseCase(records, list, mailer, failures, logger)
	uc.Now = func() time.Time { return fixedNow }
	return uc
}

func TestSubscribeCreatesNewSubscriber(t *testing.T) {
	ctx := context.Background()
	records := new(MockRecordStore)
	list := new(MockListStore)
	mailer := new(MockMailer)
	failures := new(MockFailureReporter)

	records.On("FindByEmail", ctx, "a@x.com").Return(nil, nil)
	records.On("Create", ctx, mock.Anything).Return(&entity.Subscriber{ID: "rec1"}, nil)
	mailer.On("SendOptIn", ctx, "a@x.com", "A").Return(nil)
	list.On("FindContact", ctx, "a@x.com").Return(nil, nil)
	list.On("CreateContact", ctx, "a@x.com", mock.Anything).Return(nil)

	out, err := newSubscribeUseCase(records, list, mailer, failures).Execute(ctx, usecase.SubscribeInput{
		FirstName:        "A",
		EmailAddress:     "a@x.com",
		CampaignInterest: "Pivot Year, VIP",
	})
	require.NoError(t, err)
	assert.Equal(t, usecase.StatusCreated, out.Status)

	records.AssertNumberOfCalls(t, "Create", 1)
	records.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)

	created := records.Calls[1].Arguments.Get(1).(*entity.Subscriber)
	assert.Equal(t, []string{"Pivot Year", "VIP"}, created.CampaignInterest)
	assert.Equal(t, "A", created.FirstName)
	assert.Equal(t, entity.DefaultSource, created.Source)
	assert.Equal(t, entity.StatusPending, created.Status)
	assert.Equal(t, "2025-03-14T09:26:53.589Z", created.SubscribedDate)

	fields := list.Calls[1].Arguments.Get(2).(map[string]string)
	assert.Equal(t, map[string]string{"FirstName": "A", "PivotYear": "yes"}, fields)

	mailer.AssertExpectations(t)
	failures.AssertNotCalled(t, "ReportFailure", mock.Anything, mock.Anything)
}

func TestSubscribeKeepsExplicitSource(t *testing.T) {
	ctx := context.Background()
	records := new(MockRecordStore)

	records.On("FindByEmail", ctx, "b@x.com").Return(nil, nil)
	records.On("Create", ctx, mock.MatchedBy(func(s *entity.Subscriber) bool {
		return s.Source == "instagram"
	})).Return(&entity.Subscriber{ID: "rec2"}, nil)

	uc := newSubscribeUseCase(records, nil, nil, nil)

	out, err := uc.Execute(ctx, usecase.SubscribeInput{EmailAddress: "b@x.com", Source: "instagram"})
	require.NoError(t, err)
	assert.Equal(t, usecase.StatusCreated, out.Status)
	records.AssertExpectations(t)
}

func TestSubscribeUpdatesOnlyNonEmptyFields(t *testing.T) {
	ctx := context.Background()
	records := new(MockRecordStore)
	list := new(MockListStore)

	existing := &entity.Subscriber{ID: "rec9", FirstName: "Old", LastName: "Name", Email: "c@x.com"}
	records.On("FindByEmail", ctx, "c@x.com").Return(existing, nil)
	records.On("Update", ctx, "rec9", mock.Anything).Return(existing, nil)
	list.On("FindContact", ctx, "c@x.com").Return(&entity.ListContact{ID: "eo-1"}, nil)
	list.On("UpdateContact", ctx, "eo-1", mock.Anything).Return(nil)

	uc := newSubscribeUseCase(records, list, nil, nil)

	out, err := uc.Execute(ctx, usecase.SubscribeInput{
		FirstName:          "New",
		EmailAddress:       "  c@x.com ",
		DeliveryPreference: "Text",
	})
	require.NoError(t, err)
	assert.Equal(t, usecase.StatusUpdated, out.Status)

	patch := records.Calls[1].Arguments.Get(2).(*entity.Subscriber)
	assert.Equal(t, "New", patch.FirstName)
	assert.Empty(t, patch.LastName)
	assert.Empty(t, patch.Phone)
	assert.Empty(t, patch.Status)
	assert.Empty(t, patch.Source)
	assert.Empty(t, patch.SubscribedDate)
	assert.Empty(t, patch.CampaignInterest)
	assert.Equal(t, entity.DeliveryText, patch.DeliveryPreference)

	fields := list.Calls[1].Arguments.Get(2).(map[string]string)
	assert.Equal(t, map[string]string{"FirstName": "New", "DeliveryPreference": "Text"}, fields)
	list.AssertNotCalled(t, "CreateContact", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubscribeEmailOnlyResubmitSkipsUpdate(t *testing.T) {
	ctx := context.Background()
	records := new(MockRecordStore)
	list := new(MockListStore)

	records.On("FindByEmail", ctx, "c@x.com").Return(&entity.Subscriber{ID: "rec9", Email: "c@x.com"}, nil)
	list.On("FindContact", ctx, "c@x.com").Return(&entity.ListContact{ID: "eo-1"}, nil)
	list.On("UpdateContact", ctx, "eo-1", map[string]string{}).Return(nil)

	out, err := newSubscribeUseCase(records, list, nil, nil).Execute(ctx, usecase.SubscribeInput{
		EmailAddress:       "c@x.com",
		DeliveryPreference: "Carrier Pigeon",
	})
	require.NoError(t, err)
	assert.Equal(t, usecase.StatusUpdated, out.Status)

	records.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	list.AssertExpectations(t)
}

func TestSubscribeDropsInvalidDeliveryPreference(t *testing.T) {
	ctx := context.Background()
	records := new(MockRecordStore)

	records.On("FindByEmail", ctx, "d@x.com").Return(nil, nil)
	records.On("Create", ctx, mock.Anything).Return(&entity.Subscriber{ID: "rec3"}, nil)

	uc := newSubscribeUseCase(records, nil, nil, nil)

	_, err := uc.Execute(ctx, usecase.SubscribeInput{EmailAddress: "d@x.com", DeliveryPreference: "Carrier Pigeon"})
	require.NoError(t, err)

	created := records.Calls[1].Arguments.Get(1).(*entity.Subscriber)
	assert.Empty(t, created.DeliveryPreference)
}

func TestSubscribeMirrorFailureStillSucceeds(t *testing.T) {
	ctx := context.Background()
	records := new(MockRecordStore)
	list := new(MockListStore)
	failures := new(MockFailureReporter)

	records.On("FindByEmail", ctx, "e@x.com").Return(&entity.Subscriber{ID: "rec4"}, nil)
	records.On("Update", ctx, "rec4", mock.Anything).Return(&entity.Subscriber{ID: "rec4"}, nil)
	list.On("FindContact", ctx, "e@x.com").Return(nil, errors.New("connection reset"))
	failures.On("ReportFailure", ctx, mock.MatchedBy(func(f entity.SideEffectFailure) bool {
		return f.Kind == entity.FailureListMirror && f.Email == "e@x.com" && f.Error == "connection reset"
	})).Return(nil)

	uc := newSubscribeUseCase(records, list, nil, failures)

	out, err := uc.Execute(ctx, usecase.SubscribeInput{EmailAddress: "e@x.com", LastName: "E"})
	require.NoError(t, err)
	assert.Equal(t, usecase.StatusUpdated, out.Status)
	failures.AssertExpectations(t)
}

func TestSubscribeOptInFailureDoesNotFailRequest(t *testing.T) {
	ctx := context.Background()
	records := new(MockRecordStore)
	list := new(MockListStore)
	mailer := new(MockMailer)
	failures := new(MockFailureReporter)

	records.On("FindByEmail", ctx, "f@x.com").Return(nil, nil)
	records.On("Create", ctx, mock.Anything).Return(&entity.Subscriber{ID: "rec5"}, nil)
	mailer.On("SendOptIn", ctx, "f@x.com", "F").Return(errors.New("422 invalid template"))
	failures.On("ReportFailure", ctx, mock.Anything).Return(errors.New("broker down"))
	list.On("FindContact", ctx, "f@x.com").Return(nil, nil)
	list.On("CreateContact", ctx, "f@x.com", mock.Anything).Return(nil)

	out, err := newSubscribeUseCase(records, list, mailer, failures).Execute(ctx, usecase.SubscribeInput{
		FirstName:    "F",
		EmailAddress: "f@x.com",
	})
	require.NoError(t, err)
	assert.Equal(t, usecase.StatusCreated, out.Status)

	// the mirror still runs after the mail failure
	list.AssertExpectations(t)
	failures.AssertNumberOfCalls(t, "ReportFailure", 1)
}

func TestSubscribeRecordStoreFailure(t *testing.T) {
	ctx := context.Background()
	records := new(MockRecordStore)
	list := new(MockListStore)

	records.On("FindByEmail", ctx, "g@x.com").Return(nil, errors.New("airtable 503"))

	uc := newSubscribeUseCase(records, list, nil, nil)

	out, err := uc.Execute(ctx, usecase.SubscribeInput{EmailAddress: "g@x.com"})
	assert.Nil(t, out)
	assert.True(t, usecase.IsTechnicalError(err))
	list.AssertNotCalled(t, "FindContact", mock.Anything, mock.Anything)
}

func TestSubscribeCreateFailure(t *testing.T) {
	ctx := context.Background()
	records := new(MockRecordStore)

	records.On("FindByEmail", ctx, "h@x.com").Return(nil, nil)
	records.On("Create", ctx, mock.Anything).Return(nil, errors.New("422 unknown field"))

	uc := newSubscribeUseCase(records, nil, nil, nil)

	_, err := uc.Execute(ctx, usecase.SubscribeInput{EmailAddress: "h@x.com"})
	assert.True(t, usecase.IsTechnicalError(err))
}

func TestSubscribeMissingEmail(t *testing.T) {
	records := new(MockRecordStore)
	uc := newSubscribeUseCase(records, nil, nil, nil)

	_, err := uc.Execute(context.Background(), usecase.SubscribeInput{FirstName: "NoMail", EmailAddress: "   "})
	assert.True(t, usecase.IsDomainError(err))
	records.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
}

func TestSubscribePivotYearFlagRequiresExactTag(t *testing.T) {
	tests := []struct {
		name     string
		interest string
		want     bool
	}{
		{"exact", "Pivot Year", true},
		{"padded", "  Pivot Year  ,VIP", true},
		{"lowercase", "pivot year", false},
		{"other", "VIP, Newsletter", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			records := new(MockRecordStore)
			list := new(MockListStore)

			records.On("FindByEmail", ctx, "p@x.com").Return(nil, nil)
			records.On("Create", ctx, mock.Anything).Return(&entity.Subscriber{ID: "recP"}, nil)
			list.On("FindContact", ctx, "p@x.com").Return(nil, nil)
			list.On("CreateContact", ctx, "p@x.com", mock.Anything).Return(nil)

			uc := newSubscribeUseCase(records, list, nil, nil)

			_, err := uc.Execute(ctx, usecase.SubscribeInput{EmailAddress: "p@x.com", CampaignInterest: tt.interest})
			require.NoError(t, err)

			fields := list.Calls[1].Arguments.Get(2).(map[string]string)
			flag, ok := fields["PivotYear"]
			assert.Equal(t, tt.want, ok)
			if tt.want {
				assert.Equal(t, "yes", flag)
			}
		})
	}
}
