package reconcile_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"vatwatch/internal/audit"
	"vatwatch/internal/reconcile"
	"vatwatch/internal/reconcile/mocks"
	"vatwatch/internal/reconcile/models"
	dErrors "vatwatch/pkg/domain-errors"
)

func ptr[T any](v T) *T { return &v }

func matchingRecord(subject models.BillingSubject) models.RegistryRecord {
	return models.RegistryRecord{
		Valid:       ptr(true),
		Name:        ptr(subject.Name),
		Address:     ptr(subject.Address()),
		CountryCode: ptr(subject.CountryCode),
		VATNumber:   ptr(subject.VATNumberBody()),
	}
}

func testSubject() models.BillingSubject {
	return models.BillingSubject{
		ID:          "42",
		Name:        "Example Gmbh",
		Street:      "Hauptplatz 1",
		PostalCode:  "8010",
		City:        "Graz",
		CountryCode: "AT",
		VATNumber:   "AT U12345678",
	}
}

type serviceMocks struct {
	billing  *mocks.MockBillingClient
	registry *mocks.MockRegistryClient
	notifier *mocks.MockNotificationClient
}

func newService(t *testing.T, opts ...reconcile.Option) (*reconcile.Service, serviceMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := serviceMocks{
		billing:  mocks.NewMockBillingClient(ctrl),
		registry: mocks.NewMockRegistryClient(ctrl),
		notifier: mocks.NewMockNotificationClient(ctrl),
	}
	svc, err := reconcile.New(m.billing, m.registry, m.notifier, opts...)
	require.NoError(t, err)
	return svc, m
}

func TestNewRequiresClients(t *testing.T) {
	ctrl := gomock.NewController(t)
	billing := mocks.NewMockBillingClient(ctrl)
	registry := mocks.NewMockRegistryClient(ctrl)
	notifier := mocks.NewMockNotificationClient(ctrl)

	_, err := reconcile.New(nil, registry, notifier)
	require.Error(t, err)
	_, err = reconcile.New(billing, nil, notifier)
	require.Error(t, err)
	_, err = reconcile.New(billing, registry, nil)
	require.Error(t, err)
}

func TestReconcileRejectsEmptyReference(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Reconcile(context.Background(), models.SubjectRef{})

	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestReconcileCleanRunStaysQuiet(t *testing.T) {
	svc, m := newService(t)
	subject := testSubject()
	ref := models.SubjectRef{ClientID: "42"}

	m.billing.EXPECT().FetchSubject(gomock.Any(), ref).Return(subject, nil)
	m.registry.EXPECT().CheckVAT(gomock.Any(), "AT", "U12345678").Return(matchingRecord(subject), nil)

	outcome, err := svc.Reconcile(context.Background(), ref)

	require.NoError(t, err)
	assert.False(t, outcome.HasError)
	assert.False(t, outcome.Notified)
	assert.False(t, outcome.Degraded)
	assert.NotEmpty(t, outcome.Report)
}

func TestReconcileCleanRunNotifiesWhenConfigured(t *testing.T) {
	svc, m := newService(t, reconcile.WithNotifyOnSuccess(true))
	subject := testSubject()
	ref := models.SubjectRef{ClientID: "42"}

	m.billing.EXPECT().FetchSubject(gomock.Any(), ref).Return(subject, nil)
	m.registry.EXPECT().CheckVAT(gomock.Any(), "AT", "U12345678").Return(matchingRecord(subject), nil)
	m.notifier.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil)

	outcome, err := svc.Reconcile(context.Background(), ref)

	require.NoError(t, err)
	assert.False(t, outcome.HasError)
	assert.True(t, outcome.Notified)
}

func TestReconcileMismatchNotifies(t *testing.T) {
	svc, m := newService(t)
	subject := testSubject()
	ref := models.SubjectRef{ClientID: "42", ContactID: "7"}

	record := matchingRecord(subject)
	record.Name = ptr("Other Company Gmbh")

	m.billing.EXPECT().FetchSubject(gomock.Any(), ref).Return(subject, nil)
	m.registry.EXPECT().CheckVAT(gomock.Any(), "AT", "U12345678").Return(record, nil)

	var delivered string
	m.notifier.EXPECT().Send(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, text string) error {
			delivered = text
			return nil
		})

	outcome, err := svc.Reconcile(context.Background(), ref)

	require.NoError(t, err)
	assert.True(t, outcome.HasError)
	assert.True(t, outcome.Notified)
	assert.Contains(t, delivered, "Registry information does not match")
	assert.Contains(t, delivered, "Incorrect company name")
}

func TestReconcileStripsVATCountryPrefix(t *testing.T) {
	svc, m := newService(t)
	subject := testSubject()
	subject.VATNumber = "DE 123 456 789"
	subject.CountryCode = "DE"
	ref := models.SubjectRef{ClientID: "42"}

	m.billing.EXPECT().FetchSubject(gomock.Any(), ref).Return(subject, nil)
	m.registry.EXPECT().CheckVAT(gomock.Any(), "DE", "123456789").Return(matchingRecord(subject), nil)

	_, err := svc.Reconcile(context.Background(), ref)
	require.NoError(t, err)
}

func TestReconcileShortVATNumberQueriesEmptyBody(t *testing.T) {
	svc, m := newService(t)
	subject := testSubject()
	subject.VATNumber = "A"
	ref := models.SubjectRef{ClientID: "42"}

	record := matchingRecord(subject)
	record.VATNumber = ptr("U12345678")

	m.billing.EXPECT().FetchSubject(gomock.Any(), ref).Return(subject, nil)
	m.registry.EXPECT().CheckVAT(gomock.Any(), "AT", "").Return(record, nil)
	m.notifier.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil)

	outcome, err := svc.Reconcile(context.Background(), ref)

	require.NoError(t, err)
	// A garbled VAT number is a reportable mismatch, never a failed run.
	assert.True(t, outcome.HasError)
	assert.False(t, outcome.Degraded)
	assert.Contains(t, outcome.Report, "Incorrect vat-number")
}

func TestReconcileBillingFailureDegrades(t *testing.T) {
	svc, m := newService(t)
	ref := models.SubjectRef{ClientID: "42"}

	m.billing.EXPECT().FetchSubject(gomock.Any(), ref).
		Return(models.BillingSubject{}, dErrors.New(dErrors.CodeNotFound, "client 42 not found"))

	var delivered string
	m.notifier.EXPECT().Send(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, text string) error {
			delivered = text
			return nil
		})

	outcome, err := svc.Reconcile(context.Background(), ref)

	require.NoError(t, err)
	assert.True(t, outcome.Degraded)
	assert.Empty(t, outcome.Report)
	assert.True(t, strings.HasPrefix(delivered, "Error while checking VAT ID (42):"), delivered)
	assert.Contains(t, delivered, "client 42 not found")
}

func TestReconcileRegistryFailureDegrades(t *testing.T) {
	svc, m := newService(t)
	subject := testSubject()
	ref := models.SubjectRef{ClientID: "42"}

	m.billing.EXPECT().FetchSubject(gomock.Any(), ref).Return(subject, nil)
	m.registry.EXPECT().CheckVAT(gomock.Any(), "AT", "U12345678").
		Return(models.RegistryRecord{}, dErrors.New(dErrors.CodeUnavailable, "registry timeout"))
	m.notifier.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil)

	outcome, err := svc.Reconcile(context.Background(), ref)

	require.NoError(t, err)
	assert.True(t, outcome.Degraded)
}

func TestReconcileNotificationFailureDoesNotFailRun(t *testing.T) {
	svc, m := newService(t)
	subject := testSubject()
	ref := models.SubjectRef{ClientID: "42"}

	record := matchingRecord(subject)
	record.VATNumber = ptr("U99999999")

	m.billing.EXPECT().FetchSubject(gomock.Any(), ref).Return(subject, nil)
	m.registry.EXPECT().CheckVAT(gomock.Any(), "AT", "U12345678").Return(record, nil)
	m.notifier.EXPECT().Send(gomock.Any(), gomock.Any()).
		Return(dErrors.New(dErrors.CodeUnavailable, "channel unreachable"))

	outcome, err := svc.Reconcile(context.Background(), ref)

	require.NoError(t, err)
	assert.True(t, outcome.HasError)
	assert.False(t, outcome.Notified)
	assert.False(t, outcome.Degraded)
	assert.NotEmpty(t, outcome.Report)
}

func TestReconcileEmitsAuditEvents(t *testing.T) {
	store := audit.NewMemoryStore()
	publisher := audit.NewPublisher(store)
	t.Cleanup(publisher.Close)

	svc, m := newService(t, reconcile.WithAuditPublisher(publisher))
	subject := testSubject()
	ref := models.SubjectRef{ClientID: "42", ContactID: "7"}

	m.billing.EXPECT().FetchSubject(gomock.Any(), ref).Return(subject, nil)
	m.registry.EXPECT().CheckVAT(gomock.Any(), "AT", "U12345678").Return(matchingRecord(subject), nil)

	_, err := svc.Reconcile(context.Background(), ref)
	require.NoError(t, err)

	events := store.Events()
	require.Len(t, events, 1)
	assert.Equal(t, audit.ActionReconciliationCompleted, events[0].Action)
	assert.Equal(t, "42 - 7", events[0].Subject)
	assert.Equal(t, "U12345678", events[0].VATNumber)
}
