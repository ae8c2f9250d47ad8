// Package ports declares the collaborator contracts the reconciliation
// pipeline consumes. Concrete clients live in internal/billing,
// internal/vies, and internal/notify and are injected at wiring time.
package ports

//go:generate mockgen -source=ports.go -destination=../mocks/mocks.go -package=mocks

import (
	"context"

	"vatwatch/internal/reconcile/models"
)

// BillingClient fetches the billing system's record for a subject.
// Implementations return a domain-errors CodeNotFound error when the billing
// service has no such subject and CodeUnavailable on transport failure.
type BillingClient interface {
	FetchSubject(ctx context.Context, ref models.SubjectRef) (models.BillingSubject, error)
}

// RegistryClient submits a validation query to the government VAT registry.
// vatNumber is the country-prefix-stripped body. Implementations return a
// CodeUnavailable error on transport failure; an unknown or invalid subject
// is a normal RegistryRecord, not an error.
type RegistryClient interface {
	CheckVAT(ctx context.Context, countryCode, vatNumber string) (models.RegistryRecord, error)
}

// NotificationClient delivers a textual report to the notification channel.
type NotificationClient interface {
	Send(ctx context.Context, text string) error
}
