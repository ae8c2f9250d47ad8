// Package reconcile drives the end-to-end reconciliation pipeline: fetch the
// billing record, query the government registry, compare, and decide whether
// to notify.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"vatwatch/internal/audit"
	"vatwatch/internal/platform/metrics"
	"vatwatch/internal/reconcile/compare"
	"vatwatch/internal/reconcile/models"
	"vatwatch/internal/reconcile/policy"
	"vatwatch/internal/reconcile/ports"
	dErrors "vatwatch/pkg/domain-errors"
	"vatwatch/pkg/requestcontext"
)

// Outcome is what a reconciliation run produced. Discrepancies are a normal,
// successful outcome; Degraded marks runs where an infrastructure failure was
// converted into a diagnostic notification.
type Outcome struct {
	Report   string
	HasError bool
	Notified bool
	Degraded bool
}

// Service sequences the external calls and owns the failure model for a run.
// The three clients are shared, stateless collaborators; the service keeps no
// mutable state across runs apart from the in-flight deduplication group.
type Service struct {
	billing    ports.BillingClient
	registry   ports.RegistryClient
	notifier   ports.NotificationClient
	comparator *compare.Comparator

	logger          *slog.Logger
	metrics         *metrics.Metrics
	auditPublisher  *audit.Publisher
	notifyOnSuccess bool

	tracer   trace.Tracer
	inflight singleflight.Group
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(publisher *audit.Publisher) Option {
	return func(s *Service) { s.auditPublisher = publisher }
}

// WithNotifyOnSuccess also delivers reports with no discrepancies.
func WithNotifyOnSuccess(enabled bool) Option {
	return func(s *Service) { s.notifyOnSuccess = enabled }
}

func New(billing ports.BillingClient, registry ports.RegistryClient, notifier ports.NotificationClient, opts ...Option) (*Service, error) {
	if billing == nil {
		return nil, fmt.Errorf("billing client is required")
	}
	if registry == nil {
		return nil, fmt.Errorf("registry client is required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notification client is required")
	}

	svc := &Service{
		billing:    billing,
		registry:   registry,
		notifier:   notifier,
		comparator: compare.New(),
		logger:     slog.Default(),
		metrics:    metrics.NewForTest(),
		tracer:     otel.Tracer("vatwatch/reconcile"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Reconcile runs the pipeline for one subject reference. The only error it
// returns is a bad-request for an empty reference; every infrastructure
// failure is absorbed into a degraded-but-successful outcome so the webhook
// caller never sees a failure status that would trigger an automatic
// redelivery of the same event.
//
// Concurrent deliveries for the same subject share one in-flight run.
func (s *Service) Reconcile(ctx context.Context, ref models.SubjectRef) (Outcome, error) {
	if ref.IsZero() {
		return Outcome{}, dErrors.New(dErrors.CodeBadRequest, "subject reference is required")
	}

	v, _, _ := s.inflight.Do(ref.Key(), func() (any, error) {
		return s.run(ctx, ref), nil
	})
	return v.(Outcome), nil
}

func (s *Service) run(ctx context.Context, ref models.SubjectRef) Outcome {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "reconcile",
		trace.WithAttributes(attribute.String("subject.ref", ref.Key())))
	defer span.End()

	outcome, err := s.pipeline(ctx, ref)
	if err != nil {
		outcome = s.degradeToSuccess(ctx, ref, err)
	}

	label := metrics.OutcomeClean
	switch {
	case outcome.Degraded:
		label = metrics.OutcomeDegraded
	case outcome.HasError:
		label = metrics.OutcomeMismatch
	}
	s.metrics.ObserveReconciliation(label, time.Since(start).Seconds())
	return outcome
}

// pipeline is the strictly sequential happy path. There is no independent
// work to parallelize: the registry query needs the billing record's country
// and VAT fields as input.
func (s *Service) pipeline(ctx context.Context, ref models.SubjectRef) (Outcome, error) {
	subject, err := s.fetchSubject(ctx, ref)
	if err != nil {
		return Outcome{}, err
	}

	record, err := s.checkRegistry(ctx, subject)
	if err != nil {
		return Outcome{}, err
	}

	result := s.comparator.Compare(subject, record)

	notified := false
	if policy.ShouldNotify(result, s.notifyOnSuccess) {
		if err := s.send(ctx, policy.Payload(result)); err != nil {
			// A failed delivery does not fail the run; the report still goes
			// back in the response body.
			s.metrics.NotificationFailures.Inc()
			s.logger.ErrorContext(ctx, "failed to deliver reconciliation report",
				"subject", ref.Key(),
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
		} else {
			notified = true
		}
	}

	s.emitAudit(ctx, audit.Event{
		Action:    audit.ActionReconciliationCompleted,
		Subject:   ref.Key(),
		VATNumber: subject.VATNumberBody(),
		Outcome:   outcomeLabel(result.HasError),
	})

	return Outcome{Report: result.Report, HasError: result.HasError, Notified: notified}, nil
}

func (s *Service) fetchSubject(ctx context.Context, ref models.SubjectRef) (models.BillingSubject, error) {
	ctx, span := s.tracer.Start(ctx, "billing.fetch")
	defer span.End()
	return s.billing.FetchSubject(ctx, ref)
}

func (s *Service) checkRegistry(ctx context.Context, subject models.BillingSubject) (models.RegistryRecord, error) {
	ctx, span := s.tracer.Start(ctx, "registry.check",
		trace.WithAttributes(attribute.String("vat.country", subject.CountryCode)))
	defer span.End()
	return s.registry.CheckVAT(ctx, subject.CountryCode, subject.VATNumberBody())
}

func (s *Service) send(ctx context.Context, text string) error {
	ctx, span := s.tracer.Start(ctx, "notify.send")
	defer span.End()
	return s.notifier.Send(ctx, text)
}

// degradeToSuccess is the single recovery boundary. It converts any
// infrastructure failure from the pipeline into a diagnostic notification
// plus a success-shaped outcome. Suppressing the failure status is a
// deliberate policy: the billing provider retries non-success webhook
// responses, and a retry would hit the same failure again.
func (s *Service) degradeToSuccess(ctx context.Context, ref models.SubjectRef, err error) Outcome {
	diagnostic := fmt.Sprintf("Error while checking VAT ID (%s): %v", ref.Key(), err)
	s.logger.ErrorContext(ctx, "reconciliation degraded",
		"subject", ref.Key(),
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)

	if sendErr := s.send(ctx, diagnostic); sendErr != nil {
		s.metrics.NotificationFailures.Inc()
		s.logger.ErrorContext(ctx, "failed to deliver failure diagnostic",
			"subject", ref.Key(),
			"error", sendErr,
			"request_id", requestcontext.RequestID(ctx),
		)
	}

	s.emitAudit(ctx, audit.Event{
		Action:  audit.ActionReconciliationDegraded,
		Subject: ref.Key(),
		Outcome: metrics.OutcomeDegraded,
		Reason:  err.Error(),
	})

	return Outcome{Degraded: true}
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"error", err,
		)
	}
}

func outcomeLabel(hasError bool) string {
	if hasError {
		return metrics.OutcomeMismatch
	}
	return metrics.OutcomeClean
}
