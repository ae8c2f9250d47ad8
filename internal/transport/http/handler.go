// Package httptransport is the thin HTTP layer. Handlers translate between
// wire payloads and the reconciliation service without embedding business
// logic.
package httptransport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"vatwatch/internal/audit"
	"vatwatch/internal/platform/metrics"
	"vatwatch/internal/reconcile"
	"vatwatch/internal/reconcile/models"
	"vatwatch/internal/reconcile/ports"
	dErrors "vatwatch/pkg/domain-errors"
	"vatwatch/pkg/requestcontext"
)

// ReconcileService is the part of the reconciliation service the webhook
// handler needs.
type ReconcileService interface {
	Reconcile(ctx context.Context, ref models.SubjectRef) (reconcile.Outcome, error)
}

type Handler struct {
	logger   *slog.Logger
	service  ReconcileService
	registry ports.RegistryClient
	metrics  *metrics.Metrics
	audit    *audit.Publisher
}

func NewHandler(service ReconcileService, registry ports.RegistryClient, logger *slog.Logger, m *metrics.Metrics, auditPublisher *audit.Publisher) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		registry: registry,
		metrics:  m,
		audit:    auditPublisher,
	}
}

// subjectID tolerates the provider serializing ids as either JSON numbers or
// strings, which varies across its webhook versions.
type subjectID string

func (s *subjectID) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "null" {
		raw = ""
	}
	*s = subjectID(raw)
	return nil
}

// invoiceEvent is the billing provider's webhook payload. Only the subject
// identifiers matter; everything else in the event is ignored.
type invoiceEvent struct {
	Invoice struct {
		ClientID  subjectID `json:"client_id"`
		ContactID subjectID `json:"contact_id"`
	} `json:"invoice"`
}

// handleInvoiceWebhook runs a reconciliation for the subject named by the
// invoice event. Apart from an unparsable payload it always answers 200: the
// provider redelivers non-success responses, and a redelivery would hit the
// same condition again.
func (h *Handler) handleInvoiceWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.metrics.WebhooksReceived.Inc()

	var event invoiceEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		h.logger.WarnContext(ctx, "invalid webhook payload",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid webhook payload"))
		return
	}

	ref := models.SubjectRef{
		ClientID:  string(event.Invoice.ClientID),
		ContactID: string(event.Invoice.ContactID),
	}

	outcome, err := h.service.Reconcile(ctx, ref)
	if err != nil {
		writeError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "webhook reconciliation finished",
		"subject", ref.Key(),
		"has_error", outcome.HasError,
		"degraded", outcome.Degraded,
		"request_id", requestcontext.RequestID(ctx),
	)
	writeText(w, http.StatusOK, outcome.Report)
}

// handleCheck answers an operator's ad-hoc lookup. The form field "text"
// carries a full VAT number including the country prefix, the way a chat
// slash command delivers it.
func (h *Handler) handleCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid form payload"))
		return
	}
	raw := strings.TrimSpace(r.PostFormValue("text"))
	if len(raw) < 3 {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "text must be a full VAT number including the country prefix"))
		return
	}
	countryCode := raw[:2]
	vatNumber := strings.ReplaceAll(raw[2:], " ", "")

	record, err := h.registry.CheckVAT(ctx, countryCode, vatNumber)
	if err != nil {
		h.logger.ErrorContext(ctx, "manual registry check failed",
			"country_code", countryCode,
			"operator", requestcontext.Operator(ctx),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		writeError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "manual registry check",
		"country_code", countryCode,
		"operator", requestcontext.Operator(ctx),
		"request_id", requestcontext.RequestID(ctx),
	)
	if h.audit != nil {
		_ = h.audit.Emit(ctx, audit.Event{
			Action:    audit.ActionManualCheck,
			VATNumber: vatNumber,
		})
	}
	writeText(w, http.StatusOK, renderRecord(record))
}

func (h *Handler) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func renderRecord(record models.RegistryRecord) string {
	return fmt.Sprintf("%s%s\n%s\n%s",
		strOrEmpty(record.CountryCode),
		strOrEmpty(record.VATNumber),
		strOrEmpty(record.Name),
		strOrEmpty(record.Address),
	)
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// writeError centralizes domain error translation to HTTP responses so every
// handler produces the same JSON error envelope.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch dErrors.CodeOf(err) {
	case dErrors.CodeBadRequest:
		status = http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		status = http.StatusUnauthorized
	case dErrors.CodeNotFound:
		status = http.StatusNotFound
	case dErrors.CodeUnavailable:
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": string(dErrors.CodeOf(err)),
	})
}
