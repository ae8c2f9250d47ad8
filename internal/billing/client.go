// Package billing implements the outbound client for the billing provider's
// REST API. Subjects live there as clients, optionally with per-invoice
// contact overrides; when an invoice names a contact, the contact record is
// the authoritative identity.
package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"vatwatch/internal/reconcile/models"
	dErrors "vatwatch/pkg/domain-errors"
)

const apiKeyHeader = "X-BillomatApiKey"

// Config carries the provider account coordinates. BaseURL is derived from
// AccountID when empty; tests point it at a local server.
type Config struct {
	AccountID string
	APIKey    string
	BaseURL   string
	Timeout   time.Duration
}

type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		if cfg.AccountID == "" {
			return nil, fmt.Errorf("billing account id is required")
		}
		baseURL = fmt.Sprintf("https://%s.billomat.net", cfg.AccountID)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		httpc:   &http.Client{Timeout: timeout},
	}, nil
}

// flexID tolerates the provider serializing ids as either JSON numbers or
// strings, which varies across its API versions.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "null" {
		raw = ""
	}
	*f = flexID(raw)
	return nil
}

// subjectDTO is the shared field subset of the provider's client and contact
// resources.
type subjectDTO struct {
	ID          flexID `json:"id"`
	Name        string `json:"name"`
	Street      string `json:"street"`
	Zip         string `json:"zip"`
	City        string `json:"city"`
	CountryCode string `json:"country_code"`
	VATNumber   string `json:"vat_number"`
}

type clientEnvelope struct {
	Client subjectDTO `json:"client"`
}

type contactEnvelope struct {
	Contact subjectDTO `json:"contact"`
}

// FetchSubject loads the identity record for a subject reference. The client
// record is always fetched: it is the only source of the VAT number. When the
// reference also carries a contact id, the contact record overrides the
// identity fields (name, street, zip, city, country) but never the VAT
// number, because invoices addressed via a contact are still issued against
// the client's VAT registration.
func (c *Client) FetchSubject(ctx context.Context, ref models.SubjectRef) (models.BillingSubject, error) {
	var subject models.BillingSubject

	if ref.ClientID != "" {
		dto, err := c.fetchClient(ctx, ref.ClientID)
		if err != nil {
			return models.BillingSubject{}, err
		}
		subject = models.BillingSubject{
			ID:          string(dto.ID),
			Name:        dto.Name,
			Street:      dto.Street,
			PostalCode:  dto.Zip,
			City:        dto.City,
			CountryCode: dto.CountryCode,
			VATNumber:   dto.VATNumber,
		}
	}

	if ref.ContactID != "" {
		dto, err := c.fetchContact(ctx, ref.ContactID)
		if err != nil {
			return models.BillingSubject{}, err
		}
		subject.ID = string(dto.ID)
		subject.Name = dto.Name
		subject.Street = dto.Street
		subject.PostalCode = dto.Zip
		subject.City = dto.City
		subject.CountryCode = dto.CountryCode
	}

	return subject, nil
}

func (c *Client) fetchClient(ctx context.Context, clientID string) (subjectDTO, error) {
	body, err := c.get(ctx, fmt.Sprintf("/api/clients/%s", clientID))
	if err != nil {
		return subjectDTO{}, err
	}
	var envelope clientEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return subjectDTO{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "decoding client response")
	}
	return envelope.Client, nil
}

func (c *Client) fetchContact(ctx context.Context, contactID string) (subjectDTO, error) {
	body, err := c.get(ctx, fmt.Sprintf("/api/contacts/%s", contactID))
	if err != nil {
		return subjectDTO{}, err
	}
	var envelope contactEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return subjectDTO{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "decoding contact response")
	}
	return envelope.Contact, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "building billing request")
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "calling billing API")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, dErrors.Newf(dErrors.CodeNotFound, "billing resource %s not found", path)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, dErrors.Newf(dErrors.CodeUnavailable, "billing API returned status %d for %s", resp.StatusCode, path)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "reading billing response")
	}
	return body, nil
}
