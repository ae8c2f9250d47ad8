// Package vies implements the SOAP client for the EU VAT Information
// Exchange System's checkVat service.
package vies

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"time"

	"vatwatch/internal/reconcile/models"
	dErrors "vatwatch/pkg/domain-errors"
)

// DefaultURL is the production checkVat endpoint.
const DefaultURL = "https://ec.europa.eu/taxation_customs/vies/services/checkVatService"

const envelopeTemplate = `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns:urn="urn:ec.europa.eu:taxud:vies:services:checkVat:types">
  <soapenv:Header/>
  <soapenv:Body>
    <urn:checkVat>
      <urn:countryCode>%s</urn:countryCode>
      <urn:vatNumber>%s</urn:vatNumber>
    </urn:checkVat>
  </soapenv:Body>
</soapenv:Envelope>`

type Config struct {
	URL     string
	Timeout time.Duration
}

type Client struct {
	url   string
	httpc *http.Client
}

func NewClient(cfg Config) *Client {
	url := cfg.URL
	if url == "" {
		url = DefaultURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		url:   url,
		httpc: &http.Client{Timeout: timeout},
	}
}

// checkVatResponse mirrors the SOAP response body. The registry omits or
// masks fields it will not disclose, so everything except validity is
// optional.
type checkVatResponse struct {
	Valid       *string `xml:"Body>checkVatResponse>valid"`
	Name        *string `xml:"Body>checkVatResponse>name"`
	Address     *string `xml:"Body>checkVatResponse>address"`
	CountryCode *string `xml:"Body>checkVatResponse>countryCode"`
	VATNumber   *string `xml:"Body>checkVatResponse>vatNumber"`
}

// CheckVAT queries the registry for one VAT number. vatNumber is the body
// without the two-letter country prefix. An invalid or unknown number is a
// normal record with Valid false, not an error.
func (c *Client) CheckVAT(ctx context.Context, countryCode, vatNumber string) (models.RegistryRecord, error) {
	envelope := fmt.Sprintf(envelopeTemplate, xmlEscape(countryCode), xmlEscape(vatNumber))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBufferString(envelope))
	if err != nil {
		return models.RegistryRecord{}, dErrors.Wrap(err, dErrors.CodeInternal, "building registry request")
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", "")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return models.RegistryRecord{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "calling registry")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.RegistryRecord{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "reading registry response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return models.RegistryRecord{}, dErrors.Newf(dErrors.CodeUnavailable, "registry returned status %d", resp.StatusCode)
	}

	var parsed checkVatResponse
	if err := xml.Unmarshal(body, &parsed); err != nil {
		return models.RegistryRecord{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "decoding registry response")
	}

	record := models.RegistryRecord{
		Name:        parsed.Name,
		Address:     parsed.Address,
		CountryCode: parsed.CountryCode,
		VATNumber:   parsed.VATNumber,
	}
	if parsed.Valid != nil {
		valid := *parsed.Valid == "true"
		record.Valid = &valid
	}
	return record, nil
}

func xmlEscape(s string) string {
	var buf bytes.Buffer
	// EscapeText on plain text cannot fail.
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
