// Package models holds the data types flowing through the reconciliation
// pipeline. Everything here is constructed once per run and never mutated.
package models

import "strings"

// SubjectRef identifies the billing record to reconcile. The billing
// provider's webhook carries a client id and, for invoices addressed to a
// specific person, a contact id. When a contact id is present the contact
// record wins over the client record.
type SubjectRef struct {
	ClientID  string
	ContactID string
}

// IsZero reports whether the reference carries no usable identifier.
func (r SubjectRef) IsZero() bool {
	return r.ClientID == "" && r.ContactID == ""
}

// Key returns a stable identifier for logs and in-flight deduplication.
func (r SubjectRef) Key() string {
	if r.ContactID != "" {
		return r.ClientID + " - " + r.ContactID
	}
	return r.ClientID
}

// BillingSubject is the billing system's record for a client or contact.
type BillingSubject struct {
	ID          string
	Name        string
	Street      string
	PostalCode  string
	City        string
	CountryCode string
	VATNumber   string
}

// Address composes the comparable address line. The concatenation is fixed;
// it mirrors how the registry formats its own address field.
func (s BillingSubject) Address() string {
	return s.Street + " " + s.CountryCode + "-" + s.PostalCode + " " + s.City
}

// VATNumberBody strips the two-letter country prefix and internal spaces.
// A VAT number shorter than two characters yields an empty body; the
// comparison stage then classifies it as a mismatch rather than failing.
func (s BillingSubject) VATNumberBody() string {
	if len(s.VATNumber) < 2 {
		return ""
	}
	return strings.ReplaceAll(s.VATNumber[2:], " ", "")
}

// RegistryRecord is the government registry's answer to a validation query.
// Fields are pointers because the registry may omit any of them; absence is
// distinct from an empty string and from the "---" sentinel.
type RegistryRecord struct {
	Valid       *bool
	Name        *string
	Address     *string
	CountryCode *string
	VATNumber   *string
}

// FieldVerdict classifies one compared field.
type FieldVerdict string

const (
	VerdictMatch       FieldVerdict = "match"
	VerdictMismatch    FieldVerdict = "mismatch"
	VerdictUnavailable FieldVerdict = "unavailable"
)

// Field names the compared fields in their fixed report order.
type Field string

const (
	FieldName        Field = "company name"
	FieldAddress     Field = "address"
	FieldCountryCode Field = "country code"
	FieldVATNumber   Field = "vat-number"
)

// FieldResult is one field's verdict with its report line.
type FieldResult struct {
	Field   Field
	Verdict FieldVerdict
	Message string
}

// Result aggregates the per-field verdicts, the composed textual report, and
// whether any field mismatched. Unavailable verdicts alone do not set
// HasError unless the registry returned no positive validity determination.
type Result struct {
	VATNumber string
	Fields    []FieldResult
	Report    string
	HasError  bool
}

// Verdict returns the verdict for a field, or the empty verdict when the
// field was not compared.
func (r Result) Verdict(f Field) FieldVerdict {
	for _, fr := range r.Fields {
		if fr.Field == f {
			return fr.Verdict
		}
	}
	return ""
}
