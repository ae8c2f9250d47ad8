// Package compare judges a billing subject against a government registry
// record field by field. Mismatches and unavailable data are outcomes, not
// errors; nothing in this package performs I/O.
package compare

import (
	"fmt"
	"strings"

	"vatwatch/internal/reconcile/models"
	"vatwatch/internal/reconcile/normalize"
)

const (
	reportNotValid = "The registry does not recognize the subject as valid"
	reportNotFound = "The registry returned no determination (subject not found)"
)

// Comparator produces a reconciliation result from one billing subject and
// one registry record. The rules are centralized here so they stay testable.
type Comparator struct{}

func New() *Comparator {
	return &Comparator{}
}

// Compare evaluates the four reconciled fields in fixed order: company name,
// address, country code, vat-number.
//
// Name and address are compared under canonicalization and may come back
// Unavailable when the registry holds no data. Country code and vat-number
// are compared raw and case-sensitive and have no Unavailable state: a valid
// registry answer always carries a determinable code and number, so anything
// else is a mismatch. The asymmetry is intentional.
func (c *Comparator) Compare(subject models.BillingSubject, record models.RegistryRecord) models.Result {
	result := models.Result{VATNumber: subject.VATNumberBody()}

	if record.Valid == nil || !*record.Valid {
		reason := reportNotValid
		if record.Valid == nil {
			reason = reportNotFound
		}
		for _, field := range []models.Field{
			models.FieldName, models.FieldAddress, models.FieldCountryCode, models.FieldVATNumber,
		} {
			result.Fields = append(result.Fields, models.FieldResult{
				Field:   field,
				Verdict: models.VerdictUnavailable,
			})
		}
		result.HasError = true
		result.Report = header(result.VATNumber) + "\n" + reason
		return result
	}

	result.Fields = []models.FieldResult{
		compareNormalized(models.FieldName, record.Name, subject.Name),
		compareNormalized(models.FieldAddress, record.Address, subject.Address()),
		compareExact(models.FieldCountryCode, record.CountryCode, subject.CountryCode),
		compareExact(models.FieldVATNumber, record.VATNumber, subject.VATNumberBody()),
	}

	for _, fr := range result.Fields {
		if fr.Verdict == models.VerdictMismatch {
			result.HasError = true
			break
		}
	}

	lines := make([]string, 0, len(result.Fields)+1)
	if result.HasError {
		lines = append(lines, header(result.VATNumber))
	}
	for _, fr := range result.Fields {
		lines = append(lines, fr.Message)
	}
	result.Report = strings.Join(lines, "\n")
	return result
}

// compareNormalized handles the free-text fields. A sentinel or absent
// registry value means the registry holds no data; that must not be reported
// as a discrepancy.
func compareNormalized(field models.Field, registryValue *string, localValue string) models.FieldResult {
	if normalize.FieldsEqual(registryValue, localValue) {
		return models.FieldResult{
			Field:   field,
			Verdict: models.VerdictMatch,
			Message: fmt.Sprintf("Correct %s: %s", field, normalize.Canonicalize(*registryValue)),
		}
	}
	if registryValue == nil || normalize.IsSentinel(*registryValue) {
		return models.FieldResult{
			Field:   field,
			Verdict: models.VerdictUnavailable,
			Message: fmt.Sprintf("Could not validate %s: %s", field, normalize.Canonicalize(localValue)),
		}
	}
	return models.FieldResult{
		Field:   field,
		Verdict: models.VerdictMismatch,
		Message: fmt.Sprintf("Incorrect %s: %s - expected (registry): %s",
			field, normalize.Canonicalize(localValue), normalize.Canonicalize(*registryValue)),
	}
}

// compareExact handles country code and vat-number: present, not sentinel,
// and byte-for-byte equal, or it is a mismatch.
func compareExact(field models.Field, registryValue *string, localValue string) models.FieldResult {
	if registryValue != nil && !normalize.IsSentinel(*registryValue) && *registryValue == localValue {
		return models.FieldResult{
			Field:   field,
			Verdict: models.VerdictMatch,
			Message: fmt.Sprintf("Correct %s: %s", field, *registryValue),
		}
	}
	expected := ""
	if registryValue != nil {
		expected = *registryValue
	}
	return models.FieldResult{
		Field:   field,
		Verdict: models.VerdictMismatch,
		Message: fmt.Sprintf("Incorrect %s: %s - expected: %s", field, localValue, expected),
	}
}

func header(vatNumber string) string {
	return fmt.Sprintf("Registry information does not match for %s:", vatNumber)
}
