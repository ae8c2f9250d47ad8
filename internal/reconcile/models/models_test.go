package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVATNumberBody(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"strips country prefix", "ATU12345678", "U12345678"},
		{"removes internal spaces", "AT U123 456 78", "U12345678"},
		{"empty number yields empty body", "", ""},
		{"single character yields empty body", "A", ""},
		{"exactly the prefix yields empty body", "AT", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			subject := BillingSubject{VATNumber: tc.in}
			assert.Equal(t, tc.want, subject.VATNumberBody())
		})
	}
}

func TestSubjectRefKey(t *testing.T) {
	assert.Equal(t, "42", SubjectRef{ClientID: "42"}.Key())
	assert.Equal(t, "42 - 7", SubjectRef{ClientID: "42", ContactID: "7"}.Key())
	assert.True(t, SubjectRef{}.IsZero())
	assert.False(t, SubjectRef{ContactID: "7"}.IsZero())
}

func TestAddressComposition(t *testing.T) {
	subject := BillingSubject{
		Street:      "Hauptplatz 1",
		CountryCode: "AT",
		PostalCode:  "8010",
		City:        "Graz",
	}
	assert.Equal(t, "Hauptplatz 1 AT-8010 Graz", subject.Address())
}
