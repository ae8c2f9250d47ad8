package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"vatwatch/internal/reconcile/models"
)

func TestShouldNotify(t *testing.T) {
	cases := []struct {
		name            string
		hasError        bool
		notifyOnSuccess bool
		want            bool
	}{
		{"mismatch always notifies", true, false, true},
		{"mismatch notifies with success flag too", true, true, true},
		{"clean run is silent by default", false, false, false},
		{"clean run notifies when flag enabled", false, true, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := models.Result{HasError: tc.hasError}
			assert.Equal(t, tc.want, ShouldNotify(result, tc.notifyOnSuccess))
		})
	}
}

func TestPayloadPassesReportThrough(t *testing.T) {
	result := models.Result{Report: "Correct company name: software architects"}
	assert.Equal(t, result.Report, Payload(result))
}
