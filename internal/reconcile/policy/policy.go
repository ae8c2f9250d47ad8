// Package policy decides whether a reconciliation report is worth sending to
// the notification channel, and in what form.
package policy

import "vatwatch/internal/reconcile/models"

// ShouldNotify reports whether the result must be delivered. Discrepancies
// always notify; clean runs notify only when success notifications are
// enabled (useful as an audit trail).
func ShouldNotify(result models.Result, notifyOnSuccess bool) bool {
	return result.HasError || notifyOnSuccess
}

// Payload returns the notification text for a result. The comparator already
// prefixes the mismatch header when there is an error; clean reports go out
// as composed.
func Payload(result models.Result) string {
	return result.Report
}
