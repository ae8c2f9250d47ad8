// Package normalize canonicalizes registry and billing text fields so that
// incidental formatting differences never cause false mismatches.
package normalize

import "strings"

// Sentinel is the registry's marker for "value not available". It is a real
// payload value, distinct from an omitted field and from an empty string.
const Sentinel = "---"

// ligatures maps national ligature sequences to their expanded ASCII
// equivalents. The registry transliterates these in its responses while
// billing records usually keep the original spelling.
var ligatures = strings.NewReplacer(
	"ß", "ss",
	"ẞ", "ss",
)

// Canonicalize lower-cases the text, folds each newline into a single space,
// and expands known national ligatures. It is idempotent: applying it twice
// gives the same result as applying it once.
func Canonicalize(text string) string {
	text = strings.ToLower(text)
	text = strings.ReplaceAll(text, "\n", " ")
	return ligatures.Replace(text)
}

// IsSentinel reports whether a registry value is the "no data" marker.
func IsSentinel(value string) bool {
	return value == Sentinel
}

// FieldsEqual compares a registry value against a locally held value under
// canonicalization. An absent (nil) or sentinel registry value never equals
// anything, not even itself.
func FieldsEqual(registryValue *string, localValue string) bool {
	if registryValue == nil || IsSentinel(*registryValue) {
		return false
	}
	return Canonicalize(*registryValue) == Canonicalize(localValue)
}
