// Package assertdeep provides *testing.T-friendly wrappers around
// go/deepequal, named Equal/NotEqual/JSONRoundTripEqual in the style of testify's
// assert package so call sites read as "assertdeep.Equal(t, want, got)".
package assertdeep

import (
	"testing"

	"github.com/datacentricorg/datacentric-sub004/go/deepequal"
)

// Equal fails t unless expected and actual are deepequal.DeepEqual.
func Equal(t *testing.T, expected, actual interface{}) {
	t.Helper()
	deepequal.AssertDeepEqual(t, expected, actual)
}

// NotEqual fails t if expected and actual are deepequal.DeepEqual.
func NotEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()
	if deepequal.DeepEqual(expected, actual) {
		t.Errorf("Objects match but should not:\n  expected: %#v\n  actual:   %#v", expected, actual)
	}
}

// JSONRoundTripEqual fails t unless v marshals to JSON and back into a
// DeepEqual copy of itself.
func JSONRoundTripEqual(t *testing.T, v interface{}) {
	t.Helper()
	deepequal.AssertJSONRoundTrip(t, v)
}
