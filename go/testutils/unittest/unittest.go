// Package unittest marks tests by the resource tier they need: Small
// tests are pure in-memory
// and always run; Medium tests may touch the local filesystem; Large
// tests talk to an external emulator or service and are skipped under
// `go test -short`; Manual tests are never run automatically.
package unittest

import (
	"os"
	"testing"
)

// SmallTest marks t as a fast, in-memory-only test. It never skips; it
// exists so that test intent is documented at the call site and call
// sites are grep-able by tier.
func SmallTest(t testing.TB) {
	t.Helper()
}

// MediumTest marks t as touching the local filesystem or doing
// non-trivial in-process work; skipped under -short.
func MediumTest(t testing.TB) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping medium test in short mode")
	}
}

// LargeTest marks t as depending on an external service (an emulator,
// typically); skipped under -short.
func LargeTest(t testing.TB) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping large test in short mode")
	}
}

// ManualTest marks t as never run automatically; it only runs when
// RUN_MANUAL_TESTS is set, for tests that hit real (non-emulated) cloud
// services.
func ManualTest(t testing.TB) {
	t.Helper()
	if os.Getenv("RUN_MANUAL_TESTS") == "" {
		t.Skip("skipping manual test; set RUN_MANUAL_TESTS=1 to run")
	}
}

// RequiresFirestoreEmulator skips t unless FIRESTORE_EMULATOR_HOST is set.
func RequiresFirestoreEmulator(t testing.TB) {
	t.Helper()
	LargeTest(t)
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("skipping test requiring the Firestore emulator; set FIRESTORE_EMULATOR_HOST")
	}
}

// RequiresDatastoreEmulator skips t unless DATASTORE_EMULATOR_HOST is set.
func RequiresDatastoreEmulator(t testing.TB) {
	t.Helper()
	LargeTest(t)
	if os.Getenv("DATASTORE_EMULATOR_HOST") == "" {
		t.Skip("skipping test requiring the Datastore emulator; set DATASTORE_EMULATOR_HOST")
	}
}
