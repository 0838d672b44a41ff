// Package deepequal compares values the way this repository expects
// equality to behave in tests: reflect.DeepEqual, except that a type
// with a method "Equal(T) bool" (for its own type T, by value or
// pointer receiver) is compared using that method instead. This lets
// record and key types define their own notion of equality (e.g. a Key
// compares by canonical string, not by its internal element slice)
// without every test needing to know that.
package deepequal

import (
	"encoding/json"
	"reflect"
)

// DeepEqual reports whether a and b are equal, preferring a custom
// Equal(T) bool method over reflect.DeepEqual when one type in the pair
// exposes one with a matching single-argument, single-bool-return
// signature.
func DeepEqual(a, b interface{}) bool {
	if eq, ok := tryCustomEqual(a, b); ok {
		return eq
	}
	if eq, ok := tryCustomEqual(b, a); ok {
		return eq
	}
	return reflect.DeepEqual(a, b)
}

// tryCustomEqual attempts a.Equal(b); ok is false if a has no method
// named Equal with exactly the signature func(sameType) bool.
func tryCustomEqual(a, b interface{}) (equal bool, ok bool) {
	av := reflect.ValueOf(a)
	if !av.IsValid() {
		return false, false
	}
	m := av.MethodByName("Equal")
	if !m.IsValid() {
		return false, false
	}
	mt := m.Type()
	if mt.NumIn() != 1 || mt.NumOut() != 1 || mt.Out(0).Kind() != reflect.Bool {
		return false, false
	}
	bv := reflect.ValueOf(b)
	if !bv.IsValid() || !bv.Type().AssignableTo(mt.In(0)) {
		return false, false
	}
	out := m.Call([]reflect.Value{bv})
	return out[0].Bool(), true
}

// testingT is satisfied by *testing.T; declared locally so this package
// does not import "testing" outside of _test.go files.
type testingT interface {
	Helper()
	Errorf(format string, args ...interface{})
}

// AssertDeepEqual fails t if a and b are not DeepEqual, printing both
// values.
func AssertDeepEqual(t testingT, expected, actual interface{}) {
	t.Helper()
	if !DeepEqual(expected, actual) {
		t.Errorf("Objects do not match:\n  expected: %#v\n  actual:   %#v", expected, actual)
	}
}

// AssertJSONRoundTrip fails t unless marshaling v to JSON and unmarshaling
// it back into a fresh zero value of the same type produces a DeepEqual
// result, catching types with unexported fields or unsupported map keys
// that silently fail to round-trip.
func AssertJSONRoundTrip(t testingT, v interface{}) {
	t.Helper()
	enc, err := json.Marshal(v)
	if err != nil {
		t.Errorf("failed to marshal: %s", err)
		return
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	out := reflect.New(rv.Type())
	if err := json.Unmarshal(enc, out.Interface()); err != nil {
		t.Errorf("failed to unmarshal: %s", err)
		return
	}
	AssertDeepEqual(t, v, out.Interface())
}
