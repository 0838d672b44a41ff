package deepequal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeepEqual_Time_RoundedIsEqual(t *testing.T) {
	t1 := time.Now()
	t2 := t1.Round(0)
	assert.True(t, DeepEqual(t1, t2))
}

type customEqualValue struct{ a string }

func (v customEqualValue) Equal(o customEqualValue) bool {
	return v.a == "foo" && o.a == "bar"
}

func TestDeepEqual_CustomEqualMethod_IsPreferredOverReflect(t *testing.T) {
	a := customEqualValue{a: "foo"}
	b := customEqualValue{a: "bar"}
	assert.True(t, DeepEqual(a, b))
	assert.False(t, DeepEqual(b, a)) // sanity: Equal is not symmetric by construction
}

type equalWrongArgs struct{ a string }

func (equalWrongArgs) Equal(t time.Time) bool { return true }

func TestDeepEqual_EqualWithWrongSignature_FallsBackToReflect(t *testing.T) {
	a := &equalWrongArgs{a: "foo"}
	b := &equalWrongArgs{a: "bar"}
	assert.False(t, DeepEqual(a, b))
}

type infiniteNesting struct{ alpha interface{} }

func TestDeepEqual_SelfReferential_DoesNotInfiniteLoop(t *testing.T) {
	a := &infiniteNesting{}
	a.alpha = a
	b := &infiniteNesting{}
	b.alpha = b
	assert.True(t, DeepEqual(a, b))
}

type roundTrippable struct {
	Public int `json:"public"`
}

type fakeT struct {
	failed bool
}

func (f *fakeT) Helper()                                 {}
func (f *fakeT) Errorf(format string, args ...interface{}) { f.failed = true }

func TestAssertJSONRoundTrip_Success(t *testing.T) {
	ft := &fakeT{}
	AssertJSONRoundTrip(ft, &roundTrippable{Public: 123})
	assert.False(t, ft.failed)
}

type cantRoundTrip struct {
	private int //nolint:unused
}

func TestAssertJSONRoundTrip_UnexportedField_Fails(t *testing.T) {
	ft := &fakeT{}
	AssertJSONRoundTrip(ft, &cantRoundTrip{private: 123})
	assert.True(t, ft.failed)
}
