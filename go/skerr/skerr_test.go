package skerr_test

import (
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/datacentricorg/datacentric-sub004/go/skerr"
)

func TestFmt_ProducesMessageAndStack(t *testing.T) {
	err := skerr.Fmt("dog too small; dog is %d kg; minimum is %d kg", 45, 50)
	require.Error(t, err)
	require.Contains(t, err.Error(), "dog too small; dog is 45 kg; minimum is 50 kg")
	require.Contains(t, err.Error(), "At ")
}

func TestWrap_NilIsNil(t *testing.T) {
	require.NoError(t, skerr.Wrap(nil))
}

func TestWrap_PreservesCauseForUnwrap(t *testing.T) {
	wrapped := skerr.Wrap(io.EOF)
	require.Equal(t, io.EOF, errors.Unwrap(wrapped))
	require.True(t, errors.Is(wrapped, io.EOF))
	require.Equal(t, io.EOF, skerr.Unwrap(wrapped))
}

func TestWrapf_PreservesCauseAndAddsMessage(t *testing.T) {
	cause := &json.SyntaxError{Offset: 32}
	wrapped := skerr.Wrapf(cause, "decode JSON")
	require.Contains(t, wrapped.Error(), "decode JSON")

	var syntaxErr *json.SyntaxError
	require.True(t, errors.As(wrapped, &syntaxErr))
	require.Equal(t, int64(32), syntaxErr.Offset)
}

func TestCallStack_CapturesCallerFrames(t *testing.T) {
	var frames []skerr.StackTrace
	func() {
		frames = skerr.CallStack(3, 0)
	}()
	require.Len(t, frames, 3)
	require.Equal(t, "skerr_test.go", frames[0].File)
}

var sentinel = errors.New("sentinel failure")

func TestIs_MatchesThroughWrapChain(t *testing.T) {
	err := skerr.Wrapf(skerr.Wrap(sentinel), "while doing the thing")
	require.True(t, skerr.Is(err, sentinel))
}
