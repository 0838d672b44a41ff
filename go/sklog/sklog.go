// Package sklog is the logging facade used throughout this repository.
// It wraps github.com/golang/glog so that callers never import glog
// directly; logging is reserved for operational events, never used as a
// substitute for returning an error: errors are returned, not merely
// logged.
package sklog

import (
	"fmt"

	"github.com/golang/glog"
)

// Infof logs an informational message.
func Infof(format string, args ...interface{}) {
	glog.InfoDepth(1, fmt.Sprintf(format, args...))
}

// Warningf logs a message about a condition that is recoverable but
// notable, such as a failed write to the dataset index mirror.
func Warningf(format string, args ...interface{}) {
	glog.WarningDepth(1, fmt.Sprintf(format, args...))
}

// Errorf logs an error that the caller is also returning; used sparingly,
// at the boundary where an error would otherwise vanish (e.g. inside a
// Firestore snapshot listener goroutine with no caller to return to).
func Errorf(format string, args ...interface{}) {
	glog.ErrorDepth(1, fmt.Sprintf(format, args...))
}

// Fatalf logs and terminates the process; reserved for startup-time
// configuration failures in cmd/tdsctl, never called from library code.
func Fatalf(format string, args ...interface{}) {
	glog.FatalDepth(1, fmt.Sprintf(format, args...))
}

// FmtErrorf logs at error level and returns the same message as an error,
// for the rare call site that needs both.
func FmtErrorf(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	glog.ErrorDepth(1, msg)
	return fmt.Errorf("%s", msg)
}

// Flush flushes any buffered log entries; called from cmd/tdsctl before
// exit.
func Flush() {
	glog.Flush()
}
