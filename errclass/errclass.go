// SPDX-License-Identifier: GPL-3.0-or-later

// Package errclass classifies Go errors into short categorical strings.
//
// Adapted from: https://github.com/rbmk-project/rbmk/blob/v0.17.0/pkg/common/errclass
//
// The original classifies network I/O errno values; this package keeps the
// same OS-errno table (see unix.go/windows.go) but is invoked on the errors
// returned by an AF_UNIX D-Bus connection and by context deadlines rather
// than TCP/UDP sockets.
package errclass

import (
	"context"
	"errors"
	"net"
	"os"
)

const (
	// ETIMEDOUT means the operation exceeded its deadline.
	ETIMEDOUT = "ETIMEDOUT"

	// ECONNREFUSED means the peer (typically a bus daemon socket) refused
	// the connection.
	ECONNREFUSED = "ECONNREFUSED"

	// ECONNRESET means the peer reset the connection.
	ECONNRESET = "ECONNRESET"

	// ENOTCONN means an operation was attempted on a connection that was
	// never established or was already closed.
	ENOTCONN = "ENOTCONN"

	// EINVAL means the call received invalid arguments at the OS level.
	EINVAL = "EINVAL"

	// EINTR means a blocking syscall was interrupted.
	EINTR = "EINTR"

	// EGENERIC is returned for any error this package does not recognize.
	EGENERIC = "EGENERIC"
)

// New classifies err into one of the constants above.
//
// A nil error classifies to the empty string, matching the convention that
// successful operations carry no error class in structured logs.
func New(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return ETIMEDOUT
	}
	if errors.Is(err, net.ErrClosed) {
		return ENOTCONN
	}
	if errors.Is(err, context.Canceled) {
		return ENOTCONN
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ETIMEDOUT
	}
	if class := classifyErrno(err); class != "" {
		return class
	}
	return EGENERIC
}
