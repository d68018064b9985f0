//go:build windows

//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: https://github.com/rbmk-project/rbmk/blob/v0.17.0/pkg/common/errclass/windows.go
//

package errclass

import (
	"errors"

	"golang.org/x/sys/windows"
)

// classifyErrno maps a syscall errno, if err wraps one, to our class strings.
func classifyErrno(err error) string {
	var errno windows.Errno
	if !errors.As(err, &errno) {
		return ""
	}
	switch errno {
	case windows.WSAETIMEDOUT:
		return ETIMEDOUT
	case windows.WSAECONNREFUSED:
		return ECONNREFUSED
	case windows.WSAECONNRESET, windows.WSAECONNABORTED:
		return ECONNRESET
	case windows.WSAENOTCONN:
		return ENOTCONN
	case windows.WSAEINVAL:
		return EINVAL
	case windows.WSAEINTR:
		return EINTR
	default:
		return ""
	}
}
