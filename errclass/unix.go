//go:build unix

//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: https://github.com/rbmk-project/rbmk/blob/v0.17.0/pkg/common/errclass/unix.go
//

package errclass

import (
	"errors"

	"golang.org/x/sys/unix"
)

// classifyErrno maps a syscall errno, if err wraps one, to our class strings.
func classifyErrno(err error) string {
	var errno unix.Errno
	if !errors.As(err, &errno) {
		return ""
	}
	switch errno {
	case unix.ETIMEDOUT:
		return ETIMEDOUT
	case unix.ECONNREFUSED:
		return ECONNREFUSED
	case unix.ECONNRESET, unix.ECONNABORTED:
		return ECONNRESET
	case unix.ENOTCONN:
		return ENOTCONN
	case unix.EINVAL:
		return EINVAL
	case unix.EINTR:
		return EINTR
	default:
		return ""
	}
}
