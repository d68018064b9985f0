// SPDX-License-Identifier: GPL-3.0-or-later

package errclass

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		assert.Equal(t, "", New(nil))
	})

	t.Run("context deadline exceeded", func(t *testing.T) {
		assert.Equal(t, ETIMEDOUT, New(context.DeadlineExceeded))
	})

	t.Run("context canceled", func(t *testing.T) {
		assert.Equal(t, ENOTCONN, New(context.Canceled))
	})

	t.Run("unknown error", func(t *testing.T) {
		assert.Equal(t, EGENERIC, New(errors.New("something else")))
	})
}
