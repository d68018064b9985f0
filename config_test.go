// SPDX-License-Identifier: GPL-3.0-or-later

package busmap

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()

	require.NotNil(t, cfg)

	assert.Equal(t, "", cfg.ErrClassifier.Classify(nil))
	assert.Equal(t, "ETIMEDOUT", cfg.ErrClassifier.Classify(context.DeadlineExceeded))

	now := cfg.TimeNow()
	assert.False(t, now.IsZero())

	assert.Equal(t, 500*time.Millisecond, cfg.Timeout)
	assert.Equal(t, 64, cfg.MaxDepth)
	assert.False(t, cfg.SessionBus)
	assert.False(t, cfg.EnableProbes)
}
