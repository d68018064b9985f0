// SPDX-License-Identifier: GPL-3.0-or-later

package busmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewProtectProbeDefaultsToRelease(t *testing.T) {
	cfg := NewConfig()
	client := &BusClient{Logger: cfg.Logger, ErrClassifier: cfg.ErrClassifier, TimeNow: cfg.TimeNow}
	p := NewProtectProbe(cfg, client)
	assert.True(t, p.Release)
}

func TestDoNotQueueFlagValue(t *testing.T) {
	assert.Equal(t, uint32(2), doNotQueue)
}
