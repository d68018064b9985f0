// SPDX-License-Identifier: GPL-3.0-or-later

package busmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEuidFrom(t *testing.T) {
	assert.Equal(t, int32(1000), euidFrom([]int32{0, 1000, 0, 0}))
	assert.Equal(t, int32(42), euidFrom([]int32{42}))
}

func TestNewResolverWiresLookupProcess(t *testing.T) {
	cfg := NewConfig()
	client := &BusClient{Logger: cfg.Logger, ErrClassifier: cfg.ErrClassifier, TimeNow: cfg.TimeNow}
	r := NewResolver(cfg, client)
	assert.NotNil(t, r.lookupProcess)
}

func TestResolverLookupProcessOverride(t *testing.T) {
	cfg := NewConfig()
	client := &BusClient{Logger: cfg.Logger, ErrClassifier: cfg.ErrClassifier, TimeNow: cfg.TimeNow}
	r := NewResolver(cfg, client)

	want := &ProcessRecord{PID: 1234, EUser: "alice"}
	r.lookupProcess = func(pid int32) (*ProcessRecord, error) {
		assert.Equal(t, int32(1234), pid)
		return want, nil
	}

	got, err := r.lookupProcess(1234)
	assert.NoError(t, err)
	assert.Equal(t, want, got)
}
