// SPDX-License-Identifier: GPL-3.0-or-later

package wrapper

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLaunchRequiresCommand(t *testing.T) {
	_, err := Launch(context.Background(), "/bin/true", nil, func(context.Context, int) error { return nil })
	assert.Error(t, err)
}

func TestRunChildRequiresCommand(t *testing.T) {
	err := RunChild(nil)
	assert.Error(t, err)
}

func TestIsChildModeReflectsEnv(t *testing.T) {
	os.Unsetenv(childModeEnv)
	assert.False(t, IsChildMode())

	os.Setenv(childModeEnv, "1")
	defer os.Unsetenv(childModeEnv)
	assert.True(t, IsChildMode())
}
