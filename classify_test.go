// SPDX-License-Identifier: GPL-3.0-or-later

package busmap

import (
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
)

func TestClassifyReply(t *testing.T) {
	logger := DefaultSLogger()

	t.Run("success is reachable", func(t *testing.T) {
		reply := Reply{Signature: "s", Body: []any{"ok"}}
		assert.Equal(t, VerdictReachable, ClassifyReply(logger, reply))
	})

	t.Run("invalid args is reachable", func(t *testing.T) {
		reply := Reply{Err: &dbus.Error{Name: "org.freedesktop.DBus.Error.InvalidArgs"}}
		assert.Equal(t, VerdictReachable, ClassifyReply(logger, reply))
	})

	t.Run("access denied is access controlled", func(t *testing.T) {
		reply := Reply{Err: &dbus.Error{Name: "org.freedesktop.DBus.Error.AccessDenied"}}
		assert.Equal(t, VerdictAccessControlled, ClassifyReply(logger, reply))
	})

	t.Run("property read only is access controlled", func(t *testing.T) {
		reply := Reply{Err: &dbus.Error{Name: "org.freedesktop.DBus.Error.PropertyReadOnly"}}
		assert.Equal(t, VerdictAccessControlled, ClassifyReply(logger, reply))
	})

	t.Run("polkit not authorized substring is access controlled", func(t *testing.T) {
		reply := Reply{Err: &dbus.Error{Name: "org.example.PolKit.NotAuthorizedException"}}
		assert.Equal(t, VerdictAccessControlled, ClassifyReply(logger, reply))
	})

	t.Run("python type error suffix is reachable", func(t *testing.T) {
		reply := Reply{Err: &dbus.Error{Name: "org.example.Python.TypeError"}}
		assert.Equal(t, VerdictReachable, ClassifyReply(logger, reply))
	})

	t.Run("unrecognized error fails open to reachable", func(t *testing.T) {
		reply := Reply{Err: &dbus.Error{Name: "org.example.SomeNovelError"}}
		assert.Equal(t, VerdictReachable, ClassifyReply(logger, reply))
	})

	t.Run("service unknown is reachable", func(t *testing.T) {
		reply := Reply{Err: &dbus.Error{Name: "ServiceUnknown"}}
		assert.Equal(t, VerdictReachable, ClassifyReply(logger, reply))
	})
}
