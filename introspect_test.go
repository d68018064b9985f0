// SPDX-License-Identifier: GPL-3.0-or-later

package busmap

import (
	"context"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinObjectPath(t *testing.T) {
	assert.Equal(t, dbus.ObjectPath("/child"), joinObjectPath("/", "child"))
	assert.Equal(t, dbus.ObjectPath("/a/child"), joinObjectPath("/a", "child"))
	assert.Equal(t, dbus.ObjectPath("/a/child"), joinObjectPath("/a/", "child"))
}

func TestDerivedPath(t *testing.T) {
	assert.Equal(t, dbus.ObjectPath("/org/example/Service"), DerivedPath("org.example.Service"))
}

func TestIntrospectUnmarshal(t *testing.T) {
	xmlDoc := `<?xml version="1.0"?>
<node>
  <interface name="org.example.Iface">
    <method name="Foo">
      <arg name="in" type="s" direction="in"/>
    </method>
    <property name="Bar" type="b" access="readwrite"/>
  </interface>
  <node name="child"/>
</node>`

	var node introspect.Node
	require.NoError(t, introspectUnmarshal(xmlDoc, &node))
	require.Len(t, node.Interfaces, 1)
	assert.Equal(t, "org.example.Iface", node.Interfaces[0].Name)
	require.Len(t, node.Interfaces[0].Methods, 1)
	assert.Equal(t, "Foo", node.Interfaces[0].Methods[0].Name)
	require.Len(t, node.Children, 1)
	assert.Equal(t, "child", node.Children[0].Name)
}

// recordingSLogger collects the message of every log call.
type recordingSLogger struct{ msgs []string }

func (l *recordingSLogger) Debug(msg string, args ...any) { l.msgs = append(l.msgs, msg) }
func (l *recordingSLogger) Info(msg string, args ...any)  { l.msgs = append(l.msgs, msg) }

func TestWalkerMaxDepthZeroMeansNoCap(t *testing.T) {
	logger := &recordingSLogger{}
	w := &Walker{MaxDepth: 0, Logger: logger}
	assert.Equal(t, 0, w.MaxDepth)

	// An invalid path ends the walk right after the depth check and before
	// any bus call, so the logged event shows which check stopped it.
	w.walk(context.Background(), "org.example.Foo", "not-a-path", nil, 1000)
	assert.Equal(t, []string{"introspectInvalidPath"}, logger.msgs)

	capped := &recordingSLogger{}
	w = &Walker{MaxDepth: 1, Logger: capped}
	w.walk(context.Background(), "org.example.Foo", "not-a-path", nil, 1000)
	assert.Equal(t, []string{"introspectDepthCapExceeded"}, capped.msgs)
}
