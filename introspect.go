// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: other_examples/07a2875d_gravitational-teleport__lib-vnet-dbus_service_linux.go.go
// (github.com/godbus/dbus/v5/introspect node/interface/method shapes)

package busmap

import (
	"context"
	"encoding/xml"
	"log/slog"
	"strings"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
)

// introspectUnmarshal parses the Introspectable XML into the library's Node
// shape. The wire framing and type grammar are godbus's; only the final XML
// decode step uses the standard library, matching spec.md's treatment of
// the XML parser as an external collaborator.
func introspectUnmarshal(data string, node *introspect.Node) error {
	return xml.Unmarshal([]byte(data), node)
}

// Visitor is invoked once per introspected node, pre-order, by [Walker].
//
// Implementations own whatever per-scan state they need (e.g. a dedup set);
// the walker itself carries no state across nodes.
type Visitor interface {
	Visit(ctx context.Context, doc *introspect.Node, name BusName, path dbus.ObjectPath)
}

// VisitorFunc adapts a function to the [Visitor] interface.
type VisitorFunc func(ctx context.Context, doc *introspect.Node, name BusName, path dbus.ObjectPath)

// Visit implements [Visitor].
func (f VisitorFunc) Visit(ctx context.Context, doc *introspect.Node, name BusName, path dbus.ObjectPath) {
	f(ctx, doc, name, path)
}

// Walker recursively descends a service's self-described object hierarchy,
// per §4.4: pre-order depth-first, visiting every node once per call to Walk.
type Walker struct {
	Client  *BusClient
	Logger  SLogger
	Timeout time.Duration
	MaxDepth int
}

// NewWalker builds a [*Walker] from cfg and an existing [*BusClient].
func NewWalker(cfg *Config, client *BusClient) *Walker {
	return &Walker{
		Client:   client,
		Logger:   cfg.Logger,
		Timeout:  cfg.Timeout,
		MaxDepth: cfg.MaxDepth,
	}
}

// Walk descends from root, invoking visitor on every reachable node.
func (w *Walker) Walk(ctx context.Context, name BusName, root dbus.ObjectPath, visitor Visitor) {
	w.walk(ctx, name, root, visitor, 0)
}

func (w *Walker) walk(ctx context.Context, name BusName, path dbus.ObjectPath, visitor Visitor, depth int) {
	if w.MaxDepth > 0 && depth > w.MaxDepth {
		w.Logger.Info("introspectDepthCapExceeded",
			slog.String("busName", string(name)),
			slog.String("path", string(path)),
			slog.Int("depth", depth),
		)
		return
	}
	if !path.IsValid() {
		w.Logger.Debug("introspectInvalidPath", slog.String("path", string(path)))
		return
	}

	doc, err := w.fetch(ctx, name, path)
	if err != nil {
		w.Logger.Debug("introspectFetchFailed",
			slog.String("busName", string(name)),
			slog.String("path", string(path)),
			slog.Any("err", err),
		)
		return
	}
	if doc == nil {
		return
	}

	visitor.Visit(ctx, doc, name, path)

	for _, child := range doc.Children {
		if child.Name == "" {
			continue
		}
		childPath := joinObjectPath(path, child.Name)
		w.walk(ctx, name, childPath, visitor, depth+1)
	}
}

func (w *Walker) fetch(ctx context.Context, name BusName, path dbus.ObjectPath) (*introspect.Node, error) {
	body, err := w.Client.SendAndExpect(
		ctx, string(name), path, "org.freedesktop.DBus.Introspectable", "Introspect", "s", w.Timeout,
	)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, nil
	}
	xmlStr, ok := body[0].(string)
	if !ok {
		return nil, nil
	}

	var node introspect.Node
	if err := introspectUnmarshal(xmlStr, &node); err != nil {
		w.Logger.Debug("introspectParseFailed",
			slog.String("busName", string(name)),
			slog.String("path", string(path)),
			slog.Any("err", err),
		)
		return nil, nil
	}
	return &node, nil
}

// joinObjectPath forms the sub-path of a child node name under root,
// handling both a "/" root and deeper roots that do not end in "/", per
// §4.4's traversal contract.
func joinObjectPath(root dbus.ObjectPath, childName string) dbus.ObjectPath {
	r := string(root)
	if strings.HasSuffix(r, "/") {
		return dbus.ObjectPath(r + childName)
	}
	return dbus.ObjectPath(r + "/" + childName)
}

// DerivedPath forms the alternate seed path used for well-known names:
// "/" prefixed, with every "." in the bus name replaced by "/", per §4.4.
func DerivedPath(name BusName) dbus.ObjectPath {
	return dbus.ObjectPath("/" + strings.ReplaceAll(string(name), ".", "/"))
}
