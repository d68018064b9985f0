// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: connect.go (ConnectFunc's logStart/logDone pairing and
// timeout handling)

package busmap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/godbus/dbus/v5"
)

// TransportError wraps a failure to exchange a message with the bus daemon
// itself (disconnect, timeout) as opposed to a peer-returned error reply,
// which [BusClient.Call] returns as data, not as this error.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("busmap: transport error during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Reply is the outcome of one [BusClient.Call]: either a successful method
// return tagged with its signature, or a structured peer error. Exactly one
// of Body/Signature or Err is meaningful.
type Reply struct {
	Signature string
	Body      []any
	Err       *dbus.Error
}

// Success reports whether the peer returned a method return rather than an error.
func (r Reply) Success() bool {
	return r.Err == nil
}

// ErrorName returns the peer's D-Bus error name, or "" on success.
func (r Reply) ErrorName() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Name
}

// BusClient wraps a [*dbus.Conn] with bounded-timeout calls and structured
// logging, the façade described in §4.1.
//
// All fields are safe to modify after construction but before first use.
type BusClient struct {
	Conn          *dbus.Conn
	ErrClassifier ErrClassifier
	Logger        SLogger
	TimeNow       func() time.Time
}

// NewBusClient builds a [*BusClient] from cfg and an already-connected conn.
func NewBusClient(cfg *Config, conn *dbus.Conn) *BusClient {
	return &BusClient{
		Conn:          conn,
		ErrClassifier: cfg.ErrClassifier,
		Logger:        cfg.Logger,
		TimeNow:       cfg.TimeNow,
	}
}

// Call sends a synchronous method call, blocking up to timeout (or
// indefinitely if negative).
//
// It fails with [*TransportError] only when the underlying transport
// reports a disconnect or timeout; peer-originated error replies are
// returned as a [Reply] with Err set, never raised as a Go error.
func (c *BusClient) Call(
	ctx context.Context, destination string, path dbus.ObjectPath,
	iface, member string, timeout time.Duration, args ...any,
) (Reply, error) {
	t0 := c.TimeNow()
	c.logCallStart(destination, path, iface, member, t0, timeout)

	callCtx := ctx
	var cancel context.CancelFunc
	if timeout >= 0 {
		callCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	obj := c.Conn.Object(destination, path)
	call := obj.CallWithContext(callCtx, iface+"."+member, 0, args...)

	reply, terr := c.classifyCall(destination, path, iface, member, call)
	c.logCallDone(destination, path, iface, member, t0, reply, terr)
	return reply, terr
}

func (c *BusClient) classifyCall(
	destination string, path dbus.ObjectPath, iface, member string, call *dbus.Call,
) (Reply, error) {
	if call.Err != nil {
		if dbusErr, ok := call.Err.(dbus.Error); ok {
			return Reply{Err: &dbusErr}, nil
		}
		return Reply{}, &TransportError{Op: fmt.Sprintf("%s.%s on %s%s", iface, member, destination, path), Err: call.Err}
	}
	return Reply{Signature: replySignature(call.Body), Body: call.Body}, nil
}

func replySignature(body []any) string {
	sig, err := dbus.SignatureOf(body...)
	if err != nil {
		return ""
	}
	return sig.String()
}

// SendAndExpect issues Call, then verifies the reply signature exactly
// equals expectedSignature. On mismatch it emits a diagnostic and returns
// nil, matching the fixed-shape-reply contract used throughout §4.2–§4.7.
func (c *BusClient) SendAndExpect(
	ctx context.Context, destination string, path dbus.ObjectPath,
	iface, member, expectedSignature string, timeout time.Duration, args ...any,
) ([]any, error) {
	reply, err := c.Call(ctx, destination, path, iface, member, timeout, args...)
	if err != nil {
		return nil, err
	}
	if !reply.Success() {
		return nil, nil
	}
	if reply.Signature != expectedSignature {
		c.Logger.Debug("busReplySignatureMismatch",
			slog.String("destination", destination),
			slog.String("path", string(path)),
			slog.String("member", iface+"."+member),
			slog.String("want", expectedSignature),
			slog.String("got", reply.Signature),
		)
		return nil, nil
	}
	return reply.Body, nil
}

// RegisterObject mounts a server-side object at path; all method calls
// whose interface matches are dispatched by the exported methods on impl.
func (c *BusClient) RegisterObject(path dbus.ObjectPath, iface string, impl any) error {
	return c.Conn.Export(impl, path, iface)
}

func (c *BusClient) logCallStart(
	destination string, path dbus.ObjectPath, iface, member string, t0 time.Time, timeout time.Duration,
) {
	c.Logger.Info(
		"busCallStart",
		slog.String("destination", destination),
		slog.String("path", string(path)),
		slog.String("member", iface+"."+member),
		slog.Duration("timeout", timeout),
		slog.Time("t", t0),
	)
}

func (c *BusClient) logCallDone(
	destination string, path dbus.ObjectPath, iface, member string, t0 time.Time, reply Reply, err error,
) {
	c.Logger.Info(
		"busCallDone",
		slog.String("destination", destination),
		slog.String("path", string(path)),
		slog.String("member", iface+"."+member),
		slog.Any("err", err),
		slog.String("errClass", c.ErrClassifier.Classify(err)),
		slog.String("peerErrorName", reply.ErrorName()),
		slog.Time("t0", t0),
		slog.Time("t", c.TimeNow()),
	)
}
