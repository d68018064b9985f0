// SPDX-License-Identifier: GPL-3.0-or-later

package busmap

import (
	"context"
	"log/slog"
	"time"
)

// doNotQueue is the RequestName flag value meaning "fail instead of queuing
// for ownership if the name is already taken or policy-protected."
const doNotQueue uint32 = 2

// ProtectProbe classifies whether a bus name is policy-protected, per §4.3.
type ProtectProbe struct {
	Client  *BusClient
	Logger  SLogger
	Timeout time.Duration
	Release bool
}

// NewProtectProbe builds a [*ProtectProbe] from cfg.
//
// Release controls whether a successfully claimed name is released again
// immediately after classification — per this package's Open Question #1,
// the default is true since releasing costs nothing once classification is
// complete and leaves the audited bus in the state it was found.
func NewProtectProbe(cfg *Config, client *BusClient) *ProtectProbe {
	return &ProtectProbe{
		Client:  client,
		Logger:  cfg.Logger,
		Timeout: cfg.Timeout,
		Release: true,
	}
}

// Protected attempts to claim name with RequestName/do-not-queue and
// classifies the outcome per §4.3's three-row table.
func (p *ProtectProbe) Protected(ctx context.Context, name BusName) (bool, error) {
	reply, err := p.Client.Call(
		ctx, "org.freedesktop.DBus", "/org/freedesktop/DBus",
		"org.freedesktop.DBus", "RequestName", p.Timeout, string(name), doNotQueue,
	)
	if err != nil {
		return false, err
	}

	if reply.Success() {
		if p.Release {
			p.release(ctx, name)
		}
		return false, nil
	}

	switch reply.ErrorName() {
	case "org.freedesktop.DBus.Error.AccessDenied", "org.freedesktop.DBus.Error.InvalidArgs":
		return true, nil
	default:
		p.Logger.Debug("protectProbeUnknownError",
			slog.String("busName", string(name)),
			slog.String("errorName", reply.ErrorName()),
		)
		return false, nil
	}
}

func (p *ProtectProbe) release(ctx context.Context, name BusName) {
	if _, err := p.Client.Call(
		ctx, "org.freedesktop.DBus", "/org/freedesktop/DBus",
		"org.freedesktop.DBus", "ReleaseName", p.Timeout, string(name),
	); err != nil {
		p.Logger.Debug("protectProbeReleaseFailed",
			slog.String("busName", string(name)),
			slog.Any("err", err),
		)
	}
}
