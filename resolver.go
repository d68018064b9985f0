// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: other_examples/c4600cb2_nya3jp-tast-tests__...sandboxed_services.go.go
// (github.com/shirou/gopsutil/process used to read effective user/group,
// command line, and supplementary groups for a running process)

package busmap

import (
	"context"
	"log/slog"
	"os/user"
	"strconv"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// Resolver maps a bus name to the OS process that owns it, per §4.2.
type Resolver struct {
	Client  *BusClient
	Logger  SLogger
	TimeNow func() time.Time
	Timeout time.Duration

	// lookupProcess is overridable in tests.
	lookupProcess func(pid int32) (*ProcessRecord, error)
}

// NewResolver builds a [*Resolver] from cfg and an existing [*BusClient].
func NewResolver(cfg *Config, client *BusClient) *Resolver {
	return &Resolver{
		Client:        client,
		Logger:        cfg.Logger,
		TimeNow:       cfg.TimeNow,
		Timeout:       cfg.Timeout,
		lookupProcess: lookupProcess,
	}
}

// Resolve returns the [*ProcessRecord] owning name, or nil if the daemon
// could not answer GetConnectionUnixProcessID with the expected (u) reply,
// or if the process table read failed (missing process or permission
// denied) — per §4.2, both are "return null", and the orchestrator emits a
// placeholder row.
func (r *Resolver) Resolve(ctx context.Context, name BusName) (*ProcessRecord, error) {
	body, err := r.Client.SendAndExpect(
		ctx, "org.freedesktop.DBus", "/org/freedesktop/DBus",
		"org.freedesktop.DBus", "GetConnectionUnixProcessID", "u", r.Timeout, string(name),
	)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, nil
	}
	pid, ok := body[0].(uint32)
	if !ok {
		return nil, nil
	}

	record, lerr := r.lookupProcess(int32(pid))
	if lerr != nil {
		r.Logger.Debug("processLookupFailed",
			slog.String("busName", string(name)),
			slog.Int("pid", int(pid)),
			slog.Any("err", lerr),
		)
		return nil, nil
	}
	return record, nil
}

func lookupProcess(pid int32) (*ProcessRecord, error) {
	proc, err := process.NewProcess(pid)
	if err != nil {
		return nil, err
	}
	cmdline, err := proc.CmdlineSlice()
	if err != nil {
		cmdline = nil
	}
	environ, err := proc.Environ()
	if err != nil {
		environ = nil
	}
	uids, err := proc.Uids()
	if err != nil || len(uids) == 0 {
		return nil, err
	}
	gids, err := proc.Gids()
	if err != nil || len(gids) == 0 {
		return nil, err
	}
	groups, err := proc.Groups()
	if err != nil {
		groups = nil
	}

	euid := euidFrom(uids)
	egid := euidFrom(gids)

	return &ProcessRecord{
		PID:                 pid,
		EUser:               lookupUserName(euid),
		EGroup:              lookupGroupName(egid),
		Cmdline:             cmdline,
		Environ:             environ,
		SupplementaryGroups: groupNames(groups),
	}, nil
}

// euidFrom returns the effective id, which gopsutil reports as the second
// entry of Uids()/Gids() (real, effective, saved, filesystem) on Linux.
func euidFrom(ids []int32) int32 {
	if len(ids) > 1 {
		return ids[1]
	}
	return ids[0]
}

func lookupUserName(uid int32) string {
	u, err := user.LookupId(strconv.Itoa(int(uid)))
	if err != nil {
		return strconv.Itoa(int(uid))
	}
	return u.Username
}

func lookupGroupName(gid int32) string {
	g, err := user.LookupGroupId(strconv.Itoa(int(gid)))
	if err != nil {
		return strconv.Itoa(int(gid))
	}
	return g.Name
}

func groupNames(gids []int32) []string {
	names := make([]string, 0, len(gids))
	for _, gid := range gids {
		names = append(names, lookupGroupName(gid))
	}
	return names
}
