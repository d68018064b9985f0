// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: other_examples/3dfad78a_nikicat-secrets-dispatcher__internal-daemon-daemon_test.go.go
// (godbus/dbus/v5 conn.Export method-dispatch shape)

package busmap

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/godbus/dbus/v5"
	"golang.org/x/sys/unix"
)

const (
	agentObjectPath = dbus.ObjectPath("/")
	agentIface      = "org.freedesktop.PolicyKit1.AuthenticationAgent"
	cancelledError  = "org.freedesktop.PolicyKit1.Error.Cancelled"
)

// agentHelperPaths are the fixed locations the PolicyKit agent helper is
// installed at across distributions, tried in order.
var agentHelperPaths = []string{
	"/usr/lib/policykit-1/polkit-agent-helper-1",
	"/usr/lib/polkit-1/polkit-agent-helper-1",
	"/usr/libexec/polkit-agent-helper-1",
}

// NullAgent registers itself with the PolicyKit authority as the
// authentication agent for this process, so that any action the scan
// triggers which would otherwise pop an interactive prompt instead
// resolves immediately, per §4.8.
//
// With no password configured, every request is cancelled. With a password
// configured and a unix-user identity in the request matching this
// process's real uid, the agent attempts completion through the platform's
// agent helper binary before falling back to cancellation; any other
// request is cancelled.
type NullAgent struct {
	Client       *BusClient
	Logger       SLogger
	Timeout      time.Duration
	Password     string
	PrintActions bool

	pid uint32
}

// NewNullAgent builds a [*NullAgent] from cfg.
func NewNullAgent(cfg *Config, client *BusClient) *NullAgent {
	return &NullAgent{
		Client:       client,
		Logger:       cfg.Logger,
		Timeout:      cfg.Timeout,
		Password:     cfg.AuthPassword,
		PrintActions: cfg.PrintActions,
		pid:          uint32(os.Getpid()),
	}
}

// SetPID overrides the unix-process identity the agent registers for,
// used by the child wrapper to register on behalf of the process it
// forked rather than itself.
func (a *NullAgent) SetPID(pid int) {
	a.pid = uint32(pid)
}

// Register exports the agent object and registers it with the authority
// for the configured unix-process identity (this process's own pid by
// default, or the pid set via [*NullAgent.SetPID]), per §4.8.
func (a *NullAgent) Register(ctx context.Context) error {
	if err := a.Client.RegisterObject(agentObjectPath, agentIface, a); err != nil {
		return fmt.Errorf("busmap: exporting authentication agent: %w", err)
	}

	subject := identityWire{
		Kind: "unix-process",
		Details: map[string]dbus.Variant{
			"pid":        dbus.MakeVariant(a.pid),
			"start-time": dbus.MakeVariant(uint64(0)),
		},
	}

	reply, err := a.Client.Call(
		ctx, policyKitBusName, policyKitPath, policyKitIface, "RegisterAuthenticationAgent", a.Timeout,
		subject, "C", string(agentObjectPath),
	)
	if err != nil {
		return err
	}
	if !reply.Success() {
		return fmt.Errorf("busmap: RegisterAuthenticationAgent failed: %s", reply.ErrorName())
	}
	return nil
}

// BeginAuthentication implements the AuthenticationAgent interface's sole
// inbound method, dispatched by [*dbus.Conn] via conn.Export.
func (a *NullAgent) BeginAuthentication(
	actionID, message, iconName string, details map[string]string,
	cookie string, identities []identityWire,
) *dbus.Error {
	if a.PrintActions {
		fmt.Printf("AUTH %s\n", actionID)
	}

	a.Logger.Info("nullAgentBeginAuthentication",
		slog.String("actionId", actionID),
		slog.String("cookie", cookie),
	)

	if a.Password == "" || !identitiesMatchUID(identities, uint32(unix.Getuid())) {
		return dbus.NewError(cancelledError, []any{"busmap: null agent declines all authentication"})
	}

	if a.complete(cookie) {
		return nil
	}
	return dbus.NewError(cancelledError, []any{"busmap: null agent could not complete authentication"})
}

// identitiesMatchUID reports whether identities contains a unix-user entry
// whose uid equals want, per §4.8's complete condition (a secret configured
// and the running process's real uid among the request's identities).
func identitiesMatchUID(identities []identityWire, want uint32) bool {
	for _, id := range identities {
		identity := Identity(id)
		if uid, ok := identity.UnixUserUID(); ok && uid == want {
			return true
		}
	}
	return false
}

// complete attempts to satisfy the authentication by driving the platform
// agent helper binary with the configured password, returning true only if
// the helper reports success.
func (a *NullAgent) complete(cookie string) bool {
	helper := a.findHelper()
	if helper == "" {
		a.Logger.Debug("nullAgentHelperNotFound")
		return false
	}

	cmd := exec.Command(helper, "-", os.Getenv("USER"), cookie)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		a.Logger.Debug("nullAgentHelperStdinFailed", slog.Any("err", err))
		return false
	}
	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Start(); err != nil {
		a.Logger.Debug("nullAgentHelperStartFailed", slog.Any("err", err))
		return false
	}

	written := make(chan error, 1)
	go func() {
		_, err := stdin.Write([]byte(a.Password + "\n"))
		stdin.Close()
		written <- err
	}()

	select {
	case err := <-written:
		if err != nil {
			a.Logger.Debug("nullAgentHelperWriteFailed", slog.Any("err", err))
			_ = cmd.Process.Kill()
			return false
		}
	case <-time.After(a.Timeout):
		a.Logger.Debug("nullAgentHelperWriteTimeout")
		_ = cmd.Process.Kill()
		return false
	}

	if err := cmd.Wait(); err != nil {
		a.Logger.Debug("nullAgentHelperExitFailed", slog.Any("err", err), slog.String("stdout", stdout.String()))
		return false
	}
	return true
}

func (a *NullAgent) findHelper() string {
	for _, path := range agentHelperPaths {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}
