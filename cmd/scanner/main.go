// SPDX-License-Identifier: GPL-3.0-or-later

// Command scanner enumerates D-Bus services on a bus, correlates each to
// its owning OS process, and optionally walks and probes their
// introspection trees to classify method and property access control.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/busmap/busmap"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("scanner", flag.ContinueOnError)
	dumpMethods := fs.Bool("dump-methods", false, "enable the method visitor")
	dumpProperties := fs.Bool("dump-properties", false, "enable the property visitor")
	session := fs.Bool("session", false, "use the user bus instead of the system bus")
	includeInvalid := fs.Bool("include-invalid", false, "include properties that cannot be probed")
	enableProbes := fs.Bool("enable-probes", false, "actively probe methods/properties (destructive; off by default)")
	strictInvalidBodies := fs.Bool("strict-invalid-bodies", false, "use one mistyped argument per declared parameter instead of a single stopgap value")
	nullAgent := fs.Bool("null-agent", false, "register the null authentication agent for this process")
	// flag has no optional-value syntax; --dump-actions=FILTER narrows,
	// --dump-actions= (or =all) enumerates everything.
	dumpActions := fs.String("dump-actions", "", "enumerate authority actions; filter string, or empty/\"all\" for everything")
	dumpActionsSet := false
	printActions := fs.Bool("print-actions", false, "emit AUTH <action-id> for each received authentication request")
	timeoutMillis := fs.Int64("timeout", 500, "per-call timeout in milliseconds; -1 = infinite")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "dump-actions" {
			dumpActionsSet = true
		}
	})

	cfg := busmap.NewConfig()
	cfg.DumpMethods = *dumpMethods
	cfg.DumpProperties = *dumpProperties
	cfg.SessionBus = *session
	cfg.IncludeInvalid = *includeInvalid
	cfg.EnableProbes = *enableProbes
	cfg.StrictInvalidBodies = *strictInvalidBodies
	cfg.NullAgentEnabled = *nullAgent
	cfg.DumpActions = dumpActionsSet
	cfg.ActionFilter = *dumpActions
	cfg.PrintActions = *printActions
	if *timeoutMillis < 0 {
		cfg.Timeout = -1
	} else {
		cfg.Timeout = time.Duration(*timeoutMillis) * time.Millisecond
	}
	if fs.NArg() > 0 {
		cfg.Name = fs.Arg(0)
	}

	conn, err := connectBus(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "scanner: connecting to bus:", err)
		return 1
	}
	defer conn.Close()

	client := busmap.NewBusClient(cfg, conn)
	ctx := context.Background()

	if cfg.NullAgentEnabled {
		agent := busmap.NewNullAgent(cfg, client)
		if err := agent.Register(ctx); err != nil {
			fmt.Fprintln(os.Stderr, "scanner: registering null agent:", err)
		}
	}

	if cfg.DumpActions {
		if err := runDumpActions(ctx, cfg, client); err != nil {
			fmt.Fprintln(os.Stderr, "scanner:", err)
			return 1
		}
		return 0
	}

	orch := busmap.NewOrchestrator(cfg, client)
	if err := orch.Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "scanner:", err)
		return 1
	}
	return 0
}

func runDumpActions(ctx context.Context, cfg *busmap.Config, client *busmap.BusClient) error {
	enumerator := busmap.NewActionEnumerator(cfg, client)
	actions, err := enumerator.Enumerate(ctx)
	if err != nil {
		return err
	}
	filter := busmap.ParseActionFilter(cfg.ActionFilter)
	for _, action := range actions {
		if !filter.Match(action) {
			continue
		}
		fmt.Println(busmap.FormatAction(action))
	}
	return nil
}

func connectBus(cfg *busmap.Config) (*dbus.Conn, error) {
	if cfg.SessionBus {
		return dbus.ConnectSessionBus()
	}
	return dbus.ConnectSystemBus()
}
