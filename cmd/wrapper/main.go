// SPDX-License-Identifier: GPL-3.0-or-later

// Command wrapper runs another command with this process's bus connection
// registered as the null PolicyKit authentication agent for it, so that
// any authentication prompt the wrapped command would otherwise trigger
// resolves immediately instead of blocking on an interactive prompt.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/godbus/dbus/v5"

	"github.com/busmap/busmap"
	"github.com/busmap/busmap/wrapper"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) > 0 && args[0] == "-wrapper-child" {
		if err := wrapper.RunChild(args[1:]); err != nil {
			fmt.Fprintln(os.Stderr, "wrapper:", err)
			return 1
		}
		return 0
	}

	fs := flag.NewFlagSet("wrapper", flag.ContinueOnError)
	authPassword := fs.String("auth-password", "", "secret to send the PolicyKit agent helper")
	printActions := fs.Bool("print-actions", false, "emit AUTH <action-id> for each authentication request")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	command := fs.Args()
	if len(command) > 0 && command[0] == "--" {
		command = command[1:]
	}
	if len(command) == 0 {
		fmt.Fprintln(os.Stderr, "usage: wrapper [--auth-password PASSWORD] -- COMMAND [ARGS...]")
		return 1
	}

	cfg := busmap.NewConfig()
	cfg.AuthPassword = *authPassword
	cfg.PrintActions = *printActions

	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		fmt.Fprintln(os.Stderr, "wrapper: connecting to system bus:", err)
		return 1
	}
	defer conn.Close()

	client := busmap.NewBusClient(cfg, conn)

	selfExe, err := os.Executable()
	if err != nil {
		fmt.Fprintln(os.Stderr, "wrapper: resolving own executable path:", err)
		return 1
	}

	register := func(ctx context.Context, pid int) error {
		agent := busmap.NewNullAgent(cfg, client)
		agent.SetPID(pid)
		return agent.Register(ctx)
	}

	ctx := context.Background()
	exitCode, err := wrapper.Launch(ctx, selfExe, command, register)
	if err != nil {
		fmt.Fprintln(os.Stderr, "wrapper:", err)
		return 1
	}
	return exitCode
}
