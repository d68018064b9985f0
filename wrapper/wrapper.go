// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: original_source/pkwrapper.c (fork a child, register a
// PolicyKit agent for its pid, then let it exec the wrapped command).
//
// The original fixes the registration race with two fixed sleeps: the
// child sleeps 10s before execvp, the parent sleeps 5s before
// registering. Per this package's Open Question #3 decision, this
// implementation replaces both sleeps with a handshake pipe: the child
// blocks on a read until the parent confirms agent registration
// succeeded, and the parent never has to guess how long registration
// takes.
package wrapper

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"golang.org/x/sys/unix"
)

// childModeEnv is set in the child's environment so that [IsChildMode] can
// report a re-invoked child. Child mode itself is selected by the
// "-wrapper-child" argument that [Launch] passes.
const childModeEnv = "BUSMAP_WRAPPER_CHILD"

// RegisterFunc registers the null authentication agent for pid, returning
// an error if registration fails.
type RegisterFunc func(ctx context.Context, pid int) error

// Launch starts command under a child process, registers the null agent
// for that child's pid before it execs into command, and waits for it to
// exit. selfExe is the path to this same binary, re-invoked in child mode
// to perform the handshake and exec.
func Launch(ctx context.Context, selfExe string, command []string, register RegisterFunc) (int, error) {
	if len(command) == 0 {
		return 0, fmt.Errorf("busmap: wrapper requires a command to run")
	}

	readEnd, writeEnd, err := os.Pipe()
	if err != nil {
		return 0, fmt.Errorf("busmap: creating handshake pipe: %w", err)
	}
	defer writeEnd.Close()

	cmd := exec.Command(selfExe, append([]string{"-wrapper-child"}, command...)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.ExtraFiles = []*os.File{readEnd}
	cmd.Env = append(os.Environ(), childModeEnv+"=1")

	if err := cmd.Start(); err != nil {
		readEnd.Close()
		return 0, fmt.Errorf("busmap: starting wrapped command: %w", err)
	}
	readEnd.Close()

	pid := cmd.Process.Pid
	regErr := register(ctx, pid)

	ack := []byte{0}
	if regErr == nil {
		ack[0] = 1
	}
	if _, err := writeEnd.Write(ack); err != nil {
		_ = cmd.Process.Kill()
		return 0, fmt.Errorf("busmap: signaling wrapped child: %w", err)
	}
	if err := writeEnd.Close(); err != nil {
		return 0, err
	}

	if regErr != nil {
		_ = cmd.Wait()
		return 0, fmt.Errorf("busmap: registering null agent for pid %d: %w", pid, regErr)
	}

	err = cmd.Wait()
	exitCode := 0
	if exitErr, ok := err.(*exec.ExitError); ok {
		exitCode = exitErr.ExitCode()
	} else if err != nil {
		return 0, err
	}
	return exitCode, nil
}

// RunChild is the child-mode entry point: it blocks on the inherited
// handshake fd for the parent's go/no-go byte, then replaces this
// process's image with command, preserving pid across the exec so the
// agent registration the parent performed while we blocked remains valid.
//
// It never returns on success: unix.Exec replaces the process image.
func RunChild(command []string) error {
	if len(command) == 0 {
		return fmt.Errorf("busmap: wrapper child requires a command to exec")
	}

	handshake := os.NewFile(3, "busmap-handshake")
	if handshake == nil {
		return fmt.Errorf("busmap: wrapper child missing handshake fd")
	}
	defer handshake.Close()

	buf := make([]byte, 1)
	if _, err := handshake.Read(buf); err != nil {
		return fmt.Errorf("busmap: wrapper child handshake read failed: %w", err)
	}
	if buf[0] != 1 {
		return fmt.Errorf("busmap: wrapper parent declined to proceed (agent registration failed)")
	}

	path, err := exec.LookPath(command[0])
	if err != nil {
		return fmt.Errorf("busmap: wrapper child could not find %q: %w", command[0], err)
	}
	return unix.Exec(path, command, os.Environ())
}

// IsChildMode reports whether this process was re-invoked in child mode.
func IsChildMode() bool {
	return os.Getenv(childModeEnv) == "1"
}
