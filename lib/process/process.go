// Copyright 2026 The Mpvhost Authors
// SPDX-License-Identifier: Apache-2.0

// Package process holds small helpers shared by binary entrypoints and
// the subprocess supervisor: the standard fatal-error exit and exit
// status decoding for reaped child processes.
package process

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// Fatal writes "error: err" to stderr and exits with code 1. Use in
// main() for errors from run() where the structured logger may not be
// initialized yet.
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

// ExitStatus decodes the result of exec.Cmd.Wait. It returns the exit
// code and, when the child died from a signal, the signal's name
// ("SIGKILL", "SIGSEGV", ...). A signaled exit reports code -1. A nil
// error reports (0, ""). Errors that are not *exec.ExitError (wait
// failures, I/O errors) report (-1, "").
func ExitStatus(err error) (code int, signal string) {
	if err == nil {
		return 0, ""
	}
	var exitError *exec.ExitError
	if !errors.As(err, &exitError) {
		return -1, ""
	}
	if status, ok := exitError.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return -1, unix.SignalName(unix.Signal(status.Signal()))
	}
	return exitError.ExitCode(), ""
}
