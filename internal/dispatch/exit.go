package dispatch

import (
	"errors"
	"fmt"
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// SpawnError reports a command that could not be started.
type SpawnError struct {
	Command string
	Program string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn %q: %v", e.Program, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// Exit is what the reaper learned about a finished child.
type Exit struct {
	Command  string
	Pid      int
	ExitCode int
	// Signal is the name of the signal that killed the child, if any.
	Signal   string
	Duration time.Duration
	// Err is set for any non-success outcome, including non-zero exit.
	Err error
}

// Success reports whether the child exited with status zero.
func (e Exit) Success() bool {
	return e.Err == nil
}

func (e Exit) String() string {
	switch {
	case e.Success():
		return "exit status 0"
	case e.Signal != "":
		return "killed by " + e.Signal
	case e.ExitCode >= 0:
		return fmt.Sprintf("exit status %d", e.ExitCode)
	default:
		return e.Err.Error()
	}
}

func newExit(p pending, waitErr error) Exit {
	exit := Exit{
		Command:  p.command,
		Pid:      p.proc.Pid(),
		Duration: time.Since(p.started),
		Err:      waitErr,
	}
	if waitErr == nil {
		return exit
	}

	exit.ExitCode = -1
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		exit.ExitCode = exitErr.ExitCode()
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			exit.Signal = unix.SignalName(ws.Signal())
		}
	}
	return exit
}
