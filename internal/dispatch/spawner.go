package dispatch

import (
	"os/exec"
	"syscall"
)

// Process is a started child that can be waited on exactly once.
type Process interface {
	Pid() int
	Wait() error
}

// Spawner starts a detached child process.
type Spawner interface {
	Spawn(program string, args []string) (Process, error)
}

// ExecSpawner starts children with os/exec. Standard input, output and error
// are attached to the null device and each child gets its own process group,
// so terminal signals aimed at the daemon do not reach it.
type ExecSpawner struct{}

func (ExecSpawner) Spawn(program string, args []string) (Process, error) {
	cmd := exec.Command(program, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return execProcess{cmd: cmd}, nil
}

type execProcess struct {
	cmd *exec.Cmd
}

func (p execProcess) Pid() int {
	return p.cmd.Process.Pid
}

func (p execProcess) Wait() error {
	return p.cmd.Wait()
}
