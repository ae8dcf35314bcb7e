// Package dispatch launches bound commands without blocking the event loop
// and reaps them on a background worker.
package dispatch

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/clef-project/clef/internal/workerutil"
)

type pending struct {
	command string
	proc    Process
	started time.Time
}

// reapQueue is an unbounded FIFO handing processes from Dispatch to the
// reaper. push never blocks.
type reapQueue struct {
	mu     sync.Mutex
	items  []pending
	notify chan struct{}
}

func newReapQueue() *reapQueue {
	return &reapQueue{notify: make(chan struct{}, 1)}
}

func (q *reapQueue) push(p pending) {
	q.mu.Lock()
	q.items = append(q.items, p)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// pop blocks until an item is queued or ctx is done.
func (q *reapQueue) pop(ctx context.Context) (pending, bool) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			p := q.items[0]
			q.items[0] = pending{}
			q.items = q.items[1:]
			q.mu.Unlock()
			return p, true
		}
		q.mu.Unlock()

		select {
		case <-q.notify:
		case <-ctx.Done():
			return pending{}, false
		}
	}
}

func (q *reapQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithSpawner replaces the os/exec spawner.
func WithSpawner(s Spawner) Option {
	return func(d *Dispatcher) { d.spawner = s }
}

// WithExitHandler registers fn to receive every reaped Exit. fn runs on the
// reaper goroutine.
func WithExitHandler(fn func(Exit)) Option {
	return func(d *Dispatcher) { d.onExit = fn }
}

// Dispatcher implements hotkeys.Launcher.
type Dispatcher struct {
	spawner Spawner
	queue   *reapQueue
	onExit  func(Exit)
}

func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		spawner: ExecSpawner{},
		queue:   newReapQueue(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start runs the reaper until ctx is cancelled. Children still running at
// that point are left alone.
func (d *Dispatcher) Start(ctx context.Context, wg *sync.WaitGroup) {
	workerutil.RunWithPanicRecovery(ctx, "reaper", wg, d.reap, workerutil.RecoveryOptions{})
}

// Dispatch splits commandLine on whitespace and starts it. A blank command
// line is a no-op. Only spawn failures are returned; the exit status is
// collected by the reaper.
func (d *Dispatcher) Dispatch(commandLine string) error {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return nil
	}

	proc, err := d.spawner.Spawn(fields[0], fields[1:])
	if err != nil {
		return &SpawnError{Command: commandLine, Program: fields[0], Err: err}
	}

	slog.Debug("[dispatch] spawned", "command", commandLine, "pid", proc.Pid())
	d.queue.push(pending{command: commandLine, proc: proc, started: time.Now()})
	return nil
}

// Pending returns the number of children handed off but not yet picked up
// by the reaper.
func (d *Dispatcher) Pending() int {
	return d.queue.len()
}

func (d *Dispatcher) reap(ctx context.Context) {
	for {
		p, ok := d.queue.pop(ctx)
		if !ok {
			return
		}

		exit := newExit(p, p.proc.Wait())
		if exit.Success() {
			slog.Debug("[reaper] command finished",
				"command", exit.Command, "pid", exit.Pid, "duration", exit.Duration)
		} else {
			slog.Warn("[reaper] command failed",
				"command", exit.Command, "pid", exit.Pid, "status", exit.String())
		}

		if d.onExit != nil {
			d.onExit(exit)
		}
	}
}
