// Package feedback gives optional audible and desktop cues for dispatches and
// errors. Cues are played on a background worker so callers never wait on
// audio or notification daemons.
package feedback

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/clef-project/clef/internal/workerutil"
)

const (
	dispatchToneFreq     = 880.0
	dispatchToneDuration = 60 * time.Millisecond
	queueSize            = 8
	notifyTitle          = "clef"
)

// Options selects which cues are enabled.
type Options struct {
	BeepOnError    bool
	NotifyOnError  bool
	ToneOnDispatch bool
}

// Enabled reports whether any cue is on.
func (o Options) Enabled() bool {
	return o.BeepOnError || o.NotifyOnError || o.ToneOnDispatch
}

type request struct {
	cue     Cue
	message string
}

// Feedback queues cues for a background worker. The zero value is not
// usable; create one with New.
type Feedback struct {
	opts     Options
	tone     *TonePlayer
	requests chan request
	dropped  int
	mu       sync.Mutex
}

// New prepares the enabled cues. If audio output cannot be initialized the
// dispatch tone is disabled and the rest keep working.
func New(opts Options) *Feedback {
	f := &Feedback{
		opts:     opts,
		requests: make(chan request, queueSize),
	}
	if opts.ToneOnDispatch {
		tone, err := NewTonePlayer()
		if err != nil {
			slog.Warn("[feedback] dispatch tone disabled", "error", err)
			f.opts.ToneOnDispatch = false
		} else {
			f.tone = tone
		}
	}
	return f
}

// Start runs the cue worker until ctx is cancelled.
func (f *Feedback) Start(ctx context.Context, wg *sync.WaitGroup) {
	workerutil.RunWithPanicRecovery(ctx, "feedback", wg, f.run, workerutil.RecoveryOptions{MaxRetries: 3})
}

// Dispatched queues the dispatch tone, if enabled.
func (f *Feedback) Dispatched() {
	if f.opts.ToneOnDispatch {
		f.enqueue(request{cue: CueDispatch})
	}
}

// Error queues the error beep and notification, if enabled.
func (f *Feedback) Error(message string) {
	if f.opts.BeepOnError || f.opts.NotifyOnError {
		f.enqueue(request{cue: CueError, message: message})
	}
}

// Dropped returns how many cues were discarded because the queue was full.
func (f *Feedback) Dropped() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dropped
}

// Close releases audio resources. Call after the worker has stopped.
func (f *Feedback) Close() {
	if f.tone != nil {
		f.tone.Close()
	}
}

func (f *Feedback) enqueue(r request) {
	select {
	case f.requests <- r:
	default:
		f.mu.Lock()
		f.dropped++
		f.mu.Unlock()
	}
}

func (f *Feedback) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case r := <-f.requests:
			f.play(r)
		}
	}
}

func (f *Feedback) play(r request) {
	switch r.cue {
	case CueDispatch:
		if f.tone == nil {
			PlayBeep(CueDispatch)
			return
		}
		if err := f.tone.Play(dispatchToneFreq, dispatchToneDuration); err != nil {
			slog.Debug("[feedback] tone failed", "error", err)
		}
	case CueError:
		if f.opts.BeepOnError {
			PlayBeep(CueError)
		}
		if f.opts.NotifyOnError {
			if err := Notify(notifyTitle, r.message); err != nil {
				slog.Debug("[feedback] notification failed", "error", err)
			}
		}
	}
}
