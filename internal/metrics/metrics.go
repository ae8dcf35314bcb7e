// Package metrics counts what the daemon did during one run. Nothing is
// persisted; counters start at zero on every start.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot is a consistent copy of the counters.
type Snapshot struct {
	Started         time.Time
	Uptime          time.Duration
	Chords          int64
	Dispatches      int64
	SpawnFailures   int64
	CommandFailures int64
	Reloads         int64
	ReloadFailures  int64
	DroppedKeys     int64
	Bindings        int
	LastChord       string
	LastCommand     string
}

// MetricsManager collects counters from the event loop, the reaper and the
// config watcher. All methods are safe for concurrent use.
type MetricsManager struct {
	started time.Time
	now     func() time.Time

	chords          atomic.Int64
	dispatches      atomic.Int64
	spawnFailures   atomic.Int64
	commandFailures atomic.Int64
	reloads         atomic.Int64
	reloadFailures  atomic.Int64
	droppedKeys     atomic.Int64

	mu          sync.Mutex
	bindings    int
	lastChord   string
	lastCommand string
}

func NewMetricsManager() *MetricsManager {
	return newMetricsManager(time.Now)
}

func newMetricsManager(now func() time.Time) *MetricsManager {
	return &MetricsManager{started: now(), now: now}
}

// RecordChord counts a derived chord, bound or not.
func (mm *MetricsManager) RecordChord(chord string) {
	mm.chords.Add(1)
	mm.mu.Lock()
	mm.lastChord = chord
	mm.mu.Unlock()
}

// RecordDispatch counts a dispatch attempt; err is the spawn error, if any.
func (mm *MetricsManager) RecordDispatch(command string, err error) {
	if err != nil {
		mm.spawnFailures.Add(1)
		return
	}
	mm.dispatches.Add(1)
	mm.mu.Lock()
	mm.lastCommand = command
	mm.mu.Unlock()
}

// RecordExit counts a reaped child that exited unsuccessfully.
func (mm *MetricsManager) RecordExit(success bool) {
	if !success {
		mm.commandFailures.Add(1)
	}
}

// RecordReload counts a reload of the keybinding file.
func (mm *MetricsManager) RecordReload(bindings int, err error) {
	if err != nil {
		mm.reloadFailures.Add(1)
		return
	}
	mm.reloads.Add(1)
	mm.mu.Lock()
	mm.bindings = bindings
	mm.mu.Unlock()
}

// SetBindings records the size of the initially loaded table.
func (mm *MetricsManager) SetBindings(n int) {
	mm.mu.Lock()
	mm.bindings = n
	mm.mu.Unlock()
}

// RecordDroppedKey counts a key press lost to the pressed-key limit.
func (mm *MetricsManager) RecordDroppedKey() {
	mm.droppedKeys.Add(1)
}

func (mm *MetricsManager) Snapshot() Snapshot {
	mm.mu.Lock()
	bindings, lastChord, lastCommand := mm.bindings, mm.lastChord, mm.lastCommand
	mm.mu.Unlock()

	return Snapshot{
		Started:         mm.started,
		Uptime:          mm.now().Sub(mm.started),
		Chords:          mm.chords.Load(),
		Dispatches:      mm.dispatches.Load(),
		SpawnFailures:   mm.spawnFailures.Load(),
		CommandFailures: mm.commandFailures.Load(),
		Reloads:         mm.reloads.Load(),
		ReloadFailures:  mm.reloadFailures.Load(),
		DroppedKeys:     mm.droppedKeys.Load(),
		Bindings:        bindings,
		LastChord:       lastChord,
		LastCommand:     lastCommand,
	}
}
