package metrics

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

type TimeFormatter struct{}

func NewTimeFormatter() *TimeFormatter {
	return &TimeFormatter{}
}

// FormatDurationShort renders d as "1h 5m", "3m 2s" or "7s".
func (tf *TimeFormatter) FormatDurationShort(duration time.Duration) string {
	if duration < time.Second {
		return "0s"
	}

	hours := int(duration.Hours())
	minutes := int(duration.Minutes()) % 60
	seconds := int(duration.Seconds()) % 60

	if hours > 0 {
		if minutes > 0 {
			return fmt.Sprintf("%dh %dm", hours, minutes)
		}
		return fmt.Sprintf("%dh", hours)
	}

	if minutes > 0 {
		if seconds > 0 {
			return fmt.Sprintf("%dm %ds", minutes, seconds)
		}
		return fmt.Sprintf("%dm", minutes)
	}

	return fmt.Sprintf("%ds", seconds)
}

type StatsFormatter struct {
	timeFormatter *TimeFormatter
}

func NewStatsFormatter() *StatsFormatter {
	return &StatsFormatter{
		timeFormatter: NewTimeFormatter(),
	}
}

// FormatStatusLine renders the one-line live status.
func (sf *StatsFormatter) FormatStatusLine(s Snapshot) string {
	line := fmt.Sprintf("⌨️  %d bindings | %d chords | %d dispatched | up %s",
		s.Bindings, s.Chords, s.Dispatches, sf.timeFormatter.FormatDurationShort(s.Uptime))
	if failures := s.SpawnFailures + s.CommandFailures; failures > 0 {
		line += fmt.Sprintf(" | %d failed", failures)
	}
	if s.LastChord != "" {
		line += " | last: " + s.LastChord
	}
	return line
}

// FormatSummary renders the multi-line shutdown report.
func (sf *StatsFormatter) FormatSummary(s Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 Session summary (%s):\n", sf.timeFormatter.FormatDurationShort(s.Uptime))
	fmt.Fprintf(&b, "   Chords recognized: %d\n", s.Chords)
	fmt.Fprintf(&b, "   Commands dispatched: %d\n", s.Dispatches)
	fmt.Fprintf(&b, "   Spawn failures: %d\n", s.SpawnFailures)
	fmt.Fprintf(&b, "   Command failures: %d\n", s.CommandFailures)
	fmt.Fprintf(&b, "   Reloads: %d (%d failed)\n", s.Reloads, s.ReloadFailures)
	fmt.Fprintf(&b, "   Dropped keys: %d", s.DroppedKeys)
	return b.String()
}

// LogSummary writes the counters as one structured log record.
func LogSummary(s Snapshot) {
	slog.Info("[daemon] session summary",
		"uptime", s.Uptime.Round(time.Second),
		"chords", s.Chords,
		"dispatches", s.Dispatches,
		"spawnFailures", s.SpawnFailures,
		"commandFailures", s.CommandFailures,
		"reloads", s.Reloads,
		"reloadFailures", s.ReloadFailures,
		"droppedKeys", s.DroppedKeys,
	)
}
