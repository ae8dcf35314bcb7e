package feedback

import (
	"log/slog"
	"os"

	"github.com/gen2brain/beeep"
)

// Cue selects a feedback sound.
type Cue int

const (
	CueDispatch Cue = iota
	CueError
)

func (c Cue) String() string {
	switch c {
	case CueDispatch:
		return "dispatch"
	case CueError:
		return "error"
	default:
		return "unknown"
	}
}

var (
	beepFn = func(freq float64, durationMs int) error {
		return beeep.Beep(freq, durationMs)
	}
	notifyFn = func(title, message string) error {
		return beeep.Notify(title, message, "")
	}
)

// PlayBeep plays the system beep for cue, falling back to the terminal bell.
func PlayBeep(cue Cue) {
	var err error
	switch cue {
	case CueDispatch:
		err = beepFn(beeep.DefaultFreq*2, beeep.DefaultDuration/5)
	case CueError:
		err = beepFn(beeep.DefaultFreq/2, beeep.DefaultDuration/2)
	default:
		return
	}
	if err != nil {
		slog.Debug("[feedback] system beep failed, ringing terminal bell", "cue", cue, "error", err)
		os.Stderr.Write([]byte("\a"))
	}
}

// Notify shows a desktop notification.
func Notify(title, message string) error {
	return notifyFn(title, message)
}
