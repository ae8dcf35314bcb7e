package feedback

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"
)

const (
	SampleRate = 44100
	Frames     = 512

	toneAmplitude = 0.2
)

// TonePlayer plays short sine tones on the default output device.
type TonePlayer struct {
	mu     sync.Mutex
	closed bool
}

// NewTonePlayer initializes PortAudio. Close must be called to release it.
func NewTonePlayer() (*TonePlayer, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize audio: %w", err)
	}
	return &TonePlayer{}, nil
}

// Play blocks while a tone of freq Hz plays for d.
func (p *TonePlayer) Play(freq float64, d time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return fmt.Errorf("tone player closed")
	}

	out := make([]float32, Frames)
	stream, err := portaudio.OpenDefaultStream(0, 1, SampleRate, len(out), out)
	if err != nil {
		return fmt.Errorf("open output stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("start output stream: %w", err)
	}
	defer stream.Stop()

	total := int(d.Seconds() * SampleRate)
	phase := 0.0
	for written := 0; written < total; written += len(out) {
		phase = sineWave(out, freq, SampleRate, phase, toneAmplitude)
		if err := stream.Write(); err != nil {
			return fmt.Errorf("write output stream: %w", err)
		}
	}
	return nil
}

// Close terminates PortAudio.
func (p *TonePlayer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	portaudio.Terminate()
}

// sineWave fills buf with a sine of freq starting at phase (radians) and
// returns the phase after the last sample, so consecutive buffers join up.
func sineWave(buf []float32, freq, sampleRate, phase, amplitude float64) float64 {
	step := 2 * math.Pi * freq / sampleRate
	for i := range buf {
		buf[i] = float32(amplitude * math.Sin(phase))
		phase += step
	}
	return math.Mod(phase, 2*math.Pi)
}
