package input

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/holoplot/go-evdev"
)

// evdev EV_KEY values.
const (
	valueRelease = 0
	valuePress   = 1
	valueRepeat  = 2
)

// DeviceDir is where the kernel creates event device nodes.
const DeviceDir = "/dev/input"

// udev creates a node before fixing its permissions, so a fresh node may
// not be readable yet.
const (
	hotplugAttempts = 5
	hotplugInterval = 100 * time.Millisecond
)

var errNotKeyboard = errors.New("not a keyboard")

// device is the part of *evdev.InputDevice the reader needs.
type device interface {
	ReadOne() (*evdev.InputEvent, error)
	Close() error
}

// EvdevSource reads key events from /dev/input/event* devices. When Paths is
// empty every device that looks like a keyboard is used. Devices that appear
// later are opened as they are created, and a device that goes away is
// dropped without ending the stream.
type EvdevSource struct {
	Paths []string

	list  func() ([]string, error)
	open  func(path string) (device, error)
	watch func(ctx context.Context, dirs []string) (<-chan string, error)
	retry time.Duration
}

// NewEvdevSource creates a source for the given device paths.
func NewEvdevSource(paths []string) *EvdevSource {
	s := &EvdevSource{Paths: paths}
	s.setDefaults()
	return s
}

func listEventNodes() ([]string, error) {
	candidates, err := evdev.ListDevicePaths()
	if err != nil {
		return nil, fmt.Errorf("list input devices: %w", err)
	}
	paths := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		paths = append(paths, candidate.Path)
	}
	return paths, nil
}

func openAny(path string) (device, error) {
	dev, err := evdev.Open(path)
	if err != nil {
		return nil, err
	}
	return dev, nil
}

func openKeyboard(path string) (device, error) {
	dev, err := evdev.Open(path)
	if err != nil {
		return nil, err
	}
	if !isKeyboard(dev) {
		dev.Close()
		return nil, errNotKeyboard
	}
	return dev, nil
}

func isKeyboard(dev *evdev.InputDevice) bool {
	if !slices.Contains(dev.CapableTypes(), evdev.EV_KEY) {
		return false
	}
	codes := dev.CapableEvents(evdev.EV_KEY)
	return slices.Contains(codes, evdev.KEY_A) && slices.Contains(codes, evdev.KEY_ENTER)
}

func isEventNode(path string) bool {
	return strings.HasPrefix(filepath.Base(path), "event")
}

// watchDeviceNodes reports device nodes created in dirs.
func watchDeviceNodes(ctx context.Context, dirs []string) (<-chan string, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			w.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	added := make(chan string)
	go func() {
		defer close(added)
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Create) {
					continue
				}
				select {
				case added <- ev.Name:
				case <-ctx.Done():
					return
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.Warn("[input] device watch error", "error", err)
			}
		}
	}()
	return added, nil
}

// Events implements Source. Each device is read by its own goroutine; all of
// them feed one channel, which stays open until ctx is cancelled even if
// every device goes away. Cancelling ctx closes the devices, which
// interrupts blocked reads. It fails only when no device can be opened.
func (s *EvdevSource) Events(ctx context.Context) (<-chan KeyEvent, error) {
	s.setDefaults()
	paths := s.Paths
	if len(paths) == 0 {
		listed, err := s.list()
		if err != nil {
			return nil, err
		}
		paths = listed
	}

	out := make(chan KeyEvent, 64)
	set := newDeviceSet(out)
	opened := 0
	for _, path := range paths {
		dev, err := s.open(path)
		if err != nil {
			if !errors.Is(err, errNotKeyboard) {
				slog.Warn("[input] failed to open device", "path", path, "error", err)
			}
			continue
		}
		if set.add(ctx, path, dev) {
			opened++
		}
	}
	if opened == 0 {
		return nil, ErrNoKeyboards
	}

	added, err := s.watch(ctx, s.watchDirs())
	if err != nil {
		slog.Warn("[input] keyboards plugged in later will not be seen", "error", err)
	} else {
		set.wg.Add(1)
		go func() {
			defer set.wg.Done()
			s.hotplug(ctx, set, added)
		}()
	}

	go func() {
		<-ctx.Done()
		set.closeAll()
		set.wg.Wait()
		close(out)
	}()

	slog.Info("[input] reading keyboards", "devices", set.paths())
	return out, nil
}

func (s *EvdevSource) setDefaults() {
	if s.list == nil {
		s.list = listEventNodes
	}
	if s.open == nil {
		s.open = openKeyboard
		if len(s.Paths) > 0 {
			s.open = openAny
		}
	}
	if s.watch == nil {
		s.watch = watchDeviceNodes
	}
	if s.retry <= 0 {
		s.retry = hotplugInterval
	}
}

func (s *EvdevSource) watchDirs() []string {
	if len(s.Paths) == 0 {
		return []string{DeviceDir}
	}
	var dirs []string
	for _, path := range s.Paths {
		if dir := filepath.Dir(path); !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

func (s *EvdevSource) wanted(path string) bool {
	if len(s.Paths) == 0 {
		return isEventNode(path)
	}
	return slices.Contains(s.Paths, path)
}

func (s *EvdevSource) hotplug(ctx context.Context, set *deviceSet, added <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case path, ok := <-added:
			if !ok {
				return
			}
			if !s.wanted(path) || set.has(path) {
				continue
			}
			dev, err := s.openWithRetry(ctx, path)
			if err != nil {
				if !errors.Is(err, errNotKeyboard) && ctx.Err() == nil {
					slog.Warn("[input] failed to open new device", "path", path, "error", err)
				}
				continue
			}
			if set.add(ctx, path, dev) {
				slog.Info("[input] keyboard added", "device", path)
			}
		}
	}
}

func (s *EvdevSource) openWithRetry(ctx context.Context, path string) (device, error) {
	var err error
	for attempt := 0; attempt < hotplugAttempts; attempt++ {
		var dev device
		if dev, err = s.open(path); err == nil || errors.Is(err, errNotKeyboard) {
			return dev, err
		}

		timer := time.NewTimer(s.retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return nil, err
}

// deviceSet tracks the open devices and their reader goroutines.
type deviceSet struct {
	out chan<- KeyEvent
	wg  sync.WaitGroup

	mu      sync.Mutex
	devices map[string]device
	closed  bool
}

func newDeviceSet(out chan<- KeyEvent) *deviceSet {
	return &deviceSet{out: out, devices: make(map[string]device)}
}

// add starts reading dev. It reports false, closing dev, if path is already
// open or the set is shutting down.
func (s *deviceSet) add(ctx context.Context, path string, dev device) bool {
	s.mu.Lock()
	if _, exists := s.devices[path]; exists || s.closed {
		s.mu.Unlock()
		dev.Close()
		return false
	}
	s.devices[path] = dev
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		readDevice(ctx, dev, path, s.out)
		s.drop(ctx, path, dev)
	}()
	return true
}

// drop forgets a device whose reads failed and tells the consumer that any
// keys it was holding are gone.
func (s *deviceSet) drop(ctx context.Context, path string, dev device) {
	s.mu.Lock()
	current, ok := s.devices[path]
	owned := ok && current == dev
	if owned {
		delete(s.devices, path)
	}
	remaining := len(s.devices)
	s.mu.Unlock()

	if !owned {
		return
	}
	dev.Close()
	if ctx.Err() != nil {
		return
	}
	slog.Warn("[input] keyboard removed", "device", path, "remaining", remaining)

	select {
	case s.out <- KeyEvent{State: DeviceLost, Time: time.Now(), Device: path}:
	case <-ctx.Done():
	}
}

func (s *deviceSet) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for path, dev := range s.devices {
		dev.Close()
		delete(s.devices, path)
	}
}

func (s *deviceSet) has(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.devices[path]
	return ok
}

func (s *deviceSet) paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	paths := make([]string, 0, len(s.devices))
	for path := range s.devices {
		paths = append(paths, path)
	}
	slices.Sort(paths)
	return paths
}

func readDevice(ctx context.Context, dev device, name string, out chan<- KeyEvent) {
	for {
		ev, err := dev.ReadOne()
		if err != nil {
			if ctx.Err() == nil {
				slog.Debug("[input] device read failed", "device", name, "error", err)
			}
			return
		}

		keyEvent, ok := translate(ev, name)
		if !ok {
			continue
		}

		select {
		case out <- keyEvent:
		case <-ctx.Done():
			return
		}
	}
}

// translate converts an evdev event into a KeyEvent. Non-key events and
// autorepeat are dropped.
func translate(ev *evdev.InputEvent, device string) (KeyEvent, bool) {
	if ev.Type != evdev.EV_KEY {
		return KeyEvent{}, false
	}

	var state KeyState
	switch ev.Value {
	case valuePress:
		state = Pressed
	case valueRelease:
		state = Released
	default:
		return KeyEvent{}, false
	}

	return KeyEvent{
		Code:   uint16(ev.Code),
		State:  state,
		Time:   time.Unix(int64(ev.Time.Sec), int64(ev.Time.Usec)*int64(time.Microsecond)),
		Device: device,
	}, true
}
