package bot

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"minebuddy.app/internal/protocol"
	"minebuddy.app/internal/storage"
	"minebuddy.app/internal/tuning"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

// fakeHub records everything broadcast during a test.
type fakeHub struct {
	mu       sync.Mutex
	statuses []protocol.BotStatus
	lines    []protocol.ConsoleLine
}

func (h *fakeHub) BroadcastStatus(st protocol.BotStatus) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.statuses = append(h.statuses, st)
}

func (h *fakeHub) BroadcastConsole(message, severity string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lines = append(h.lines, protocol.ConsoleLine{Message: message, Type: severity})
}

func (h *fakeHub) hasLine(message string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, l := range h.lines {
		if l.Message == message {
			return true
		}
	}
	return false
}

func (h *fakeHub) lastStatus() (protocol.BotStatus, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.statuses) == 0 {
		return protocol.BotStatus{}, false
	}
	return h.statuses[len(h.statuses)-1], true
}

// fakeAdapter implements Adapter in-memory and records every control call.
type fakeAdapter struct {
	mu       sync.Mutex
	events   chan Event
	state    State
	controls map[ControlFlag]bool
	calls    []string
	chats    []string
	movement *MovementParams
	nearest  *Entity
	block    *Block
	digErr   chan error
	quit     bool
	onQuit   func()
}

func newFakeAdapter() *fakeAdapter {
	return &fakeAdapter{
		events:   make(chan Event, 16),
		controls: make(map[ControlFlag]bool),
		digErr:   make(chan error, 1),
	}
}

func (f *fakeAdapter) emit(ev Event) {
	f.events <- ev
	if ev.Kind == EventEnd {
		close(f.events)
	}
}

func (f *fakeAdapter) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeAdapter) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeAdapter) Events() <-chan Event { return f.events }

func (f *fakeAdapter) Look(yaw, pitch float64, force bool) error {
	f.record(fmt.Sprintf("look:%.2f:%.2f:%v", yaw, pitch, force))
	return nil
}

func (f *fakeAdapter) SetControlState(flag ControlFlag, on bool) error {
	f.mu.Lock()
	f.controls[flag] = on
	f.mu.Unlock()
	f.record(fmt.Sprintf("set:%s:%v", flag, on))
	return nil
}

func (f *fakeAdapter) ControlState(flag ControlFlag) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.controls[flag]
}

func (f *fakeAdapter) ClearControlStates() error {
	f.mu.Lock()
	f.controls = make(map[ControlFlag]bool)
	f.mu.Unlock()
	f.record("clear")
	return nil
}

func (f *fakeAdapter) SwingArm() error     { f.record("swing"); return nil }
func (f *fakeAdapter) ActivateItem() error { f.record("activate"); return nil }

func (f *fakeAdapter) Attack(e Entity) error {
	f.record("attack:" + e.BestName())
	return nil
}

func (f *fakeAdapter) NearestEntity() (Entity, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.nearest == nil {
		return Entity{}, false
	}
	return *f.nearest, true
}

func (f *fakeAdapter) Chat(text string) error {
	f.mu.Lock()
	f.chats = append(f.chats, text)
	f.mu.Unlock()
	f.record("chat:" + text)
	return nil
}

func (f *fakeAdapter) chatLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.chats))
	copy(out, f.chats)
	return out
}

func (f *fakeAdapter) Dig(b Block) <-chan error {
	f.record("dig:" + b.Name)
	return f.digErr
}

func (f *fakeAdapter) BlockAtCursor(maxDistance float64) (Block, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.block == nil {
		return Block{}, false
	}
	return *f.block, true
}

func (f *fakeAdapter) ConfigureMovement(p MovementParams) error {
	f.mu.Lock()
	f.movement = &p
	f.mu.Unlock()
	f.record("configure_movement")
	return nil
}

func (f *fakeAdapter) Quit() error {
	f.mu.Lock()
	alreadyQuit := f.quit
	f.quit = true
	onQuit := f.onQuit
	f.mu.Unlock()
	if alreadyQuit {
		return nil
	}
	f.record("quit")
	f.emit(Event{Kind: EventEnd})
	if onQuit != nil {
		onQuit()
	}
	return nil
}

func (f *fakeAdapter) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeAdapter) setState(st State) {
	f.mu.Lock()
	f.state = st
	f.mu.Unlock()
}

// fakeDialer hands out fake adapters and fails the test if two are ever live
// at once.
type fakeDialer struct {
	t *testing.T

	mu      sync.Mutex
	live    int
	dialed  []*fakeAdapter
	lastArg ConnectParams
}

func (d *fakeDialer) Dial(p ConnectParams) (Adapter, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.live != 0 {
		d.t.Errorf("dial with %d adapter(s) still live: teardown must precede create", d.live)
	}
	d.live++
	d.lastArg = p
	a := newFakeAdapter()
	a.onQuit = func() {
		d.mu.Lock()
		d.live--
		d.mu.Unlock()
	}
	d.dialed = append(d.dialed, a)
	return a, nil
}

func (d *fakeDialer) last() *fakeAdapter {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.dialed) == 0 {
		return nil
	}
	return d.dialed[len(d.dialed)-1]
}

// failingDialer refuses every dial.
type failingDialer struct{}

func (failingDialer) Dial(ConnectParams) (Adapter, error) {
	return nil, errors.New("no route to host")
}

func testConfig() storage.BotConfig {
	cfg := storage.Defaults()
	cfg.ServerAddress = "mc.example.com"
	return cfg
}

func fastProfile() tuning.Profile {
	return tuning.Profile{MoveDelayMs: 5, LookSpeed: 0.5, ChatDelayMs: 10, RandomMovementChance: 0.1}
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
