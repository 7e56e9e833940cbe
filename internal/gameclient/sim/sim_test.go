package sim

import (
	"math"
	"testing"
	"time"

	"minebuddy.app/internal/bot"
)

func dialTest(t *testing.T) bot.Adapter {
	t.Helper()
	d := &Dialer{HandshakeDelay: time.Millisecond}
	a, err := d.Dial(bot.ConnectParams{Host: "localhost", Port: 25565, Username: "MineBuddy_Bot"})
	if err != nil {
		t.Fatalf("dial: %+v", err)
	}
	t.Cleanup(func() { _ = a.Quit() })
	return a
}

func waitKind(t *testing.T, a bot.Adapter, kind bot.EventKind) bot.Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-a.Events():
			if !ok {
				t.Fatalf("events closed before kind %d", kind)
			}
			if ev.Kind == kind {
				return ev
			}
		case <-deadline:
			t.Fatalf("no event of kind %d", kind)
		}
	}
}

func TestDialRejectsEmptyHost(t *testing.T) {
	d := &Dialer{}
	if _, err := d.Dial(bot.ConnectParams{}); err == nil {
		t.Fatal("dial with empty host must fail")
	}
}

func TestSimSpawnsAndAnnounces(t *testing.T) {
	a := dialTest(t)
	waitKind(t, a, bot.EventSpawn)
	ev := waitKind(t, a, bot.EventMessage)
	if ev.Text != "MineBuddy_Bot joined the game" {
		t.Fatalf("join message: %q", ev.Text)
	}
	st := a.State()
	if st.Health != 20 || st.Dimension != "Overworld" || len(st.Inventory) == 0 {
		t.Fatalf("initial state: %+v", st)
	}
}

func TestSimWalksWhileForwardHeld(t *testing.T) {
	a := dialTest(t)
	waitKind(t, a, bot.EventSpawn)

	start := a.State().Position
	if err := a.SetControlState(bot.ControlForward, true); err != nil {
		t.Fatalf("set control: %+v", err)
	}
	waitKind(t, a, bot.EventMove)
	time.Sleep(300 * time.Millisecond)
	if err := a.ClearControlStates(); err != nil {
		t.Fatalf("clear controls: %+v", err)
	}

	end := a.State().Position
	moved := math.Hypot(end.X-start.X, end.Z-start.Z)
	if moved == 0 {
		t.Fatal("bot did not move while forward was held")
	}
	if a.ControlState(bot.ControlForward) {
		t.Fatal("controls not cleared")
	}
}

func TestSimBlockAtCursorNeedsDownwardPitch(t *testing.T) {
	a := dialTest(t)
	waitKind(t, a, bot.EventSpawn)

	_ = a.Look(0, 0, false)
	if _, ok := a.BlockAtCursor(5); ok {
		t.Fatal("found a block while looking straight ahead")
	}
	_ = a.Look(0, math.Pi/4, false)
	b, ok := a.BlockAtCursor(5)
	if !ok || b.Name == "" {
		t.Fatalf("no block while looking down: %+v ok=%v", b, ok)
	}
}

func TestSimQuitEndsEventStream(t *testing.T) {
	a := dialTest(t)
	waitKind(t, a, bot.EventSpawn)

	if err := a.Quit(); err != nil {
		t.Fatalf("quit: %+v", err)
	}
	waitKind(t, a, bot.EventEnd)
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-a.Events():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("events channel never closed after quit")
		}
	}
}
