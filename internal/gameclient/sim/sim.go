// Package sim is a self-contained stand-in for a real Minecraft client
// library. It simulates just enough of a server session for development and
// demos: spawn after a short handshake, crude walking physics, a handful of
// wandering entities and the occasional server chat line. The relay treats it
// exactly like a live connection.
package sim

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"minebuddy.app/internal/bot"
)

// tickInterval drives the simulated physics loop.
const tickInterval = 100 * time.Millisecond

// walkSpeed is blocks per second while a movement control is held.
const walkSpeed = 4.3

// Dialer creates simulated adapters. The zero value is usable.
type Dialer struct {
	// HandshakeDelay defaults to a short randomized delay before spawn.
	HandshakeDelay time.Duration
}

func (d *Dialer) Dial(p bot.ConnectParams) (bot.Adapter, error) {
	if strings.TrimSpace(p.Host) == "" {
		return nil, fmt.Errorf("sim: empty host")
	}
	delay := d.HandshakeDelay
	if delay == 0 {
		delay = time.Duration(300+rand.Intn(500)) * time.Millisecond
	}

	a := &adapter{
		username: p.Username,
		events:   make(chan bot.Event, 32),
		controls: make(map[bot.ControlFlag]bool),
		stop:     make(chan struct{}),
		state: bot.State{
			Position:  bot.Vec3{X: 0.5, Y: 64, Z: 0.5},
			Health:    20,
			Food:      20,
			Dimension: "Overworld",
			Inventory: []bot.Slot{
				{Name: "stone_sword", Count: 1, Slot: 0},
				{Name: "bread", Count: 12, Slot: 1},
				{Name: "cobblestone", Count: 37, Slot: 2},
			},
		},
	}
	a.seedEntities()
	go a.run(delay)
	return a, nil
}

type adapter struct {
	username string
	events   chan bot.Event
	stop     chan struct{}

	mu       sync.Mutex
	state    bot.State
	controls map[bot.ControlFlag]bool
	ended    bool
}

func (a *adapter) Events() <-chan bot.Event { return a.events }

func (a *adapter) run(handshake time.Duration) {
	select {
	case <-time.After(handshake):
	case <-a.stop:
		a.finish()
		return
	}
	a.emit(bot.Event{Kind: bot.EventSpawn})
	a.emit(bot.Event{Kind: bot.EventMessage, Text: fmt.Sprintf("%s joined the game", a.username)})

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	chatAt := time.Now().Add(time.Duration(20+rand.Intn(40)) * time.Second)
	for {
		select {
		case <-a.stop:
			a.finish()
			return
		case <-ticker.C:
			if moved := a.step(); moved {
				a.emit(bot.Event{Kind: bot.EventMove})
			}
			if time.Now().After(chatAt) {
				a.emit(bot.Event{Kind: bot.EventMessage, Text: serverChatter[rand.Intn(len(serverChatter))]})
				chatAt = time.Now().Add(time.Duration(20+rand.Intn(40)) * time.Second)
			}
		}
	}
}

var serverChatter = []string{
	"<Alex> anyone near spawn?",
	"<Notch_Fan42> selling iron, 5 per diamond",
	"[Server] Remember to vote for the server!",
	"<Alex> nice base",
}

// step advances simulated physics by one tick. Returns true if the bot moved.
func (a *adapter) step() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	dx, dz := 0.0, 0.0
	sin, cos := math.Sin(a.state.Yaw), math.Cos(a.state.Yaw)
	if a.controls[bot.ControlForward] {
		dx -= sin
		dz -= cos
	}
	if a.controls[bot.ControlBack] {
		dx += sin
		dz += cos
	}
	if a.controls[bot.ControlLeft] {
		dx -= cos
		dz += sin
	}
	if a.controls[bot.ControlRight] {
		dx += cos
		dz -= sin
	}
	if dx == 0 && dz == 0 {
		a.driftEntities()
		return false
	}
	norm := math.Hypot(dx, dz)
	scale := walkSpeed * tickInterval.Seconds() / norm
	a.state.Position.X += dx * scale
	a.state.Position.Z += dz * scale
	a.driftEntities()
	return true
}

func (a *adapter) seedEntities() {
	names := []struct{ typ, name string }{
		{"mob", "zombie"},
		{"mob", "cow"},
		{"mob", "skeleton"},
		{"player", ""},
	}
	for i, n := range names {
		e := bot.Entity{
			ID:   i + 1,
			Type: n.typ,
			Name: n.name,
			Position: bot.Vec3{
				X: a.state.Position.X + rand.Float64()*30 - 15,
				Y: 64,
				Z: a.state.Position.Z + rand.Float64()*30 - 15,
			},
		}
		if n.typ == "player" {
			e.Username = "Alex"
		}
		a.state.Entities = append(a.state.Entities, e)
	}
}

// driftEntities wanders each entity a little so the dashboard list stays
// alive. Caller holds the lock.
func (a *adapter) driftEntities() {
	for i := range a.state.Entities {
		a.state.Entities[i].Position.X += rand.Float64()*0.4 - 0.2
		a.state.Entities[i].Position.Z += rand.Float64()*0.4 - 0.2
	}
}

func (a *adapter) emit(ev bot.Event) {
	select {
	case a.events <- ev:
	case <-a.stop:
	}
}

// finish delivers the terminal event and closes the channel.
func (a *adapter) finish() {
	a.mu.Lock()
	if a.ended {
		a.mu.Unlock()
		return
	}
	a.ended = true
	a.mu.Unlock()
	a.events <- bot.Event{Kind: bot.EventEnd}
	close(a.events)
}

func (a *adapter) Look(yaw, pitch float64, force bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state.Yaw = yaw
	a.state.Pitch = pitch
	return nil
}

func (a *adapter) SetControlState(flag bot.ControlFlag, on bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.controls[flag] = on
	return nil
}

func (a *adapter) ControlState(flag bot.ControlFlag) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.controls[flag]
}

func (a *adapter) ClearControlStates() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.controls = make(map[bot.ControlFlag]bool)
	return nil
}

func (a *adapter) SwingArm() error { return nil }

func (a *adapter) ActivateItem() error { return nil }

func (a *adapter) Attack(e bot.Entity) error { return nil }

func (a *adapter) NearestEntity() (bot.Entity, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var best bot.Entity
	bestDist := math.MaxFloat64
	for _, e := range a.state.Entities {
		d := math.Hypot(e.Position.X-a.state.Position.X, e.Position.Z-a.state.Position.Z)
		if d < bestDist {
			best, bestDist = e, d
		}
	}
	return best, bestDist < math.MaxFloat64
}

func (a *adapter) Chat(text string) error { return nil }

func (a *adapter) Dig(b bot.Block) <-chan error {
	out := make(chan error, 1)
	// Digging dirt-tier blocks takes about a second in survival.
	time.AfterFunc(800*time.Millisecond, func() { out <- nil })
	return out
}

func (a *adapter) BlockAtCursor(maxDistance float64) (bot.Block, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	// Looking down far enough always finds the ground.
	if a.state.Pitch < math.Pi/8 {
		return bot.Block{}, false
	}
	pos := a.state.Position
	pos.Y -= 1
	names := []string{"stone", "dirt", "grass_block"}
	return bot.Block{Name: names[rand.Intn(len(names))], Position: pos}, true
}

func (a *adapter) ConfigureMovement(p bot.MovementParams) error { return nil }

func (a *adapter) Quit() error {
	select {
	case <-a.stop:
	default:
		close(a.stop)
	}
	return nil
}

func (a *adapter) State() bot.State {
	a.mu.Lock()
	defer a.mu.Unlock()
	st := a.state
	st.Inventory = append([]bot.Slot(nil), a.state.Inventory...)
	st.Entities = append([]bot.Entity(nil), a.state.Entities...)
	return st
}
