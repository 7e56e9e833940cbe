package bot

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"minebuddy.app/internal/protocol"
	"minebuddy.app/internal/tuning"
)

// AfkState gates which ambient behaviors may start: a new state-changing
// behavior never begins while a previous one is mid-flight.
type AfkState string

const (
	StateIdle      AfkState = "idle"
	StateExploring AfkState = "exploring"
	StateMining    AfkState = "mining"
	StateFarming   AfkState = "farming"
	StateCrafting  AfkState = "crafting"
	StateReturning AfkState = "returning"
)

type behavior int

const (
	behaviorLook behavior = iota
	behaviorJump
	behaviorSwing
	behaviorTurn
	behaviorWalk
	behaviorMine
	behaviorChat
	behaviorReturn
)

// pickBehavior partitions [0,1) into the weighted bands of the scheduler:
// look 15%, jump 10%, swing 10%, slow turn 10%, walk 20%, mine 15%,
// rare chat 10%, return-to-start 10%.
func pickBehavior(r float64) behavior {
	switch {
	case r < 0.15:
		return behaviorLook
	case r < 0.25:
		return behaviorJump
	case r < 0.35:
		return behaviorSwing
	case r < 0.45:
		return behaviorTurn
	case r < 0.65:
		return behaviorWalk
	case r < 0.80:
		return behaviorMine
	case r < 0.90:
		return behaviorChat
	default:
		return behaviorReturn
	}
}

// returnRadius is how far the bot may stray before the return behavior kicks
// in, in blocks.
const returnRadius = 20.0

// returnRunDuration bounds the straight-line walk back toward the start.
const returnRunDuration = 5 * time.Second

// returnStuckTimeout resets a returning state that never arrived.
const returnStuckTimeout = 30 * time.Second

var afkChatMessages = []string{
	"Just mining some resources",
	"Anyone else online?",
	"The weather is nice today",
	"I like this server",
	"Just exploring",
}

// afkScheduler runs one ambient behavior per tick while the bot is connected,
// to disguise automation. Console lines tagged "bot" are the operator-visible
// audit trail of everything it does autonomously.
type afkScheduler struct {
	session  *Session
	interval time.Duration
	profile  tuning.Profile
	rand     func() float64

	mu       sync.Mutex
	running  bool
	state    AfkState
	startPos Vec3
	hasStart bool
	target   *Vec3
	stopCh   chan struct{}
}

func newAfkScheduler(s *Session, interval time.Duration, profile tuning.Profile) *afkScheduler {
	return &afkScheduler{
		session:  s,
		interval: interval,
		profile:  profile,
		rand:     rand.Float64,
		state:    StateIdle,
	}
}

// Start begins ticking. The current position becomes the "home" anchor for
// the return behavior.
func (a *afkScheduler) Start() {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return
	}
	a.running = true
	a.state = StateIdle
	a.target = nil
	a.hasStart = false
	a.stopCh = make(chan struct{})
	stop := a.stopCh
	a.mu.Unlock()

	if adapter, ok := a.session.liveAdapter(); ok {
		a.mu.Lock()
		a.startPos = adapter.State().Position
		a.hasStart = true
		a.mu.Unlock()
	}

	go func() {
		ticker := time.NewTicker(a.interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				a.tick()
			}
		}
	}()
}

// Stop halts ticking. Outstanding one-shot follow-ups (walk stops, jump
// releases) belong to the session timer set and are cancelled there.
func (a *afkScheduler) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.running {
		return
	}
	a.running = false
	close(a.stopCh)
	a.state = StateIdle
	a.target = nil
}

// State reports the current behavior state.
func (a *afkScheduler) State() AfkState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *afkScheduler) setState(st AfkState) {
	a.mu.Lock()
	a.state = st
	if st == StateIdle {
		a.target = nil
	}
	a.mu.Unlock()
}

// compareAndSetState transitions from to next only if the state still equals
// from; reports whether the transition happened.
func (a *afkScheduler) compareAndSetState(from, next AfkState) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != from {
		return false
	}
	a.state = next
	if next == StateIdle {
		a.target = nil
	}
	return true
}

// tick selects and executes one ambient behavior. If the adapter went away
// between scheduling and execution the tick is a safe no-op.
func (a *afkScheduler) tick() {
	adapter, ok := a.session.liveAdapter()
	if !ok || !a.session.isConnected() {
		return
	}
	a.execute(adapter, pickBehavior(a.rand()))
}

func (a *afkScheduler) execute(adapter Adapter, b behavior) {
	switch b {
	case behaviorLook:
		yaw := a.rand() * 2 * math.Pi
		pitch := a.rand()*math.Pi - math.Pi/2
		_ = adapter.Look(yaw, pitch, false)
		a.console("Anti-AFK: Looking around")

	case behaviorJump:
		_ = adapter.SetControlState(ControlJump, true)
		a.session.timers.After(500*time.Millisecond, func() {
			if ad, ok := a.session.liveAdapter(); ok {
				_ = ad.SetControlState(ControlJump, false)
			}
		})
		a.console("Anti-AFK: Jumping")

	case behaviorSwing:
		_ = adapter.SwingArm()
		a.console("Anti-AFK: Swinging arm")

	case behaviorTurn:
		a.slowTurn(adapter)
		a.console("Anti-AFK: Turning around")

	case behaviorWalk:
		a.walk(adapter)

	case behaviorMine:
		a.mine(adapter)

	case behaviorChat:
		// Secondary roll keeps chat genuinely rare.
		if a.rand() < 0.1 {
			msg := afkChatMessages[int(a.rand()*float64(len(afkChatMessages)))%len(afkChatMessages)]
			if err := adapter.Chat(msg); err == nil {
				a.console(fmt.Sprintf("Anti-AFK: Sent chat message: %s", msg))
			}
		}

	case behaviorReturn:
		a.returnToStart(adapter)
	}
}

// slowTurn steps the yaw through a full circle, one small step per move
// delay, so the turn reads as deliberate rather than instant.
func (a *afkScheduler) slowTurn(adapter Adapter) {
	st := adapter.State()
	start := st.Yaw
	target := start
	step := time.Duration(a.profile.MoveDelayMs) * time.Millisecond

	var turn func()
	turn = func() {
		ad, ok := a.session.liveAdapter()
		if !ok {
			return
		}
		target += 0.2
		_ = ad.Look(target, ad.State().Pitch, false)
		if target < start+2*math.Pi {
			a.session.timers.After(step, turn)
		}
	}
	a.session.timers.After(step, turn)
}

func (a *afkScheduler) walk(adapter Adapter) {
	if !a.compareAndSetState(StateIdle, StateExploring) {
		return
	}
	_ = adapter.ClearControlStates()

	dirs := []struct {
		flag ControlFlag
		name string
	}{
		{ControlForward, "forward"},
		{ControlBack, "backward"},
		{ControlLeft, "left"},
		{ControlRight, "right"},
	}
	d := dirs[int(a.rand()*4)%4]
	_ = adapter.SetControlState(d.flag, true)
	a.console(fmt.Sprintf("Anti-AFK: Walking %s", d.name))

	walkTime := time.Duration(3000+a.rand()*5000) * time.Millisecond
	a.session.timers.After(walkTime, func() {
		ad, ok := a.session.liveAdapter()
		if !ok {
			return
		}
		_ = ad.ClearControlStates()
		a.setState(StateIdle)
		a.console("Anti-AFK: Stopped walking")
	})
}

func (a *afkScheduler) mine(adapter Adapter) {
	if !a.compareAndSetState(StateIdle, StateMining) {
		return
	}

	// Look slightly down to find a block in reach.
	st := adapter.State()
	_ = adapter.Look(st.Yaw, math.Pi/4, false)

	block, ok := adapter.BlockAtCursor(5)
	if !ok || block.Name == "air" || block.Name == "bedrock" {
		a.console("Anti-AFK: No suitable block to mine")
		a.setState(StateIdle)
		return
	}

	a.console(fmt.Sprintf("Anti-AFK: Mining %s", block.Name))
	result := adapter.Dig(block)
	a.mu.Lock()
	stop := a.stopCh
	a.mu.Unlock()
	go func() {
		select {
		case err := <-result:
			if err == nil {
				a.console(fmt.Sprintf("Anti-AFK: Finished mining %s", block.Name))
			}
			a.setState(StateIdle)
		case <-stop:
		}
	}()
}

// returnToStart walks straight back toward the remembered start position.
// The adapter surface has no pathfinding goal API, so the heading comes from
// the raw coordinate delta.
func (a *afkScheduler) returnToStart(adapter Adapter) {
	a.mu.Lock()
	hasStart := a.hasStart
	start := a.startPos
	a.mu.Unlock()
	if !hasStart {
		return
	}

	pos := adapter.State().Position
	if distance(pos, start) <= returnRadius {
		return
	}
	if !a.compareAndSetState(StateIdle, StateReturning) {
		return
	}
	a.mu.Lock()
	a.target = &start
	a.mu.Unlock()

	a.console("Anti-AFK: Returning to starting position")
	dx := start.X - pos.X
	dz := start.Z - pos.Z
	yaw := math.Atan2(-dx, -dz)
	_ = adapter.Look(yaw, 0, true)
	_ = adapter.SetControlState(ControlForward, true)

	a.session.timers.After(returnRunDuration, func() {
		ad, ok := a.session.liveAdapter()
		if !ok {
			return
		}
		_ = ad.ClearControlStates()
		if a.compareAndSetState(StateReturning, StateIdle) {
			a.console("Anti-AFK: Stopped returning")
		}
	})
	a.session.timers.After(returnStuckTimeout, func() {
		if a.compareAndSetState(StateReturning, StateIdle) {
			a.console("Anti-AFK: Timeout while returning, resetting state")
		}
	})
}

func (a *afkScheduler) console(msg string) {
	a.session.out.BroadcastConsole(msg, protocol.SeverityBot)
}
