// Package bot wraps an external game-protocol client ("adapter") with a
// lifecycle manager, an anti-AFK behavior scheduler and an action dispatcher.
// The adapter owns the hard parts (protocol, world model, physics); this
// package only drives it and reports what happened.
package bot

import "strings"

// ControlFlag names a held movement control on the game client.
type ControlFlag string

const (
	ControlForward ControlFlag = "forward"
	ControlBack    ControlFlag = "back"
	ControlLeft    ControlFlag = "left"
	ControlRight   ControlFlag = "right"
	ControlJump    ControlFlag = "jump"
	ControlSneak   ControlFlag = "sneak"
)

// EventKind enumerates the lifecycle events an adapter reports.
type EventKind int

const (
	EventSpawn EventKind = iota
	EventHealth
	EventMove
	EventMessage
	EventKicked
	EventError
	EventEnd
)

// Event is one adapter lifecycle notification. Fields beyond Kind are set
// only for the kinds that carry them.
type Event struct {
	Kind EventKind

	// EventMessage
	Text    string
	Private bool
	Sender  string

	// EventKicked
	Reason string

	// EventError
	Err     error
	ErrCode string
}

// Vec3 is a world position. The adapter reports float coordinates; status
// snapshots floor them.
type Vec3 struct {
	X, Y, Z float64
}

// Entity is a mob or player near the bot, as the adapter sees it.
type Entity struct {
	ID          int
	Type        string // "mob" or "player"
	Username    string
	Name        string
	DisplayName string
	Position    Vec3
}

// BestName resolves the human-readable name of an entity. Precedence:
// username, then name, then display name, then the entity type.
func (e Entity) BestName() string {
	for _, s := range []string{e.Username, e.Name, e.DisplayName} {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return e.Type
}

// Block is a world block the adapter can point at or dig.
type Block struct {
	Name     string
	Position Vec3
}

// Slot is one occupied inventory slot.
type Slot struct {
	Name  string
	Count int
	Slot  int
}

// State is the adapter's read-only view of the live bot. Zero values are
// returned before spawn.
type State struct {
	Position  Vec3
	Yaw       float64
	Pitch     float64
	Health    float64
	Food      float64
	Dimension string
	Inventory []Slot
	Entities  []Entity
}

// MovementParams constrains how the client is allowed to move through the
// world once spawned.
type MovementParams struct {
	CanDig          bool
	MaxDropDown     int
	BlocksCantBreak []string
}

// Adapter is the capability surface this package requires from the external
// game client. One adapter represents one logical connection; after EventEnd
// the adapter is dead and must be discarded.
type Adapter interface {
	// Events delivers lifecycle events in order. The channel closes after
	// EventEnd has been delivered.
	Events() <-chan Event

	Look(yaw, pitch float64, force bool) error
	SetControlState(flag ControlFlag, on bool) error
	ControlState(flag ControlFlag) bool
	ClearControlStates() error
	SwingArm() error
	ActivateItem() error
	Attack(e Entity) error
	NearestEntity() (Entity, bool)
	Chat(text string) error
	// Dig starts digging the block; the result arrives on the returned
	// channel when the dig completes or fails.
	Dig(b Block) <-chan error
	BlockAtCursor(maxDistance float64) (Block, bool)
	ConfigureMovement(p MovementParams) error
	Quit() error

	State() State
}

// ConnectParams is everything the dialer needs to open a connection. The
// timeouts are deliberately generous: hosted servers can take a long time to
// wake up and answer.
type ConnectParams struct {
	Host            string
	Port            int
	Username        string
	Version         string
	Respawn         bool
	CheckTimeoutMs  int
	NoPongTimeoutMs int
	CloseTimeoutMs  int
	ChatLengthLimit int
	ViewDistance    string
	PhysicsEnabled  bool
}

// Dialer constructs adapters. The live implementation binds a real game
// client library; tests substitute a fake.
type Dialer interface {
	Dial(p ConnectParams) (Adapter, error)
}
