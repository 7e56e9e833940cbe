package protocol

// BotStatus is the derived snapshot of the live bot, recomputed on every
// relevant adapter event and broadcast whole. Consumers treat each one as the
// latest truth, never as a delta.
type BotStatus struct {
	Connected      bool            `json:"connected"`
	Position       Position        `json:"position"`
	Health         float64         `json:"health"`
	Food           float64         `json:"food"`
	Dimension      string          `json:"dimension"`
	Inventory      []InventoryItem `json:"inventory"`
	NearbyEntities []NearbyEntity  `json:"nearbyEntities"`
}

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

type InventoryItem struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	Slot  int    `json:"slot"`
}

type NearbyEntity struct {
	Name     string `json:"name"`
	Distance int    `json:"distance"`
	Type     string `json:"type"`
}

// BotAction is a discrete user-issued command for the dispatcher.
type BotAction struct {
	Type      string `json:"type"`
	Direction string `json:"direction,omitempty"`
	Command   string `json:"command,omitempty"`
}

// Action types accepted by the dispatcher.
const (
	ActionMove    = "move"
	ActionAttack  = "attack"
	ActionUse     = "use"
	ActionJump    = "jump"
	ActionSneak   = "sneak"
	ActionStop    = "stop"
	ActionCommand = "command"
)

// StatusMsg is the {type:"status"} envelope pushed to dashboard clients.
type StatusMsg struct {
	Type string    `json:"type"`
	Data BotStatus `json:"data"`
}

// ConsoleMsg is the {type:"console"} envelope pushed to dashboard clients.
type ConsoleMsg struct {
	Type string      `json:"type"`
	Data ConsoleLine `json:"data"`
}

type ConsoleLine struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// ActionMsg is the {type:"action"} envelope a dashboard client may send to
// invoke the dispatcher without a round-trip HTTP call.
type ActionMsg struct {
	Type string    `json:"type"`
	Data BotAction `json:"data"`
}

func NewStatusMsg(st BotStatus) StatusMsg {
	return StatusMsg{Type: TypeStatus, Data: st}
}

func NewConsoleMsg(message, severity string) ConsoleMsg {
	return ConsoleMsg{Type: TypeConsole, Data: ConsoleLine{Message: message, Type: severity}}
}
