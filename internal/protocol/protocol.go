package protocol

import "encoding/json"

// Message types on the dashboard channel.
const (
	TypeStatus  = "status"
	TypeConsole = "console"
	TypeAction  = "action"
)

// Console severities. The dashboard colors lines by these tags.
const (
	SeverityInfo    = "info"
	SeverityError   = "error"
	SeveritySuccess = "success"
	SeverityWarn    = "warn"
	SeveritySystem  = "system"
	SeverityBot     = "bot"
	SeverityServer  = "server"
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type string `json:"type"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}
