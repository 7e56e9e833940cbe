// Command console is a terminal tail of the dashboard realtime channel.
// It prints every console line and status change, and can fire a one-off
// action, which makes it handy for poking at a server without a browser.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/gorilla/websocket"

	"minebuddy.app/internal/protocol"
)

func main() {
	var (
		url    = flag.String("url", "ws://localhost:5000/ws-minebuddy", "ws url")
		action = flag.String("action", "", "one-off action to send, e.g. 'move:forward', 'jump', 'command:/help'")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "", log.LstdFlags)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if *action != "" {
		act, err := parseAction(*action)
		if err != nil {
			logger.Fatalf("action: %v", err)
		}
		env := protocol.ActionMsg{Type: protocol.TypeAction, Data: act}
		if err := conn.WriteJSON(env); err != nil {
			logger.Fatalf("send action: %v", err)
		}
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	go func() {
		<-stop
		conn.Close()
	}()

	var lastConnected *bool
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeStatus:
			var st protocol.StatusMsg
			if err := json.Unmarshal(msg, &st); err != nil {
				continue
			}
			// Status arrives once a second; only transitions are interesting.
			if lastConnected == nil || *lastConnected != st.Data.Connected {
				c := st.Data.Connected
				lastConnected = &c
				logger.Printf("[status] connected=%v pos=(%d,%d,%d) health=%.0f food=%.0f dim=%s",
					st.Data.Connected, st.Data.Position.X, st.Data.Position.Y, st.Data.Position.Z,
					st.Data.Health, st.Data.Food, st.Data.Dimension)
			}

		case protocol.TypeConsole:
			var c protocol.ConsoleMsg
			if err := json.Unmarshal(msg, &c); err != nil {
				continue
			}
			logger.Printf("[%s] %s", c.Data.Type, c.Data.Message)
		}
	}
}

// parseAction turns "move:forward" / "command:/help" / "jump" into a
// BotAction.
func parseAction(s string) (protocol.BotAction, error) {
	kind, arg, _ := strings.Cut(s, ":")
	switch kind {
	case protocol.ActionMove:
		if arg == "" {
			return protocol.BotAction{}, fmt.Errorf("move needs a direction, e.g. move:forward")
		}
		return protocol.BotAction{Type: protocol.ActionMove, Direction: arg}, nil
	case protocol.ActionCommand:
		if arg == "" {
			return protocol.BotAction{}, fmt.Errorf("command needs text, e.g. command:/help")
		}
		return protocol.BotAction{Type: protocol.ActionCommand, Command: arg}, nil
	case protocol.ActionAttack, protocol.ActionUse, protocol.ActionJump, protocol.ActionSneak, protocol.ActionStop:
		return protocol.BotAction{Type: kind}, nil
	default:
		return protocol.BotAction{}, fmt.Errorf("unknown action %q", kind)
	}
}
