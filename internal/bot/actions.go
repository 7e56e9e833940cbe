package bot

import (
	"fmt"
	"time"

	"minebuddy.app/internal/protocol"
)

// jumpReleaseDelay is how long a user-initiated jump holds the jump control.
const jumpReleaseDelay = 250 * time.Millisecond

// HandleAction translates one user-issued action into adapter calls. It
// rejects everything while disconnected, emits a console line describing the
// effect, and never panics on unknown input.
func (s *Session) HandleAction(action protocol.BotAction) bool {
	adapter, ok := s.liveAdapter()
	if !ok || !s.isConnected() {
		// Commands get a distinguishable error: chat is the one thing users
		// most often try while the connection flag is transiently off.
		if action.Type == protocol.ActionCommand {
			s.out.BroadcastConsole("Cannot send command: Bot is not connected", protocol.SeverityError)
		} else {
			s.out.BroadcastConsole("Cannot perform action: Bot is not connected", protocol.SeverityError)
		}
		return false
	}

	switch action.Type {
	case protocol.ActionMove:
		return s.doMove(adapter, action.Direction)

	case protocol.ActionStop:
		if !s.try(adapter.ClearControlStates()) {
			return false
		}
		s.out.BroadcastConsole("Movement stopped", protocol.SeverityBot)
		return true

	case protocol.ActionAttack:
		if target, ok := adapter.NearestEntity(); ok {
			if !s.try(adapter.Attack(target)) {
				return false
			}
			name := target.BestName()
			if name == "" {
				name = "entity"
			}
			s.out.BroadcastConsole(fmt.Sprintf("Attacking %s", name), protocol.SeverityBot)
			return true
		}
		if !s.try(adapter.SwingArm()) {
			return false
		}
		s.out.BroadcastConsole("No target found, swinging arm", protocol.SeverityBot)
		return true

	case protocol.ActionUse:
		if !s.try(adapter.ActivateItem()) {
			return false
		}
		s.out.BroadcastConsole("Using item in hand", protocol.SeverityBot)
		return true

	case protocol.ActionJump:
		if !s.try(adapter.SetControlState(ControlJump, true)) {
			return false
		}
		s.timers.After(jumpReleaseDelay, func() {
			if ad, ok := s.liveAdapter(); ok {
				_ = ad.SetControlState(ControlJump, false)
			}
		})
		s.out.BroadcastConsole("Jumping", protocol.SeverityBot)
		return true

	case protocol.ActionSneak:
		sneaking := adapter.ControlState(ControlSneak)
		if !s.try(adapter.SetControlState(ControlSneak, !sneaking)) {
			return false
		}
		if sneaking {
			s.out.BroadcastConsole("Stopped sneaking", protocol.SeverityBot)
		} else {
			s.out.BroadcastConsole("Started sneaking", protocol.SeverityBot)
		}
		return true

	case protocol.ActionCommand:
		if action.Command == "" {
			s.out.BroadcastConsole("No command provided", protocol.SeverityError)
			return false
		}
		// Slash commands and plain chat go through the identical send; the
		// game server decides what to do with the line.
		if !s.try(adapter.Chat(action.Command)) {
			return false
		}
		s.out.BroadcastConsole(fmt.Sprintf("Executed command: %s", action.Command), protocol.SeverityBot)
		return true

	default:
		s.out.BroadcastConsole(fmt.Sprintf("Unknown action type: %s", action.Type), protocol.SeverityError)
		return false
	}
}

func (s *Session) doMove(adapter Adapter, direction string) bool {
	var flag ControlFlag
	var desc string
	switch direction {
	case "forward":
		flag, desc = ControlForward, "Moving forward"
	case "backward":
		flag, desc = ControlBack, "Moving backward"
	case "left":
		flag, desc = ControlLeft, "Moving left"
	case "right":
		flag, desc = ControlRight, "Moving right"
	default:
		s.out.BroadcastConsole(fmt.Sprintf("Unknown move direction: %s", direction), protocol.SeverityError)
		return false
	}

	// Exactly one movement flag may be held after a move action.
	if !s.try(adapter.ClearControlStates()) {
		return false
	}
	if !s.try(adapter.SetControlState(flag, true)) {
		return false
	}
	s.out.BroadcastConsole(desc, protocol.SeverityBot)
	return true
}

// try converts an adapter-level failure into a console error line.
func (s *Session) try(err error) bool {
	if err != nil {
		s.out.BroadcastConsole(fmt.Sprintf("Error performing action: %v", err), protocol.SeverityError)
		return false
	}
	return true
}
