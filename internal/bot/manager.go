package bot

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"minebuddy.app/internal/protocol"
	"minebuddy.app/internal/storage"
	"minebuddy.app/internal/tuning"
)

// Manager owns at most one live session for the whole process. A connect
// request while a session exists tears the old one down synchronously before
// dialing, so two schedulers can never race on the same broadcaster.
type Manager struct {
	dialer Dialer
	out    Broadcaster
	tune   tuning.Tuning
	log    *logrus.Logger

	mu      sync.Mutex
	session *Session
}

func NewManager(dialer Dialer, out Broadcaster, tune tuning.Tuning, log *logrus.Logger) *Manager {
	return &Manager{dialer: dialer, out: out, tune: tune, log: log}
}

// Connect launches a connection attempt with the given config. The returned
// bool means the attempt was launched, not that it succeeded: success shows
// up asynchronously as a spawn event and a status broadcast.
func (m *Manager) Connect(cfg storage.BotConfig) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session != nil {
		m.session.Close()
		m.session = nil
	}

	m.out.BroadcastConsole("Attempting to connect to server...", protocol.SeveritySystem)

	adapter, err := m.dialer.Dial(connectParams(cfg))
	if err != nil {
		m.out.BroadcastConsole(fmt.Sprintf("Error connecting bot: %v", err), protocol.SeverityError)
		return false
	}

	m.session = newSession(adapter, cfg, m.tune.Profile(cfg.AntiDetectionLevel), m.out, m.log)
	m.log.WithField("session", m.session.ID()).Info("bot session started")
	return true
}

// Disconnect tears down the current session. Returns false when nothing was
// connected.
func (m *Manager) Disconnect() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return false
	}
	ok := m.session.Close()
	m.session = nil
	return ok
}

// Status returns the latest snapshot, or the empty disconnected snapshot when
// no session exists.
func (m *Manager) Status() protocol.BotStatus {
	m.mu.Lock()
	s := m.session
	m.mu.Unlock()
	if s == nil {
		return emptyStatus()
	}
	return s.Status()
}

// Connected reports whether a spawned session is live. Used by metrics.
func (m *Manager) Connected() bool {
	m.mu.Lock()
	s := m.session
	m.mu.Unlock()
	return s != nil && s.isConnected()
}

// HandleAction forwards a user action to the current session's dispatcher.
func (m *Manager) HandleAction(action protocol.BotAction) bool {
	m.mu.Lock()
	s := m.session
	m.mu.Unlock()
	if s == nil {
		if action.Type == protocol.ActionCommand {
			m.out.BroadcastConsole("Cannot send command: Bot is not connected", protocol.SeverityError)
		} else {
			m.out.BroadcastConsole("Cannot perform action: Bot is not connected", protocol.SeverityError)
		}
		return false
	}
	return s.HandleAction(action)
}

// connectParams builds dial parameters from the stored config. Timeouts are
// generous on purpose: hosted servers can be slow to wake up, and dropping
// the line early looks more bot-like than waiting.
func connectParams(cfg storage.BotConfig) ConnectParams {
	port := cfg.ServerPort
	if port == 0 {
		port = 25565
	}
	return ConnectParams{
		Host:            cfg.ServerAddress,
		Port:            port,
		Username:        cfg.Username,
		Version:         cfg.Version,
		Respawn:         cfg.AutoRespawnEnabled,
		CheckTimeoutMs:  120000,
		NoPongTimeoutMs: 60000,
		CloseTimeoutMs:  30000,
		ChatLengthLimit: 100,
		ViewDistance:    "far",
		PhysicsEnabled:  true,
	}
}
