package bot

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"minebuddy.app/internal/protocol"
	"minebuddy.app/internal/storage"
	"minebuddy.app/internal/tuning"
)

// Broadcaster fans bot state and console lines out to dashboard clients.
type Broadcaster interface {
	BroadcastStatus(st protocol.BotStatus)
	BroadcastConsole(message, severity string)
}

// statusPollInterval is the safety-net cadence for status snapshots, in case
// an adapter event is missed.
const statusPollInterval = time.Second

// Session owns one live adapter from connect to end. All adapter events
// funnel through a single loop goroutine; timers and the anti-AFK scheduler
// are session-owned and cancelled as a unit on teardown.
type Session struct {
	id      string
	cfg     storage.BotConfig
	profile tuning.Profile
	out     Broadcaster
	log     *logrus.Logger

	mu        sync.Mutex
	adapter   Adapter
	connected bool
	status    protocol.BotStatus
	closed    bool

	timers *timerSet
	afk    *afkScheduler

	events <-chan Event
	stop   chan struct{}
	loopWG sync.WaitGroup
}

func newSession(adapter Adapter, cfg storage.BotConfig, profile tuning.Profile, out Broadcaster, log *logrus.Logger) *Session {
	s := &Session{
		id:      uuid.NewString(),
		cfg:     cfg,
		profile: profile,
		out:     out,
		log:     log,
		adapter: adapter,
		status:  emptyStatus(),
		timers:  newTimerSet(),
		events:  adapter.Events(),
		stop:    make(chan struct{}),
	}
	s.afk = newAfkScheduler(s, time.Duration(cfg.AFKInterval)*time.Second, profile)
	s.loopWG.Add(1)
	go s.run()
	return s
}

// ID identifies the session in logs.
func (s *Session) ID() string { return s.id }

// Status returns the last computed snapshot.
func (s *Session) Status() protocol.BotStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Close tears the session down: scheduler and timers first, then a graceful
// quit to the adapter. Safe to call more than once. Returns true only when
// there was still an adapter to quit.
func (s *Session) Close() bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.closed = true
	adapter := s.adapter
	s.adapter = nil
	s.connected = false
	s.status = emptyStatus()
	s.mu.Unlock()

	if adapter != nil {
		s.out.BroadcastConsole("Disconnecting bot...", protocol.SeveritySystem)
	}
	s.afk.Stop()
	s.timers.StopAll()
	if adapter != nil {
		if err := adapter.Quit(); err != nil {
			s.log.WithError(err).Warn("adapter quit")
		}
	}
	close(s.stop)
	s.loopWG.Wait()
	if adapter != nil {
		s.out.BroadcastStatus(emptyStatus())
	}
	return adapter != nil
}

// liveAdapter returns the adapter if the session still owns one.
func (s *Session) liveAdapter() (Adapter, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.adapter == nil {
		return nil, false
	}
	return s.adapter, true
}

func (s *Session) isConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

func (s *Session) run() {
	defer s.loopWG.Done()
	poll := time.NewTicker(statusPollInterval)
	defer poll.Stop()
	for {
		select {
		case <-s.stop:
			return
		case ev, ok := <-s.events:
			if !ok {
				s.handleEvent(Event{Kind: EventEnd})
				return
			}
			s.handleEvent(ev)
			if ev.Kind == EventEnd {
				return
			}
		case <-poll.C:
			if s.isConnected() {
				s.refreshStatus()
			}
		}
	}
}

// handleEvent is the handler boundary: a panic in any branch becomes a
// console error broadcast and the loop keeps running.
func (s *Session) handleEvent(ev Event) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Errorf("session %s: event handler panic: %v", s.id, r)
			s.out.BroadcastConsole(fmt.Sprintf("Internal error while handling bot event: %v", r), protocol.SeverityError)
		}
	}()

	switch ev.Kind {
	case EventSpawn:
		s.onSpawn()
	case EventHealth, EventMove:
		s.refreshStatus()
	case EventMessage:
		s.onMessage(ev)
	case EventKicked:
		s.onKicked(ev)
	case EventError:
		s.onError(ev)
	case EventEnd:
		s.onEnd()
	}
}

func (s *Session) onSpawn() {
	s.out.BroadcastConsole("Bot spawned in the world", protocol.SeveritySuccess)

	s.mu.Lock()
	s.connected = true
	adapter := s.adapter
	s.mu.Unlock()
	if adapter == nil {
		return
	}
	s.refreshStatus()

	// Keep movement looking human: no tunneling, short drops, bedrock stays.
	err := adapter.ConfigureMovement(MovementParams{
		CanDig:          false,
		MaxDropDown:     3,
		BlocksCantBreak: []string{"bedrock"},
	})
	if err != nil {
		s.log.WithError(err).Warn("configure movement")
	}

	if s.cfg.AntiAFKEnabled {
		s.afk.Start()
	}
}

func (s *Session) onMessage(ev Event) {
	s.out.BroadcastConsole(ev.Text, protocol.SeverityServer)

	lower := strings.ToLower(ev.Text)
	if strings.Contains(lower, "register") || strings.Contains(lower, "login") {
		s.out.BroadcastConsole("Auth request detected! You may need to register or login.", protocol.SeveritySystem)
	}

	if s.cfg.ChatResponseEnabled && ev.Private {
		sender := ev.Sender
		if sender == "" {
			sender = "Unknown"
		}
		template := s.cfg.ChatTemplate
		if template == "" {
			template = "Hi!"
		}
		reply := strings.Replace(template, "{player}", sender, 1)
		delay := time.Duration(s.profile.ChatDelayMs) * time.Millisecond
		s.timers.After(delay, func() {
			adapter, ok := s.liveAdapter()
			if !ok {
				return
			}
			if err := adapter.Chat(reply); err != nil {
				s.out.BroadcastConsole(fmt.Sprintf("Failed to send chat response: %v", err), protocol.SeverityError)
				return
			}
			s.out.BroadcastConsole(fmt.Sprintf("Sent response to %s: %s", sender, reply), protocol.SeverityBot)
		})
	}
}

func (s *Session) onKicked(ev Event) {
	s.out.BroadcastConsole(fmt.Sprintf("Bot was kicked: %s", ev.Reason), protocol.SeverityError)
	if hint := kickDiagnosis(ev.Reason); hint != "" {
		s.out.BroadcastConsole(hint, protocol.SeverityError)
	}
	s.markDisconnected()
	s.out.BroadcastStatus(s.Status())
}

func (s *Session) onError(ev Event) {
	msg := fmt.Sprintf("Bot error: %v (Code: %s)", ev.Err, errCodeOrUnknown(ev.ErrCode))
	s.log.Error(msg)
	s.out.BroadcastConsole(msg, protocol.SeverityError)

	switch ev.ErrCode {
	case "ECONNRESET":
		s.out.BroadcastConsole("Connection was forcibly closed by the server. This might happen due to server anti-bot measures.", protocol.SeverityError)
	case "ETIMEDOUT":
		s.out.BroadcastConsole("Connection timed out. Please check if the server is online and accessible.", protocol.SeverityError)
	}
}

func (s *Session) onEnd() {
	s.out.BroadcastConsole("Bot disconnected from server", protocol.SeveritySystem)
	s.markDisconnected()
	s.out.BroadcastStatus(s.Status())
}

// markDisconnected clears the adapter reference and cancels everything that
// could still reference it.
func (s *Session) markDisconnected() {
	s.afk.Stop()
	s.timers.StopAll()
	s.mu.Lock()
	s.adapter = nil
	s.connected = false
	s.status = emptyStatus()
	s.mu.Unlock()
}

// refreshStatus recomputes the snapshot from live adapter state and
// broadcasts it.
func (s *Session) refreshStatus() {
	s.mu.Lock()
	adapter := s.adapter
	connected := s.connected
	s.mu.Unlock()
	if adapter == nil {
		return
	}
	st := buildStatus(connected, adapter.State())
	s.mu.Lock()
	s.status = st
	s.mu.Unlock()
	s.out.BroadcastStatus(st)
}

// kickDiagnosis maps common kick reasons to a more actionable console line.
func kickDiagnosis(reason string) string {
	r := strings.ToLower(reason)
	switch {
	case strings.Contains(r, "proxy") || strings.Contains(r, "vpn") || strings.Contains(r, "auth"):
		return "Server may be blocking proxies, VPNs or requiring authentication"
	case strings.Contains(r, "timeout"):
		return "Connection timed out - server might be overloaded or have high ping"
	case strings.Contains(r, "banned") || strings.Contains(r, "blacklisted"):
		return "The username or IP might be banned on this server"
	case strings.Contains(r, "whitelist"):
		return "This server uses a whitelist and the bot is not on it"
	case strings.Contains(r, "outdated") || strings.Contains(r, "version"):
		return "The Minecraft version might be incorrect - try a different version"
	}
	return ""
}

func errCodeOrUnknown(code string) string {
	if code == "" {
		return "unknown"
	}
	return code
}
