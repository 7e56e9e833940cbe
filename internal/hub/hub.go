// Package hub fans status and console broadcasts out to every connected
// dashboard client. Slow clients are skipped, never waited on: a stalled
// browser tab must not delay the bot event loop.
package hub

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"minebuddy.app/internal/protocol"
)

// clientQueueSize bounds the per-client outbound buffer. A client that falls
// this far behind starts losing messages.
const clientQueueSize = 64

// Archive receives a copy of every console line for persistence. Optional.
type Archive interface {
	WriteConsole(line protocol.ConsoleLine)
}

// Hub is the broadcast registry. One per process.
type Hub struct {
	log     *logrus.Logger
	archive Archive

	mu      sync.Mutex
	clients map[string]chan []byte
}

func New(log *logrus.Logger) *Hub {
	return &Hub{
		log:     log,
		clients: make(map[string]chan []byte),
	}
}

// SetArchive attaches a console archive sink. Call before serving traffic.
func (h *Hub) SetArchive(a Archive) { h.archive = a }

// Register adds a client and returns its id and outbound queue. The caller
// owns draining the channel; the hub never closes it before Unregister.
func (h *Hub) Register() (string, <-chan []byte) {
	id := uuid.NewString()
	out := make(chan []byte, clientQueueSize)
	h.mu.Lock()
	h.clients[id] = out
	n := len(h.clients)
	h.mu.Unlock()
	h.log.WithFields(logrus.Fields{"client": id, "clients": n}).Debug("dashboard client registered")
	return id, out
}

// Unregister removes a client and closes its queue.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	out, ok := h.clients[id]
	if ok {
		delete(h.clients, id)
	}
	n := len(h.clients)
	h.mu.Unlock()
	if !ok {
		return
	}
	close(out)
	h.log.WithFields(logrus.Fields{"client": id, "clients": n}).Debug("dashboard client unregistered")
}

// ClientCount reports the number of registered clients. Used by metrics.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// BroadcastStatus sends a status snapshot to every client.
func (h *Hub) BroadcastStatus(st protocol.BotStatus) {
	h.send(protocol.NewStatusMsg(st))
}

// BroadcastConsole sends a console line to every client and, when an archive
// is attached, persists it.
func (h *Hub) BroadcastConsole(message, severity string) {
	if h.archive != nil {
		h.archive.WriteConsole(protocol.ConsoleLine{Message: message, Type: severity})
	}
	h.send(protocol.NewConsoleMsg(message, severity))
}

// send marshals once and fans out without blocking. A full client queue
// drops the message for that client only.
func (h *Hub) send(msg any) {
	b, err := json.Marshal(msg)
	if err != nil {
		h.log.WithError(err).Error("marshal broadcast")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, out := range h.clients {
		select {
		case out <- b:
		default:
			h.log.WithField("client", id).Warn("client queue full, dropping message")
		}
	}
}
