// Package ws serves the dashboard realtime channel: status and console
// pushes out, optional action messages in. The path is deliberately not /ws
// so a frontend dev server's own socket never collides with it.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"minebuddy.app/internal/hub"
	"minebuddy.app/internal/protocol"
)

// Path is where the realtime channel is mounted.
const Path = "/ws-minebuddy"

const (
	writeTimeout = 5 * time.Second
	readTimeout  = 60 * time.Second
	pingInterval = 30 * time.Second
)

// Bot is the slice of the lifecycle manager the channel needs: an initial
// status push and inbound action dispatch.
type Bot interface {
	Status() protocol.BotStatus
	HandleAction(action protocol.BotAction) bool
}

type Server struct {
	hub *hub.Hub
	bot Bot
	log *logrus.Logger

	upgrader websocket.Upgrader
}

func NewServer(h *hub.Hub, bot Bot, log *logrus.Logger) *Server {
	return &Server{
		hub: h,
		bot: bot,
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		id, out := s.hub.Register()
		defer s.hub.Unregister(id)

		// Every subscriber gets the full current status immediately, so a
		// fresh dashboard renders without waiting for the next event.
		if err := writeJSON(conn, protocol.NewStatusMsg(s.bot.Status())); err != nil {
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Writer goroutine.
		go func() {
			ping := time.NewTicker(pingInterval)
			defer ping.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				case <-ping.C:
					_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
					if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop.
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(readTimeout))
		})
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				return
			}
			_ = conn.SetReadDeadline(time.Now().Add(readTimeout))

			base, err := protocol.DecodeBase(msg)
			if err != nil || base.Type != protocol.TypeAction {
				continue
			}
			var act protocol.ActionMsg
			if err := json.Unmarshal(msg, &act); err != nil {
				continue
			}
			// Dispatch outcome travels back on the console stream, not here.
			s.bot.HandleAction(act.Data)
		}
	}
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, b)
}
