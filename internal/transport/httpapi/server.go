// Package httpapi exposes the dashboard REST surface: config CRUD, bot
// lifecycle, status and actions. The realtime channel lives in transport/ws;
// everything here is plain request/response JSON.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"minebuddy.app/internal/protocol"
	"minebuddy.app/internal/storage"
)

// maxBodyBytes bounds request bodies; config and action payloads are tiny.
const maxBodyBytes = 1 << 20

// BotController is the slice of the lifecycle manager the API needs.
type BotController interface {
	Connect(cfg storage.BotConfig) bool
	Disconnect() bool
	Connected() bool
	Status() protocol.BotStatus
	HandleAction(action protocol.BotAction) bool
}

// ClientCounter reports how many realtime clients are attached. Used by the
// metrics endpoint.
type ClientCounter interface {
	ClientCount() int
}

type Server struct {
	store   *storage.MemStore
	bot     BotController
	clients ClientCounter
	log     *logrus.Logger
}

func NewServer(store *storage.MemStore, bot BotController, clients ClientCounter, log *logrus.Logger) *Server {
	return &Server{store: store, bot: bot, clients: clients, log: log}
}

// Register mounts every REST route on mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/bot/connect", s.handleConnect)
	mux.HandleFunc("/api/bot/disconnect", s.handleDisconnect)
	mux.HandleFunc("/api/bot/status", s.handleStatus)
	mux.HandleFunc("/api/bot/action", s.handleAction)
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/metrics", s.handleMetrics)
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		cfg, err := s.store.Get()
		if errors.Is(err, storage.ErrNoConfig) {
			// Nothing saved yet: the dashboard form starts blank.
			writeJSON(w, http.StatusOK, struct{}{})
			return
		}
		writeJSON(w, http.StatusOK, cfg)

	case http.MethodPost:
		body, err := readBody(w, r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := protocol.ValidateConfigPayload(body); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		cfg := storage.Defaults()
		if err := json.Unmarshal(body, &cfg); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, s.store.Save(cfg))

	case http.MethodPatch:
		body, err := readBody(w, r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		cfg, err := s.store.Update(body)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, cfg)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cfg, err := s.store.Get()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// The body may override stored fields for this connection; the override
	// is persisted, matching what the dashboard expects to read back.
	if len(body) > 0 {
		cfg, err = s.store.Update(body)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	if !s.bot.Connect(cfg) {
		writeError(w, http.StatusInternalServerError, "Failed to connect bot")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Bot connecting to server"})
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !s.bot.Disconnect() {
		writeError(w, http.StatusBadRequest, "Bot was not connected")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Bot disconnected from server"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.bot.Status())
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := protocol.ValidateActionPayload(body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var action protocol.BotAction
	if err := json.Unmarshal(body, &action); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !s.bot.HandleAction(action) {
		writeError(w, http.StatusBadRequest, "Failed to execute action")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("Action %s executed successfully", action.Type)})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	connected := 0
	if s.bot.Connected() {
		connected = 1
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "minebuddy_dashboard_clients %d\n", s.clients.ClientCount())
	fmt.Fprintf(w, "minebuddy_bot_connected %d\n", connected)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return b, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
