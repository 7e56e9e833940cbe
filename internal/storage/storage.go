// Package storage holds the single user-editable bot configuration record.
// The record is volatile by design: it lives for the process lifetime only.
package storage

import (
	"encoding/json"
	"errors"
	"sync"
)

var ErrNoConfig = errors.New("no bot configuration found")

// BotConfig is the connection/behavior profile edited from the dashboard.
type BotConfig struct {
	ServerAddress       string `json:"serverAddress"`
	ServerPort          int    `json:"serverPort"`
	Username            string `json:"username"`
	Version             string `json:"version"`
	MovementSpeed       int    `json:"movementSpeed"`
	AntiDetectionLevel  string `json:"antiDetectionLevel"`
	AFKInterval         int    `json:"afkInterval"`
	ChatTemplate        string `json:"chatTemplate"`
	AntiAFKEnabled      bool   `json:"antiAfkEnabled"`
	AutoRespawnEnabled  bool   `json:"autoRespawnEnabled"`
	ChatResponseEnabled bool   `json:"chatResponseEnabled"`
}

// Defaults is the config seeded at startup, before the user saves anything.
func Defaults() BotConfig {
	return BotConfig{
		ServerAddress:       "",
		ServerPort:          25565,
		Username:            "MineBuddy_Bot",
		Version:             "1.20.1",
		MovementSpeed:       3,
		AntiDetectionLevel:  "balanced",
		AFKInterval:         30,
		ChatTemplate:        "Hi {player}, I'm a bot!",
		AntiAFKEnabled:      false,
		AutoRespawnEnabled:  true,
		ChatResponseEnabled: false,
	}
}

// MemStore is the volatile single-record config store. Save replaces fields
// wholesale, Update merges a partial JSON document into the existing record.
// Last write wins; there are no transactional semantics.
type MemStore struct {
	mu  sync.Mutex
	cfg *BotConfig
}

// NewMemStore returns a store seeded with the default config.
func NewMemStore() *MemStore {
	cfg := Defaults()
	return &MemStore{cfg: &cfg}
}

// NewEmptyMemStore returns a store with no record at all.
func NewEmptyMemStore() *MemStore {
	return &MemStore{}
}

// Get returns the current config, or ErrNoConfig if none exists.
func (s *MemStore) Get() (BotConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg == nil {
		return BotConfig{}, ErrNoConfig
	}
	return *s.cfg, nil
}

// Save merges the given full config over the existing record, creating it if
// absent, and returns the stored result.
func (s *MemStore) Save(cfg BotConfig) BotConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg == nil {
		s.cfg = &cfg
		return cfg
	}
	*s.cfg = cfg
	return cfg
}

// Update applies a partial JSON document to the existing record. Only fields
// present in the document change. Fails with ErrNoConfig if nothing exists.
func (s *MemStore) Update(partial []byte) (BotConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg == nil {
		return BotConfig{}, ErrNoConfig
	}
	merged := *s.cfg
	if err := json.Unmarshal(partial, &merged); err != nil {
		return BotConfig{}, err
	}
	*s.cfg = merged
	return merged, nil
}
