package storage

import "testing"

func TestMemStore_SeededDefaults(t *testing.T) {
	s := NewMemStore()
	cfg, err := s.Get()
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if cfg.ServerPort != 25565 || cfg.Username != "MineBuddy_Bot" || cfg.AntiDetectionLevel != "balanced" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.AFKInterval != 30 || !cfg.AutoRespawnEnabled || cfg.AntiAFKEnabled {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestMemStore_EmptyGet(t *testing.T) {
	s := NewEmptyMemStore()
	if _, err := s.Get(); err != ErrNoConfig {
		t.Fatalf("expected ErrNoConfig, got %v", err)
	}
}

func TestMemStore_SaveReplaces(t *testing.T) {
	s := NewMemStore()
	saved := s.Save(BotConfig{ServerAddress: "mc.example.com", ServerPort: 25566, Username: "Bot1", Version: "1.20.1"})
	if saved.ServerAddress != "mc.example.com" || saved.ServerPort != 25566 {
		t.Fatalf("unexpected save result: %+v", saved)
	}
	got, err := s.Get()
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != saved {
		t.Fatalf("store mismatch: %+v vs %+v", got, saved)
	}
}

func TestMemStore_UpdateMergesPartial(t *testing.T) {
	s := NewMemStore()
	got, err := s.Update([]byte(`{"serverAddress":"mc.example.com","afkInterval":45}`))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.ServerAddress != "mc.example.com" || got.AFKInterval != 45 {
		t.Fatalf("merge missed fields: %+v", got)
	}
	// Untouched fields survive the merge.
	if got.Username != "MineBuddy_Bot" || got.ChatTemplate != "Hi {player}, I'm a bot!" {
		t.Fatalf("merge clobbered fields: %+v", got)
	}
}

func TestMemStore_UpdateWithoutRecord(t *testing.T) {
	s := NewEmptyMemStore()
	if _, err := s.Update([]byte(`{"afkInterval":45}`)); err != ErrNoConfig {
		t.Fatalf("expected ErrNoConfig, got %v", err)
	}
}
