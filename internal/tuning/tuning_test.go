package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults_AllLevels(t *testing.T) {
	tn := Defaults()
	if err := tn.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	if p := tn.Profile("paranoid"); p.ChatDelayMs != 3000 {
		t.Fatalf("unexpected paranoid profile: %+v", p)
	}
}

func TestProfile_UnknownFallsBackToBalanced(t *testing.T) {
	tn := Defaults()
	if p := tn.Profile("stealth"); p != tn.Profiles["balanced"] {
		t.Fatalf("expected balanced fallback, got %+v", p)
	}
}

func TestLoad_OverridesSingleProfile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")
	data := []byte("profiles:\n  balanced:\n    move_delay_ms: 200\n    look_speed: 0.4\n    chat_delay_ms: 1500\n    random_movement_chance: 0.12\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	tn, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tn.Profiles["balanced"].MoveDelayMs != 200 {
		t.Fatalf("override not applied: %+v", tn.Profiles["balanced"])
	}
	// Other profiles keep their defaults.
	if tn.Profiles["minimal"].MoveDelayMs != 50 {
		t.Fatalf("minimal profile changed: %+v", tn.Profiles["minimal"])
	}
}

func TestLoad_RejectsBadProfile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")
	data := []byte("profiles:\n  balanced:\n    move_delay_ms: 0\n    look_speed: 0.4\n    chat_delay_ms: 1500\n    random_movement_chance: 0.12\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	tn, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tn.Profiles["minimal"].ChatDelayMs != 300 {
		t.Fatalf("unexpected defaults: %+v", tn.Profiles["minimal"])
	}
}
