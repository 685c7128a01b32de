package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeFile(t, "config.yml", "tracker:\n  database_path: test.db\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Tracker.DatabasePath != "test.db" {
		t.Errorf("DatabasePath = %q, want test.db", cfg.Tracker.DatabasePath)
	}
	if cfg.Tracker.BatchSize != 5 {
		t.Errorf("BatchSize = %d, want default 5", cfg.Tracker.BatchSize)
	}
	if cfg.Tracker.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want default 3", cfg.Tracker.MaxRetries)
	}
	if got := cfg.Tracker.CheckInterval(); got != 60*time.Second {
		t.Errorf("CheckInterval = %v, want 60s", got)
	}
	if got := cfg.Tracker.HeartbeatInterval(); got != 6*time.Hour {
		t.Errorf("HeartbeatInterval = %v, want 6h", got)
	}
	if got := cfg.GameStop.MinFetchDelay(); got != 20*time.Second {
		t.Errorf("GameStop MinFetchDelay = %v, want 20s", got)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %q, want default 8080", cfg.Server.Port)
	}
}

func TestLoadConfigEnvOverridesWin(t *testing.T) {
	path := writeFile(t, "config.yml", `
telegram:
  bot_token: from-file
  channel_id: "@channel"
`)
	t.Setenv("TELEGRAM_BOT_TOKEN", "from-env")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Telegram.BotToken != "from-env" {
		t.Errorf("BotToken = %q, want from-env", cfg.Telegram.BotToken)
	}
	if cfg.Telegram.ChannelID != "@channel" {
		t.Errorf("ChannelID = %q, want @channel", cfg.Telegram.ChannelID)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadURLListMissingFileIsEmpty(t *testing.T) {
	list, err := LoadURLList(filepath.Join(t.TempDir(), "urls.yml"))
	if err != nil {
		t.Fatalf("LoadURLList: %v", err)
	}
	if len(list.All()) != 0 {
		t.Errorf("expected empty list, got %v", list.All())
	}
}

func TestSaveAndLoadURLList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.yml")
	saved := URLList{
		Amazon:   []string{"https://www.amazon.it/dp/B0B2", "https://www.amazon.it/dp/B0A1"},
		GameStop: []string{"https://www.gamestop.it/product/x"},
	}
	if err := SaveURLList(path, saved); err != nil {
		t.Fatalf("SaveURLList: %v", err)
	}

	loaded, err := LoadURLList(path)
	if err != nil {
		t.Fatalf("LoadURLList: %v", err)
	}
	if len(loaded.Amazon) != 2 || len(loaded.GameStop) != 1 {
		t.Fatalf("round trip lost entries: %+v", loaded)
	}
	if loaded.Amazon[0] != "https://www.amazon.it/dp/B0A1" {
		t.Errorf("Amazon list not sorted: %v", loaded.Amazon)
	}
}

func TestMergeURLs(t *testing.T) {
	tests := []struct {
		name       string
		existing   []string
		discovered []string
		wantLen    int
		wantAdded  int
	}{
		{"All New", nil, []string{"a", "b"}, 2, 2},
		{"All Duplicates", []string{"a", "b"}, []string{"a", "b"}, 2, 0},
		{"Mixed", []string{"a"}, []string{"a", "b", "b"}, 2, 1},
		{"Nothing Discovered", []string{"a"}, nil, 1, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			merged, added := MergeURLs(tc.existing, tc.discovered)
			if len(merged) != tc.wantLen {
				t.Errorf("len(merged) = %d, want %d", len(merged), tc.wantLen)
			}
			if added != tc.wantAdded {
				t.Errorf("added = %d, want %d", added, tc.wantAdded)
			}
		})
	}
}
