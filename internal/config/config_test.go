package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadParsesGameTunables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
server:
  port: "9090"
game:
  questionTime: 12s
  matchTimeout: 4s
  announceDelay: 2s
  revealDelay: 500ms
  timeoutDelay: 3s
  timerGrace: 2s
  questionCount: 7
bot:
  accuracy: 0.9
  minDelay: 1s
  maxDelay: 3s
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("unexpected port %q", cfg.Server.Port)
	}
	if got := DurationOr(cfg.Game.QuestionTime, 0); got != 12*time.Second {
		t.Fatalf("questionTime = %v", got)
	}
	if got := DurationOr(cfg.Game.TimerGrace, 0); got != 2*time.Second {
		t.Fatalf("timerGrace = %v", got)
	}
	if got := DurationOr(cfg.Game.RevealDelay, 0); got != 500*time.Millisecond {
		t.Fatalf("revealDelay = %v", got)
	}
	if cfg.Game.QuestionCount != 7 {
		t.Fatalf("questionCount = %d", cfg.Game.QuestionCount)
	}
	if cfg.Bot.Accuracy != 0.9 {
		t.Fatalf("bot accuracy = %v", cfg.Bot.Accuracy)
	}
}

func TestDurationOrFallsBack(t *testing.T) {
	if got := DurationOr("", time.Minute); got != time.Minute {
		t.Fatalf("empty value: %v", got)
	}
	if got := DurationOr("not-a-duration", 2*time.Second); got != 2*time.Second {
		t.Fatalf("malformed value: %v", got)
	}
	if got := DurationOr("90s", time.Minute); got != 90*time.Second {
		t.Fatalf("parsed value: %v", got)
	}
}
