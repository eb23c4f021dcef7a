package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Questions struct {
		TTL string `yaml:"ttl"` // Redis pool cache lifetime
	} `yaml:"questions"`
	Game struct {
		QuestionTime  string `yaml:"questionTime"`
		MatchTimeout  string `yaml:"matchTimeout"`
		AnnounceDelay string `yaml:"announceDelay"`
		RevealDelay   string `yaml:"revealDelay"`
		TimeoutDelay  string `yaml:"timeoutDelay"`
		TimerGrace    string `yaml:"timerGrace"`
		QuestionCount int    `yaml:"questionCount"`
	} `yaml:"game"`
	Bot struct {
		Accuracy  float64 `yaml:"accuracy"`
		MinDelay  string  `yaml:"minDelay"`
		MaxDelay  string  `yaml:"maxDelay"`
		Name      string  `yaml:"name"`
		AvatarURL string  `yaml:"avatarUrl"`
	} `yaml:"bot"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// DurationOr parses a duration string or returns the fallback if empty or
// malformed.
func DurationOr(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
