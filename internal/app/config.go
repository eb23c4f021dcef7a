package app

import "time"

// Config holds the gameplay tunables. Zero values are replaced with the
// defaults below so a partially filled config still plays sensibly.
type Config struct {
	// QuestionTime is the per-round answer window.
	QuestionTime time.Duration
	// MatchTimeout is how long a ticket waits before a bot is seated.
	MatchTimeout time.Duration
	// AnnounceDelay is the pause between match_found and round one.
	AnnounceDelay time.Duration
	// RevealDelay is the pause after both answered before the next round.
	RevealDelay time.Duration
	// TimeoutDelay is the pause after time_up before the next round.
	TimeoutDelay time.Duration
	// TimerGrace is added to QuestionTime before the server deadline
	// fires, so buzzer-beater submissions are not raced by the server clock.
	TimerGrace time.Duration
	// DefaultQuestionCount applies when a join request omits the count.
	DefaultQuestionCount int

	Bot BotConfig
}

const (
	defaultQuestionTime  = 10 * time.Second
	defaultMatchTimeout  = 5 * time.Second
	defaultAnnounceDelay = 3 * time.Second
	defaultRevealDelay   = 1 * time.Second
	defaultTimeoutDelay  = 2 * time.Second
	defaultTimerGrace    = 1 * time.Second
	defaultQuestionCount = 5
)

func (c Config) withDefaults() Config {
	if c.QuestionTime <= 0 {
		c.QuestionTime = defaultQuestionTime
	}
	if c.MatchTimeout <= 0 {
		c.MatchTimeout = defaultMatchTimeout
	}
	if c.AnnounceDelay <= 0 {
		c.AnnounceDelay = defaultAnnounceDelay
	}
	if c.RevealDelay <= 0 {
		c.RevealDelay = defaultRevealDelay
	}
	if c.TimeoutDelay <= 0 {
		c.TimeoutDelay = defaultTimeoutDelay
	}
	if c.TimerGrace <= 0 {
		c.TimerGrace = defaultTimerGrace
	}
	if c.DefaultQuestionCount <= 0 {
		c.DefaultQuestionCount = defaultQuestionCount
	}
	c.Bot = c.Bot.withDefaults()
	return c
}
