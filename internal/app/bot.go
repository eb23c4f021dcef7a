package app

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"lingo-battle-service/internal/domain"
)

// BotConfig tunes the simulated opponent. The defaults mirror a mid-level
// learner: answers somewhere between 2 and 8 seconds in, right about 70%
// of the time.
type BotConfig struct {
	Accuracy  float64
	MinDelay  time.Duration
	MaxDelay  time.Duration
	Name      string
	AvatarURL string
}

const (
	defaultBotAccuracy = 0.7
	defaultBotMinDelay = 2 * time.Second
	defaultBotMaxDelay = 8 * time.Second
	defaultBotName     = "Mr. Robot"
	defaultBotAvatar   = "https://cdn-icons-png.flaticon.com/512/4712/4712109.png"
)

func (c BotConfig) withDefaults() BotConfig {
	if c.Accuracy <= 0 || c.Accuracy > 1 {
		c.Accuracy = defaultBotAccuracy
	}
	if c.MinDelay <= 0 {
		c.MinDelay = defaultBotMinDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = defaultBotMaxDelay
	}
	if c.MaxDelay < c.MinDelay {
		c.MaxDelay = c.MinDelay
	}
	if c.Name == "" {
		c.Name = defaultBotName
	}
	if c.AvatarURL == "" {
		c.AvatarURL = defaultBotAvatar
	}
	return c
}

// BotSimulator produces delayed, probabilistically-correct pseudo-answers
// and feeds them through the same submission path as human answers.
type BotSimulator struct {
	cfg BotConfig

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewBotSimulator(cfg BotConfig) *BotSimulator {
	return &BotSimulator{
		cfg: cfg.withDefaults(),
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewOpponent mints a fresh bot participant. IDs are unique per session so
// concurrent bot matches never collide in the registry.
func (b *BotSimulator) NewOpponent() domain.Bot {
	return domain.Bot{
		BotID:    "bot-" + uuid.NewString()[:8],
		Username: b.cfg.Name,
		Avatar:   b.cfg.AvatarURL,
	}
}

// ScheduleAnswer arms a one-shot answer for the given round. The answer
// letter and the delay are both drawn up front; the session re-validates
// round and answered state when the timer fires, so a stale fire is a no-op.
func (b *BotSimulator) ScheduleAnswer(s *Session, botID string, roundIdx int, q domain.Question) *time.Timer {
	delay, answer := b.draw(q, s.cfg.QuestionTime)
	return time.AfterFunc(delay, func() {
		s.submitForRound(botID, answer, roundIdx)
	})
}

func (b *BotSimulator) draw(q domain.Question, limit time.Duration) (time.Duration, string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	minD, maxD := b.cfg.MinDelay, b.cfg.MaxDelay
	// Keep the draw strictly inside the round window.
	if maxD >= limit {
		maxD = limit - time.Second
	}
	if maxD < minD {
		maxD = minD
	}
	delay := minD
	if maxD > minD {
		delay = minD + time.Duration(b.rnd.Int63n(int64(maxD-minD)))
	}

	if b.rnd.Float64() < b.cfg.Accuracy {
		return delay, q.CorrectAnswer
	}
	return delay, b.wrongOptionLocked(q)
}

func (b *BotSimulator) wrongOptionLocked(q domain.Question) string {
	wrong := make([]string, 0, len(q.Options))
	for key := range q.Options {
		if key != q.CorrectAnswer {
			wrong = append(wrong, key)
		}
	}
	if len(wrong) == 0 {
		return q.CorrectAnswer
	}
	return wrong[b.rnd.Intn(len(wrong))]
}
