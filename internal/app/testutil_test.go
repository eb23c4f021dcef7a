package app

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"lingo-battle-service/internal/domain"
)

// recordingSink captures everything the engine pushes to one participant.
type recordingSink struct {
	mu     sync.Mutex
	events []sinkEvent
}

type sinkEvent struct {
	name    string
	payload any
}

func (r *recordingSink) Send(event string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, sinkEvent{name: event, payload: payload})
}

func (r *recordingSink) count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.name == name {
			n++
		}
	}
	return n
}

func (r *recordingSink) payloads(name string) []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []any
	for _, e := range r.events {
		if e.name == name {
			out = append(out, e.payload)
		}
	}
	return out
}

func waitForEvent(t *testing.T, sink *recordingSink, name string) any {
	t.Helper()
	return waitForEventCount(t, sink, name, 1)
}

func waitForEventCount(t *testing.T, sink *recordingSink, name string, n int) any {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if ps := sink.payloads(name); len(ps) >= n {
			return ps[n-1]
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for event %q (#%d)", name, n)
	return nil
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not reached: %s", msg)
}

// stubSource returns a fixed, ordered sequence so answers are known.
type stubSource struct {
	questions []domain.Question
}

func (s stubSource) SampleQuestions(_ context.Context, _ string, count int) ([]domain.Question, error) {
	if count > len(s.questions) {
		count = len(s.questions)
	}
	return s.questions[:count], nil
}

// fakeClock makes elapsed-time arithmetic deterministic.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestQueue(cfg Config, source QuestionSource, store MatchStore, now func() time.Time) *Queue {
	cfg = cfg.withDefaults()
	log := logrus.New()
	log.SetOutput(io.Discard)
	if now == nil {
		now = time.Now
	}
	return &Queue{
		cfg:      cfg,
		log:      log,
		source:   source,
		store:    store,
		bot:      NewBotSimulator(cfg.Bot),
		registry: NewRegistry(),
		now:      now,
	}
}

func testQuestions(n int) []domain.Question {
	base := []domain.Question{
		{ID: "q1", Content: "one", Options: map[string]string{"A": "1", "B": "2", "C": "3", "D": "4"}, CorrectAnswer: "A", Level: domain.LevelA2},
		{ID: "q2", Content: "two", Options: map[string]string{"A": "1", "B": "2", "C": "3", "D": "4"}, CorrectAnswer: "B", Level: domain.LevelA2},
		{ID: "q3", Content: "three", Options: map[string]string{"A": "1", "B": "2", "C": "3", "D": "4"}, CorrectAnswer: "C", Level: domain.LevelA2},
		{ID: "q4", Content: "four", Options: map[string]string{"A": "1", "B": "2", "C": "3", "D": "4"}, CorrectAnswer: "D", Level: domain.LevelA2},
		{ID: "q5", Content: "five", Options: map[string]string{"A": "1", "B": "2", "C": "3", "D": "4"}, CorrectAnswer: "A", Level: domain.LevelA2},
	}
	return base[:n]
}

func profile(userID, level string, count int) domain.PlayerProfile {
	return domain.PlayerProfile{
		UserID:        userID,
		Username:      "player " + userID,
		Level:         level,
		QuestionCount: count,
	}
}

// fastConfig keeps round pacing tight while leaving the answer window wide
// enough that deadlines never race the assertions.
func fastConfig() Config {
	return Config{
		QuestionTime:  5 * time.Second,
		MatchTimeout:  time.Hour,
		AnnounceDelay: 5 * time.Millisecond,
		RevealDelay:   5 * time.Millisecond,
		TimeoutDelay:  5 * time.Millisecond,
		TimerGrace:    time.Second,
	}
}
