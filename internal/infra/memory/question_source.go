package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"lingo-battle-service/internal/domain"
)

// QuestionSource samples from a static in-memory pool (useful for
// tests/demos, mirrors what a document store would return).
type QuestionSource struct {
	mu        sync.Mutex
	rnd       *rand.Rand
	questions []domain.Question
}

func NewQuestionSource(questions []domain.Question) *QuestionSource {
	return &QuestionSource{
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
		questions: questions,
	}
}

// SampleQuestions draws a random sample at the requested level, falling
// back to the unfiltered pool when the level has too few questions.
func (s *QuestionSource) SampleQuestions(_ context.Context, level string, count int) ([]domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pool := make([]domain.Question, 0, len(s.questions))
	for _, q := range s.questions {
		if q.Level == level {
			pool = append(pool, q)
		}
	}
	if len(pool) < count {
		pool = append(pool[:0:0], s.questions...)
	}
	if len(pool) == 0 {
		return nil, domain.ErrNoQuestions
	}

	s.rnd.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	if count < len(pool) {
		pool = pool[:count]
	}
	return pool, nil
}

// LoadPool returns every question at the level, or the whole pool when
// level is empty. It backs the Redis cache in tests.
func (s *QuestionSource) LoadPool(_ context.Context, level string) ([]domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if level == "" {
		return append([]domain.Question(nil), s.questions...), nil
	}
	pool := make([]domain.Question, 0, len(s.questions))
	for _, q := range s.questions {
		if q.Level == level {
			pool = append(pool, q)
		}
	}
	return pool, nil
}
