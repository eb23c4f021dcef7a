package memory

import (
	"context"
	"testing"

	"lingo-battle-service/internal/domain"
)

func TestSampleQuestionsFiltersByLevel(t *testing.T) {
	source := NewQuestionSource(questionPool())

	questions, err := source.SampleQuestions(context.Background(), domain.LevelA1, 2)
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
	for _, q := range questions {
		if q.Level != domain.LevelA1 {
			t.Fatalf("expected only A1 questions, got %+v", q)
		}
	}
}

func TestSampleQuestionsFallsBackWhenLevelShort(t *testing.T) {
	source := NewQuestionSource(questionPool())

	// Only one B2 question exists; asking for 3 must widen the pool.
	questions, err := source.SampleQuestions(context.Background(), domain.LevelB2, 3)
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if len(questions) != 3 {
		t.Fatalf("expected fallback to fill 3 questions, got %d", len(questions))
	}
}

func TestSampleQuestionsEmptyPool(t *testing.T) {
	source := NewQuestionSource(nil)
	if _, err := source.SampleQuestions(context.Background(), domain.LevelA1, 5); err != domain.ErrNoQuestions {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}
}

func TestLoadPool(t *testing.T) {
	source := NewQuestionSource(questionPool())

	pool, err := source.LoadPool(context.Background(), domain.LevelA1)
	if err != nil {
		t.Fatalf("load pool: %v", err)
	}
	if len(pool) != 3 {
		t.Fatalf("expected 3 A1 questions, got %d", len(pool))
	}

	all, err := source.LoadPool(context.Background(), "")
	if err != nil {
		t.Fatalf("load all: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected full pool of 4, got %d", len(all))
	}
}

func questionPool() []domain.Question {
	return []domain.Question{
		{ID: "q1", Level: domain.LevelA1, CorrectAnswer: "A", Options: map[string]string{"A": "1", "B": "2"}},
		{ID: "q2", Level: domain.LevelA1, CorrectAnswer: "B", Options: map[string]string{"A": "1", "B": "2"}},
		{ID: "q3", Level: domain.LevelA1, CorrectAnswer: "A", Options: map[string]string{"A": "1", "B": "2"}},
		{ID: "q4", Level: domain.LevelB2, CorrectAnswer: "A", Options: map[string]string{"A": "1", "B": "2"}},
	}
}
