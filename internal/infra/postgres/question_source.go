package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"lingo-battle-service/internal/domain"
)

// QuestionSource samples PvP questions straight from Postgres.
type QuestionSource struct {
	pool *pgxpool.Pool
}

func NewQuestionSource(pool *pgxpool.Pool) *QuestionSource {
	return &QuestionSource{pool: pool}
}

const sampleByLevelSQL = `
SELECT id, content, option_a, option_b, option_c, option_d, correct_answer, level
FROM questions
WHERE level = $1 AND mode IN ('pvp', 'both') AND is_active
ORDER BY random()
LIMIT $2`

const sampleAnySQL = `
SELECT id, content, option_a, option_b, option_c, option_d, correct_answer, level
FROM questions
WHERE mode IN ('pvp', 'both') AND is_active
ORDER BY random()
LIMIT $1`

// SampleQuestions draws a random sample at the level; a shortfall falls
// back to an unfiltered sample so pairing never fails for lack of content.
func (s *QuestionSource) SampleQuestions(ctx context.Context, level string, count int) ([]domain.Question, error) {
	rows, err := s.pool.Query(ctx, sampleByLevelSQL, level, count)
	if err != nil {
		return nil, fmt.Errorf("sample questions: %w", err)
	}
	questions, err := scanQuestions(rows)
	if err != nil {
		return nil, err
	}
	if len(questions) >= count {
		return questions, nil
	}

	rows, err = s.pool.Query(ctx, sampleAnySQL, count)
	if err != nil {
		return nil, fmt.Errorf("sample fallback questions: %w", err)
	}
	fallback, err := scanQuestions(rows)
	if err != nil {
		return nil, err
	}
	if len(fallback) == 0 {
		return nil, domain.ErrNoQuestions
	}
	return fallback, nil
}

const poolByLevelSQL = `
SELECT id, content, option_a, option_b, option_c, option_d, correct_answer, level
FROM questions
WHERE level = $1 AND mode IN ('pvp', 'both') AND is_active`

const poolAnySQL = `
SELECT id, content, option_a, option_b, option_c, option_d, correct_answer, level
FROM questions
WHERE mode IN ('pvp', 'both') AND is_active`

// LoadPool returns the full active PvP pool at the level (all levels when
// empty); the Redis cache samples from it in-process.
func (s *QuestionSource) LoadPool(ctx context.Context, level string) ([]domain.Question, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if level == "" {
		rows, err = s.pool.Query(ctx, poolAnySQL)
	} else {
		rows, err = s.pool.Query(ctx, poolByLevelSQL, level)
	}
	if err != nil {
		return nil, fmt.Errorf("load question pool: %w", err)
	}
	return scanQuestions(rows)
}

func scanQuestions(rows pgx.Rows) ([]domain.Question, error) {
	defer rows.Close()
	var questions []domain.Question
	for rows.Next() {
		var (
			q          domain.Question
			a, b, c, d string
		)
		if err := rows.Scan(&q.ID, &q.Content, &a, &b, &c, &d, &q.CorrectAnswer, &q.Level); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		q.Options = map[string]string{"A": a, "B": b, "C": c, "D": d}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read questions: %w", err)
	}
	return questions, nil
}
