package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"lingo-battle-service/internal/domain"
)

// MatchStore persists match records and per-player results in Postgres.
type MatchStore struct {
	pool *pgxpool.Pool
}

func NewMatchStore(pool *pgxpool.Pool) *MatchStore {
	return &MatchStore{pool: pool}
}

func (s *MatchStore) CreateMatch(ctx context.Context, rec domain.MatchRecord) error {
	questions, err := json.Marshal(rec.Questions)
	if err != nil {
		return fmt.Errorf("marshal match questions: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO matches (id, player1, player2, questions, status, started_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6)`,
		rec.MatchID, rec.Player1, rec.Player2, questions, rec.Status, rec.StartedAt)
	if err != nil {
		return fmt.Errorf("create match: %w", err)
	}
	return nil
}

func (s *MatchStore) MarkPlaying(ctx context.Context, matchID string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE matches SET status = $2 WHERE id = $1`,
		matchID, domain.MatchPlaying)
	if err != nil {
		return fmt.Errorf("mark playing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMatchNotFound
	}
	return nil
}

func (s *MatchStore) MarkFinished(ctx context.Context, matchID string, endedAt time.Time) error {
	tag, err := s.pool.Exec(ctx, `UPDATE matches SET status = $2, ended_at = $3 WHERE id = $1`,
		matchID, domain.MatchFinished, endedAt)
	if err != nil {
		return fmt.Errorf("mark finished: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMatchNotFound
	}
	return nil
}

func (s *MatchStore) RecordResult(ctx context.Context, res domain.MatchResult) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO match_results (match_id, user_id, score, correct_count, time_used)
		VALUES ($1, $2, $3, $4, $5)`,
		res.MatchID, res.UserID, res.Score, res.CorrectCount, res.TimeUsed)
	if err != nil {
		return fmt.Errorf("record result: %w", err)
	}
	return nil
}
