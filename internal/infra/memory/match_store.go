package memory

import (
	"context"
	"sync"
	"time"

	"lingo-battle-service/internal/domain"
)

// MatchStore is an in-memory implementation of the result persistence
// contract. It doubles as the test probe for what the engine wrote.
type MatchStore struct {
	mu      sync.RWMutex
	matches map[string]domain.MatchRecord
	results map[string][]domain.MatchResult
}

func NewMatchStore() *MatchStore {
	return &MatchStore{
		matches: make(map[string]domain.MatchRecord),
		results: make(map[string][]domain.MatchResult),
	}
}

func (s *MatchStore) CreateMatch(_ context.Context, rec domain.MatchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches[rec.MatchID] = rec
	return nil
}

func (s *MatchStore) MarkPlaying(_ context.Context, matchID string) error {
	return s.setStatus(matchID, domain.MatchPlaying, time.Time{})
}

func (s *MatchStore) MarkFinished(_ context.Context, matchID string, endedAt time.Time) error {
	return s.setStatus(matchID, domain.MatchFinished, endedAt)
}

func (s *MatchStore) setStatus(matchID, status string, endedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.matches[matchID]
	if !ok {
		return domain.ErrMatchNotFound
	}
	rec.Status = status
	if !endedAt.IsZero() {
		rec.EndedAt = endedAt
	}
	s.matches[matchID] = rec
	return nil
}

func (s *MatchStore) RecordResult(_ context.Context, res domain.MatchResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[res.MatchID] = append(s.results[res.MatchID], res)
	return nil
}

// Match returns the stored record, if any.
func (s *MatchStore) Match(matchID string) (domain.MatchRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.matches[matchID]
	return rec, ok
}

// Results returns the result rows written for a match.
func (s *MatchStore) Results(matchID string) []domain.MatchResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.MatchResult(nil), s.results[matchID]...)
}
