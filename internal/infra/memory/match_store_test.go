package memory

import (
	"context"
	"testing"
	"time"

	"lingo-battle-service/internal/domain"
)

func TestMatchStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMatchStore()

	rec := domain.MatchRecord{
		MatchID:   "m1",
		Player1:   "u1",
		Player2:   "u2",
		Status:    domain.MatchWaiting,
		StartedAt: time.Now(),
	}
	if err := store.CreateMatch(ctx, rec); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.MarkPlaying(ctx, "m1"); err != nil {
		t.Fatalf("mark playing: %v", err)
	}
	got, ok := store.Match("m1")
	if !ok || got.Status != domain.MatchPlaying {
		t.Fatalf("expected playing match, got %+v ok=%v", got, ok)
	}

	end := time.Now()
	if err := store.MarkFinished(ctx, "m1", end); err != nil {
		t.Fatalf("mark finished: %v", err)
	}
	got, _ = store.Match("m1")
	if got.Status != domain.MatchFinished || !got.EndedAt.Equal(end) {
		t.Fatalf("expected finished with end time, got %+v", got)
	}

	if err := store.RecordResult(ctx, domain.MatchResult{MatchID: "m1", UserID: "u1", Score: 34, CorrectCount: 2}); err != nil {
		t.Fatalf("record: %v", err)
	}
	results := store.Results("m1")
	if len(results) != 1 || results[0].Score != 34 {
		t.Fatalf("unexpected results %+v", results)
	}
}

func TestMatchStoreUnknownMatch(t *testing.T) {
	store := NewMatchStore()
	if err := store.MarkPlaying(context.Background(), "nope"); err != domain.ErrMatchNotFound {
		t.Fatalf("expected ErrMatchNotFound, got %v", err)
	}
}
