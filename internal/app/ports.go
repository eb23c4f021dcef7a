package app

import (
	"context"
	"time"

	"lingo-battle-service/internal/domain"
)

// QuestionSource supplies a random sample of PvP questions for one match.
// Implementations fall back to an unfiltered sample when the requested
// level has too few questions; pairing never fails because of a shortfall.
type QuestionSource interface {
	SampleQuestions(ctx context.Context, level string, count int) ([]domain.Question, error)
}

// MatchStore is the durable store for match records and per-player results.
// Every call is best-effort from the engine's point of view: failures are
// logged and never propagated into gameplay state.
type MatchStore interface {
	CreateMatch(ctx context.Context, rec domain.MatchRecord) error
	MarkPlaying(ctx context.Context, matchID string) error
	MarkFinished(ctx context.Context, matchID string, endedAt time.Time) error
	RecordResult(ctx context.Context, res domain.MatchResult) error
}

// EventSink is one participant's side of the real-time channel. Bots are
// seated without a sink. Send must never block the caller.
type EventSink interface {
	Send(event string, payload any)
}

// Server-to-client event names.
const (
	EventMatchFound           = "match_found"
	EventNextQuestion         = "next_question"
	EventAnswerResult         = "answer_result"
	EventOpponentProgress     = "opponent_progress"
	EventTimeUp               = "time_up"
	EventGameFinished         = "game_finished"
	EventOpponentDisconnected = "opponent_disconnected"
	EventError                = "error"
)

// PlayerView is the participant info pushed with match_found.
type PlayerView struct {
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl"`
	Bot       bool   `json:"bot,omitempty"`
}

// MatchFoundPayload announces a pairing to both sides.
type MatchFoundPayload struct {
	RoomID  string     `json:"roomId"`
	MatchID string     `json:"matchId"`
	Player1 PlayerView `json:"player1"`
	Player2 PlayerView `json:"player2"`
}

// NextQuestionPayload pushes one round's content; the correct answer is
// always withheld.
type NextQuestionPayload struct {
	QuestionIndex  int             `json:"questionIndex"`
	TotalQuestions int             `json:"totalQuestions"`
	Content        domain.Question `json:"content"`
	TimeLimit      int             `json:"timeLimit"` // seconds
	StartTime      int64           `json:"startTime"` // unix millis
}

// AnswerResultPayload is unicast to the submitter after grading.
type AnswerResultPayload struct {
	IsCorrect     bool   `json:"isCorrect"`
	CorrectAnswer string `json:"correctAnswer"`
	ScoreAdded    int    `json:"scoreAdded"`
	CurrentScore  int    `json:"currentScore"`
}

// OpponentProgressPayload tells the other side about a score delta without
// revealing the submitted answer.
type OpponentProgressPayload struct {
	OpponentID   string `json:"opponentId"`
	ScoreAdded   int    `json:"scoreAdded"`
	CurrentScore int    `json:"currentScore"`
}

// TimeUpPayload reveals the answer when the round deadline passes.
type TimeUpPayload struct {
	CorrectAnswer string `json:"correctAnswer"`
}

// PlayerStanding is one row of the final scoreboard.
type PlayerStanding struct {
	UserID       string `json:"userId"`
	Username     string `json:"username"`
	Score        int    `json:"score"`
	CorrectCount int    `json:"correctCount"`
	Bot          bool   `json:"bot,omitempty"`
}

// GameFinishedPayload carries the final scoreboard.
type GameFinishedPayload struct {
	Players []PlayerStanding `json:"players"`
}

// OpponentDisconnectedPayload notifies the survivor of a forfeit win.
type OpponentDisconnectedPayload struct {
	Message string `json:"message"`
}

// ErrorPayload reports why the engine rejected or tore down an interaction.
type ErrorPayload struct {
	Message string `json:"message"`
}
