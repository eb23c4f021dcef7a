package domain

import "time"

// CEFR levels used for question filtering.
const (
	LevelA1 = "A1"
	LevelA2 = "A2"
	LevelB1 = "B1"
	LevelB2 = "B2"
	LevelC1 = "C1"
	LevelC2 = "C2"
)

// Question models a PvP multiple-choice question with options keyed A-D.
type Question struct {
	ID            string            `json:"id"`
	Content       string            `json:"content"`
	Options       map[string]string `json:"options"`
	CorrectAnswer string            `json:"correctAnswer,omitempty"`
	Level         string            `json:"level"`
}

// Redacted returns a copy safe to push to clients while the round is open.
func (q Question) Redacted() Question {
	q.CorrectAnswer = ""
	return q
}

// PlayerProfile describes a player asking to be matched. Ephemeral: created
// on queue join, discarded on pairing or withdrawal.
type PlayerProfile struct {
	UserID        string `json:"userId"`
	Username      string `json:"username"`
	AvatarURL     string `json:"avatarUrl"`
	Level         string `json:"level"`
	QuestionCount int    `json:"questionCount"`
}

// Match statuses as persisted.
const (
	MatchWaiting  = "waiting"
	MatchPlaying  = "playing"
	MatchFinished = "finished"
)

// MatchQuestion is the stored slice of a match's question list: only the ID
// and the correct answer are kept for server-side verification.
type MatchQuestion struct {
	QuestionID    string `json:"questionId"`
	CorrectAnswer string `json:"correctAnswer"`
}

// MatchRecord is the durable system-of-record row for one pairing.
// Player2 is empty when the opponent was a bot.
type MatchRecord struct {
	MatchID   string
	Player1   string
	Player2   string
	Questions []MatchQuestion
	Status    string
	StartedAt time.Time
	EndedAt   time.Time
}

// MatchResult is written once per human participant at completion.
type MatchResult struct {
	MatchID      string
	UserID       string
	Score        int
	CorrectCount int
	TimeUsed     int // seconds
}
