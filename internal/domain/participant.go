package domain

// Participant is the tagged human/bot variant. Scoring and round logic use
// this single interface so bots and humans share one code path; only
// persistence branches on IsBot.
type Participant interface {
	ID() string
	Name() string
	AvatarURL() string
	IsBot() bool
}

// Human is a real player seated in a session.
type Human struct {
	UserID   string
	Username string
	Avatar   string
	Level    string
}

func (h Human) ID() string        { return h.UserID }
func (h Human) Name() string      { return h.Username }
func (h Human) AvatarURL() string { return h.Avatar }
func (h Human) IsBot() bool       { return false }

// Bot is a simulated opponent seated when matchmaking times out.
type Bot struct {
	BotID    string
	Username string
	Avatar   string
}

func (b Bot) ID() string        { return b.BotID }
func (b Bot) Name() string      { return b.Username }
func (b Bot) AvatarURL() string { return b.Avatar }
func (b Bot) IsBot() bool       { return true }
