package app

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"lingo-battle-service/internal/domain"
)

// ticket is one waiting, unmatched player: the profile, their channel back
// to the client, the enqueue time used for tie-breaking, and the pending
// bot-fallback timer.
type ticket struct {
	profile    domain.PlayerProfile
	sink       EventSink
	enqueuedAt time.Time
	botTimer   *time.Timer
}

// Queue pairs waiting players by level, or seats a bot after the match
// timeout. Tickets are kept in enqueue order so the earliest compatible
// opponent always wins the tie-break.
type Queue struct {
	cfg      Config
	log      *logrus.Logger
	source   QuestionSource
	store    MatchStore
	bot      *BotSimulator
	registry *Registry
	now      func() time.Time

	mu      sync.Mutex
	tickets []*ticket
}

// Enqueue registers a player looking for an opponent. Pairing is atomic:
// by the time the lock is released, either both tickets are gone and the
// session is registered, or a single ticket with an armed fallback timer
// exists. A duplicate identity, queued or already playing, is a no-op.
func (q *Queue) Enqueue(profile domain.PlayerProfile, sink EventSink) {
	if profile.UserID == "" {
		return
	}
	if profile.Level == "" {
		profile.Level = domain.LevelA1
	}
	if profile.QuestionCount <= 0 {
		profile.QuestionCount = q.cfg.DefaultQuestionCount
	}

	q.mu.Lock()
	if q.findLocked(profile.UserID) != nil || q.registry.HasParticipant(profile.UserID) {
		q.mu.Unlock()
		return
	}

	var opponent *ticket
	for i, t := range q.tickets {
		if t.profile.Level == profile.Level && t.profile.UserID != profile.UserID {
			opponent = t
			q.tickets = append(q.tickets[:i], q.tickets[i+1:]...)
			break
		}
	}

	if opponent != nil {
		if opponent.botTimer != nil {
			opponent.botTimer.Stop()
		}
		s := q.newSession(
			human(opponent.profile), opponent.sink,
			human(profile), sink,
			profile.Level, profile.QuestionCount,
		)
		q.registry.Add(s)
		q.mu.Unlock()

		q.log.WithFields(logrus.Fields{
			"room":  s.RoomID(),
			"level": profile.Level,
		}).Info("players paired")
		go s.Start(context.Background())
		return
	}

	t := &ticket{profile: profile, sink: sink, enqueuedAt: q.now()}
	t.botTimer = time.AfterFunc(q.cfg.MatchTimeout, func() {
		q.seatBot(profile.UserID)
	})
	q.tickets = append(q.tickets, t)
	q.mu.Unlock()
}

// Dequeue cancels a waiting ticket and its fallback timer. Used on
// disconnect or withdrawal; unknown identities are ignored.
func (q *Queue) Dequeue(userID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, t := range q.tickets {
		if t.profile.UserID == userID {
			if t.botTimer != nil {
				t.botTimer.Stop()
			}
			q.tickets = append(q.tickets[:i], q.tickets[i+1:]...)
			return
		}
	}
}

// Waiting reports the number of live tickets.
func (q *Queue) Waiting() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tickets)
}

// seatBot fires from the fallback timer: if the ticket is still waiting,
// it is removed and a bot session starts in its place.
func (q *Queue) seatBot(userID string) {
	q.mu.Lock()
	t := q.findLocked(userID)
	if t == nil {
		q.mu.Unlock()
		return
	}
	for i, cand := range q.tickets {
		if cand == t {
			q.tickets = append(q.tickets[:i], q.tickets[i+1:]...)
			break
		}
	}

	opponent := q.bot.NewOpponent()
	s := q.newSession(
		human(t.profile), t.sink,
		opponent, nil,
		t.profile.Level, t.profile.QuestionCount,
	)
	q.registry.Add(s)
	q.mu.Unlock()

	q.log.WithFields(logrus.Fields{
		"room": s.RoomID(),
		"user": userID,
	}).Info("no opponent in time, seating bot")
	go s.Start(context.Background())
}

func (q *Queue) findLocked(userID string) *ticket {
	for _, t := range q.tickets {
		if t.profile.UserID == userID {
			return t
		}
	}
	return nil
}

func (q *Queue) newSession(p1 domain.Participant, sink1 EventSink, p2 domain.Participant, sink2 EventSink, level string, count int) *Session {
	return &Session{
		roomID:   "match_" + p1.ID() + "_" + p2.ID(),
		matchID:  uuid.NewString(),
		level:    level,
		count:    count,
		cfg:      q.cfg,
		log:      q.log,
		store:    q.store,
		source:   q.source,
		bot:      q.bot,
		registry: q.registry,
		now:      q.now,
		seats: [2]*seat{
			{player: p1, sink: sink1},
			{player: p2, sink: sink2},
		},
	}
}

func human(p domain.PlayerProfile) domain.Human {
	return domain.Human{
		UserID:   p.UserID,
		Username: p.Username,
		Avatar:   p.AvatarURL,
		Level:    p.Level,
	}
}
