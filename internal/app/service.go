package app

import (
	"time"

	"github.com/sirupsen/logrus"

	"lingo-battle-service/internal/domain"
)

// Service is the battle engine facade the transport talks to. It owns the
// queue and the registry; nothing here is a package global.
type Service struct {
	cfg      Config
	log      *logrus.Logger
	queue    *Queue
	registry *Registry
}

func NewService(cfg Config, source QuestionSource, store MatchStore, log *logrus.Logger) *Service {
	cfg = cfg.withDefaults()
	registry := NewRegistry()
	queue := &Queue{
		cfg:      cfg,
		log:      log,
		source:   source,
		store:    store,
		bot:      NewBotSimulator(cfg.Bot),
		registry: registry,
		now:      time.Now,
	}
	return &Service{cfg: cfg, log: log, queue: queue, registry: registry}
}

// JoinQueue puts a player into matchmaking.
func (s *Service) JoinQueue(profile domain.PlayerProfile, sink EventSink) {
	s.queue.Enqueue(profile, sink)
}

// SubmitAnswer routes an answer to its room. Unknown rooms and callers
// are ignored.
func (s *Service) SubmitAnswer(roomID, userID, answer string) {
	session, ok := s.registry.Get(roomID)
	if !ok {
		return
	}
	session.SubmitAnswer(userID, answer)
}

// Disconnect handles a dropped client: a waiting ticket is withdrawn and a
// live session is forfeited, whichever applies.
func (s *Service) Disconnect(userID string) {
	s.queue.Dequeue(userID)
	if session, ok := s.registry.ByParticipant(userID); ok {
		session.Abort(userID)
	}
}

// ActiveSessions reports the number of live rooms.
func (s *Service) ActiveSessions() int {
	return s.registry.Len()
}
