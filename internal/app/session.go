package app

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"lingo-battle-service/internal/domain"
)

type sessionState int

const (
	stateCreated sessionState = iota
	stateStarting
	stateRoundActive
	stateRoundGrading
	stateFinished
	stateAborted
)

const persistTimeout = 5 * time.Second

// seat is one participant's live slot: running score, correct count and
// the answered-this-round flag. The sink is nil for bots.
type seat struct {
	player   domain.Participant
	sink     EventSink
	score    int
	correct  int
	answered bool
}

// Session owns the round state machine for one pairing. All state is
// guarded by mu; every timer callback re-validates state and round index
// under the lock, so a stale fire from an already-advanced round is a
// no-op. Exactly one deadline/advance timer is pending at any time and it
// is stopped on every transition, finish and abort.
type Session struct {
	roomID  string
	matchID string
	level   string
	count   int

	cfg      Config
	log      *logrus.Logger
	store    MatchStore
	source   QuestionSource
	bot      *BotSimulator
	registry *Registry
	now      func() time.Time

	persistMu   sync.Mutex
	persistTail chan struct{}

	mu         sync.Mutex
	state      sessionState
	seats      [2]*seat
	questions  []domain.Question
	round      int
	roundStart time.Time
	startedAt  time.Time
	timer      *time.Timer
	botTimer   *time.Timer
}

// RoomID and participantIDs read only fields that are immutable after
// construction, so Registry may call them while holding its own lock.
func (s *Session) RoomID() string  { return s.roomID }
func (s *Session) MatchID() string { return s.matchID }

func (s *Session) participantIDs() []string {
	return []string{s.seats[0].player.ID(), s.seats[1].player.ID()}
}

// Start samples the question sequence, persists the match record and
// schedules round one after the announce delay. The persistence write is
// fire-and-forget: IDs are minted up front, so a store failure never gates
// gameplay.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	if s.state != stateCreated {
		s.mu.Unlock()
		return
	}
	s.state = stateStarting
	s.mu.Unlock()

	questions, err := s.source.SampleQuestions(ctx, s.level, s.count)
	if err != nil || len(questions) == 0 {
		if err == nil {
			err = domain.ErrNoQuestions
		}
		s.log.WithError(err).WithField("room", s.roomID).Error("question supply failed, tearing down session")
		s.failStart()
		return
	}

	s.mu.Lock()
	if s.state != stateStarting {
		s.mu.Unlock()
		return
	}
	s.questions = questions
	s.startedAt = s.now()
	rec := s.matchRecordLocked()

	s.broadcastLocked(EventMatchFound, MatchFoundPayload{
		RoomID:  s.roomID,
		MatchID: s.matchID,
		Player1: playerView(s.seats[0].player),
		Player2: playerView(s.seats[1].player),
	})
	s.armTimerLocked(s.cfg.AnnounceDelay, s.advanceRound)

	// Enqueued under the session lock so an immediate abort's finish write
	// chains behind this create.
	s.persist("create match", func(ctx context.Context) error {
		if err := s.store.CreateMatch(ctx, rec); err != nil {
			return err
		}
		return s.store.MarkPlaying(ctx, s.matchID)
	})
	s.mu.Unlock()
}

// SubmitAnswer grades one participant's answer for the open round. It is
// idempotent: out-of-state, duplicate and unknown-caller submissions are
// silently ignored.
func (s *Session) SubmitAnswer(userID, answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitLocked(userID, answer)
}

// submitForRound is the bot entry point: the answer was drawn when the
// round was pushed, so it only applies if the same round is still open.
func (s *Session) submitForRound(userID, answer string, roundIdx int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.round != roundIdx {
		return
	}
	s.submitLocked(userID, answer)
}

func (s *Session) submitLocked(userID, answer string) {
	if s.state != stateRoundActive {
		return
	}
	me, other := s.seatsForLocked(userID)
	if me == nil || me.answered {
		return
	}
	me.answered = true

	q := s.questions[s.round]
	elapsed := s.now().Sub(s.roundStart)
	correct := answer == q.CorrectAnswer
	points := Score(correct, elapsed, s.cfg.QuestionTime)
	if correct {
		me.correct++
	}
	me.score += points

	s.sendLocked(me, EventAnswerResult, AnswerResultPayload{
		IsCorrect:     correct,
		CorrectAnswer: q.CorrectAnswer,
		ScoreAdded:    points,
		CurrentScore:  me.score,
	})
	s.sendLocked(other, EventOpponentProgress, OpponentProgressPayload{
		OpponentID:   me.player.ID(),
		ScoreAdded:   points,
		CurrentScore: me.score,
	})

	if other.answered {
		s.state = stateRoundGrading
		s.round++
		s.armTimerLocked(s.cfg.RevealDelay, s.advanceRound)
	}
}

// advanceRound opens the next round or finishes the session once the
// sequence is exhausted.
func (s *Session) advanceRound() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != stateStarting && s.state != stateRoundGrading {
		return
	}
	if s.round >= len(s.questions) {
		s.finishLocked()
		return
	}

	s.state = stateRoundActive
	for _, st := range s.seats {
		st.answered = false
	}
	q := s.questions[s.round]
	s.roundStart = s.now()
	roundIdx := s.round

	s.broadcastLocked(EventNextQuestion, NextQuestionPayload{
		QuestionIndex:  roundIdx + 1,
		TotalQuestions: len(s.questions),
		Content:        q.Redacted(),
		TimeLimit:      int(s.cfg.QuestionTime / time.Second),
		StartTime:      s.roundStart.UnixMilli(),
	})

	if botSeat := s.botSeatLocked(); botSeat != nil {
		if s.botTimer != nil {
			s.botTimer.Stop()
		}
		s.botTimer = s.bot.ScheduleAnswer(s, botSeat.player.ID(), roundIdx, q)
	}
	s.armTimerLocked(s.cfg.QuestionTime+s.cfg.TimerGrace, func() {
		s.roundTimeout(roundIdx)
	})
}

// roundTimeout fires only when someone failed to answer in time:
// non-responders keep a zero for the round and play moves on.
func (s *Session) roundTimeout(roundIdx int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != stateRoundActive || s.round != roundIdx {
		return
	}
	s.state = stateRoundGrading
	s.broadcastLocked(EventTimeUp, TimeUpPayload{
		CorrectAnswer: s.questions[roundIdx].CorrectAnswer,
	})
	s.round++
	s.armTimerLocked(s.cfg.TimeoutDelay, s.advanceRound)
}

func (s *Session) finishLocked() {
	s.state = stateFinished
	s.stopTimersLocked()
	end := s.now()
	timeUsed := s.timeUsedLocked(end)

	matchID := s.matchID
	results := make([]domain.MatchResult, 0, 2)
	for _, st := range s.seats {
		if st.player.IsBot() {
			continue
		}
		results = append(results, domain.MatchResult{
			MatchID:      matchID,
			UserID:       st.player.ID(),
			Score:        st.score,
			CorrectCount: st.correct,
			TimeUsed:     timeUsed,
		})
	}
	s.persist("finish match", func(ctx context.Context) error {
		if err := s.store.MarkFinished(ctx, matchID, end); err != nil {
			return err
		}
		for _, res := range results {
			if err := s.store.RecordResult(ctx, res); err != nil {
				return err
			}
		}
		return nil
	})

	s.broadcastLocked(EventGameFinished, GameFinishedPayload{Players: s.standingsLocked()})
	s.registry.Remove(s)
	s.log.WithFields(logrus.Fields{"room": s.roomID, "matchId": matchID}).Info("match finished")
}

// Abort tears the session down after a disconnect. The survivor is told of
// the forfeit win and keeps a result row at their score as of this moment;
// the disconnector gets no result row. Idempotent: terminal states swallow
// repeats.
func (s *Session) Abort(disconnectedID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == stateFinished || s.state == stateAborted {
		return
	}
	s.state = stateAborted
	s.stopTimersLocked()
	end := s.now()
	timeUsed := s.timeUsedLocked(end)

	matchID := s.matchID
	var survivorResult *domain.MatchResult
	for _, st := range s.seats {
		if st.player.ID() == disconnectedID {
			continue
		}
		s.sendLocked(st, EventOpponentDisconnected, OpponentDisconnectedPayload{
			Message: "Your opponent left the match. You win!",
		})
		if !st.player.IsBot() {
			survivorResult = &domain.MatchResult{
				MatchID:      matchID,
				UserID:       st.player.ID(),
				Score:        st.score,
				CorrectCount: st.correct,
				TimeUsed:     timeUsed,
			}
		}
	}
	s.persist("abort match", func(ctx context.Context) error {
		if err := s.store.MarkFinished(ctx, matchID, end); err != nil {
			return err
		}
		if survivorResult != nil {
			return s.store.RecordResult(ctx, *survivorResult)
		}
		return nil
	})

	s.registry.Remove(s)
	s.log.WithFields(logrus.Fields{"room": s.roomID, "left": disconnectedID}).Info("match aborted on disconnect")
}

// failStart tears down a session whose question fetch failed outright.
func (s *Session) failStart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != stateStarting {
		return
	}
	s.state = stateAborted
	s.stopTimersLocked()
	s.broadcastLocked(EventError, ErrorPayload{Message: "Match could not be started."})
	s.registry.Remove(s)
}

func (s *Session) armTimerLocked(d time.Duration, fn func()) {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(d, fn)
}

func (s *Session) stopTimersLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.botTimer != nil {
		s.botTimer.Stop()
		s.botTimer = nil
	}
}

func (s *Session) seatsForLocked(userID string) (*seat, *seat) {
	if s.seats[0].player.ID() == userID {
		return s.seats[0], s.seats[1]
	}
	if s.seats[1].player.ID() == userID {
		return s.seats[1], s.seats[0]
	}
	return nil, nil
}

func (s *Session) botSeatLocked() *seat {
	for _, st := range s.seats {
		if st.player.IsBot() {
			return st
		}
	}
	return nil
}

func (s *Session) matchRecordLocked() domain.MatchRecord {
	rec := domain.MatchRecord{
		MatchID:   s.matchID,
		Player1:   s.seats[0].player.ID(),
		Status:    domain.MatchWaiting,
		StartedAt: s.startedAt,
	}
	if !s.seats[1].player.IsBot() {
		rec.Player2 = s.seats[1].player.ID()
	}
	rec.Questions = make([]domain.MatchQuestion, 0, len(s.questions))
	for _, q := range s.questions {
		rec.Questions = append(rec.Questions, domain.MatchQuestion{
			QuestionID:    q.ID,
			CorrectAnswer: q.CorrectAnswer,
		})
	}
	return rec
}

func (s *Session) standingsLocked() []PlayerStanding {
	standings := make([]PlayerStanding, 0, 2)
	for _, st := range s.seats {
		standings = append(standings, PlayerStanding{
			UserID:       st.player.ID(),
			Username:     st.player.Name(),
			Score:        st.score,
			CorrectCount: st.correct,
			Bot:          st.player.IsBot(),
		})
	}
	return standings
}

func (s *Session) timeUsedLocked(end time.Time) int {
	if s.startedAt.IsZero() {
		return 0
	}
	return int(end.Sub(s.startedAt) / time.Second)
}

func (s *Session) sendLocked(st *seat, event string, payload any) {
	if st == nil || st.sink == nil {
		return
	}
	st.sink.Send(event, payload)
}

func (s *Session) broadcastLocked(event string, payload any) {
	for _, st := range s.seats {
		s.sendLocked(st, event, payload)
	}
}

// persist runs one store interaction off the session goroutine with its
// own deadline. Calls are chained in submission order, so a finish or
// abort can never reach the store before the create that precedes it.
// Failures are logged, never fed back into gameplay state: the in-memory
// session is authoritative while it lives.
func (s *Session) persist(op string, fn func(context.Context) error) {
	s.persistMu.Lock()
	prev := s.persistTail
	done := make(chan struct{})
	s.persistTail = done
	s.persistMu.Unlock()

	go func() {
		defer close(done)
		if prev != nil {
			<-prev
		}
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{
				"matchId": s.matchID,
				"room":    s.roomID,
			}).Warnf("%s: persistence failed", op)
		}
	}()
}

func playerView(p domain.Participant) PlayerView {
	return PlayerView{
		UserID:    p.ID(),
		Username:  p.Name(),
		AvatarURL: p.AvatarURL(),
		Bot:       p.IsBot(),
	}
}
