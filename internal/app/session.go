package app

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"live-poll-service/internal/domain"
)

// HistoryRepository keeps the closed-question log for the session lifetime.
type HistoryRepository interface {
	Append(rec domain.ClosedQuestionRecord)
	Recent(limit int) []domain.ClosedQuestionRecord
}

// KickRepository is the append-only set of removed identities.
type KickRepository interface {
	Add(userID string) bool
	Contains(userID string) bool
}

// HistorySink receives every closed question for export. Sinks run off the session lock.
type HistorySink interface {
	Record(ctx context.Context, rec domain.ClosedQuestionRecord, reason domain.CloseReason) error
}

// Scheduler runs f once after d. time.AfterFunc in production.
type Scheduler func(d time.Duration, f func())

const sinkTimeout = 5 * time.Second

// Session is the single shared classroom state. Every exported method runs its whole
// state transition under one lock, so handlers for different connections and the
// deadline timers observe a serial order of events.
type Session struct {
	mu       sync.Mutex
	now      func() time.Time
	schedule Scheduler
	newID    func() string
	limits   Limits
	log      *zap.Logger

	out          Broadcaster
	participants *registry
	claims       map[string]string
	history      HistoryRepository
	kicks        KickRepository
	current      *domain.Question

	sinks   []HistorySink
	pending sync.WaitGroup
	stopped bool
}

type Option func(*Session)

// WithClock is used by tests for deterministic deadlines.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithScheduler replaces time.AfterFunc for deadline checks.
func WithScheduler(schedule Scheduler) Option {
	return func(s *Session) { s.schedule = schedule }
}

func WithLimits(l Limits) Option {
	return func(s *Session) { s.limits = l }
}

func WithLogger(log *zap.Logger) Option {
	return func(s *Session) { s.log = log }
}

func WithSinks(sinks ...HistorySink) Option {
	return func(s *Session) { s.sinks = append(s.sinks, sinks...) }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Session) { s.newID = newID }
}

func NewSession(out Broadcaster, history HistoryRepository, kicks KickRepository, opts ...Option) *Session {
	s := &Session{
		now:          time.Now,
		schedule:     func(d time.Duration, f func()) { time.AfterFunc(d, f) },
		newID:        uuid.NewString,
		limits:       DefaultLimits(),
		log:          zap.NewNop(),
		out:          out,
		participants: newRegistry(),
		claims:       make(map[string]string),
		history:      history,
		kicks:        kicks,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect admits a new connection presenting claimedUserID, unless that identity was kicked.
func (s *Session) Connect(connID, claimedUserID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	claimed := strings.TrimSpace(claimedUserID)
	if s.rejectKickedLocked(connID, claimed) {
		return domain.ErrKicked
	}
	if claimed != "" {
		s.claims[connID] = claimed
	}
	s.out.SendTo(connID, EventConnected, connectedPayload{SocketID: connID})
	return nil
}

// Register binds a connection to an identity. Input is coerced, never rejected; the only
// failure is a kicked identity.
func (s *Session) Register(connID, claimedUserID, name, role string) (domain.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID := strings.TrimSpace(claimedUserID)
	if s.rejectKickedLocked(connID, userID) {
		return domain.Participant{}, domain.ErrKicked
	}
	if userID == "" {
		userID = s.newID()
	}
	s.claims[connID] = userID

	p := domain.Participant{
		ConnectionID: connID,
		UserID:       userID,
		DisplayName:  s.limits.name(name),
		Role:         domain.ParseRole(role),
		JoinedAt:     s.now(),
	}
	s.participants.register(p)

	s.out.SendTo(connID, EventRegistered, domain.RosterEntry{ID: p.UserID, Name: p.DisplayName, Role: p.Role})
	s.broadcastRosterLocked()
	if s.current != nil {
		s.out.SendTo(connID, EventQuestionState, s.current.State())
	}
	s.log.Info("participant registered",
		zap.String("conn", connID),
		zap.String("user", p.UserID),
		zap.String("role", string(p.Role)),
	)
	return p, nil
}

// Disconnect forgets a connection. Calling it for an unknown connection does nothing.
func (s *Session) Disconnect(connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.claims, connID)
	if s.participants.unregister(connID) {
		s.broadcastRosterLocked()
	}
}

// Chat relays a message to every connection.
func (s *Session) Chat(connID, text string) domain.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := "User"
	if p, ok := s.participants.lookup(connID); ok {
		name = p.DisplayName
	}
	msg := domain.ChatMessage{
		ID:   s.newID(),
		Name: name,
		Text: truncate(text, s.limits.MaxChatLen),
		TS:   domain.UnixMillis(s.now()),
	}
	s.out.BroadcastAll(EventChatMessage, msg)
	return msg
}

// SendHistory replies to connID with the most recent closed questions, oldest first.
func (s *Session) SendHistory(connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.out.SendTo(connID, EventHistory, s.history.Recent(s.limits.HistoryLimit))
}

// History returns up to limit closed questions, oldest first.
func (s *Session) History(limit int) []domain.ClosedQuestionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Recent(limit)
}

// Roster lists registered participants in connection order.
func (s *Session) Roster() []domain.RosterEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.participants.roster()
}

// Snapshot returns the current question, if any, without its ledger.
func (s *Session) Snapshot() (domain.StateView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return domain.StateView{}, false
	}
	return s.current.State(), true
}

// Stop ends exports: questions closed after it are still broadcast and kept in
// history but no longer handed to sinks.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
}

// Wait blocks until in-flight sink writes finish or ctx is done.
func (s *Session) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) broadcastRosterLocked() {
	s.out.BroadcastAll(EventParticipants, s.participants.roster())
}

func (s *Session) archive(rec domain.ClosedQuestionRecord, reason domain.CloseReason) {
	if s.stopped {
		s.log.Debug("session stopped, skipping export", zap.String("question", rec.ID))
		return
	}
	for _, sink := range s.sinks {
		s.pending.Add(1)
		go func(sink HistorySink) {
			defer s.pending.Done()
			ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
			defer cancel()
			if err := sink.Record(ctx, rec, reason); err != nil {
				s.log.Warn("archive closed question", zap.String("question", rec.ID), zap.Error(err))
			}
		}(sink)
	}
}
