package app

import (
	"go.uber.org/zap"

	"live-poll-service/internal/domain"
	"live-poll-service/internal/metrics"
)

// AskRequest is a teacher's new question after boundary coercion.
type AskRequest struct {
	Text         string
	Options      []string
	DurationSec  float64
	CorrectIndex *int
}

// Ask opens a new question. It refuses with ErrConflict, and tells the requester, while
// the current question is open and some connected student has not answered yet.
func (s *Session) Ask(connID string, req AskRequest) (domain.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isTeacherLocked(connID) {
		return domain.View{}, domain.ErrUnauthorized
	}
	if s.current != nil && !s.current.Closed() && !s.allAnsweredLocked() {
		s.out.SendTo(connID, EventError, errorPayload{Message: conflictMessage})
		return domain.View{}, domain.ErrConflict
	}

	options := s.limits.options(req.Options)
	if len(options) == 0 {
		return domain.View{}, domain.ErrValidation
	}
	var correct *int
	if req.CorrectIndex != nil && *req.CorrectIndex >= 0 && *req.CorrectIndex < len(options) {
		idx := *req.CorrectIndex
		correct = &idx
	}

	if s.current != nil {
		s.closeLocked(s.current, domain.CloseSuperseded)
	}

	duration := s.limits.duration(req.DurationSec)
	q := domain.NewQuestion(s.newID(), truncate(req.Text, s.limits.MaxTextLen), options, correct, s.now(), duration)
	s.current = q
	view := q.View()
	s.out.BroadcastAll(EventQuestionStarted, view)

	id := q.ID
	s.schedule(q.Deadline.Sub(s.now()), func() { s.expire(id) })

	s.log.Info("question started",
		zap.String("question", q.ID),
		zap.Int("options", len(options)),
		zap.Duration("duration", duration),
	)
	return view, nil
}

// SubmitAnswer records a student's first answer to the open question. A repeated answer
// leaves the ledger alone but is still acknowledged.
func (s *Session) SubmitAnswer(connID string, optionIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := s.current
	if q == nil || q.Closed() || q.Expired(s.now()) {
		return domain.ErrNotFound
	}
	p, ok := s.participants.lookup(connID)
	if !ok || p.Role != domain.RoleStudent {
		return domain.ErrUnauthorized
	}
	if !q.ValidOption(optionIndex) {
		return domain.ErrValidation
	}

	if q.Record(p.UserID, optionIndex) {
		s.out.BroadcastAll(EventAnswerCount, answerCountPayload{Answered: q.AnswerCount()})
		students := len(s.participants.studentUserIDs())
		if students > 0 && q.AnswerCount() >= students {
			s.closeLocked(q, domain.CloseCompleted)
		}
	}
	s.out.SendTo(connID, EventAnswerAck, nil)
	return nil
}

// EndNow closes the open question on the teacher's command.
func (s *Session) EndNow(connID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isTeacherLocked(connID) {
		return domain.ErrUnauthorized
	}
	if s.current == nil || !s.closeLocked(s.current, domain.CloseEnded) {
		return domain.ErrNotFound
	}
	return nil
}

// expire is the deadline callback. It only acts on the question it was scheduled for.
func (s *Session) expire(questionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil || s.current.ID != questionID {
		return
	}
	s.closeLocked(s.current, domain.CloseDeadline)
}

// closeLocked performs the terminal transition. Whichever trigger reaches it first wins;
// every later call for the same question returns false without side effects.
func (s *Session) closeLocked(q *domain.Question, reason domain.CloseReason) bool {
	if !q.Close(s.now()) {
		return false
	}
	rec := domain.ClosedQuestionRecord{
		ID:           q.ID,
		Text:         q.Text,
		Options:      append([]string(nil), q.Options...),
		CorrectIndex: q.CorrectIndex,
		Results:      Tally(q.Answers(), len(q.Options)),
		AskedAt:      domain.UnixMillis(q.CreatedAt),
		ClosedAt:     domain.UnixMillis(q.ClosedAt),
	}
	s.history.Append(rec)
	s.out.BroadcastAll(EventQuestionClosed, rec)
	metrics.QuestionsClosed.WithLabelValues(string(reason)).Inc()
	s.archive(rec, reason)

	s.log.Info("question closed",
		zap.String("question", q.ID),
		zap.String("reason", string(reason)),
		zap.Int("answers", rec.Results.Total),
	)
	return true
}

func (s *Session) allAnsweredLocked() bool {
	students := s.participants.studentUserIDs()
	if len(students) == 0 {
		return false
	}
	for userID := range students {
		if !s.current.HasAnswered(userID) {
			return false
		}
	}
	return true
}

func (s *Session) isTeacherLocked(connID string) bool {
	p, ok := s.participants.lookup(connID)
	return ok && p.Role == domain.RoleTeacher
}
