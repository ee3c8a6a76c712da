package domain

import "time"

// Question is the single active poll. It moves from open to closed exactly once.
type Question struct {
	ID           string
	Text         string
	Options      []string
	CorrectIndex *int
	Deadline     time.Time
	CreatedAt    time.Time
	ClosedAt     time.Time

	closed  bool
	answers map[string]int
}

// NewQuestion returns an open question with an empty ledger.
func NewQuestion(id, text string, options []string, correctIndex *int, createdAt time.Time, duration time.Duration) *Question {
	return &Question{
		ID:           id,
		Text:         text,
		Options:      options,
		CorrectIndex: correctIndex,
		Deadline:     createdAt.Add(duration),
		CreatedAt:    createdAt,
		answers:      make(map[string]int),
	}
}

// Closed reports whether the question reached its terminal state.
func (q *Question) Closed() bool {
	return q.closed
}

// Close marks the question closed. Only the first call returns true.
func (q *Question) Close(at time.Time) bool {
	if q.closed {
		return false
	}
	q.closed = true
	q.ClosedAt = at
	return true
}

// Expired reports whether now is past the deadline.
func (q *Question) Expired(now time.Time) bool {
	return now.After(q.Deadline)
}

// ValidOption reports whether idx points at one of the options.
func (q *Question) ValidOption(idx int) bool {
	return idx >= 0 && idx < len(q.Options)
}

// Record stores the first answer for userID. Later answers are ignored and return false.
func (q *Question) Record(userID string, idx int) bool {
	if _, ok := q.answers[userID]; ok {
		return false
	}
	q.answers[userID] = idx
	return true
}

// HasAnswered reports whether userID already has a ledger entry.
func (q *Question) HasAnswered(userID string) bool {
	_, ok := q.answers[userID]
	return ok
}

// AnswerCount is the ledger size.
func (q *Question) AnswerCount() int {
	return len(q.answers)
}

// Answers returns a copy of the ledger.
func (q *Question) Answers() map[string]int {
	out := make(map[string]int, len(q.answers))
	for k, v := range q.answers {
		out[k] = v
	}
	return out
}

// View is the public shape of a question: the ledger is never exposed.
type View struct {
	ID           string   `json:"id"`
	Text         string   `json:"text"`
	Options      []string `json:"options"`
	CorrectIndex *int     `json:"correctIndex"`
	Deadline     int64    `json:"deadline"`
	StartedAt    int64    `json:"startedAt"`
}

// StateView is a View with the closed flag, replayed to latecomers.
type StateView struct {
	View
	Closed bool `json:"closed"`
}

// View returns the started-event payload.
func (q *Question) View() View {
	return View{
		ID:           q.ID,
		Text:         q.Text,
		Options:      append([]string(nil), q.Options...),
		CorrectIndex: q.CorrectIndex,
		Deadline:     UnixMillis(q.Deadline),
		StartedAt:    UnixMillis(q.CreatedAt),
	}
}

// State returns the replay payload.
func (q *Question) State() StateView {
	return StateView{View: q.View(), Closed: q.closed}
}
