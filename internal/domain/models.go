package domain

import "time"

// Role is the privilege level a participant registers with.
type Role string

const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// ParseRole grants teacher privileges only for the exact claim "teacher".
func ParseRole(claim string) Role {
	if claim == string(RoleTeacher) {
		return RoleTeacher
	}
	return RoleStudent
}

// Participant is one registered connection.
type Participant struct {
	ConnectionID string
	UserID       string
	DisplayName  string
	Role         Role
	JoinedAt     time.Time
}

// RosterEntry is the public view of a participant.
type RosterEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// Tally summarizes a ledger.
type Tally struct {
	Counts      []int `json:"counts"`
	Total       int   `json:"total"`
	Percentages []int `json:"percentages"`
}

// ClosedQuestionRecord is the immutable snapshot taken when a question closes.
type ClosedQuestionRecord struct {
	ID           string   `json:"id"`
	Text         string   `json:"text"`
	Options      []string `json:"options"`
	CorrectIndex *int     `json:"correctIndex"`
	Results      Tally    `json:"results"`
	AskedAt      int64    `json:"askedAt"`
	ClosedAt     int64    `json:"closedAt"`
}

// ChatMessage is relayed to every connection and never stored.
type ChatMessage struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Text string `json:"text"`
	TS   int64  `json:"ts"`
}

// CloseReason records which trigger closed a question.
type CloseReason string

const (
	CloseDeadline   CloseReason = "deadline"
	CloseCompleted  CloseReason = "completed"
	CloseEnded      CloseReason = "ended"
	CloseSuperseded CloseReason = "superseded"
)

// UnixMillis converts t to the wire timestamp format.
func UnixMillis(t time.Time) int64 {
	return t.UnixMilli()
}
