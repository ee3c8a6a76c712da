package app

// Broadcaster fans session events out to connections. Implementations must not block
// and must not call back into the Session.
type Broadcaster interface {
	BroadcastAll(event string, payload any)
	SendTo(connID, event string, payload any)
	// Disconnect forcibly terminates a connection after flushing what was queued for it.
	Disconnect(connID string)
}

// Outbound event names.
const (
	EventConnected       = "connected"
	EventRegistered      = "registered"
	EventParticipants    = "participants"
	EventQuestionStarted = "question_started"
	EventQuestionState   = "question_state"
	EventQuestionClosed  = "question_closed"
	EventAnswerCount     = "answer_count"
	EventAnswerAck       = "answer_ack"
	EventChatMessage     = "chat_message"
	EventKicked          = "kicked"
	EventHistory         = "history"
	EventError           = "error_msg"
)

type connectedPayload struct {
	SocketID string `json:"socketId"`
}

type answerCountPayload struct {
	Answered int `json:"answered"`
}

type errorPayload struct {
	Message string `json:"message"`
}

const conflictMessage = "Cannot ask a new question yet."
