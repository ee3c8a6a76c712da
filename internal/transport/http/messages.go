package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"live-poll-service/internal/app"
)

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

var errUnknownType = errors.New("unsupported message type")

// command is one decoded inbound event, already coerced into typed values.
type command interface {
	apply(s *app.Session, c *client) error
}

type registerCommand struct {
	Name string
	Role string
}

func (cmd registerCommand) apply(s *app.Session, c *client) error {
	p, err := s.Register(c.id, c.claimed, cmd.Name, cmd.Role)
	if err == nil {
		c.claimed = p.UserID
	}
	return err
}

type askCommand struct {
	Request app.AskRequest
}

func (cmd askCommand) apply(s *app.Session, c *client) error {
	_, err := s.Ask(c.id, cmd.Request)
	return err
}

type endCommand struct{}

func (endCommand) apply(s *app.Session, c *client) error {
	return s.EndNow(c.id)
}

type answerCommand struct {
	OptionIndex int
}

func (cmd answerCommand) apply(s *app.Session, c *client) error {
	return s.SubmitAnswer(c.id, cmd.OptionIndex)
}

type chatCommand struct {
	Text string
}

func (cmd chatCommand) apply(s *app.Session, c *client) error {
	s.Chat(c.id, cmd.Text)
	return nil
}

type kickCommand struct {
	UserID string
}

func (cmd kickCommand) apply(s *app.Session, c *client) error {
	return s.Kick(c.id, cmd.UserID)
}

type historyCommand struct{}

func (historyCommand) apply(s *app.Session, c *client) error {
	s.SendHistory(c.id)
	return nil
}

// decodeCommand maps an envelope onto its command. Loosely typed fields are coerced;
// only an unknown type or an unusable answer index is an error.
func decodeCommand(msg inboundMessage) (command, error) {
	f := fieldsOf(msg.Payload)
	switch msg.Type {
	case "register":
		return registerCommand{Name: asString(f["name"]), Role: asString(f["role"])}, nil
	case "ask_question":
		req := app.AskRequest{
			Text:    asString(f["text"]),
			Options: asStrings(f["options"]),
		}
		if sec, ok := asNumber(f["durationSec"]); ok {
			req.DurationSec = sec
		}
		if idx, ok := asInt(f["correctIndex"]); ok {
			req.CorrectIndex = &idx
		}
		return askCommand{Request: req}, nil
	case "end_question":
		return endCommand{}, nil
	case "submit_answer":
		idx, ok := asInt(f["optionIndex"])
		if !ok {
			return nil, fmt.Errorf("submit_answer: optionIndex is not an integer")
		}
		return answerCommand{OptionIndex: idx}, nil
	case "chat_message":
		return chatCommand{Text: asString(f["text"])}, nil
	case "kick":
		return kickCommand{UserID: asString(f["userId"])}, nil
	case "fetch_history":
		return historyCommand{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownType, msg.Type)
	}
}

// fieldsOf returns the payload's members; anything but an object yields no fields.
func fieldsOf(raw json.RawMessage) map[string]json.RawMessage {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}
	return fields
}

func asString(raw json.RawMessage) string {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func asStrings(raw json.RawMessage) []string {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, asString(item))
	}
	return out
}

// asNumber accepts JSON numbers and numeric strings.
func asNumber(raw json.RawMessage) (float64, bool) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func asInt(raw json.RawMessage) (int, bool) {
	f, ok := asNumber(raw)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}
