package http

import (
	"encoding/json"
	"testing"

	"go.uber.org/zap"
)

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub(zap.NewNop())
	slow := &client{id: "slow", send: make(chan []byte, 1)}
	fast := &client{id: "fast", send: make(chan []byte, 4)}
	hub.add(slow)
	hub.add(fast)

	hub.BroadcastAll("answer_count", map[string]int{"answered": 1})
	hub.BroadcastAll("answer_count", map[string]int{"answered": 2})

	if hub.Len() != 1 {
		t.Fatalf("expected slow client dropped, %d clients left", hub.Len())
	}
	if len(fast.send) != 2 {
		t.Fatalf("expected fast client to have both frames, got %d", len(fast.send))
	}
	<-slow.send
	if _, ok := <-slow.send; ok {
		t.Fatalf("expected slow client queue closed")
	}
}

func TestHubSendToAndDisconnect(t *testing.T) {
	hub := NewHub(zap.NewNop())
	c := &client{id: "c1", send: make(chan []byte, 4)}
	hub.add(c)

	hub.SendTo("c1", "answer_ack", nil)
	hub.SendTo("missing", "answer_ack", nil)
	hub.Disconnect("c1")
	hub.Disconnect("c1")

	frame, ok := <-c.send
	if !ok {
		t.Fatalf("expected queued frame before close")
	}
	var msg map[string]json.RawMessage
	if err := json.Unmarshal(frame, &msg); err != nil {
		t.Fatalf("unmarshal frame: %v", err)
	}
	if string(msg["type"]) != `"answer_ack"` {
		t.Fatalf("unexpected frame %s", frame)
	}
	if _, present := msg["payload"]; present {
		t.Fatalf("expected empty payload to be omitted, got %s", frame)
	}
	if _, ok := <-c.send; ok {
		t.Fatalf("expected queue closed after disconnect")
	}
	if hub.Len() != 0 {
		t.Fatalf("expected no clients")
	}
}

func TestHubCloseAllClosesEveryQueue(t *testing.T) {
	hub := NewHub(zap.NewNop())
	a := &client{id: "a", send: make(chan []byte, 1)}
	b := &client{id: "b", send: make(chan []byte, 1)}
	hub.add(a)
	hub.add(b)

	hub.CloseAll()

	if hub.Len() != 0 {
		t.Fatalf("expected no clients, got %d", hub.Len())
	}
	for _, c := range []*client{a, b} {
		if _, ok := <-c.send; ok {
			t.Fatalf("expected queue of %s closed", c.id)
		}
	}
	hub.BroadcastAll("answer_ack", nil)
}
