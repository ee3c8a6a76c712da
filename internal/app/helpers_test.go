package app_test

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"live-poll-service/internal/app"
	"live-poll-service/internal/domain"
	"live-poll-service/internal/infra/memory"
)

type event struct {
	To      string // empty for broadcasts
	Type    string
	Payload any
}

type recorder struct {
	mu           sync.Mutex
	events       []event
	disconnected []string
}

func (r *recorder) BroadcastAll(typ string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event{Type: typ, Payload: payload})
}

func (r *recorder) SendTo(conn, typ string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event{To: conn, Type: typ, Payload: payload})
}

func (r *recorder) Disconnect(conn string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disconnected = append(r.disconnected, conn)
}

func (r *recorder) count(typ string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type == typ {
			n++
		}
	}
	return n
}

func (r *recorder) sentTo(conn, typ string) []event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []event
	for _, e := range r.events {
		if e.To == conn && e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

func (r *recorder) last(t *testing.T, typ string) event {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Type == typ {
			return r.events[i]
		}
	}
	t.Fatalf("no %s event recorded", typ)
	return event{}
}

func (r *recorder) wasDisconnected(conn string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.disconnected {
		if c == conn {
			return true
		}
	}
	return false
}

type manualTimers struct {
	mu     sync.Mutex
	delays []time.Duration
	fns    []func()
}

func (m *manualTimers) schedule(d time.Duration, f func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delays = append(m.delays, d)
	m.fns = append(m.fns, f)
}

func (m *manualTimers) fire(t *testing.T, i int) {
	t.Helper()
	m.mu.Lock()
	if i >= len(m.fns) {
		m.mu.Unlock()
		t.Fatalf("timer %d was never scheduled", i)
	}
	f := m.fns[i]
	m.mu.Unlock()
	f()
}

func (m *manualTimers) delay(t *testing.T, i int) time.Duration {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if i >= len(m.delays) {
		t.Fatalf("timer %d was never scheduled", i)
	}
	return m.delays[i]
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	session *app.Session
	out     *recorder
	timers  *manualTimers
	clock   *fakeClock
	history *memory.HistoryLog
}

func newFixture(t *testing.T, opts ...app.Option) *fixture {
	t.Helper()
	f := &fixture{
		out:     &recorder{},
		timers:  &manualTimers{},
		clock:   &fakeClock{now: time.Unix(1700000000, 0)},
		history: memory.NewHistoryLog(50),
	}
	base := []app.Option{
		app.WithClock(f.clock.Now),
		app.WithScheduler(f.timers.schedule),
		app.WithLogger(zaptest.NewLogger(t)),
	}
	f.session = app.NewSession(f.out, f.history, memory.NewKickList(), append(base, opts...)...)
	return f
}

func (f *fixture) join(t *testing.T, conn, userID, name, role string) domain.Participant {
	t.Helper()
	if err := f.session.Connect(conn, userID); err != nil {
		t.Fatalf("connect %s: %v", conn, err)
	}
	p, err := f.session.Register(conn, userID, name, role)
	if err != nil {
		t.Fatalf("register %s: %v", conn, err)
	}
	return p
}

func (f *fixture) ask(t *testing.T, conn string, req app.AskRequest) domain.View {
	t.Helper()
	view, err := f.session.Ask(conn, req)
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	return view
}

// decode round-trips a payload through JSON so tests can read unexported payload types.
func decode(t *testing.T, payload any, v any) {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
}

func intPtr(i int) *int { return &i }
