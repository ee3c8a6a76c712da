package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"live-poll-service/internal/app"
	"live-poll-service/internal/metrics"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Options tunes per-connection resources.
type Options struct {
	SendBuffer   int
	RatePerSec   float64
	RateBurst    int
	MaxFrameSize int64
}

func DefaultOptions() Options {
	return Options{SendBuffer: 64, RatePerSec: 20, RateBurst: 40, MaxFrameSize: 16 << 10}
}

type WSHandler struct {
	session  *app.Session
	hub      *Hub
	opts     Options
	log      *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(session *app.Session, hub *Hub, opts Options, log *zap.Logger) *WSHandler {
	return &WSHandler{
		session: session,
		hub:     hub,
		opts:    opts,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// ServeWS upgrades the request and runs the connection until either side closes it.
// The optional userId query parameter is the identity claimed at handshake time.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	c := &client{
		id:      uuid.NewString(),
		claimed: r.URL.Query().Get("userId"),
		conn:    conn,
		send:    make(chan []byte, h.opts.SendBuffer),
	}
	h.hub.add(c)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		h.writePump(c)
	}()

	if err := h.session.Connect(c.id, c.claimed); err != nil {
		// The session already queued "kicked" and closed the queue.
		<-writerDone
		return
	}

	h.readPump(c)

	h.hub.remove(c.id)
	h.session.Disconnect(c.id)
	<-writerDone
}

func (h *WSHandler) readPump(c *client) {
	limit := rate.Limit(h.opts.RatePerSec)
	if h.opts.RatePerSec <= 0 {
		limit = rate.Inf
	}
	limiter := rate.NewLimiter(limit, h.opts.RateBurst)

	if h.opts.MaxFrameSize > 0 {
		c.conn.SetReadLimit(h.opts.MaxFrameSize)
	}
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.log.Info("ws read error", zap.String("conn", c.id), zap.Error(err))
			}
			return
		}
		if !limiter.Allow() {
			h.log.Debug("rate limited", zap.String("conn", c.id))
			continue
		}

		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.log.Debug("malformed frame", zap.String("conn", c.id), zap.Error(err))
			continue
		}
		metrics.EventCounter.WithLabelValues(msg.Type, "in").Inc()

		cmd, err := decodeCommand(msg)
		if err != nil {
			if errors.Is(err, errUnknownType) {
				h.log.Info("unsupported message type", zap.String("conn", c.id), zap.String("type", msg.Type))
			}
			continue
		}
		if err := cmd.apply(h.session, c); err != nil {
			h.log.Debug("command dropped", zap.String("conn", c.id), zap.String("type", msg.Type), zap.Error(err))
		}
	}
}

func (h *WSHandler) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				h.log.Debug("ws write error", zap.String("conn", c.id), zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
