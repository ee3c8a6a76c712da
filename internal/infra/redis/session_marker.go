package redis

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionMarker advertises that a poll session is running.
// The key holds the host and pid and expires on its own if the process dies.
type SessionMarker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionMarker(client *redis.Client, ttl time.Duration) *SessionMarker {
	return &SessionMarker{client: client, ttl: ttl}
}

func (m *SessionMarker) MarkLive(ctx context.Context) error {
	host, _ := os.Hostname()
	return m.client.Set(ctx, liveKey, host+":"+strconv.Itoa(os.Getpid()), m.ttl).Err()
}

// Refresh extends the marker until ctx is done, then removes it.
func (m *SessionMarker) Refresh(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			_ = m.client.Expire(ctx, liveKey, m.ttl).Err()
		case <-ctx.Done():
			_ = m.Clear(context.Background())
			return
		}
	}
}

func (m *SessionMarker) Clear(ctx context.Context) error {
	return m.client.Del(ctx, liveKey).Err()
}

const liveKey = "poll:session:live"
