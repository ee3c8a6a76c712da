package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"live-poll-service/internal/domain"
)

// HistoryMirror copies closed questions into Redis for dashboards outside the process.
// Records are stored newest first as:  LPUSH poll:history {record json}
// Close reasons are counted as:       HINCRBY poll:closed_by {reason} 1
// The session never reads them back.
type HistoryMirror struct {
	client *redis.Client
	limit  int
	ttl    time.Duration
}

func NewHistoryMirror(client *redis.Client, limit int, ttl time.Duration) *HistoryMirror {
	return &HistoryMirror{client: client, limit: limit, ttl: ttl}
}

func (m *HistoryMirror) Record(ctx context.Context, rec domain.ClosedQuestionRecord, reason domain.CloseReason) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	pipe := m.client.TxPipeline()
	pipe.LPush(ctx, historyKey, data)
	if m.limit > 0 {
		pipe.LTrim(ctx, historyKey, 0, int64(m.limit-1))
	}
	pipe.HIncrBy(ctx, closedByKey, string(reason), 1)
	if m.ttl > 0 {
		pipe.Expire(ctx, historyKey, m.ttl)
		pipe.Expire(ctx, closedByKey, m.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("mirror record: %w", err)
	}
	return nil
}

const (
	historyKey  = "poll:history"
	closedByKey = "poll:closed_by"
)
