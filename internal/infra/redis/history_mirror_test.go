package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"live-poll-service/internal/domain"
)

func TestHistoryMirrorKeepsNewestRecords(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	mirror := NewHistoryMirror(newClient(mr), 2, time.Hour)
	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		rec := domain.ClosedQuestionRecord{ID: fmt.Sprintf("q%d", i), Options: []string{"A"}}
		if err := mirror.Record(ctx, rec, domain.CloseDeadline); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	items, err := mr.List(historyKey)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected trimmed list of 2, got %d", len(items))
	}
	var newest domain.ClosedQuestionRecord
	if err := json.Unmarshal([]byte(items[0]), &newest); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if newest.ID != "q3" {
		t.Fatalf("expected newest first, got %s", newest.ID)
	}
	if got := mr.HGet(closedByKey, "deadline"); got != "3" {
		t.Fatalf("expected 3 deadline closures, got %q", got)
	}
	if mr.TTL(historyKey) <= 0 {
		t.Fatalf("expected ttl on history key")
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
