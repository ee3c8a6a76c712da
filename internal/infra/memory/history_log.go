package memory

import (
	"sync"

	"live-poll-service/internal/domain"
)

// HistoryLog is a bounded ring of closed questions. Once full, the oldest record is overwritten.
type HistoryLog struct {
	mu      sync.RWMutex
	records []domain.ClosedQuestionRecord
	start   int
	size    int
}

// NewHistoryLog keeps the most recent capacity records. A non-positive capacity keeps 50.
func NewHistoryLog(capacity int) *HistoryLog {
	if capacity <= 0 {
		capacity = 50
	}
	return &HistoryLog{records: make([]domain.ClosedQuestionRecord, capacity)}
}

func (h *HistoryLog) Append(rec domain.ClosedQuestionRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()

	capacity := len(h.records)
	if h.size < capacity {
		h.records[(h.start+h.size)%capacity] = rec
		h.size++
		return
	}
	h.records[h.start] = rec
	h.start = (h.start + 1) % capacity
}

// Recent returns the last limit records, oldest first. A non-positive limit returns all of them.
func (h *HistoryLog) Recent(limit int) []domain.ClosedQuestionRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := h.size
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]domain.ClosedQuestionRecord, 0, n)
	capacity := len(h.records)
	for i := h.size - n; i < h.size; i++ {
		out = append(out, h.records[(h.start+i)%capacity])
	}
	return out
}

func (h *HistoryLog) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.size
}
