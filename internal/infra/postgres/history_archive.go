package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"live-poll-service/internal/domain"
)

// HistoryArchive stores every closed question in the closed_questions table.
type HistoryArchive struct {
	pool *pgxpool.Pool
}

func NewHistoryArchive(pool *pgxpool.Pool) *HistoryArchive {
	return &HistoryArchive{pool: pool}
}

func (a *HistoryArchive) Record(ctx context.Context, rec domain.ClosedQuestionRecord, reason domain.CloseReason) error {
	options, err := json.Marshal(rec.Options)
	if err != nil {
		return fmt.Errorf("marshal options: %w", err)
	}
	results, err := json.Marshal(rec.Results)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	_, err = a.pool.Exec(ctx, insertClosedQuestion,
		rec.ID, rec.Text, string(options), rec.CorrectIndex, string(results),
		string(reason), time.UnixMilli(rec.AskedAt).UTC(), time.UnixMilli(rec.ClosedAt).UTC(),
	)
	if err != nil {
		return fmt.Errorf("archive question: %w", err)
	}
	return nil
}

const insertClosedQuestion = `
INSERT INTO closed_questions (id, text, options, correct_index, results, close_reason, asked_at, closed_at)
VALUES ($1, $2, $3::jsonb, $4, $5::jsonb, $6, $7, $8)
ON CONFLICT (id) DO NOTHING`
