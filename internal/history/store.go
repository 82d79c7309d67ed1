// Package history keeps a durable log of answered questions for
// observability. Entries are never fed back into prompts; each query
// through the pipeline stays independent.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"policyrag/internal/db"
)

// Entry is one answered question.
type Entry struct {
	ID        string
	Question  string
	Answer    string
	Latency   time.Duration
	CreatedAt time.Time
}

// Store provides append and list operations over the question log.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Log inserts a new entry. If entry.ID is empty a UUID is generated.
func (s *Store) Log(ctx context.Context, entry Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO question_log (id, question, answer, latency_ms)
		VALUES (?, ?, ?, ?)`,
		entry.ID,
		entry.Question,
		entry.Answer,
		entry.Latency.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("inserting question log entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. Ordering follows
// rowid rather than created_at, which only has second precision and
// would leave same-second entries in arbitrary order.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit < 1 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, question, answer, latency_ms, created_at
		FROM question_log
		ORDER BY rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying question log: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			latencyMS int64
			ts        string
		)
		if err := rows.Scan(&e.ID, &e.Question, &e.Answer, &latencyMS, &ts); err != nil {
			return nil, fmt.Errorf("scanning question log entry: %w", err)
		}
		e.Latency = time.Duration(latencyMS) * time.Millisecond
		if t, parseErr := time.Parse(time.DateTime, ts); parseErr == nil {
			e.CreatedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteBefore removes entries older than the given time. Returns the
// number of deleted rows.
func (s *Store) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM question_log WHERE created_at < ?",
		before.UTC().Format(time.DateTime),
	)
	if err != nil {
		return 0, fmt.Errorf("deleting old question log entries: %w", err)
	}
	return res.RowsAffected()
}
