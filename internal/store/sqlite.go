package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/MrWong99/guessbot/internal/game"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS round_summaries (
    round_id              TEXT PRIMARY KEY,
    session_id            TEXT NOT NULL,
    participant           TEXT NOT NULL DEFAULT '',
    secret_word           TEXT NOT NULL,
    version               TEXT NOT NULL,
    outcome               TEXT NOT NULL,
    started_at            TIMESTAMP NOT NULL,
    duration_ms           INTEGER NOT NULL,
    questions             INTEGER NOT NULL,
    guesses               INTEGER NOT NULL,
    incorrect_guesses     INTEGER NOT NULL,
    questions_answered_no INTEGER NOT NULL,
    hints_given           INTEGER NOT NULL,
    guessed_word          BOOLEAN NOT NULL,
    gave_up               BOOLEAN NOT NULL,
    recorded_at           TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_round_summaries_session ON round_summaries(session_id);
`

// SQLiteStore is a [Store] in an embedded SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens (or creates) the database at path and applies the
// schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("store: create db directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	for _, stmt := range []string{"PRAGMA journal_mode=WAL;", "PRAGMA busy_timeout=5000;", sqliteSchema} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: migrate sqlite: %w", err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

// RecordRound inserts rec. Recording the same round twice is a no-op.
func (s *SQLiteStore) RecordRound(ctx context.Context, rec game.RoundRecord) error {
	const query = `
		INSERT OR IGNORE INTO round_summaries (
			round_id, session_id, participant, secret_word, version, outcome,
			started_at, duration_ms, questions, guesses, incorrect_guesses,
			questions_answered_no, hints_given, guessed_word, gave_up
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`

	sum := rec.Summary
	_, err := s.db.ExecContext(ctx, query,
		sum.RoundID, rec.SessionID, rec.Participant, sum.SecretWord, string(sum.Version), string(sum.Outcome),
		sum.StartTime.UTC(), sum.Duration.Milliseconds(), sum.Questions, sum.Guesses, sum.IncorrectGuesses,
		sum.QuestionsAnsweredNo, sum.HintsGiven, sum.GuessedWord, sum.GaveUp,
	)
	if err != nil {
		return fmt.Errorf("store: record round %s: %w", sum.RoundID, err)
	}
	return nil
}

// Session returns the rounds of sessionID in insertion order.
func (s *SQLiteStore) Session(ctx context.Context, sessionID string) ([]game.RoundRecord, error) {
	const query = `
		SELECT round_id, session_id, participant, secret_word, version, outcome,
		       started_at, duration_ms, questions, guesses, incorrect_guesses,
		       questions_answered_no, hints_given, guessed_word, gave_up
		FROM round_summaries
		WHERE session_id = ?
		ORDER BY rowid`

	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("store: query session %s: %w", sessionID, err)
	}
	defer rows.Close()

	var out []game.RoundRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate session %s: %w", sessionID, err)
	}
	return out, nil
}

// Close closes the database.
// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("store: ping sqlite: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
