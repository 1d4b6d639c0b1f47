package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrWong99/guessbot/internal/game"
)

// PostgresSchema is the DDL for the round_summaries table. Execute it via
// [PostgresStore.Migrate] or apply it manually during deployment.
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS round_summaries (
    round_id              TEXT PRIMARY KEY,
    session_id            TEXT NOT NULL,
    participant           TEXT NOT NULL DEFAULT '',
    secret_word           TEXT NOT NULL,
    version               TEXT NOT NULL,
    outcome               TEXT NOT NULL,
    started_at            TIMESTAMPTZ NOT NULL,
    duration_ms           BIGINT NOT NULL,
    questions             INTEGER NOT NULL,
    guesses               INTEGER NOT NULL,
    incorrect_guesses     INTEGER NOT NULL,
    questions_answered_no INTEGER NOT NULL,
    hints_given           INTEGER NOT NULL,
    guessed_word          BOOLEAN NOT NULL,
    gave_up               BOOLEAN NOT NULL,
    recorded_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_round_summaries_session ON round_summaries(session_id);
`

// DB is the database interface used by [PostgresStore]. Both *pgxpool.Pool
// and *pgx.Conn satisfy it.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore is a [Store] backed by PostgreSQL.
type PostgresStore struct {
	db    DB
	close func()
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore returns a store using db. closeFn, if non-nil, is called
// by Close. The caller runs [PostgresStore.Migrate] before first use.
func NewPostgresStore(db DB, closeFn func()) *PostgresStore {
	return &PostgresStore{db: db, close: closeFn}
}

// Migrate creates the table and index if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, PostgresSchema); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// RecordRound inserts rec. Recording the same round twice is a no-op.
func (s *PostgresStore) RecordRound(ctx context.Context, rec game.RoundRecord) error {
	const query = `
		INSERT INTO round_summaries (
			round_id, session_id, participant, secret_word, version, outcome,
			started_at, duration_ms, questions, guesses, incorrect_guesses,
			questions_answered_no, hints_given, guessed_word, gave_up
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		ON CONFLICT (round_id) DO NOTHING`

	sum := rec.Summary
	_, err := s.db.Exec(ctx, query,
		sum.RoundID, rec.SessionID, rec.Participant, sum.SecretWord, string(sum.Version), string(sum.Outcome),
		sum.StartTime, sum.Duration.Milliseconds(), sum.Questions, sum.Guesses, sum.IncorrectGuesses,
		sum.QuestionsAnsweredNo, sum.HintsGiven, sum.GuessedWord, sum.GaveUp,
	)
	if err != nil {
		return fmt.Errorf("store: record round %s: %w", sum.RoundID, err)
	}
	return nil
}

// Session returns the rounds of sessionID ordered by start time.
func (s *PostgresStore) Session(ctx context.Context, sessionID string) ([]game.RoundRecord, error) {
	const query = `
		SELECT round_id, session_id, participant, secret_word, version, outcome,
		       started_at, duration_ms, questions, guesses, incorrect_guesses,
		       questions_answered_no, hints_given, guessed_word, gave_up
		FROM round_summaries
		WHERE session_id = $1
		ORDER BY started_at, recorded_at`

	rows, err := s.db.Query(ctx, query, sessionID)
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

// Ping runs a trivial statement.
func (s *PostgresStore) Ping(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, "SELECT 1"); err != nil {
		return fmt.Errorf("store: ping postgres: %w", err)
	}
	return nil
}

// Close releases the pool passed to [NewPostgresStore].
func (s *PostgresStore) Close() error {
	if s.close != nil {
		s.close()
	}
	return nil
}

// scanner is satisfied by pgx.Rows and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (game.RoundRecord, error) {
	var (
		rec              game.RoundRecord
		version, outcome string
		durationMS       int64
	)
	sum := &rec.Summary
	err := row.Scan(
		&sum.RoundID, &rec.SessionID, &rec.Participant, &sum.SecretWord, &version, &outcome,
		&sum.StartTime, &durationMS, &sum.Questions, &sum.Guesses, &sum.IncorrectGuesses,
		&sum.QuestionsAnsweredNo, &sum.HintsGiven, &sum.GuessedWord, &sum.GaveUp,
	)
	if err != nil {
		return game.RoundRecord{}, fmt.Errorf("store: scan round: %w", err)
	}
	sum.Version = game.Version(version)
	sum.Outcome = game.Outcome(outcome)
	sum.Duration = time.Duration(durationMS) * time.Millisecond
	return rec, nil
}
