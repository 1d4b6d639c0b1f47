package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MrWong99/guessbot/internal/game"
	"github.com/MrWong99/guessbot/internal/store"
)

func record(session, round, word string, outcome game.Outcome) game.RoundRecord {
	return game.RoundRecord{
		SessionID:   session,
		Participant: "p-01",
		Summary: game.RoundSummary{
			RoundID:             round,
			SecretWord:          word,
			Version:             game.VersionStudyWords,
			Outcome:             outcome,
			StartTime:           time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC),
			Duration:            93 * time.Second,
			Questions:           4,
			Guesses:             2,
			IncorrectGuesses:    1,
			QuestionsAnsweredNo: 2,
			HintsGiven:          1,
			GuessedWord:         outcome == game.OutcomeWon,
			GaveUp:              outcome == game.OutcomeGaveUp,
		},
	}
}

func TestStores_RoundTrip(t *testing.T) {
	t.Parallel()
	backends := []struct {
		name string
		open func(t *testing.T) store.Store
	}{
		{"file", func(t *testing.T) store.Store {
			return store.NewFileStore(filepath.Join(t.TempDir(), "rounds.jsonl"))
		}},
		{"sqlite", func(t *testing.T) store.Store {
			s, err := store.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "db", "rounds.db"))
			if err != nil {
				t.Fatalf("OpenSQLite: %v", err)
			}
			return s
		}},
	}
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			t.Parallel()
			s := b.open(t)
			defer s.Close()
			ctx := context.Background()

			if err := s.Ping(ctx); err != nil {
				t.Fatalf("Ping: %v", err)
			}

			in := []game.RoundRecord{
				record("s1", "r1", "cat", game.OutcomeWon),
				record("s2", "r2", "dog", game.OutcomeTimedOut),
				record("s1", "r3", "fish", game.OutcomeGaveUp),
			}
			for _, rec := range in {
				if err := s.RecordRound(ctx, rec); err != nil {
					t.Fatalf("RecordRound: %v", err)
				}
			}

			got, err := s.Session(ctx, "s1")
			if err != nil {
				t.Fatalf("Session: %v", err)
			}
			if len(got) != 2 {
				t.Fatalf("Session returned %d rounds, want 2", len(got))
			}
			for i, want := range []game.RoundRecord{in[0], in[2]} {
				g := got[i]
				if !g.Summary.StartTime.Equal(want.Summary.StartTime) {
					t.Errorf("round %d start = %v, want %v", i, g.Summary.StartTime, want.Summary.StartTime)
				}
				g.Summary.StartTime = want.Summary.StartTime
				if g != want {
					t.Errorf("round %d = %+v, want %+v", i, g, want)
				}
			}

			none, err := s.Session(ctx, "missing")
			if err != nil || len(none) != 0 {
				t.Errorf("Session(missing) = %v, %v", none, err)
			}
		})
	}
}

func TestFileStore_MissingFile(t *testing.T) {
	t.Parallel()
	s := store.NewFileStore(filepath.Join(t.TempDir(), "never-written.jsonl"))
	got, err := s.Session(context.Background(), "s1")
	if err != nil || got != nil {
		t.Errorf("Session = %v, %v, want nil, nil", got, err)
	}
}

func TestFileStore_PingAndClose(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	notDir := filepath.Join(dir, "plain")
	if err := os.WriteFile(notDir, nil, 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"directory exists", filepath.Join(dir, "rounds.jsonl"), false},
		{"directory missing", filepath.Join(dir, "gone", "rounds.jsonl"), true},
		{"parent is a file", filepath.Join(notDir, "rounds.jsonl"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := store.NewFileStore(tt.path)
			if err := s.Ping(context.Background()); (err != nil) != tt.wantErr {
				t.Errorf("Ping error = %v, wantErr %v", err, tt.wantErr)
			}
			if err := s.Close(); err != nil {
				t.Errorf("Close: %v", err)
			}
			if err := s.Close(); err != nil {
				t.Errorf("second Close: %v", err)
			}
		})
	}
}

func TestFileStore_CorruptLine(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "rounds.jsonl")
	if err := os.WriteFile(path, []byte("{not json}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := store.NewFileStore(path).Session(context.Background(), "s1"); err == nil {
		t.Error("expected error for corrupt line")
	}
}

func TestSQLiteStore_DuplicateRoundIgnored(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, err := store.OpenSQLite(ctx, filepath.Join(t.TempDir(), "rounds.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer s.Close()

	rec := record("s1", "r1", "cat", game.OutcomeWon)
	for range 2 {
		if err := s.RecordRound(ctx, rec); err != nil {
			t.Fatalf("RecordRound: %v", err)
		}
	}
	got, err := s.Session(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("rounds = %d, want 1", len(got))
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name    string
		cfg     store.Config
		wantNil bool
		wantErr bool
	}{
		{name: "none", cfg: store.Config{Backend: "none"}, wantNil: true},
		{name: "empty", cfg: store.Config{}, wantNil: true},
		{name: "file", cfg: store.Config{Backend: "file", Path: filepath.Join(dir, "a.jsonl")}},
		{name: "sqlite", cfg: store.Config{Backend: "sqlite", Path: filepath.Join(dir, "a.db")}},
		{name: "file without path", cfg: store.Config{Backend: "file"}, wantErr: true},
		{name: "sqlite without path", cfg: store.Config{Backend: "sqlite"}, wantErr: true},
		{name: "postgres without dsn", cfg: store.Config{Backend: "postgres"}, wantErr: true},
		{name: "unknown", cfg: store.Config{Backend: "mongo"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := store.Open(ctx, tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Open error = %v, wantErr %v", err, tt.wantErr)
			}
			if (s == nil) != (tt.wantNil || tt.wantErr) {
				t.Fatalf("Open store = %v", s)
			}
			if s != nil {
				s.Close()
			}
		})
	}
}
