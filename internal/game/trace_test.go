package game_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"math/rand/v2"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/MrWong99/guessbot/internal/game"
)

func spanAttr(s tracetest.SpanStub, key string) string {
	for _, kv := range s.Attributes {
		if kv.Key == attribute.Key(key) {
			return kv.Value.AsString()
		}
	}
	return ""
}

// Not parallel: swaps the global tracer provider and the default logger.
func TestSession_RoundSpansNestUnderSessionSpan(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	origTP := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(origTP) })

	var buf bytes.Buffer
	origLog := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(origLog) })

	r := newRig(t, game.VersionNormal, []string{"my guess", "my guess"})
	r.orc.CorrectFunc = alwaysCorrect
	words := game.NewWordQueue(game.PlainWords([]string{"cat", "dog"}), rand.New(rand.NewPCG(1, 2)))
	s := newSession(t, r, words, nil)

	got, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	var session tracetest.SpanStub
	var rounds []tracetest.SpanStub
	for _, sp := range exp.GetSpans() {
		switch sp.Name {
		case "game.session":
			if spanAttr(sp, "guessbot.session_id") == s.ID() {
				session = sp
			}
		case "game.round":
			rounds = append(rounds, sp)
		}
	}
	if !session.SpanContext.IsValid() {
		t.Fatalf("no game.session span for session %s", s.ID())
	}

	var mine []tracetest.SpanStub
	for _, sp := range rounds {
		if sp.Parent.SpanID() == session.SpanContext.SpanID() {
			mine = append(mine, sp)
		}
	}
	if len(mine) != len(got) {
		t.Fatalf("round spans under the session = %d, want %d", len(mine), len(got))
	}
	for i, sp := range mine {
		if id := spanAttr(sp, "guessbot.round_id"); id != got[i].RoundID {
			t.Errorf("round span %d round_id = %q, want %q", i, id, got[i].RoundID)
		}
		if v := spanAttr(sp, "guessbot.version"); v != string(game.VersionNormal) {
			t.Errorf("round span %d version = %q, want %q", i, v, game.VersionNormal)
		}
	}

	traceID := session.SpanContext.TraceID().String()
	var sawStart, sawRound bool
	dec := json.NewDecoder(&buf)
	for dec.More() {
		var line map[string]any
		if err := dec.Decode(&line); err != nil {
			t.Fatalf("decode log line: %v", err)
		}
		if line["trace_id"] != traceID {
			continue
		}
		switch line["msg"] {
		case "session started":
			sawStart = line["session_id"] == s.ID()
		case "round started":
			sawRound = sawRound || line["round_id"] == got[0].RoundID
		}
	}
	if !sawStart {
		t.Error("no session started log carrying the session trace and session_id")
	}
	if !sawRound {
		t.Error("no round started log carrying the session trace and round_id")
	}
}
