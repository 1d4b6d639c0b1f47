package resilience

import (
	"context"
	"errors"
	"testing"

	"github.com/MrWong99/guessbot/pkg/audio"
	sttmock "github.com/MrWong99/guessbot/pkg/provider/stt/mock"
)

func TestSTTFallback_Transcribe_PrimarySuccess(t *testing.T) {
	primary := &sttmock.Transcriber{Texts: []string{"is it an animal"}}
	secondary := &sttmock.Transcriber{Texts: []string{"unused"}}

	fb := NewSTTFallback(primary, "primary", FallbackConfig{
		CircuitBreaker: CircuitBreakerConfig{MaxFailures: 3},
	})
	fb.AddFallback("secondary", secondary)

	text, err := fb.Transcribe(context.Background(), audio.Clip{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "is it an animal" {
		t.Fatalf("text = %q, want 'is it an animal'", text)
	}
	if secondary.Calls() != 0 {
		t.Fatalf("secondary called %d times, want 0", secondary.Calls())
	}
}

func TestSTTFallback_Transcribe_EmptyIsSuccess(t *testing.T) {
	primary := &sttmock.Transcriber{}
	secondary := &sttmock.Transcriber{Texts: []string{"should not be used"}}

	fb := NewSTTFallback(primary, "primary", FallbackConfig{})
	fb.AddFallback("secondary", secondary)

	text, err := fb.Transcribe(context.Background(), audio.Clip{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "" {
		t.Fatalf("text = %q, want empty", text)
	}
	if secondary.Calls() != 0 {
		t.Fatal("silence must not fail over")
	}
}

func TestSTTFallback_Transcribe_Failover(t *testing.T) {
	primary := &sttmock.Transcriber{Err: errors.New("primary down")}
	secondary := &sttmock.Transcriber{Texts: []string{"cat"}}

	fb := NewSTTFallback(primary, "primary", FallbackConfig{
		CircuitBreaker: CircuitBreakerConfig{MaxFailures: 3},
	})
	fb.AddFallback("secondary", secondary)

	text, err := fb.Transcribe(context.Background(), audio.Clip{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "cat" {
		t.Fatalf("text = %q, want cat", text)
	}
	if primary.Calls() != 1 || secondary.Calls() != 1 {
		t.Fatalf("calls = %d/%d, want 1/1", primary.Calls(), secondary.Calls())
	}
}

func TestSTTFallback_Transcribe_AllFail(t *testing.T) {
	primary := &sttmock.Transcriber{Err: errors.New("primary down")}
	secondary := &sttmock.Transcriber{Err: errors.New("secondary down")}

	fb := NewSTTFallback(primary, "primary", FallbackConfig{
		CircuitBreaker: CircuitBreakerConfig{MaxFailures: 3},
	})
	fb.AddFallback("secondary", secondary)

	_, err := fb.Transcribe(context.Background(), audio.Clip{})
	if !errors.Is(err, ErrAllFailed) {
		t.Fatalf("err = %v, want ErrAllFailed", err)
	}
}
