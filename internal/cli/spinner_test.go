package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestSpinnerDraws(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinnerTo(context.Background(), &buf, "Computing layout...")
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Update("Almost there")
	s.Stop()

	if !strings.Contains(buf.String(), "Computing layout...") {
		t.Errorf("spinner output = %q, want message", buf.String())
	}
	if s.Cancelled() {
		t.Error("Cancelled() = true after a plain Stop")
	}
}

func TestSpinnerWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinnerTo(ctx, &bytes.Buffer{}, "Testing with context...")
	s.Start()
	cancel()
	s.Stop()

	if !s.Cancelled() {
		t.Error("Cancelled() = false after context cancellation")
	}
}

func TestSpinnerWithTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	s := newSpinnerTo(ctx, &bytes.Buffer{}, "Testing with timeout...")
	s.Start()
	time.Sleep(60 * time.Millisecond)
	s.Stop()

	if !s.Cancelled() {
		t.Error("Cancelled() = false after timeout")
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinnerTo(context.Background(), &bytes.Buffer{}, "Testing idempotent stop...")
	s.Start()
	s.Stop()
	s.Stop()
	s.Stop()
}
