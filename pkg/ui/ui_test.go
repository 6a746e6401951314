package ui

import (
	"context"
	"strings"
	"testing"
	"time"
)

// blockingReader never returns, standing in for an operator who walks away
type blockingReader struct{}

func (blockingReader) Read(p []byte) (int, error) {
	select {}
}

func TestPromptEnterAcknowledged(t *testing.T) {
	err := promptEnter(context.Background(), strings.NewReader("\n"), "press enter")
	if err != nil {
		t.Fatalf("promptEnter returned %v, want nil", err)
	}
}

func TestPromptEnterEOFCountsAsAck(t *testing.T) {
	err := promptEnter(context.Background(), strings.NewReader(""), "press enter")
	if err != nil {
		t.Fatalf("promptEnter on closed input returned %v, want nil", err)
	}
}

func TestPromptEnterCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- promptEnter(ctx, blockingReader{}, "press enter")
	}()

	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("promptEnter returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("promptEnter did not return after cancellation")
	}
}

func TestQuietMode(t *testing.T) {
	SetQuietMode(true)
	if !IsQuietMode() {
		t.Fatal("quiet mode not set")
	}
	SetQuietMode(false)
	if IsQuietMode() {
		t.Fatal("quiet mode not cleared")
	}
}

func TestNotifierDisabled(t *testing.T) {
	n := NewNotifier("desktop", false)
	// Must be a no-op, not a panic, with no sender behind it
	n.SendNotification("title", "message")
	n.SendError("title", "message")
	n.SendSuccess("title", "message")
}

func TestNotifierTerminalOnly(t *testing.T) {
	n := NewNotifier("terminal", true)
	if n.sender != nil {
		t.Fatal("terminal notifier must not carry a platform sender")
	}
}

func TestTrackerTotals(t *testing.T) {
	tr := NewTracker(3)
	tr.Record(true)
	tr.Record(false)
	tr.Record(true)

	if tr.Processed != 3 {
		t.Errorf("Processed = %d, want 3", tr.Processed)
	}
	if tr.Filled != 2 {
		t.Errorf("Filled = %d, want 2", tr.Filled)
	}
	if tr.Empty != 1 {
		t.Errorf("Empty = %d, want 1", tr.Empty)
	}
}
