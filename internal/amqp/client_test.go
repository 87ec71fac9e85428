package amqp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},
		{10, 30 * time.Second},
		{-1, 1 * time.Second},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			if got := exponentialBackoff(tt.attempt); got != tt.expected {
				t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, got, tt.expected)
			}
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection refused", errors.New("connection refused"), true},
		{"unexpected EOF", errors.New("unexpected EOF"), true},
		{"broken pipe", errors.New("broken pipe"), true},
		{"closed network connection", errors.New("use of closed network connection"), true},
		{"other error", errors.New("invalid input"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.expected {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestClient_CircuitBreaker(t *testing.T) {
	client := &Client{exchangeName: "ledger", queueName: "ledger_events"}

	if client.isCircuitOpen() {
		t.Fatal("circuit should start closed")
	}

	for i := 0; i < maxFailures; i++ {
		client.recordFailure()
	}
	if !client.isCircuitOpen() {
		t.Fatal("circuit should open after max failures")
	}

	client.lastFailure = time.Now().Add(-openTimeout - time.Second)
	if client.isCircuitOpen() {
		t.Fatal("circuit should go half-open after timeout")
	}
	if atomic.LoadInt32(&client.state) != StateHalfOpen {
		t.Fatalf("state = %d, want half-open", client.state)
	}

	client.recordSuccess()
	if atomic.LoadInt64(&client.failureCount) != 0 || atomic.LoadInt32(&client.state) != StateClosed {
		t.Fatal("success should reset the breaker")
	}
}

func TestClient_PublishGuards(t *testing.T) {
	client := &Client{exchangeName: "ledger", queueName: "ledger_events"}
	ev := NewLedgerEvent(EventTransactionCreated, 7)

	t.Run("open circuit fails fast", func(t *testing.T) {
		atomic.StoreInt32(&client.state, StateOpen)
		client.lastFailure = time.Now()

		err := client.Publish(context.Background(), ev)
		if !errors.Is(err, ErrCircuitOpen) {
			t.Fatalf("Publish = %v, want ErrCircuitOpen", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		atomic.StoreInt32(&client.state, StateClosed)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if err := client.Publish(ctx, ev); !errors.Is(err, context.Canceled) {
			t.Fatalf("Publish = %v, want context.Canceled", err)
		}
	})

	t.Run("no channel counts as failure", func(t *testing.T) {
		atomic.StoreInt32(&client.state, StateClosed)
		atomic.StoreInt64(&client.failureCount, 0)

		err := client.Publish(context.Background(), ev)
		if err == nil || !strings.Contains(err.Error(), "connection closed") {
			t.Fatalf("Publish = %v, want connection closed error", err)
		}
		if atomic.LoadInt64(&client.failureCount) != 1 {
			t.Fatalf("failureCount = %d, want 1", client.failureCount)
		}
	})
}

func TestLedgerEvent_JSON(t *testing.T) {
	ev := NewSubscriptionsAppliedEvent("2099-02", 3)
	if ev.MessageID == "" || ev.Timestamp.IsZero() {
		t.Fatalf("event missing id or timestamp: %+v", ev)
	}

	data, err := ev.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON error = %v", err)
	}
	parsed, err := LedgerEventFromJSON(data)
	if err != nil {
		t.Fatalf("LedgerEventFromJSON error = %v", err)
	}
	if parsed.Type != EventSubscriptionsApplied || parsed.Month != "2099-02" || parsed.Count != 3 || parsed.MessageID != ev.MessageID {
		t.Fatalf("parsed = %+v", parsed)
	}
}

func TestLedgerEvent_InvalidJSON(t *testing.T) {
	if _, err := LedgerEventFromJSON([]byte(`{"type": 5}`)); err == nil {
		t.Fatal("expected decode error")
	}
	if _, err := LedgerEventFromJSON([]byte(`{"type": "expense.synced"}`)); !errors.Is(err, ErrUnknownEvent) {
		t.Fatalf("unknown type = %v, want ErrUnknownEvent", err)
	}
}
