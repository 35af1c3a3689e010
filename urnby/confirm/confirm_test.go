package confirm

import (
	"context"
	"testing"
	"time"
)

func TestAwaitOutcomes(t *testing.T) {
	tests := []struct {
		name    string
		answer  func(m *Manager, token string)
		want    Result
		timeout time.Duration
	}{
		{
			name:    "accept",
			answer:  func(m *Manager, token string) { _ = m.Resolve(token, 1, true) },
			want:    Accepted,
			timeout: time.Second,
		},
		{
			name:    "decline",
			answer:  func(m *Manager, token string) { _ = m.Resolve(token, 1, false) },
			want:    Declined,
			timeout: time.Second,
		},
		{
			name:    "timeout",
			answer:  func(*Manager, string) {},
			want:    Cancelled,
			timeout: 20 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(tt.timeout)
			token := m.Issue(1)
			go tt.answer(m, token)
			if got := m.Await(context.Background(), token); got != tt.want {
				t.Errorf("Await() = %v, want %v", got, tt.want)
			}
			if m.Pending() != 0 {
				t.Errorf("token still pending after Await")
			}
		})
	}
}

func TestResolveRules(t *testing.T) {
	m := NewManager(time.Second)
	token := m.Issue(1)

	if err := m.Resolve(token, 2, true); err != ErrNotOwner {
		t.Errorf("Resolve() by stranger = %v, want ErrNotOwner", err)
	}
	if err := m.Resolve(token, 1, true); err != nil {
		t.Fatalf("Resolve() = %v", err)
	}
	if err := m.Resolve(token, 1, false); err != ErrUnknownToken {
		t.Errorf("second Resolve() = %v, want ErrUnknownToken", err)
	}
	if got := m.Await(context.Background(), token); got != Accepted {
		t.Errorf("Await() after early resolve = %v, want Accepted", got)
	}
	if got := m.Await(context.Background(), token); got != Cancelled {
		t.Errorf("Await() on consumed token = %v, want Cancelled", got)
	}
}

func TestAwaitContextCancel(t *testing.T) {
	m := NewManager(time.Minute)
	token := m.Issue(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if got := m.Await(ctx, token); got != Cancelled {
		t.Errorf("Await() = %v, want Cancelled", got)
	}
}

func TestCancel(t *testing.T) {
	t.Run("unposted prompt leaves nothing pending", func(t *testing.T) {
		m := NewManager(time.Minute)
		token := m.Issue(1)
		m.Cancel(token)
		if m.Pending() != 0 {
			t.Errorf("Pending() = %d after Cancel, want 0", m.Pending())
		}
		if err := m.Resolve(token, 1, true); err != ErrUnknownToken {
			t.Errorf("Resolve() after Cancel = %v, want ErrUnknownToken", err)
		}
	})

	t.Run("waiter is released", func(t *testing.T) {
		m := NewManager(time.Minute)
		token := m.Issue(1)
		got := make(chan Result, 1)
		go func() { got <- m.Await(context.Background(), token) }()

		time.Sleep(10 * time.Millisecond)
		m.Cancel(token)
		select {
		case r := <-got:
			if r != Cancelled {
				t.Errorf("Await() = %v, want Cancelled", r)
			}
		case <-time.After(time.Second):
			t.Fatal("Await() still blocked after Cancel")
		}
	})

	t.Run("unknown token is a no-op", func(t *testing.T) {
		m := NewManager(time.Minute)
		m.Cancel("missing")
		if m.Pending() != 0 {
			t.Errorf("Pending() = %d", m.Pending())
		}
	})
}
