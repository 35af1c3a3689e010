// Package confirm runs two-phase confirmations: a prompt is issued with a
// token, and the caller waits for accept, decline or expiry.
package confirm

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/google/uuid"
)

type Result int

const (
	Cancelled Result = iota
	Accepted
	Declined
)

func (r Result) String() string {
	switch r {
	case Accepted:
		return "accepted"
	case Declined:
		return "declined"
	default:
		return "cancelled"
	}
}

var (
	ErrUnknownToken = errors.New("confirmation expired or unknown")
	ErrNotOwner     = errors.New("only the requester can answer this confirmation")
)

type pending struct {
	owner    snowflake.ID
	ch       chan Result
	answered bool
}

type Manager struct {
	timeout time.Duration

	mu      sync.Mutex
	pending map[string]*pending
}

func NewManager(timeout time.Duration) *Manager {
	return &Manager{
		timeout: timeout,
		pending: make(map[string]*pending),
	}
}

// Issue registers a confirmation owned by one user and returns its token.
func (m *Manager) Issue(owner snowflake.ID) string {
	token := uuid.NewString()
	m.mu.Lock()
	m.pending[token] = &pending{owner: owner, ch: make(chan Result, 1)}
	m.mu.Unlock()
	return token
}

// Await blocks until the token is resolved, the timeout elapses or ctx is
// done. Anything but an answer is Cancelled. The token is gone afterwards.
func (m *Manager) Await(ctx context.Context, token string) Result {
	m.mu.Lock()
	p, ok := m.pending[token]
	m.mu.Unlock()
	if !ok {
		return Cancelled
	}
	defer m.drop(token)

	timer := time.NewTimer(m.timeout)
	defer timer.Stop()

	select {
	case r := <-p.ch:
		return r
	case <-timer.C:
		return Cancelled
	case <-ctx.Done():
		return Cancelled
	}
}

// Resolve answers a confirmation. Only the owner may answer, and only once.
// The answer is buffered, so it may arrive before Await is called.
func (m *Manager) Resolve(token string, user snowflake.ID, accept bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.pending[token]
	if !ok || p.answered {
		return ErrUnknownToken
	}
	if p.owner != user {
		return ErrNotOwner
	}
	p.answered = true

	r := Declined
	if accept {
		r = Accepted
	}
	p.ch <- r
	return nil
}

// Cancel withdraws a confirmation, for example when its prompt could not be
// posted. A waiting Await returns Cancelled.
func (m *Manager) Cancel(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.pending[token]
	if !ok {
		return
	}
	if !p.answered {
		p.answered = true
		p.ch <- Cancelled
	}
	delete(m.pending, token)
}

func (m *Manager) drop(token string) {
	m.mu.Lock()
	delete(m.pending, token)
	m.mu.Unlock()
}

// Pending is the number of unanswered confirmations.
func (m *Manager) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}
