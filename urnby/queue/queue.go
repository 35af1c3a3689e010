// Package queue is the replacement queue: a FIFO of members waiting for a
// camp slot, one entry per user and guild.
package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/urnby/campbot/urnby/database/models"
	"github.com/urnby/campbot/urnby/database/repositories"
	"github.com/urnby/campbot/urnby/timeutil"
)

var (
	ErrAlreadyQueued = errors.New("user is already in the queue")
	ErrNotQueued     = errors.New("user is not in the queue")
	ErrAlreadyActive = errors.New("user is clocked in")
)

type Manager struct {
	repo  repositories.QueueRepository
	clock timeutil.Clock
}

func NewManager(repo repositories.QueueRepository, clock timeutil.Clock) *Manager {
	return &Manager{repo: repo, clock: clock}
}

func (m *Manager) Enqueue(ctx context.Context, guildID, userID snowflake.ID, displayName string) (*models.Replacement, error) {
	return m.enqueue(ctx, guildID, userID, displayName, m.clock.Now())
}

// AdminEnqueue places a user at an explicit time, which may jump the line.
// A zero time means now.
func (m *Manager) AdminEnqueue(ctx context.Context, guildID, userID snowflake.ID, displayName string, at time.Time) (*models.Replacement, error) {
	if at.IsZero() {
		at = m.clock.Now()
	}
	return m.enqueue(ctx, guildID, userID, displayName, at)
}

func (m *Manager) enqueue(ctx context.Context, guildID, userID snowflake.ID, displayName string, at time.Time) (*models.Replacement, error) {
	entry := &models.Replacement{
		GuildID:     guildID.String(),
		UserID:      userID.String(),
		UserName:    displayName,
		InTimestamp: at.Unix(),
	}
	if _, err := m.repo.Enqueue(ctx, entry); err != nil {
		switch repositories.ConflictField(err) {
		case repositories.QueueFieldActive:
			return nil, ErrAlreadyActive
		case repositories.QueueFieldUser, "key":
			return nil, ErrAlreadyQueued
		}
		return nil, fmt.Errorf("failed to enqueue: %w", err)
	}
	return entry, nil
}

func (m *Manager) Dequeue(ctx context.Context, guildID, userID snowflake.ID) (*models.Replacement, error) {
	entry, err := m.repo.Dequeue(ctx, guildID.String(), userID.String())
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrNotQueued
		}
		return nil, fmt.Errorf("failed to dequeue: %w", err)
	}
	return entry, nil
}

// AdminDequeue is Dequeue on behalf of another user.
func (m *Manager) AdminDequeue(ctx context.Context, guildID, userID snowflake.ID) (*models.Replacement, error) {
	return m.Dequeue(ctx, guildID, userID)
}

func (m *Manager) List(ctx context.Context, guildID snowflake.ID) ([]*models.Replacement, error) {
	return m.repo.GetQueue(ctx, guildID.String())
}

// PeekBefore lists the entries strictly ahead of the user. A user without an
// entry is compared as if enqueued now.
func (m *Manager) PeekBefore(ctx context.Context, guildID, userID snowflake.ID) ([]*models.Replacement, error) {
	entries, err := m.repo.GetQueue(ctx, guildID.String())
	if err != nil {
		return nil, err
	}

	ref := m.clock.Now().Unix()
	refID := int64(-1)
	for _, e := range entries {
		if e.UserID == userID.String() {
			ref, refID = e.InTimestamp, e.ID
			break
		}
	}

	var before []*models.Replacement
	for _, e := range entries {
		if e.ID == refID {
			break
		}
		if e.InTimestamp < ref || (refID >= 0 && e.InTimestamp == ref && e.ID < refID) {
			before = append(before, e)
		}
	}
	return before, nil
}

func (m *Manager) Clear(ctx context.Context, guildID snowflake.ID) (int64, error) {
	return m.repo.ClearQueue(ctx, guildID.String())
}

// WaitMinutes is how long an entry has been waiting.
func (m *Manager) WaitMinutes(e *models.Replacement) int64 {
	return timeutil.MinutesBetween(time.Unix(e.InTimestamp, 0), m.clock.Now())
}
