package shifts

import (
	"context"
	"fmt"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/urnby/campbot/urnby/database/models"
	"github.com/urnby/campbot/urnby/database/repositories"
)

// HistoryField selects which end of a record AdminChangeHistory rewrites.
type HistoryField string

const (
	FieldClockIn  HistoryField = "in"
	FieldClockOut HistoryField = "out"
)

type DirectRecord struct {
	UserID    snowflake.ID
	UserName  string
	Session   string
	Character string
	In        time.Time
	Out       time.Time
}

// AdminRecord inserts a historical row as given.
func (s *Service) AdminRecord(ctx context.Context, guildID snowflake.ID, r DirectRecord) (*models.HistoricalShift, int64, error) {
	if r.Out.Before(r.In) {
		return nil, 0, fmt.Errorf("%w: clock out before clock in", ErrInvalidRecord)
	}
	rec := &models.HistoricalShift{
		GuildID:      guildID.String(),
		UserID:       r.UserID.String(),
		UserName:     r.UserName,
		Character:    r.Character,
		Session:      r.Session,
		InTimestamp:  r.In.Unix(),
		OutTimestamp: r.Out.Unix(),
	}
	if _, err := s.shifts.StoreHistorical(ctx, rec); err != nil {
		return nil, 0, fmt.Errorf("failed to store record: %w", err)
	}
	total, err := s.UserSeconds(ctx, guildID, r.UserID)
	return rec, total, err
}

// AdminZeroOut urns a user as of the given kill time, whether or not they are
// clocked in.
func (s *Service) AdminZeroOut(ctx context.Context, guildID, userID snowflake.ID, userName, session string, at time.Time) (*models.HistoricalShift, error) {
	return s.zeroOutAt(ctx, guildID, userID, userName, session, at)
}

type ChangeResult struct {
	Previous *models.HistoricalShift
	Current  *models.HistoricalShift
}

// AdminChangeHistory rewrites the in or out time of one record. The old row
// is replaced by a new one, so the record number changes.
func (s *Service) AdminChangeHistory(ctx context.Context, guildID snowflake.ID, rowID int64, field HistoryField, at time.Time) (*ChangeResult, error) {
	rec, err := s.shifts.GetHistoricalRecord(ctx, guildID.String(), rowID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, fmt.Errorf("%w: record #%d not found", ErrInvalidRecord, rowID)
		}
		return nil, err
	}
	prev := *rec

	switch field {
	case FieldClockIn:
		rec.InTimestamp = at.Unix()
	case FieldClockOut:
		rec.OutTimestamp = at.Unix()
	default:
		return nil, fmt.Errorf("%w: unknown field %q", ErrInvalidRecord, field)
	}

	if _, err := s.shifts.ReplaceHistorical(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to replace record: %w", err)
	}
	return &ChangeResult{Previous: &prev, Current: rec}, nil
}

func (s *Service) LastHistorical(ctx context.Context, guildID snowflake.ID, n int) ([]*models.HistoricalShift, error) {
	return s.shifts.LastHistorical(ctx, guildID.String(), n)
}

func (s *Service) LastSessions(ctx context.Context, guildID snowflake.ID, n int) ([]*models.SessionHistory, error) {
	return s.sessions.LastSessions(ctx, guildID.String(), n)
}

func (s *Service) SessionNames(ctx context.Context, guildID snowflake.ID) ([]string, error) {
	return s.sessions.SessionNames(ctx, guildID.String())
}

type SessionSummary struct {
	History *models.SessionHistory
	Records []*models.HistoricalShift
	// Seconds per user, bonus rows excluded.
	Seconds map[string]int64
}

func (s *Service) SessionSummary(ctx context.Context, guildID snowflake.ID, name string) (*SessionSummary, error) {
	hist, err := s.sessions.GetSessionHistory(ctx, guildID.String(), name)
	if err != nil {
		return nil, err
	}
	recs, err := s.shifts.HistoricalForSession(ctx, guildID.String(), name)
	if err != nil {
		return nil, err
	}
	sum := &SessionSummary{History: hist, Records: recs, Seconds: map[string]int64{}}
	for _, r := range recs {
		if !r.IsBonus() {
			sum.Seconds[r.UserID] += r.Seconds()
		}
	}
	return sum, nil
}
