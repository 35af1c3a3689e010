// Package shifts is the time accounting core: clock in and out of a guild's
// live session, session start and end, bonus credit and hour aggregates.
package shifts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"golang.org/x/sync/semaphore"

	"github.com/urnby/campbot/urnby/database/models"
	"github.com/urnby/campbot/urnby/database/repositories"
	"github.com/urnby/campbot/urnby/guildconfig"
	"github.com/urnby/campbot/urnby/timeutil"
)

type Service struct {
	shifts   repositories.ShiftRepository
	sessions repositories.SessionRepository
	configs  guildconfig.Provider
	clock    timeutil.Clock
	loc      *time.Location

	mu    sync.Mutex
	locks map[snowflake.ID]*semaphore.Weighted
}

func NewService(
	shifts repositories.ShiftRepository,
	sessions repositories.SessionRepository,
	configs guildconfig.Provider,
	clock timeutil.Clock,
	loc *time.Location,
) *Service {
	return &Service{
		shifts:   shifts,
		sessions: sessions,
		configs:  configs,
		clock:    clock,
		loc:      loc,
		locks:    make(map[snowflake.ID]*semaphore.Weighted),
	}
}

func (s *Service) Location() *time.Location { return s.loc }

func (s *Service) Now() time.Time { return s.clock.Now() }

// lockGuild holds the guild's exclusive section until the returned func is
// called.
func (s *Service) lockGuild(ctx context.Context, guildID snowflake.ID) (func(), error) {
	s.mu.Lock()
	sem, ok := s.locks[guildID]
	if !ok {
		sem = semaphore.NewWeighted(1)
		s.locks[guildID] = sem
	}
	s.mu.Unlock()

	if err := sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { sem.Release(1) }, nil
}

// Session returns the live session or ErrNoActiveSession.
func (s *Service) Session(ctx context.Context, guildID snowflake.ID) (*models.Session, error) {
	sess, err := s.sessions.GetSession(ctx, guildID.String())
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrNoActiveSession
	}
	return sess, nil
}

func (s *Service) Actives(ctx context.Context, guildID snowflake.ID) ([]*models.ActiveShift, error) {
	return s.shifts.GetActive(ctx, guildID.String())
}

type ClockInResult struct {
	Record      *models.ActiveShift
	ActiveCount int
	MaxActive   int
	// Actives is filled only when the cap is exceeded.
	Actives []*models.ActiveShift
}

// OverCap reports the advisory; it never blocks a clock in.
func (r *ClockInResult) OverCap() bool {
	return r.MaxActive > 0 && r.ActiveCount > r.MaxActive
}

func (s *Service) ClockIn(ctx context.Context, guildID, userID snowflake.ID, userName, character string) (*ClockInResult, error) {
	sess, err := s.Session(ctx, guildID)
	if err != nil {
		return nil, err
	}

	rec := &models.ActiveShift{
		GuildID:     guildID.String(),
		UserID:      userID.String(),
		UserName:    userName,
		Character:   character,
		Session:     sess.Name,
		InTimestamp: s.clock.Now().Unix(),
	}
	if _, err := s.shifts.StoreActive(ctx, rec); err != nil {
		if repositories.IsConflict(err) {
			return nil, ErrAlreadyActive
		}
		return nil, fmt.Errorf("failed to store active shift: %w", err)
	}

	res := &ClockInResult{Record: rec}
	if cfg, ok := s.configs.Get(guildID); ok {
		res.MaxActive = cfg.MaxActive
	}
	actives, err := s.shifts.GetActive(ctx, guildID.String())
	if err != nil {
		// the clock in is committed; the advisory is best effort
		slog.Warn("Failed to count actives after clock in",
			slog.String("type", "db"),
			slog.String("guild_id", guildID.String()),
			slog.Any("error", err),
		)
		return res, nil
	}
	res.ActiveCount = len(actives)
	if res.OverCap() {
		res.Actives = actives
	}
	return res, nil
}

type ClockOutResult struct {
	Record  *models.HistoricalShift
	Bonuses []*models.HistoricalShift
	// TotalSeconds is the user's running total after the clock out.
	TotalSeconds int64
}

func (s *Service) ClockOut(ctx context.Context, guildID, userID snowflake.ID) (*ClockOutResult, error) {
	if _, err := s.Session(ctx, guildID); err != nil {
		return nil, err
	}
	return s.clockOut(ctx, guildID, userID)
}

func (s *Service) clockOut(ctx context.Context, guildID, userID snowflake.ID) (*ClockOutResult, error) {
	hist, err := s.shifts.CloseActive(ctx, guildID.String(), userID.String(), s.clock.Now().Unix())
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrNotActive
		}
		return nil, fmt.Errorf("failed to close active shift: %w", err)
	}

	res := &ClockOutResult{Record: hist}
	if cfg, ok := s.configs.Get(guildID); ok && len(cfg.BonusHours) > 0 {
		for _, bonus := range BonusSessions(hist, cfg.BonusHours, s.loc) {
			if _, err := s.shifts.StoreHistorical(ctx, bonus); err != nil {
				return res, fmt.Errorf("failed to store bonus for record %d: %w", hist.ID, err)
			}
			res.Bonuses = append(res.Bonuses, bonus)
		}
	}

	total, err := s.UserSeconds(ctx, guildID, userID)
	if err != nil {
		return res, err
	}
	res.TotalSeconds = total
	return res, nil
}

func (s *Service) StartSession(ctx context.Context, guildID snowflake.ID, createdBy, name string) (*models.Session, error) {
	unlock, err := s.lockGuild(ctx, guildID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	sess := &models.Session{
		GuildID:        guildID.String(),
		Name:           name,
		CreatedBy:      createdBy,
		StartTimestamp: s.clock.Now().Unix(),
	}
	if _, err := s.sessions.StartSession(ctx, sess); err != nil {
		switch repositories.ConflictField(err) {
		case repositories.SessionFieldGuild:
			return nil, ErrSessionAlreadyActive
		case repositories.SessionFieldName:
			return nil, ErrDuplicateSessionName
		}
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	return sess, nil
}

// ClockOutFailure is one user the mass clock out could not close.
type ClockOutFailure struct {
	UserID   string
	UserName string
	Err      error
}

type EndSessionResult struct {
	History    *models.SessionHistory
	ClockedOut []*ClockOutResult
	Failures   []ClockOutFailure
}

// EndSession clocks out every active user, collecting failures instead of
// stopping, then moves the session to history.
func (s *Service) EndSession(ctx context.Context, guildID snowflake.ID, endedBy string) (*EndSessionResult, error) {
	unlock, err := s.lockGuild(ctx, guildID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if _, err := s.Session(ctx, guildID); err != nil {
		return nil, err
	}

	actives, err := s.shifts.GetActive(ctx, guildID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to load actives: %w", err)
	}

	res := &EndSessionResult{}
	for _, a := range actives {
		userID, err := snowflake.Parse(a.UserID)
		if err == nil {
			var out *ClockOutResult
			out, err = s.clockOut(ctx, guildID, userID)
			if err == nil {
				res.ClockedOut = append(res.ClockedOut, out)
				continue
			}
		}
		res.Failures = append(res.Failures, ClockOutFailure{UserID: a.UserID, UserName: a.UserName, Err: err})
	}

	hist, err := s.sessions.EndSession(ctx, guildID.String(), endedBy, s.clock.Now().Unix())
	if err != nil {
		if repositories.IsNotFound(err) {
			return res, ErrNoActiveSession
		}
		return res, fmt.Errorf("failed to end session: %w", err)
	}
	res.History = hist
	return res, nil
}

// ZeroOut (urn) appends one correction row that brings the user's total to
// zero. Rejected while the user is clocked in.
func (s *Service) ZeroOut(ctx context.Context, guildID, userID snowflake.ID, userName string) (*models.HistoricalShift, error) {
	if _, err := s.shifts.GetActiveForUser(ctx, guildID.String(), userID.String()); err == nil {
		return nil, ErrAlreadyActive
	} else if !repositories.IsNotFound(err) {
		return nil, err
	}

	session := ""
	if sess, err := s.sessions.GetSession(ctx, guildID.String()); err == nil && sess != nil {
		session = sess.Name
	}
	return s.zeroOutAt(ctx, guildID, userID, userName, session, s.clock.Now())
}

func (s *Service) zeroOutAt(ctx context.Context, guildID, userID snowflake.ID, userName, session string, at time.Time) (*models.HistoricalShift, error) {
	total, err := s.UserSeconds(ctx, guildID, userID)
	if err != nil {
		return nil, err
	}
	if total <= 0 {
		return nil, ErrNothingToZero
	}

	rec := &models.HistoricalShift{
		GuildID:      guildID.String(),
		UserID:       userID.String(),
		UserName:     userName,
		Character:    UrnLabel(total),
		Session:      session,
		InTimestamp:  at.Unix(),
		OutTimestamp: at.Unix() - total,
	}
	if _, err := s.shifts.StoreHistorical(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to store urn record: %w", err)
	}
	return rec, nil
}

func UrnLabel(totalSeconds int64) string {
	return fmt.Sprintf("%s -%.2f", models.UrnLabelPrefix, timeutil.HoursFromSecs(totalSeconds))
}

// IsDomainError reports errors that are expected user outcomes.
func IsDomainError(err error) bool {
	for _, target := range []error{
		ErrNoActiveSession, ErrAlreadyActive, ErrNotActive,
		ErrSessionAlreadyActive, ErrDuplicateSessionName,
		ErrNothingToZero, ErrInvalidRecord,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
