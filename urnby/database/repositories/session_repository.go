package repositories

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/urnby/campbot/urnby/database/models"
)

// Conflict fields reported by StartSession.
const (
	SessionFieldGuild = "guild_id"
	SessionFieldName  = "name"
)

type SessionRepository interface {
	// GetSession returns the live session, or nil when the guild has none.
	GetSession(ctx context.Context, guildID string) (*models.Session, error)
	StartSession(ctx context.Context, sess *models.Session) (int64, error)
	EndSession(ctx context.Context, guildID, endedBy string, end int64) (*models.SessionHistory, error)
	DeleteSession(ctx context.Context, guildID string) error
	GetSessionHistory(ctx context.Context, guildID, name string) (*models.SessionHistory, error)
	LastSessions(ctx context.Context, guildID string, n int) ([]*models.SessionHistory, error)
	SessionNames(ctx context.Context, guildID string) ([]string, error)
}

type sessionRepository struct {
	*BaseRepository
}

func NewSessionRepository(db *bun.DB) SessionRepository {
	return &sessionRepository{BaseRepository: NewBaseRepository(db)}
}

func liveSessions(ctx context.Context, db bun.IDB, guildID string) ([]*models.Session, error) {
	var sessions []*models.Session
	err := db.NewSelect().
		Model(&sessions).
		Where("guild_id = ?", guildID).
		Scan(ctx)
	return sessions, err
}

func (r *sessionRepository) GetSession(ctx context.Context, guildID string) (*models.Session, error) {
	var sessions []*models.Session
	err := r.SelectWithTimeout(ctx, "get_session", "session", func(ctx context.Context) error {
		var err error
		sessions, err = liveSessions(ctx, r.db, guildID)
		return err
	})
	if err != nil {
		return nil, err
	}
	switch len(sessions) {
	case 0:
		return nil, nil
	case 1:
		return sessions[0], nil
	default:
		return nil, &ConsistencyError{
			Entity: "session",
			Detail: fmt.Sprintf("guild %s has %d live sessions", guildID, len(sessions)),
		}
	}
}

// StartSession inserts the live session. A live session in the guild or a
// name already used in the guild's history yields a ConflictError whose Field
// tells them apart.
func (r *sessionRepository) StartSession(ctx context.Context, sess *models.Session) (int64, error) {
	err := r.Transaction(ctx, "set_session", "session", func(ctx context.Context, tx bun.Tx) error {
		live, err := liveSessions(ctx, tx, sess.GuildID)
		if err != nil {
			return err
		}
		if len(live) > 0 {
			return &ConflictError{Entity: "session", Field: SessionFieldGuild, Value: sess.GuildID}
		}

		used, err := tx.NewSelect().
			Model((*models.SessionHistory)(nil)).
			Where("guild_id = ?", sess.GuildID).
			Where("name = ?", sess.Name).
			Exists(ctx)
		if err != nil {
			return err
		}
		if used {
			return &ConflictError{Entity: "session", Field: SessionFieldName, Value: sess.Name}
		}

		if _, err := tx.NewInsert().Model(sess).Exec(ctx); err != nil {
			if isUniqueViolation(err) {
				return &ConflictError{Entity: "session", Field: SessionFieldGuild, Value: sess.GuildID}
			}
			return err
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return sess.ID, nil
}

// EndSession appends the live session to history and deletes it.
func (r *sessionRepository) EndSession(ctx context.Context, guildID, endedBy string, end int64) (*models.SessionHistory, error) {
	var hist *models.SessionHistory
	err := r.Transaction(ctx, "end_session", "session", func(ctx context.Context, tx bun.Tx) error {
		live, err := liveSessions(ctx, tx, guildID)
		if err != nil {
			return err
		}
		switch len(live) {
		case 0:
			return &NotFoundError{Entity: "session", ID: guildID}
		case 1:
		default:
			return &ConsistencyError{
				Entity: "session",
				Detail: fmt.Sprintf("guild %s has %d live sessions", guildID, len(live)),
			}
		}

		hist = live[0].End(endedBy, end)
		if _, err := tx.NewInsert().Model(hist).Exec(ctx); err != nil {
			if isUniqueViolation(err) {
				return &ConflictError{Entity: "session", Field: SessionFieldName, Value: hist.Name}
			}
			return err
		}
		_, err = tx.NewDelete().
			Model((*models.Session)(nil)).
			Where("guild_id = ?", guildID).
			Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return hist, nil
}

func (r *sessionRepository) DeleteSession(ctx context.Context, guildID string) error {
	timeoutCtx, cancel := r.WithTimeout(ctx)
	defer cancel()

	_, err := r.db.NewDelete().
		Model((*models.Session)(nil)).
		Where("guild_id = ?", guildID).
		Exec(timeoutCtx)
	return r.HandleError("delete_session", "session", err)
}

func (r *sessionRepository) GetSessionHistory(ctx context.Context, guildID, name string) (*models.SessionHistory, error) {
	rec := new(models.SessionHistory)
	err := r.SelectOneWithTimeout(ctx, "get_session_history", "session_history", name, func(ctx context.Context) error {
		return r.db.NewSelect().
			Model(rec).
			Where("guild_id = ?", guildID).
			Where("name = ?", name).
			Scan(ctx)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *sessionRepository) LastSessions(ctx context.Context, guildID string, n int) ([]*models.SessionHistory, error) {
	var recs []*models.SessionHistory
	err := r.SelectWithTimeout(ctx, "last_sessions", "session_history", func(ctx context.Context) error {
		return r.db.NewSelect().
			Model(&recs).
			Where("guild_id = ?", guildID).
			Order("end_timestamp DESC", "id DESC").
			Limit(n).
			Scan(ctx)
	})
	return recs, err
}

func (r *sessionRepository) SessionNames(ctx context.Context, guildID string) ([]string, error) {
	var names []string
	err := r.SelectWithTimeout(ctx, "session_names", "session_history", func(ctx context.Context) error {
		return r.db.NewSelect().
			Model((*models.SessionHistory)(nil)).
			Column("name").
			Where("guild_id = ?", guildID).
			Order("id DESC").
			Scan(ctx, &names)
	})
	return names, err
}
