package repositories

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/urnby/campbot/urnby/database/models"
)

// UserTotal is the aggregate of one user's historical rows.
type UserTotal struct {
	UserID    string `bun:"user_id"`
	Seconds   int64  `bun:"total"`
	LatestIn  int64  `bun:"latest_in"`
	LatestOut int64  `bun:"latest_out"`
}

type ShiftRepository interface {
	GetActive(ctx context.Context, guildID string) ([]*models.ActiveShift, error)
	GetActiveForUser(ctx context.Context, guildID, userID string) (*models.ActiveShift, error)
	CountActive(ctx context.Context, guildID string) (int, error)
	StoreActive(ctx context.Context, rec *models.ActiveShift) (int64, error)
	RemoveActive(ctx context.Context, guildID, userID string) (*models.ActiveShift, error)
	CloseActive(ctx context.Context, guildID, userID string, out int64) (*models.HistoricalShift, error)

	GetHistorical(ctx context.Context, guildID string) ([]*models.HistoricalShift, error)
	GetHistoricalForUser(ctx context.Context, guildID, userID string) ([]*models.HistoricalShift, error)
	HistoricalForSession(ctx context.Context, guildID, session string) ([]*models.HistoricalShift, error)
	GetHistoricalRecord(ctx context.Context, guildID string, id int64) (*models.HistoricalShift, error)
	LastHistorical(ctx context.Context, guildID string, n int) ([]*models.HistoricalShift, error)
	StoreHistorical(ctx context.Context, rec *models.HistoricalShift) (int64, error)
	DeleteHistorical(ctx context.Context, guildID string, id int64) error
	ReplaceHistorical(ctx context.Context, rec *models.HistoricalShift) (int64, error)
	UniqueUsers(ctx context.Context, guildID string) ([]string, error)
	UserTotals(ctx context.Context, guildID string) ([]UserTotal, error)
}

type shiftRepository struct {
	*BaseRepository
}

func NewShiftRepository(db *bun.DB) ShiftRepository {
	return &shiftRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *shiftRepository) GetActive(ctx context.Context, guildID string) ([]*models.ActiveShift, error) {
	var recs []*models.ActiveShift
	err := r.SelectWithTimeout(ctx, "get_active", "active", func(ctx context.Context) error {
		return r.db.NewSelect().
			Model(&recs).
			Where("guild_id = ?", guildID).
			Order("in_timestamp ASC", "id ASC").
			Scan(ctx)
	})
	return recs, err
}

func (r *shiftRepository) GetActiveForUser(ctx context.Context, guildID, userID string) (*models.ActiveShift, error) {
	rec := new(models.ActiveShift)
	err := r.SelectOneWithTimeout(ctx, "get_active_user", "active", userID, func(ctx context.Context) error {
		return r.db.NewSelect().
			Model(rec).
			Where("guild_id = ?", guildID).
			Where("user_id = ?", userID).
			Limit(1).
			Scan(ctx)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *shiftRepository) CountActive(ctx context.Context, guildID string) (int, error) {
	var n int
	err := r.SelectWithTimeout(ctx, "count_active", "active", func(ctx context.Context) error {
		var err error
		n, err = r.db.NewSelect().
			Model((*models.ActiveShift)(nil)).
			Where("guild_id = ?", guildID).
			Count(ctx)
		return err
	})
	return n, err
}

// StoreActive inserts an open shift. A user that is already active yields a
// ConflictError. Any queue entry of the user is dropped in the same
// transaction.
func (r *shiftRepository) StoreActive(ctx context.Context, rec *models.ActiveShift) (int64, error) {
	err := r.Transaction(ctx, "store_active", "active", func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().
			Model((*models.ActiveShift)(nil)).
			Where("guild_id = ?", rec.GuildID).
			Where("user_id = ?", rec.UserID).
			Exists(ctx)
		if err != nil {
			return err
		}
		if exists {
			return &ConflictError{Entity: "active", Field: "user_id", Value: rec.UserID}
		}

		if _, err := tx.NewInsert().Model(rec).Exec(ctx); err != nil {
			if isUniqueViolation(err) {
				return &ConflictError{Entity: "active", Field: "user_id", Value: rec.UserID}
			}
			return err
		}

		_, err = tx.NewDelete().
			Model((*models.Replacement)(nil)).
			Where("guild_id = ?", rec.GuildID).
			Where("user_id = ?", rec.UserID).
			Exec(ctx)
		return err
	})
	if err != nil {
		return 0, err
	}
	return rec.ID, nil
}

func (r *shiftRepository) RemoveActive(ctx context.Context, guildID, userID string) (*models.ActiveShift, error) {
	rec := new(models.ActiveShift)
	err := r.Transaction(ctx, "remove_active", "active", func(ctx context.Context, tx bun.Tx) error {
		return removeActiveTx(ctx, tx, guildID, userID, rec)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func removeActiveTx(ctx context.Context, tx bun.Tx, guildID, userID string, rec *models.ActiveShift) error {
	err := tx.NewSelect().
		Model(rec).
		Where("guild_id = ?", guildID).
		Where("user_id = ?", userID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return err
	}
	_, err = tx.NewDelete().
		Model((*models.ActiveShift)(nil)).
		Where("id = ?", rec.ID).
		Exec(ctx)
	return err
}

// CloseActive moves the user's active row to historical with the given out
// timestamp. The delete and insert commit together.
func (r *shiftRepository) CloseActive(ctx context.Context, guildID, userID string, out int64) (*models.HistoricalShift, error) {
	var hist *models.HistoricalShift
	err := r.Transaction(ctx, "close_active", "active", func(ctx context.Context, tx bun.Tx) error {
		active := new(models.ActiveShift)
		if err := removeActiveTx(ctx, tx, guildID, userID, active); err != nil {
			return err
		}
		hist = active.Close(out)
		_, err := tx.NewInsert().Model(hist).Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return hist, nil
}

func (r *shiftRepository) selectHistorical(ctx context.Context, op string, build func(*bun.SelectQuery) *bun.SelectQuery) ([]*models.HistoricalShift, error) {
	var recs []*models.HistoricalShift
	err := r.SelectWithTimeout(ctx, op, "historical", func(ctx context.Context) error {
		return build(r.db.NewSelect().Model(&recs)).Scan(ctx)
	})
	return recs, err
}

func (r *shiftRepository) GetHistorical(ctx context.Context, guildID string) ([]*models.HistoricalShift, error) {
	return r.selectHistorical(ctx, "get_historical", func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("guild_id = ?", guildID).Order("id ASC")
	})
}

func (r *shiftRepository) GetHistoricalForUser(ctx context.Context, guildID, userID string) ([]*models.HistoricalShift, error) {
	return r.selectHistorical(ctx, "get_historical_user", func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("guild_id = ?", guildID).Where("user_id = ?", userID).Order("id ASC")
	})
}

func (r *shiftRepository) HistoricalForSession(ctx context.Context, guildID, session string) ([]*models.HistoricalShift, error) {
	return r.selectHistorical(ctx, "get_historical_session", func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("guild_id = ?", guildID).Where("session = ?", session).Order("id ASC")
	})
}

func (r *shiftRepository) LastHistorical(ctx context.Context, guildID string, n int) ([]*models.HistoricalShift, error) {
	return r.selectHistorical(ctx, "last_historical", func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("guild_id = ?", guildID).Order("id DESC").Limit(n)
	})
}

func (r *shiftRepository) GetHistoricalRecord(ctx context.Context, guildID string, id int64) (*models.HistoricalShift, error) {
	rec := new(models.HistoricalShift)
	err := r.SelectOneWithTimeout(ctx, "get_historical_record", "historical", id, func(ctx context.Context) error {
		return r.db.NewSelect().
			Model(rec).
			Where("guild_id = ?", guildID).
			Where("id = ?", id).
			Scan(ctx)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *shiftRepository) StoreHistorical(ctx context.Context, rec *models.HistoricalShift) (int64, error) {
	timeoutCtx, cancel := r.WithTimeout(ctx)
	defer cancel()

	if _, err := r.db.NewInsert().Model(rec).Exec(timeoutCtx); err != nil {
		return 0, r.HandleError("store_historical", "historical", err)
	}
	return rec.ID, nil
}

func (r *shiftRepository) DeleteHistorical(ctx context.Context, guildID string, id int64) error {
	timeoutCtx, cancel := r.WithTimeout(ctx)
	defer cancel()

	res, err := r.db.NewDelete().
		Model((*models.HistoricalShift)(nil)).
		Where("guild_id = ?", guildID).
		Where("id = ?", id).
		Exec(timeoutCtx)
	if err != nil {
		return r.HandleErrorWithID("delete_historical", "historical", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &NotFoundError{Entity: "historical", ID: id}
	}
	return nil
}

// ReplaceHistorical deletes rec.ID and inserts rec as a new row, keeping the
// table append-only from the reader's point of view.
func (r *shiftRepository) ReplaceHistorical(ctx context.Context, rec *models.HistoricalShift) (int64, error) {
	oldID := rec.ID
	err := r.Transaction(ctx, "replace_historical", "historical", func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().
			Model((*models.HistoricalShift)(nil)).
			Where("guild_id = ?", rec.GuildID).
			Where("id = ?", oldID).
			Exec(ctx)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return &NotFoundError{Entity: "historical", ID: oldID}
		}
		rec.ID = 0
		_, err = tx.NewInsert().Model(rec).Exec(ctx)
		return err
	})
	if err != nil {
		rec.ID = oldID
		return 0, err
	}
	return rec.ID, nil
}

func (r *shiftRepository) UniqueUsers(ctx context.Context, guildID string) ([]string, error) {
	var users []string
	err := r.SelectWithTimeout(ctx, "unique_users", "historical", func(ctx context.Context) error {
		return r.db.NewSelect().
			Model((*models.HistoricalShift)(nil)).
			Distinct().
			Column("user_id").
			Where("guild_id = ?", guildID).
			Order("user_id ASC").
			Scan(ctx, &users)
	})
	return users, err
}

// UserTotals sums out-in per user, negative rows included.
func (r *shiftRepository) UserTotals(ctx context.Context, guildID string) ([]UserTotal, error) {
	var totals []UserTotal
	err := r.SelectWithTimeout(ctx, "user_totals", "historical", func(ctx context.Context) error {
		return r.db.NewSelect().
			Model((*models.HistoricalShift)(nil)).
			Column("user_id").
			ColumnExpr("SUM(out_timestamp - in_timestamp) AS total").
			ColumnExpr("MAX(in_timestamp) AS latest_in").
			ColumnExpr("MAX(out_timestamp) AS latest_out").
			Where("guild_id = ?", guildID).
			Group("user_id").
			Order("total DESC", "user_id ASC").
			Scan(ctx, &totals)
	})
	return totals, err
}
