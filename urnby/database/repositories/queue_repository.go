package repositories

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/urnby/campbot/urnby/database/models"
)

// Conflict fields reported by Enqueue.
const (
	QueueFieldUser   = "user_id"
	QueueFieldActive = "active"
)

type QueueRepository interface {
	GetQueue(ctx context.Context, guildID string) ([]*models.Replacement, error)
	GetEntry(ctx context.Context, guildID, userID string) (*models.Replacement, error)
	Enqueue(ctx context.Context, entry *models.Replacement) (int64, error)
	Dequeue(ctx context.Context, guildID, userID string) (*models.Replacement, error)
	ClearQueue(ctx context.Context, guildID string) (int64, error)
}

type queueRepository struct {
	*BaseRepository
}

func NewQueueRepository(db *bun.DB) QueueRepository {
	return &queueRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *queueRepository) GetQueue(ctx context.Context, guildID string) ([]*models.Replacement, error) {
	var entries []*models.Replacement
	err := r.SelectWithTimeout(ctx, "get_queue", "reps", func(ctx context.Context) error {
		return r.db.NewSelect().
			Model(&entries).
			Where("guild_id = ?", guildID).
			Order("in_timestamp ASC", "id ASC").
			Scan(ctx)
	})
	return entries, err
}

func (r *queueRepository) GetEntry(ctx context.Context, guildID, userID string) (*models.Replacement, error) {
	entry := new(models.Replacement)
	err := r.SelectOneWithTimeout(ctx, "get_queue_entry", "reps", userID, func(ctx context.Context) error {
		return r.db.NewSelect().
			Model(entry).
			Where("guild_id = ?", guildID).
			Where("user_id = ?", userID).
			Scan(ctx)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Enqueue inserts the entry unless the user is already queued or clocked in.
func (r *queueRepository) Enqueue(ctx context.Context, entry *models.Replacement) (int64, error) {
	err := r.Transaction(ctx, "enqueue", "reps", func(ctx context.Context, tx bun.Tx) error {
		active, err := tx.NewSelect().
			Model((*models.ActiveShift)(nil)).
			Where("guild_id = ?", entry.GuildID).
			Where("user_id = ?", entry.UserID).
			Exists(ctx)
		if err != nil {
			return err
		}
		if active {
			return &ConflictError{Entity: "reps", Field: QueueFieldActive, Value: entry.UserID}
		}

		if _, err := tx.NewInsert().Model(entry).Exec(ctx); err != nil {
			if isUniqueViolation(err) {
				return &ConflictError{Entity: "reps", Field: QueueFieldUser, Value: entry.UserID}
			}
			return err
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return entry.ID, nil
}

func (r *queueRepository) Dequeue(ctx context.Context, guildID, userID string) (*models.Replacement, error) {
	entry := new(models.Replacement)
	err := r.Transaction(ctx, "dequeue", "reps", func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().
			Model(entry).
			Where("guild_id = ?", guildID).
			Where("user_id = ?", userID).
			Scan(ctx)
		if err != nil {
			return err
		}
		_, err = tx.NewDelete().
			Model((*models.Replacement)(nil)).
			Where("id = ?", entry.ID).
			Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *queueRepository) ClearQueue(ctx context.Context, guildID string) (int64, error) {
	timeoutCtx, cancel := r.WithTimeout(ctx)
	defer cancel()

	res, err := r.db.NewDelete().
		Model((*models.Replacement)(nil)).
		Where("guild_id = ?", guildID).
		Exec(timeoutCtx)
	if err != nil {
		return 0, r.HandleError("clear_queue", "reps", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
