package repositories

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/urnby/campbot/urnby/database/models"
)

type TodRepository interface {
	// GetTod returns the most recently submitted record for the mob.
	GetTod(ctx context.Context, guildID, mob string) (*models.TimeOfDeath, error)
	StoreTod(ctx context.Context, rec *models.TimeOfDeath) (int64, error)
}

type todRepository struct {
	*BaseRepository
}

func NewTodRepository(db *bun.DB) TodRepository {
	return &todRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *todRepository) GetTod(ctx context.Context, guildID, mob string) (*models.TimeOfDeath, error) {
	rec := new(models.TimeOfDeath)
	err := r.SelectOneWithTimeout(ctx, "get_tod", "tod", mob, func(ctx context.Context) error {
		return r.db.NewSelect().
			Model(rec).
			Where("guild_id = ?", guildID).
			Where("mob = ?", mob).
			Order("submitted_timestamp DESC", "id DESC").
			Limit(1).
			Scan(ctx)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *todRepository) StoreTod(ctx context.Context, rec *models.TimeOfDeath) (int64, error) {
	timeoutCtx, cancel := r.WithTimeout(ctx)
	defer cancel()

	if _, err := r.db.NewInsert().Model(rec).Exec(timeoutCtx); err != nil {
		return 0, r.HandleError("store_tod", "tod", err)
	}
	return rec.ID, nil
}
