package repositories

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/urnby/campbot/urnby/database/models"
)

type CommandRepository interface {
	RecordCommand(ctx context.Context, rec *models.CommandRecord) (int64, error)
	UserCommands(ctx context.Context, guildID, userID string, offset, count int) ([]*models.CommandRecord, error)
	AllCommands(ctx context.Context, guildID string) ([]*models.CommandRecord, error)
}

type commandRepository struct {
	*BaseRepository
}

func NewCommandRepository(db *bun.DB) CommandRepository {
	return &commandRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *commandRepository) RecordCommand(ctx context.Context, rec *models.CommandRecord) (int64, error) {
	timeoutCtx, cancel := r.WithTimeout(ctx)
	defer cancel()

	if rec.Level == "" {
		rec.Level = models.CommandLevelInfo
	}
	if _, err := r.db.NewInsert().Model(rec).Exec(timeoutCtx); err != nil {
		return 0, r.HandleError("record_command", "commands", err)
	}
	return rec.ID, nil
}

// UserCommands pages through a user's audit rows, newest first.
func (r *commandRepository) UserCommands(ctx context.Context, guildID, userID string, offset, count int) ([]*models.CommandRecord, error) {
	var recs []*models.CommandRecord
	err := r.SelectWithTimeout(ctx, "user_commands", "commands", func(ctx context.Context) error {
		return r.db.NewSelect().
			Model(&recs).
			Where("guild_id = ?", guildID).
			Where("user_id = ?", userID).
			Order("id DESC").
			Offset(offset).
			Limit(count).
			Scan(ctx)
	})
	return recs, err
}

func (r *commandRepository) AllCommands(ctx context.Context, guildID string) ([]*models.CommandRecord, error) {
	var recs []*models.CommandRecord
	err := r.SelectWithTimeout(ctx, "all_commands", "commands", func(ctx context.Context) error {
		return r.db.NewSelect().
			Model(&recs).
			Where("guild_id = ?", guildID).
			Order("id ASC").
			Scan(ctx)
	})
	return recs, err
}
