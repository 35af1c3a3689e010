package urnby

import (
	"context"
	"log/slog"
	"time"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/cache"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/paginator"

	"github.com/urnby/campbot/urnby/channelstats"
	"github.com/urnby/campbot/urnby/config"
	"github.com/urnby/campbot/urnby/confirm"
	"github.com/urnby/campbot/urnby/dashboard"
	"github.com/urnby/campbot/urnby/database"
	"github.com/urnby/campbot/urnby/database/repositories"
	"github.com/urnby/campbot/urnby/export"
	"github.com/urnby/campbot/urnby/guildconfig"
	"github.com/urnby/campbot/urnby/handlers"
	"github.com/urnby/campbot/urnby/logger"
	"github.com/urnby/campbot/urnby/peeper"
	"github.com/urnby/campbot/urnby/queue"
	"github.com/urnby/campbot/urnby/services"
	"github.com/urnby/campbot/urnby/shifts"
	"github.com/urnby/campbot/urnby/timeutil"
	"github.com/urnby/campbot/urnby/tod"
)

func New(cfg Config, version string, commit string) *Bot {
	return &Bot{
		Cfg:       cfg,
		Paginator: paginator.New(),
		Version:   version,
		Commit:    commit,
	}
}

type Bot struct {
	Cfg       Config
	Client    bot.Client
	Paginator *paginator.Manager
	Version   string
	Commit    string
	StartedAt time.Time

	DB       *database.DB
	Clock    timeutil.Clock
	Location *time.Location

	Configs      *guildconfig.Store
	CommandRepo  repositories.CommandRepository
	Shifts       *shifts.Service
	Queue        *queue.Manager
	Tod          *tod.Tracker
	Confirms     *confirm.Manager
	Peeper       *peeper.Tracker
	Names        *dashboard.Names
	Dashboard    *dashboard.Renderer
	ChannelStats *channelstats.Updater
	Exporter     *export.Exporter
	Discord      *services.Discord
	Middleware   *handlers.Middleware
}

func (b *Bot) SetupBot(listeners ...bot.EventListener) error {
	client, err := disgo.New(b.Cfg.Bot.Token,
		bot.WithGatewayConfigOpts(gateway.WithIntents(
			gateway.IntentGuilds,
			gateway.IntentGuildMembers,
			gateway.IntentGuildMessages,
		)),
		bot.WithCacheConfigOpts(cache.WithCaches(
			cache.FlagGuilds,
			cache.FlagRoles,
			cache.FlagChannels,
			cache.FlagMembers,
		)),
		bot.WithEventListeners(b.Paginator),
		bot.WithEventListeners(listeners...),
	)
	if err != nil {
		return err
	}

	b.Client = client
	if b.Discord != nil {
		b.Discord.SetClient(client)
	}
	return nil
}

// OnReady sets the presence and clears stale dashboard messages left by a
// previous run.
func (b *Bot) OnReady(_ *events.Ready) {
	logger.LogSystem("Urnby is now ready",
		slog.String("version", b.Version),
		slog.String("commit", b.Commit))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := b.Client.SetPresence(ctx,
		gateway.WithWatchingActivity("the camp"),
		gateway.WithOnlineStatus(discord.OnlineStatusOnline)); err != nil {
		slog.Error("Failed to set presence", slog.Any("error", err))
	}

	if b.Dashboard == nil || b.Configs == nil {
		return
	}
	guilds, err := b.Configs.Guilds()
	if err != nil {
		slog.Error("Failed to list configured guilds", slog.Any("error", err))
		return
	}
	go func() {
		purgeCtx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()
		for _, g := range guilds {
			b.Dashboard.Purge(purgeCtx, g)
		}
	}()
}
