package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/handler"
	"github.com/joho/godotenv"

	"github.com/urnby/campbot/urnby"
	"github.com/urnby/campbot/urnby/api"
	"github.com/urnby/campbot/urnby/channelstats"
	"github.com/urnby/campbot/urnby/commands"
	"github.com/urnby/campbot/urnby/commands/admin"
	"github.com/urnby/campbot/urnby/commands/camp"
	"github.com/urnby/campbot/urnby/commands/reports"
	"github.com/urnby/campbot/urnby/commands/reps"
	"github.com/urnby/campbot/urnby/commands/spawn"
	"github.com/urnby/campbot/urnby/commands/system"
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
	"github.com/urnby/campbot/urnby/permissions"
	"github.com/urnby/campbot/urnby/queue"
	"github.com/urnby/campbot/urnby/services"
	"github.com/urnby/campbot/urnby/shifts"
	"github.com/urnby/campbot/urnby/timeutil"
	"github.com/urnby/campbot/urnby/tod"
	"github.com/urnby/campbot/urnby/utils"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	shouldSyncCommands := flag.Bool("sync-commands", false, "Whether to sync commands to discord")
	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	cfg, err := urnby.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}
	slog.SetDefault(slog.New(logger.NewHandler(cfg.Log.Level, nil)))

	logger.LogSystem("Starting Urnby",
		slog.String("version", version),
		slog.String("commit", commit))

	loc, err := timeutil.LoadLocation(cfg.Bot.Timezone)
	if err != nil {
		slog.Error("Failed to load timezone", slog.String("timezone", cfg.Bot.Timezone), slog.Any("error", err))
		os.Exit(-1)
	}
	clock := timeutil.SystemClock(loc)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	dbStart := time.Now()
	db, err := database.New(ctx, cfg.DB)
	if err != nil {
		slog.Error("Failed to connect to database", slog.Any("error", err))
		os.Exit(-1)
	}
	defer db.Close()

	if err = db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize database schema", slog.Any("error", err))
		os.Exit(-1)
	}
	slog.Info("Database ready",
		slog.String("type", "db"),
		slog.String("driver", db.Driver()),
		slog.Duration("took", time.Since(dbStart)))

	b := urnby.New(*cfg, version, commit)
	b.StartedAt = time.Now()
	b.DB = db
	b.Clock = clock
	b.Location = loc

	shiftRepo := repositories.NewShiftRepository(db.BunDB())
	sessionRepo := repositories.NewSessionRepository(db.BunDB())
	b.CommandRepo = repositories.NewCommandRepository(db.BunDB())

	b.Configs = guildconfig.NewStore(cfg.Guilds.Path, cfg.Guilds.CacheTTL.Std(), clock)
	b.Shifts = shifts.NewService(shiftRepo, sessionRepo, b.Configs, clock, loc)
	b.Queue = queue.NewManager(repositories.NewQueueRepository(db.BunDB()), clock)
	b.Tod = tod.NewTracker(repositories.NewTodRepository(db.BunDB()), clock, loc)
	b.Confirms = confirm.NewManager(config.ConfirmTimeout)
	b.Peeper = peeper.NewTracker(clock)

	b.Discord = services.NewDiscord()
	b.Names = dashboard.NewNames(b.Discord, config.NameCacheSize, config.NameCacheExpiry, clock)
	b.Dashboard = dashboard.NewRenderer(b.Shifts, b.Queue, b.Tod, b.Configs, b.Configs, b.Discord, b.Names, clock,
		dashboard.Options{
			ExtraLines:  cfg.Dashboard.ExtraLines,
			MobileLines: cfg.Dashboard.MobileLines,
		})
	b.ChannelStats = channelstats.NewUpdater(b.Shifts, b.Tod, b.Configs, b.Configs, b.Discord, b.Names)

	var archive export.Archive
	if cfg.Export.Enabled() {
		svc, err := services.NewArchiveService(ctx, services.ArchiveConfig{
			Bucket:   cfg.Export.Bucket,
			Region:   cfg.Export.Region,
			Endpoint: cfg.Export.Endpoint,
			Key:      cfg.Export.Key,
			Secret:   cfg.Export.Secret,
			Prefix:   cfg.Export.Prefix,
		})
		if err != nil {
			slog.Error("Failed to initialize export archive", slog.Any("error", err))
		} else {
			archive = svc
		}
	}
	b.Exporter = export.NewExporter(shiftRepo, sessionRepo, b.CommandRepo, archive, clock)

	oracle := permissions.NewOracle(b.Configs, b.Discord)
	b.Middleware = handlers.NewMiddleware(b.CommandRepo, oracle, b.Discord.ChannelName)

	h := handler.New()
	registerHandlers(h, b)

	if err = b.SetupBot(h, bot.NewListenerFunc(b.OnReady)); err != nil {
		slog.Error("Failed to setup bot", slog.Any("error", err))
		os.Exit(-1)
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer closeCancel()
		b.Client.Close(closeCtx)
	}()

	if *shouldSyncCommands {
		logger.LogSystem("Syncing commands",
			slog.Int("count", len(commands.Commands)),
			slog.Any("guild_ids", cfg.Bot.DevGuilds))
		if err = handler.SyncCommands(b.Client, commands.Commands, cfg.Bot.DevGuilds); err != nil {
			slog.Error("Failed to sync commands", slog.Any("error", err))
		}
	}

	if err = b.Client.OpenGateway(ctx); err != nil {
		slog.Error("Failed to open gateway", slog.Any("error", err))
		os.Exit(-1)
	}

	bg := utils.NewBackgroundProcessManager(context.Background())
	bg.StartProcess("dashboard", func(ctx context.Context) {
		b.Dashboard.Run(ctx, cfg.Dashboard.RefreshInterval.Std())
	})
	bg.StartProcess("channel-stats", func(ctx context.Context) {
		b.ChannelStats.Run(ctx, cfg.ChannelStats.Interval.Std())
	})
	if cfg.API.Enabled {
		server := api.New(b.Dashboard, b.Queue, b.Configs, version, commit)
		bg.StartProcess("status-api", func(ctx context.Context) {
			if err := server.Run(ctx, cfg.API.Addr, config.ShutdownTimeout); err != nil {
				slog.Error("Status API stopped", slog.String("addr", cfg.API.Addr), slog.Any("error", err))
			}
		})
	}

	logger.LogSystem("Urnby is running", slog.Any("processes", bg.Names()))

	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM)
	<-s

	logger.LogSystem("Shutting down")
	if err := bg.Shutdown(config.ShutdownTimeout); err != nil {
		slog.Error("Background processes did not stop cleanly", slog.Any("error", err))
	}
}

func registerHandlers(h *handler.Mux, b *urnby.Bot) {
	mw := b.Middleware
	member := permissions.MemberCommand
	adminOnly := permissions.AdminCommand

	// camp
	h.Command("/clockin", mw.Command("clockin", member, camp.ClockInHandler(b)))
	h.Command("/clockout", mw.Command("clockout", member, camp.ClockOutHandler(b)))
	h.Command("/sessionstart", mw.Command("sessionstart", member, camp.SessionStartHandler(b)))
	h.Command("/sessionend", mw.Command("sessionend", member, camp.SessionEndHandler(b)))
	h.Command("/getsession", mw.Command("getsession", member, camp.GetSessionHandler(b)))
	h.Command("/getactive", mw.Command("getactive", member, camp.GetActiveHandler(b)))
	h.Command("/urn", mw.Command("urn", member, camp.UrnHandler(b)))
	h.Component("/confirm/{kind}/{answer}/{token}", mw.Component("confirm", camp.ConfirmComponentHandler(b)))

	// replacement queue
	h.Command("/rep", mw.Command("rep", member, reps.RepHandler(b)))
	h.Command("/unrep", mw.Command("unrep", member, reps.UnrepHandler(b)))
	h.Command("/getreps", mw.Command("getreps", member, reps.GetRepsHandler(b)))

	// reports
	h.Command("/list", mw.Command("list", member, reports.ListHandler(b)))
	h.Command("/getusersessions", mw.Command("getusersessions", member, reports.GetUserSessionsHandler(b)))
	h.Command("/Get User Sessions", mw.Command("Get User Sessions", member, reports.GetUserSessionsUserHandler(b)))
	h.Command("/getuserseconds", mw.Command("getuserseconds", member, reports.GetUserSecondsHandler(b)))
	h.Command("/Get User Time", mw.Command("Get User Time", member, reports.GetUserTimeHandler(b)))
	h.Command("/sessionhistory", mw.Command("sessionhistory", member, reports.SessionHistoryHandler(b)))
	h.Autocomplete("/sessionhistory", reports.SessionHistoryAutocomplete(b))
	h.Command("/getcommands", mw.Command("getcommands", adminOnly, reports.GetCommandsHandler(b)))
	h.Command("/Get User Commands", mw.Command("Get User Commands", adminOnly, reports.GetUserCommandsHandler(b)))
	h.Command("/getdata", mw.WithTimeout(config.ExportTimeout).Command("getdata", adminOnly, reports.GetDataHandler(b)))

	// spawn tracking
	h.Command("/tod", mw.Command("tod", member, spawn.TodHandler(b)))
	h.Command("/gettod", mw.Command("gettod", member, spawn.GetTodHandler(b)))
	h.Command("/ipeeped", mw.Command("ipeeped", member, spawn.IPeepedHandler(b)))
	h.Command("/whopeeped", mw.Command("whopeeped", member, spawn.WhoPeepedHandler(b)))
	h.Command("/dashboardrefresh", mw.Command("dashboardrefresh", member, spawn.DashboardRefreshHandler(b)))
	h.Command("/dashboardtimeleft", mw.Command("dashboardtimeleft", member, spawn.DashboardTimeLeftHandler(b)))

	// administration
	h.Command("/admin_rep", mw.Command("admin_rep", adminOnly, admin.AdminRepHandler(b)))
	h.Command("/admin_unrep", mw.Command("admin_unrep", adminOnly, admin.AdminUnrepHandler(b)))
	h.Command("/admin_clearreps", mw.Command("admin_clearreps", adminOnly, admin.AdminClearRepsHandler(b)))
	h.Command("/admindirecturn", mw.Command("admindirecturn", adminOnly, admin.AdminDirectUrnHandler(b)))
	h.Command("/adminchangehistory", mw.Command("adminchangehistory", adminOnly, admin.AdminChangeHistoryHandler(b)))
	h.Command("/admindirectrecord", mw.Command("admindirectrecord", adminOnly, admin.AdminDirectRecordHandler(b)))
	h.Command("/configadd", mw.Command("configadd", adminOnly, admin.ConfigAddHandler(b)))
	h.Command("/configaddbonushours", mw.Command("configaddbonushours", adminOnly, admin.ConfigAddBonusHoursHandler(b)))
	h.Command("/configclearitem", mw.Command("configclearitem", adminOnly, admin.ConfigClearItemHandler(b)))
	h.Command("/getconfig", mw.Command("getconfig", adminOnly, admin.GetConfigHandler(b)))

	// system
	h.Command("/version", mw.Command("version", nil, system.VersionHandler(b)))
	h.Command("/Get User ID", mw.Command("Get User ID", nil, system.GetUserIDHandler(b)))
}
