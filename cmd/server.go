package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	delivery "tradepilot/internal/delivery/http"
	"tradepilot/internal/delivery/telegram"
	"tradepilot/internal/repository"
	"tradepilot/internal/service"
	"tradepilot/pkg/logger"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the API server, scheduler and admin bot",
	Run:   Start,
}

func Start(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appDep, err := NewAppDependency(ctx)
	if err != nil {
		log.Fatalf("Failed to create app dependency: %v", err)
	}

	repo := repository.NewRepository(appDep.cfg, appDep.db.DB, appDep.llmClient, appDep.log)

	// A nil *TelegramRateLimiter must not reach the interface.
	var notifier service.AdminNotifier
	if appDep.telegram != nil {
		notifier = appDep.telegram
	}

	services := service.NewService(
		appDep.cfg,
		appDep.log,
		appDep.validator,
		repo,
		appDep.cache,
		appDep.batchScraper,
		appDep.discovery,
		notifier,
	)
	httpHandler := delivery.NewHttpAPIHandler(ctx, appDep.cfg, appDep.log, appDep.echo, appDep.validator, services)

	var telegramHandler *telegram.TelegramBotHandler
	if appDep.telegramBot != nil {
		telegramHandler = telegram.NewTelegramBotHandler(
			ctx,
			appDep.cfg,
			appDep.log,
			appDep.telegramBot,
			appDep.telegram,
			appDep.echo,
			services,
		)
		telegramHandler.Start()
		appDep.telegram.StartCleanupExpired(ctx)
	}

	scheduler := newCronRunner(ctx, appDep, services.SchedulerService)
	if scheduler != nil {
		scheduler.Start()
	}

	apiServer := NewHTTPServer(ctx, appDep, httpHandler)
	go func() {
		if err := apiServer.Start(); err != nil {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	<-ctx.Done()
	appDep.log.Info("Shutting down gracefully...")

	if scheduler != nil {
		<-scheduler.Stop().Done()
	}
	services.SchedulerService.Wait()

	if telegramHandler != nil {
		telegramHandler.Stop()
	}

	if err := apiServer.Stop(); err != nil {
		appDep.log.Error("Failed to stop HTTP server", logger.ErrorField(err))
	}

	if err := appDep.Close(); err != nil {
		log.Fatalf("Failed to close app dependency: %v", err)
	}
}

// newCronRunner ticks the job scheduler in-process. Due schedules are
// picked from the database on every tick so a tick only triggers them.
func newCronRunner(ctx context.Context, appDep *AppDependency, scheduler service.SchedulerService) *cron.Cron {
	if !appDep.cfg.Scheduler.Enabled {
		appDep.log.Info("Scheduler is disabled")
		return nil
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := c.AddFunc(appDep.cfg.Scheduler.CronExpression, func() {
		if err := scheduler.Execute(ctx); err != nil {
			appDep.log.ErrorContext(ctx, "Scheduler tick failed", logger.ErrorField(err))
		}
	})
	if err != nil {
		appDep.log.Error("Invalid scheduler cron expression",
			logger.ErrorField(err),
			logger.StringField("cron_expression", appDep.cfg.Scheduler.CronExpression),
		)
		return nil
	}
	return c
}
