package cmd

import (
	"context"
	"errors"
	"time"

	"tradepilot/config"
	"tradepilot/internal/scraper"
	"tradepilot/pkg/cache"
	"tradepilot/pkg/llm"
	"tradepilot/pkg/logger"
	"tradepilot/pkg/postgres"
	"tradepilot/pkg/telegram"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap/zapcore"
	"gopkg.in/telebot.v3"
)

type AppDependency struct {
	db           *postgres.DB
	cfg          *config.Config
	log          *logger.Logger
	validator    *goValidator.Validate
	echo         *echo.Echo
	cache        cache.Cache
	llmClient    llm.Client
	batchScraper *scraper.Orchestrator
	discovery    *scraper.Discovery
	telegram     *telegram.TelegramRateLimiter
	telegramBot  *telebot.Bot
}

func NewAppDependency(ctx context.Context) (*AppDependency, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		return nil, err
	}

	db, err := postgres.NewDB(cfg.DB, log)
	if err != nil {
		log.Error("Failed to connect to database", logger.ErrorField(err))
		return nil, err
	}

	appDep := &AppDependency{
		cfg:       cfg,
		db:        db,
		validator: goValidator.New(),
		echo:      echo.New(),
		cache:     cache.NewCache(cfg.Cache.DefaultExpiration, cfg.Cache.CleanupInterval),
	}

	if cfg.Telegram.Enabled {
		pref := telebot.Settings{
			Token: cfg.Telegram.BotToken,
			OnError: func(err error, c telebot.Context) {
				log.Error("Telegram bot error", logger.ErrorField(err))
			},
		}
		if cfg.Telegram.WebhookURL == "" {
			pref.Poller = &telebot.LongPoller{Timeout: 10 * time.Second}
		}
		bot, err := telebot.NewBot(pref)
		if err != nil {
			log.Error("Failed to create telegram bot", logger.ErrorField(err))
			_ = db.Close()
			return nil, err
		}
		appDep.telegramBot = bot
		appDep.telegram = telegram.NewTelegramRateLimiter(&cfg.Telegram, log, bot)
		log = log.WithAlerts(appDep.telegram, zapcore.WarnLevel)
	}
	appDep.log = log

	if err := appDep.initScraper(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return appDep, nil
}

// initScraper builds the model client and the scraping stack. A missing
// model API key is not fatal since every AI step has a heuristic fallback.
func (d *AppDependency) initScraper(ctx context.Context) error {
	llmClient, err := llm.NewClient(ctx, d.cfg.LLM, d.log)
	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		d.log.Warn("LLM API key is not set, AI features will use heuristic fallbacks")
	case err != nil:
		d.log.Error("Failed to create LLM client", logger.ErrorField(err))
		return err
	default:
		d.llmClient = llmClient
	}

	fetcher, err := scraper.NewFetcher(d.cfg, d.log)
	if err != nil {
		d.log.Error("Failed to create fetcher", logger.ErrorField(err))
		return err
	}
	d.batchScraper = scraper.NewOrchestrator(fetcher, scraper.NewExtractor(d.cfg.Scraper), d.cfg.Scraper, d.log)
	d.discovery = scraper.NewDiscovery(d.cfg.Discovery, d.cfg.Scraper, d.cache, d.cfg.Cache.DiscoveryExpiration, d.log)
	return nil
}

func (d *AppDependency) Close() error {
	d.log.Info("Closing app dependency")
	if d.telegram != nil {
		d.telegram.StopCleanupExpired()
	}
	if err := d.log.Sync(); err != nil {
		d.log.Debug("Failed to sync logger", logger.ErrorField(err))
	}
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}
