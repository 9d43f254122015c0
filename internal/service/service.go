package service

import (
	"tradepilot/config"
	"tradepilot/internal/repository"
	"tradepilot/internal/scraper"
	"tradepilot/internal/strategy"
	"tradepilot/pkg/cache"
	"tradepilot/pkg/logger"

	goValidator "github.com/go-playground/validator/v10"
)

type Service struct {
	SchedulerService    SchedulerService
	TaskExecutor        TaskExecutor
	TelegramBotService  TelegramBotService
	UsageService        UsageService
	ValuationService    ValuationService
	ResearchService     MarketResearchService
	AnalysisService     AnalysisService
	DealService         DealService
	StatsService        StatsService
	SubscriptionService SubscriptionService
	UserService         UserService
}

// NewService wires the domain services. notifier may be nil when the admin
// bot is disabled.
func NewService(
	cfg *config.Config,
	log *logger.Logger,
	validator *goValidator.Validate,
	repo *repository.Repository,
	inmemoryCache cache.Cache,
	batchScraper scraper.BatchScraper,
	discoverer scraper.URLDiscoverer,
	notifier AdminNotifier,
) *Service {
	usageService := NewUsageService(cfg, log, repo.OrganizationRepo, repo.UsageRepo, inmemoryCache)
	valuationService := NewValuationService(log, repo.AIRepo, validator)
	researchService := NewMarketResearchService(log, repo.AIRepo, validator)
	analysisService := NewAnalysisService(cfg, log, validator, usageService, valuationService, researchService, batchScraper, discoverer, repo.AIRepo, repo.PreferenceRepo)
	dealService := NewDealService(log, validator, repo.UnitOfWork, repo.DealRepo, repo.VehicleRepo, repo.InsightRepo, repo.PreferenceRepo, repo.AIRepo, usageService, valuationService)
	userService := NewUserService(log, validator, repo.UnitOfWork, repo.UserRepo, repo.OrganizationRepo, repo.PreferenceRepo, notifier)

	executorStrategies := make(map[strategy.JobType]strategy.JobExecutionStrategy)
	executorStrategies[strategy.JobTypeDataCleanUp] = strategy.NewDataCleanUpStrategy(cfg, log, repo.UsageRepo, repo.JobRepo)
	executorStrategies[strategy.JobTypeDealListingRefresh] = strategy.NewDealListingRefreshStrategy(cfg, log, repo.DealRepo, batchScraper)

	taskExecutor := NewTaskExecutor(cfg, log, repo.JobRepo, executorStrategies)
	schedulerService := NewSchedulerService(cfg, log, repo.JobRepo, taskExecutor)

	return &Service{
		SchedulerService:    schedulerService,
		TaskExecutor:        taskExecutor,
		TelegramBotService:  NewTelegramBotService(log, userService),
		UsageService:        usageService,
		ValuationService:    valuationService,
		ResearchService:     researchService,
		AnalysisService:     analysisService,
		DealService:         dealService,
		StatsService:        NewStatsService(log, repo.DealRepo),
		SubscriptionService: NewSubscriptionService(log, validator, repo.OrganizationRepo, usageService),
		UserService:         userService,
	}
}
