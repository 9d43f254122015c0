package repository

import (
	"tradepilot/config"
	"tradepilot/pkg/llm"
	"tradepilot/pkg/logger"

	"gorm.io/gorm"
)

type Repository struct {
	JobRepo          JobRepository
	OrganizationRepo OrganizationRepository
	UserRepo         UserRepository
	UsageRepo        UsageRepository
	VehicleRepo      VehicleRepository
	DealRepo         DealRepository
	InsightRepo      AIInsightRepository
	PreferenceRepo   AIPreferenceRepository
	AIRepo           AIRepository
	UnitOfWork       UnitOfWork
}

// NewRepository wires the gorm repositories and the model-backed AI
// repository. llmClient may be nil, in which case every AI call fails with
// llm.ErrNotConfigured and callers fall back to heuristics.
func NewRepository(cfg *config.Config, db *gorm.DB, llmClient llm.Client, log *logger.Logger) *Repository {
	return &Repository{
		JobRepo:          NewJobRepository(db),
		OrganizationRepo: NewOrganizationRepository(db),
		UserRepo:         NewUserRepository(db),
		UsageRepo:        NewUsageRepository(db),
		VehicleRepo:      NewVehicleRepository(db),
		DealRepo:         NewDealRepository(db),
		InsightRepo:      NewAIInsightRepository(db),
		PreferenceRepo:   NewAIPreferenceRepository(db),
		AIRepo:           NewAIRepository(llmClient, log),
		UnitOfWork:       NewUnitOfWork(db),
	}
}
