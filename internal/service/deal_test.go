package service

import (
	"context"
	"testing"
	"time"

	"tradepilot/config"
	"tradepilot/internal/dto"
	"tradepilot/internal/model"
	"tradepilot/pkg/apperrors"
	"tradepilot/pkg/cache"
	"tradepilot/pkg/logger"
	"tradepilot/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dealFixture struct {
	svc        DealService
	deals      *fakeDealRepo
	vehicles   *fakeVehicleRepo
	insights   *fakeInsightRepo
	prefs      *fakePreferenceRepo
	ai         *fakeAIRepo
	usageRepo  *fakeUsageRepo
	uow        *fakeUnitOfWork
	user       *model.User
	seededDeal *model.Deal
	now        time.Time
}

func newDealFixture(plan model.Plan) *dealFixture {
	now := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	cfg := &config.Config{}
	log := logger.NewNop()
	v := validator.New()

	orgID := uuid.New()
	user := &model.User{ID: uuid.New(), OrganizationID: orgID, Name: "Sam"}
	vehicle := &model.Vehicle{ID: uuid.New(), OrganizationID: orgID, Year: 2020, Make: "Toyota", Model: "Camry"}
	seeded := &model.Deal{
		ID:             uuid.New(),
		OrganizationID: orgID,
		VehicleID:      vehicle.ID,
		Status:         model.DealStatusSourced,
		AskPrice:       utils.ToPointer(32000.0),
		Vehicle:        vehicle,
	}

	usageRepo := newFakeUsageRepo()
	usage := NewUsageService(cfg, log, newFakeOrgRepo(&model.Organization{ID: orgID, Plan: plan}), usageRepo, cache.NewCache(time.Minute, time.Minute)).(*usageService)
	usage.now = fixedClock(now)

	ai := &fakeAIRepo{}
	valuation := NewValuationService(log, ai, v).(*valuationService)
	valuation.now = fixedClock(now)

	f := &dealFixture{
		deals:      newFakeDealRepo(seeded),
		vehicles:   &fakeVehicleRepo{},
		insights:   &fakeInsightRepo{},
		prefs:      newFakePreferenceRepo(),
		ai:         ai,
		usageRepo:  usageRepo,
		uow:        &fakeUnitOfWork{},
		user:       user,
		seededDeal: seeded,
		now:        now,
	}
	f.svc = NewDealService(log, v, f.uow, f.deals, f.vehicles, f.insights, f.prefs, ai, usage, valuation)
	return f
}

func TestDealService_Create(t *testing.T) {
	f := newDealFixture(model.PlanFree)

	deal, err := f.svc.Create(context.Background(), f.user, dto.CreateDealRequest{
		Vehicle:   dto.DealVehicleRequest{Year: 2019, Make: " Mazda ", Model: "CX-5", Transmission: utils.ToPointer("AUTOMATIC")},
		SourceURL: utils.ToPointer("https://www.carsales.com.au/cars/details/123"),
		AskPrice:  utils.ToPointer(27500.0),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, f.uow.runs)
	require.Len(t, f.vehicles.created, 1)
	assert.Equal(t, "Mazda", f.vehicles.created[0].Make)
	assert.Equal(t, f.vehicles.created[0].ID, deal.VehicleID)
	assert.Equal(t, model.DealStatusSourced, deal.Status)
	assert.Equal(t, f.user.ID, *deal.CreatedByID)
	require.NotNil(t, deal.SourceSite)
	assert.Contains(t, *deal.SourceSite, "carsales.com.au")
}

func TestDealService_Create_Invalid(t *testing.T) {
	f := newDealFixture(model.PlanFree)

	_, err := f.svc.Create(context.Background(), f.user, dto.CreateDealRequest{
		Vehicle: dto.DealVehicleRequest{Year: 2019, Make: "Mazda"},
	})
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Zero(t, f.uow.runs)
}

func TestDealService_Get_OtherOrganization(t *testing.T) {
	f := newDealFixture(model.PlanFree)
	outsider := &model.User{ID: uuid.New(), OrganizationID: uuid.New()}

	_, err := f.svc.Get(context.Background(), outsider, f.seededDeal.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDealService_List(t *testing.T) {
	f := newDealFixture(model.PlanFree)

	_, err := f.svc.List(context.Background(), f.user, dto.ListDealsRequest{Status: "LISTED", Recommendation: "STRONG_BUY", SortOrder: "asc"})
	require.NoError(t, err)
	assert.Equal(t, f.user.OrganizationID, f.deals.param.OrganizationID)
	assert.Equal(t, []model.DealStatus{model.DealStatusListed}, f.deals.param.Statuses)
	assert.Equal(t, model.RecommendationStrongBuy, *f.deals.param.Recommendation)
	assert.False(t, f.deals.param.SortDesc)

	_, err = f.svc.List(context.Background(), f.user, dto.ListDealsRequest{Status: "PARKED"})
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestDealService_Update(t *testing.T) {
	f := newDealFixture(model.PlanFree)

	deal, err := f.svc.Update(context.Background(), f.user, f.seededDeal.ID, dto.UpdateDealRequest{
		Status:          utils.ToPointer("ACQUIRED"),
		NegotiatedPrice: utils.ToPointer(30000.0),
	})
	require.NoError(t, err)
	assert.Equal(t, model.DealStatusAcquired, deal.Status)
	assert.NotNil(t, deal.AcquiredAt)
	assert.Equal(t, 30000.0, *deal.NegotiatedPrice)
	assert.Equal(t, 1, f.deals.updated)
}

func TestDealService_Valuate(t *testing.T) {
	f := newDealFixture(model.PlanFree)

	resp, err := f.svc.Valuate(context.Background(), f.user, f.seededDeal.ID)
	require.NoError(t, err)

	assert.Equal(t, dto.ValuationSourceHeuristic, resp.Valuation.Source)
	assert.Equal(t, 13478.0, *resp.Deal.EstimatedFairLow)
	assert.Equal(t, 16474.0, *resp.Deal.EstimatedFairHigh)
	assert.Equal(t, model.RecommendationSkip, *resp.Deal.AIRecommendation)
	assert.Equal(t, 1, f.deals.updated)

	require.Len(t, f.insights.created, 1)
	assert.Equal(t, model.InsightPricingExplanation, f.insights.created[0].Type)
	assert.Equal(t, heuristicModelID, f.insights.created[0].Model)
	assert.Equal(t, heuristicReasoning, f.insights.created[0].Content)

	require.NotNil(t, resp.Usage)
	assert.Equal(t, 1, resp.Usage.Used)
	assert.Equal(t, 1, f.usageRepo.count(f.user.OrganizationID, f.now))
}

func TestDealService_Valuate_QuotaExceeded(t *testing.T) {
	f := newDealFixture(model.PlanFree)
	f.usageRepo.set(f.user.OrganizationID, f.now, 3)

	_, err := f.svc.Valuate(context.Background(), f.user, f.seededDeal.ID)
	_, ok := IsQuotaExceeded(err)
	require.True(t, ok)
	assert.Zero(t, f.deals.updated)
	assert.Empty(t, f.insights.created)
}

func TestDealService_Summarize(t *testing.T) {
	tests := []struct {
		name        string
		aiSummary   string
		wantContent string
		wantModel   string
	}{
		{name: "ai summary", aiSummary: "Good buy for a metro dealer.", wantContent: "Good buy for a metro dealer.", wantModel: "test-model"},
		{name: "fallback summary", wantContent: summaryFallback, wantModel: heuristicModelID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDealFixture(model.PlanFree)
			f.ai.summary = tt.aiSummary

			insight, err := f.svc.Summarize(context.Background(), f.user, f.seededDeal.ID)
			require.NoError(t, err)
			assert.Equal(t, model.InsightDealSummary, insight.Type)
			assert.Equal(t, tt.wantContent, insight.Content)
			assert.Equal(t, tt.wantModel, insight.Model)
			assert.Equal(t, f.seededDeal.ID, insight.DealID)
		})
	}
}

func TestDealService_DraftMessage(t *testing.T) {
	f := newDealFixture(model.PlanFree)
	f.prefs.prefs[f.user.ID] = &model.AIPreference{UserID: f.user.ID, NegotiationTone: model.ToneFirm}

	insight, err := f.svc.DraftMessage(context.Background(), f.user, f.seededDeal.ID, dto.DealMessageRequest{
		MessageType: "inquiry",
		SellerName:  "Alex",
	})
	require.NoError(t, err)
	assert.Equal(t, "firm", f.ai.lastMessage.Tone)
	assert.Equal(t, model.InsightMessageTemplate, insight.Type)
	assert.Equal(t, FallbackMessage(f.seededDeal.Vehicle, "Alex"), insight.Content)

	_, err = f.svc.DraftMessage(context.Background(), f.user, f.seededDeal.ID, dto.DealMessageRequest{MessageType: "threat"})
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestFallbackMessage(t *testing.T) {
	tests := []struct {
		name    string
		vehicle *model.Vehicle
		seller  string
		want    string
	}{
		{
			name:    "named seller",
			vehicle: &model.Vehicle{Year: 2020, Make: "Toyota", Model: "Camry"},
			seller:  "Alex",
			want:    "Hi Alex,\n\nI'm interested in the 2020 Toyota Camry you have listed. Is it still available?\n\nThanks",
		},
		{
			name: "no vehicle",
			want: "Hi,\n\nI'm interested in the vehicle you have listed. Is it still available?\n\nThanks",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FallbackMessage(tt.vehicle, tt.seller))
		})
	}
}
