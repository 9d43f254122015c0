package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"tradepilot/internal/dto"
	"tradepilot/internal/model"
	"tradepilot/internal/repository"
	"tradepilot/pkg/apperrors"
	"tradepilot/pkg/logger"
	"tradepilot/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	summaryFallback  = "AI summary unavailable. Please check vehicle details and pricing manually."
	heuristicModelID = "heuristic"
)

type DealService interface {
	List(ctx context.Context, user *model.User, req dto.ListDealsRequest) ([]model.Deal, error)
	Create(ctx context.Context, user *model.User, req dto.CreateDealRequest) (*model.Deal, error)
	Get(ctx context.Context, user *model.User, id uuid.UUID) (*model.Deal, error)
	Update(ctx context.Context, user *model.User, id uuid.UUID, req dto.UpdateDealRequest) (*model.Deal, error)
	Delete(ctx context.Context, user *model.User, id uuid.UUID) error
	Valuate(ctx context.Context, user *model.User, id uuid.UUID) (*dto.DealValuationResponse, error)
	Summarize(ctx context.Context, user *model.User, id uuid.UUID) (*model.AIInsight, error)
	DraftMessage(ctx context.Context, user *model.User, id uuid.UUID, req dto.DealMessageRequest) (*model.AIInsight, error)
}

type dealService struct {
	log            *logger.Logger
	validator      *validator.Validate
	uow            repository.UnitOfWork
	dealRepo       repository.DealRepository
	vehicleRepo    repository.VehicleRepository
	insightRepo    repository.AIInsightRepository
	preferenceRepo repository.AIPreferenceRepository
	aiRepo         repository.AIRepository
	usage          UsageService
	valuation      ValuationService
}

func NewDealService(
	log *logger.Logger,
	v *validator.Validate,
	uow repository.UnitOfWork,
	dealRepo repository.DealRepository,
	vehicleRepo repository.VehicleRepository,
	insightRepo repository.AIInsightRepository,
	preferenceRepo repository.AIPreferenceRepository,
	aiRepo repository.AIRepository,
	usage UsageService,
	valuation ValuationService,
) DealService {
	return &dealService{
		log:            log,
		validator:      v,
		uow:            uow,
		dealRepo:       dealRepo,
		vehicleRepo:    vehicleRepo,
		insightRepo:    insightRepo,
		preferenceRepo: preferenceRepo,
		aiRepo:         aiRepo,
		usage:          usage,
		valuation:      valuation,
	}
}

func (s *dealService) List(ctx context.Context, user *model.User, req dto.ListDealsRequest) ([]model.Deal, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}

	param := model.GetDealParam{
		OrganizationID: user.OrganizationID,
		SortBy:         req.SortBy,
		SortDesc:       req.SortOrder != "asc",
	}
	if req.Status != "" {
		param.Statuses = []model.DealStatus{model.DealStatus(req.Status)}
	}
	if req.Recommendation != "" {
		param.Recommendation = utils.ToPointer(model.Recommendation(req.Recommendation))
	}

	deals, err := s.dealRepo.Get(ctx, param)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to list deals", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to list deals: %w", err)
	}
	return deals, nil
}

// Create stores the vehicle and its SOURCED deal in one transaction.
func (s *dealService) Create(ctx context.Context, user *model.User, req dto.CreateDealRequest) (*model.Deal, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}

	vehicle := &model.Vehicle{
		OrganizationID: user.OrganizationID,
		Year:           req.Vehicle.Year,
		Make:           strings.TrimSpace(req.Vehicle.Make),
		Model:          strings.TrimSpace(req.Vehicle.Model),
		Variant:        req.Vehicle.Variant,
		Odometer:       req.Vehicle.Odometer,
		Colour:         req.Vehicle.Colour,
	}
	if req.Vehicle.Transmission != nil {
		vehicle.Transmission = utils.ToPointer(model.Transmission(*req.Vehicle.Transmission))
	}
	if req.Vehicle.FuelType != nil {
		vehicle.FuelType = utils.ToPointer(model.FuelType(*req.Vehicle.FuelType))
	}
	if req.Vehicle.BodyType != nil {
		vehicle.BodyType = utils.ToPointer(model.BodyType(*req.Vehicle.BodyType))
	}

	deal := &model.Deal{
		OrganizationID: user.OrganizationID,
		CreatedByID:    utils.ToPointer(user.ID),
		SourceURL:      req.SourceURL,
		SourceSite:     req.SourceSite,
		Status:         model.DealStatusSourced,
		AskPrice:       req.AskPrice,
		Notes:          req.Notes,
	}
	if deal.SourceSite == nil && deal.SourceURL != nil {
		deal.SourceSite = utils.ToPointer(utils.Hostname(*deal.SourceURL))
	}

	err := s.uow.Run(ctx, func(opts ...utils.DBOption) error {
		if err := s.vehicleRepo.Create(ctx, vehicle, opts...); err != nil {
			return fmt.Errorf("failed to create vehicle: %w", err)
		}
		deal.VehicleID = vehicle.ID
		if err := s.dealRepo.Create(ctx, deal, opts...); err != nil {
			return fmt.Errorf("failed to create deal: %w", err)
		}
		return nil
	})
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to create deal", logger.ErrorField(err))
		return nil, err
	}

	deal.Vehicle = vehicle
	s.log.InfoContext(ctx, "Deal created",
		logger.StringField("deal_id", deal.ID.String()),
		logger.StringField("vehicle", vehicle.DisplayName()),
	)
	return deal, nil
}

func (s *dealService) Get(ctx context.Context, user *model.User, id uuid.UUID) (*model.Deal, error) {
	deal, err := s.dealRepo.GetByID(ctx, user.OrganizationID, id)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to get deal", logger.ErrorField(err), logger.StringField("deal_id", id.String()))
		return nil, fmt.Errorf("failed to get deal: %w", err)
	}
	if deal == nil {
		return nil, fmt.Errorf("%w: deal not found", apperrors.ErrNotFound)
	}
	return deal, nil
}

func (s *dealService) Update(ctx context.Context, user *model.User, id uuid.UUID, req dto.UpdateDealRequest) (*model.Deal, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}

	deal, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}

	if req.Status != nil {
		deal.Status = model.DealStatus(*req.Status)
		deal.StampStatus(utils.TimeNowUTC())
	}
	if req.AskPrice != nil {
		deal.AskPrice = req.AskPrice
	}
	if req.NegotiatedPrice != nil {
		deal.NegotiatedPrice = req.NegotiatedPrice
	}
	if req.ActualPurchasePrice != nil {
		deal.ActualPurchasePrice = req.ActualPurchasePrice
	}
	if req.ActualSellPrice != nil {
		deal.ActualSellPrice = req.ActualSellPrice
	}
	if req.ReconditioningCost != nil {
		deal.ReconditioningCost = req.ReconditioningCost
	}
	if req.OtherCosts != nil {
		deal.OtherCosts = req.OtherCosts
	}
	if req.Notes != nil {
		deal.Notes = req.Notes
	}

	if err := s.dealRepo.Update(ctx, deal); err != nil {
		s.log.ErrorContext(ctx, "Failed to update deal", logger.ErrorField(err), logger.StringField("deal_id", id.String()))
		return nil, fmt.Errorf("failed to update deal: %w", err)
	}
	return deal, nil
}

func (s *dealService) Delete(ctx context.Context, user *model.User, id uuid.UUID) error {
	if _, err := s.Get(ctx, user, id); err != nil {
		return err
	}
	if err := s.dealRepo.Delete(ctx, user.OrganizationID, id); err != nil {
		s.log.ErrorContext(ctx, "Failed to delete deal", logger.ErrorField(err), logger.StringField("deal_id", id.String()))
		return fmt.Errorf("failed to delete deal: %w", err)
	}
	return nil
}

// Valuate runs the Valuation Engine over the stored vehicle, behind the
// usage gate, and writes the estimate back onto the deal.
func (s *dealService) Valuate(ctx context.Context, user *model.User, id uuid.UUID) (resp *dto.DealValuationResponse, err error) {
	deal, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if deal.Vehicle == nil {
		return nil, fmt.Errorf("%w: deal has no vehicle", apperrors.ErrNotFound)
	}

	reservation, err := s.usage.Reserve(ctx, user.OrganizationID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			s.usage.Release(ctx, reservation)
		}
	}()

	input := dto.ValuationInput{
		Vehicle:  vehicleInfo(deal.Vehicle),
		AskPrice: deal.AskPrice,
	}
	if pref, prefErr := s.preferenceRepo.GetByUserID(ctx, user.ID); prefErr == nil && pref != nil {
		input.TargetMarginPercent = utils.ToPointer(pref.TargetMarginPercent)
	}

	result := s.valuation.Valuate(ctx, input)

	deal.EstimatedFairLow = utils.ToPointer(result.FairValueLow)
	deal.EstimatedFairHigh = utils.ToPointer(result.FairValueHigh)
	deal.TargetSellPrice = utils.ToPointer(result.TargetSellPrice)
	deal.EstimatedMargin = utils.ToPointer(result.EstimatedMargin)
	deal.EstimatedDaysToSell = utils.ToPointer(result.EstimatedDaysToSell)
	deal.RiskScore = utils.ToPointer(result.RiskScore)
	deal.AIRecommendation = utils.ToPointer(result.Recommendation)

	metadata, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal valuation: %w", err)
	}
	insight := &model.AIInsight{
		DealID:   deal.ID,
		Type:     model.InsightPricingExplanation,
		Content:  result.Reasoning,
		Metadata: datatypes.JSON(metadata),
		Model:    s.insightModel(result.Source == dto.ValuationSourceAI),
	}

	err = s.uow.Run(ctx, func(opts ...utils.DBOption) error {
		if err := s.dealRepo.Update(ctx, deal, opts...); err != nil {
			return fmt.Errorf("failed to update deal: %w", err)
		}
		if err := s.insightRepo.Create(ctx, insight, opts...); err != nil {
			return fmt.Errorf("failed to create insight: %w", err)
		}
		return nil
	})
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to store deal valuation", logger.ErrorField(err), logger.StringField("deal_id", id.String()))
		return nil, err
	}

	if err := s.usage.Commit(ctx, reservation); err != nil {
		s.log.ErrorContext(ctx, "Valuation stored but usage was not recorded", logger.ErrorField(err))
	}
	resp = &dto.DealValuationResponse{Deal: deal, Valuation: result}
	if usage, err := s.usage.Summary(ctx, user.OrganizationID); err == nil {
		resp.Usage = &usage
	}
	return resp, nil
}

func (s *dealService) Summarize(ctx context.Context, user *model.User, id uuid.UUID) (*model.AIInsight, error) {
	deal, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}

	content, err := s.aiRepo.SummarizeDeal(ctx, dto.DealSummaryInput{
		Vehicle:         deal.Vehicle,
		AskPrice:        deal.AskPrice,
		FairValueLow:    deal.EstimatedFairLow,
		FairValueHigh:   deal.EstimatedFairHigh,
		EstimatedMargin: deal.EstimatedMargin,
		RiskScore:       deal.RiskScore,
	})
	fromAI := err == nil && content != ""
	if !fromAI {
		s.log.WarnContext(ctx, "AI deal summary unavailable", logger.ErrorField(err), logger.StringField("deal_id", id.String()))
		content = summaryFallback
	}

	return s.storeInsight(ctx, deal, model.InsightDealSummary, content, fromAI)
}

func (s *dealService) DraftMessage(ctx context.Context, user *model.User, id uuid.UUID, req dto.DealMessageRequest) (*model.AIInsight, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}

	deal, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}

	tone := req.Tone
	if tone == "" {
		if pref, prefErr := s.preferenceRepo.GetByUserID(ctx, user.ID); prefErr == nil && pref != nil {
			tone = strings.ToLower(string(pref.NegotiationTone))
		}
	}

	content, err := s.aiRepo.DraftMessage(ctx, dto.MessageTemplateInput{
		Vehicle:          deal.Vehicle,
		AskPrice:         deal.AskPrice,
		RecommendedOffer: req.RecommendedOffer,
		MessageType:      req.MessageType,
		Tone:             tone,
		SellerName:       req.SellerName,
	})
	fromAI := err == nil && content != ""
	if !fromAI {
		s.log.WarnContext(ctx, "AI message template unavailable", logger.ErrorField(err), logger.StringField("deal_id", id.String()))
		content = FallbackMessage(deal.Vehicle, req.SellerName)
	}

	return s.storeInsight(ctx, deal, model.InsightMessageTemplate, content, fromAI)
}

func (s *dealService) storeInsight(ctx context.Context, deal *model.Deal, insightType model.InsightType, content string, fromAI bool) (*model.AIInsight, error) {
	insight := &model.AIInsight{
		DealID:  deal.ID,
		Type:    insightType,
		Content: content,
		Model:   s.insightModel(fromAI),
	}
	if err := s.insightRepo.Create(ctx, insight); err != nil {
		s.log.ErrorContext(ctx, "Failed to store insight", logger.ErrorField(err), logger.StringField("type", string(insightType)))
		return nil, fmt.Errorf("failed to create insight: %w", err)
	}
	return insight, nil
}

func (s *dealService) insightModel(fromAI bool) string {
	if fromAI {
		return s.aiRepo.Model()
	}
	return heuristicModelID
}

// FallbackMessage is the plain inquiry used when no model is available.
func FallbackMessage(v *model.Vehicle, sellerName string) string {
	greeting := "Hi"
	if sellerName != "" {
		greeting += " " + sellerName
	}
	vehicle := "vehicle"
	if v != nil {
		vehicle = fmt.Sprintf("%d %s %s", v.Year, v.Make, v.Model)
	}
	return fmt.Sprintf("%s,\n\nI'm interested in the %s you have listed. Is it still available?\n\nThanks", greeting, vehicle)
}

func vehicleInfo(v *model.Vehicle) dto.VehicleInfo {
	info := dto.VehicleInfo{
		Year:     v.Year,
		Make:     v.Make,
		Model:    v.Model,
		Variant:  utils.Deref(v.Variant),
		Odometer: v.Odometer,
		Colour:   utils.Deref(v.Colour),
	}
	if v.Transmission != nil {
		info.Transmission = string(*v.Transmission)
	}
	if v.FuelType != nil {
		info.FuelType = string(*v.FuelType)
	}
	if v.BodyType != nil {
		info.BodyType = string(*v.BodyType)
	}
	return info
}
