package dto

import (
	"time"

	"github.com/google/uuid"

	"tradepilot/internal/model"
)

type SignupRequest struct {
	Name             string `json:"name" validate:"required,max=255"`
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"required,min=8,max=72"`
	OrganizationName string `json:"organization_name" validate:"omitempty,max=255"`
}

type UserResponse struct {
	ID             uuid.UUID        `json:"id"`
	OrganizationID uuid.UUID        `json:"organization_id"`
	Name           string           `json:"name"`
	Email          string           `json:"email"`
	Role           model.UserRole   `json:"role"`
	Status         model.UserStatus `json:"status"`
	ApprovedAt     *time.Time       `json:"approved_at,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

func NewUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:             u.ID,
		OrganizationID: u.OrganizationID,
		Name:           u.Name,
		Email:          u.Email,
		Role:           u.Role,
		Status:         u.Status,
		ApprovedAt:     u.ApprovedAt,
		CreatedAt:      u.CreatedAt,
	}
}

type ListUsersRequest struct {
	Status string `query:"status" validate:"omitempty,oneof=PENDING APPROVED REJECTED"`
}

type UserDecisionRequest struct {
	Action string `json:"action" validate:"required,oneof=approve reject"`
}

type PreferenceRequest struct {
	TargetMarginPercent *float64 `json:"target_margin_percent,omitempty" validate:"omitempty,gte=0,lte=100"`
	MaxDaysInStock      *int     `json:"max_days_in_stock,omitempty" validate:"omitempty,gte=1,lte=365"`
	RiskTolerance       *string  `json:"risk_tolerance,omitempty" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	NegotiationTone     *string  `json:"negotiation_tone,omitempty" validate:"omitempty,oneof=POLITE FIRM URGENT CASUAL"`
}
