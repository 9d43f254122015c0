package service

import (
	"context"
	"testing"
	"time"

	"tradepilot/internal/dto"
	"tradepilot/internal/model"
	"tradepilot/pkg/apperrors"
	"tradepilot/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriptionService_Upgrade(t *testing.T) {
	tests := []struct {
		name      string
		plan      string
		wantErr   error
		wantName  string
		wantPrice float64
		wantLimit int
	}{
		{name: "basic", plan: "BASIC", wantName: "Basic", wantPrice: 5, wantLimit: 10},
		{name: "business", plan: "BUSINESS", wantName: "Business Dealer", wantPrice: 30, wantLimit: -1},
		{name: "unknown plan", plan: "GOLD", wantErr: apperrors.ErrInvalidInput},
		{name: "lowercase plan", plan: "premium", wantErr: apperrors.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			usage, _, orgRepo, orgID := newTestUsageService(false, model.PlanFree, time.Now())
			svc := NewSubscriptionService(logger.NewNop(), validator.New(), orgRepo, usage)
			user := &model.User{OrganizationID: orgID}
			ctx := context.Background()

			// warm the plan cache so the upgrade has to invalidate it
			_, err := usage.GetPlan(ctx, orgID)
			require.NoError(t, err)

			resp, err := svc.Upgrade(ctx, user, dto.UpgradeRequest{Plan: tt.plan})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, model.PlanFree, orgRepo.orgs[orgID].Plan)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, resp.Name)
			assert.Equal(t, tt.wantPrice, resp.Price)
			assert.Equal(t, "Successfully upgraded to "+tt.wantName+" plan", resp.Message)

			sub, err := svc.Get(ctx, user)
			require.NoError(t, err)
			assert.Equal(t, model.Plan(tt.plan), sub.CurrentPlan)
			assert.Equal(t, tt.wantLimit, sub.Usage.DailyLimit)
			assert.Len(t, sub.Plans, 4)
		})
	}
}
