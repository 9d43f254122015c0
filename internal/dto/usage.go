package dto

import (
	"tradepilot/internal/model"
)

// UsageCheck is the Usage Gate verdict. Remaining is -1 for unlimited plans.
type UsageCheck struct {
	Allowed      bool       `json:"allowed"`
	CurrentUsage int        `json:"current_usage"`
	Limit        int        `json:"limit"`
	Remaining    int        `json:"remaining"`
	Plan         model.Plan `json:"plan"`
}

type UsageSummary struct {
	Used        int        `json:"used"`
	Limit       int        `json:"limit"`
	Remaining   int        `json:"remaining"`
	IsUnlimited bool       `json:"is_unlimited"`
	Plan        model.Plan `json:"plan"`
}

type UsageStats struct {
	Today       int        `json:"today"`
	ThisWeek    int        `json:"this_week"`
	ThisMonth   int        `json:"this_month"`
	Plan        model.Plan `json:"plan"`
	DailyLimit  int        `json:"daily_limit"`
	Remaining   int        `json:"remaining"`
	IsUnlimited bool       `json:"is_unlimited"`
}

type PlanInfo struct {
	Plan       model.Plan `json:"plan"`
	Name       string     `json:"name"`
	Price      float64    `json:"price"`
	DailyLimit int        `json:"daily_limit"`
	Features   []string   `json:"features"`
}

type SubscriptionResponse struct {
	CurrentPlan model.Plan  `json:"current_plan"`
	Plans       []PlanInfo  `json:"plans"`
	Usage       *UsageStats `json:"usage"`
}

type UpgradeRequest struct {
	Plan string `json:"plan" validate:"required,oneof=FREE BASIC PREMIUM BUSINESS"`
}

type UpgradeResponse struct {
	Message string     `json:"message"`
	Plan    model.Plan `json:"plan"`
	Name    string     `json:"plan_name"`
	Price   float64    `json:"price"`
}

type UsageLimitBody struct {
	CurrentUsage   int        `json:"current_usage"`
	Limit          int        `json:"limit"`
	Plan           model.Plan `json:"plan"`
	PlanName       string     `json:"plan_name"`
	UpgradeMessage string     `json:"upgrade_message"`
}

var PlanCatalogue = []PlanInfo{
	{
		Plan:       model.PlanFree,
		Name:       "Free",
		Price:      0,
		DailyLimit: model.PlanFree.DailyLimit(),
		Features: []string{
			"3 market analyses per day",
			"Basic AI valuation",
			"Deal pipeline access",
			"Email support",
		},
	},
	{
		Plan:       model.PlanBasic,
		Name:       "Basic",
		Price:      5,
		DailyLimit: model.PlanBasic.DailyLimit(),
		Features: []string{
			"10 market analyses per day",
			"Advanced AI valuation",
			"Deal pipeline access",
			"Real-time web scraping",
			"Priority email support",
		},
	},
	{
		Plan:       model.PlanPremium,
		Name:       "Premium",
		Price:      10,
		DailyLimit: model.PlanPremium.DailyLimit(),
		Features: []string{
			"100 market analyses per day",
			"Advanced AI valuation",
			"Deal pipeline access",
			"Real-time web scraping",
			"Market insights & trends",
			"Priority support",
		},
	},
	{
		Plan:       model.PlanBusiness,
		Name:       "Business Dealer",
		Price:      30,
		DailyLimit: model.PlanBusiness.DailyLimit(),
		Features: []string{
			"Unlimited market analyses",
			"Advanced AI valuation",
			"Deal pipeline access",
			"Real-time web scraping",
			"Market insights & trends",
			"Dedicated account manager",
			"24/7 phone support",
			"Custom integrations",
		},
	},
}

// PlanDetails returns the catalogue entry for plan, defaulting to the free tier.
func PlanDetails(plan model.Plan) PlanInfo {
	plan = plan.Normalize()
	for _, p := range PlanCatalogue {
		if p.Plan == plan {
			return p
		}
	}
	return PlanCatalogue[0]
}
