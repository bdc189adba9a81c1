package dto

import (
	"github.com/SscSPs/billing_dashboard/internal/core/domain"
	"github.com/SscSPs/billing_dashboard/internal/utils"
	"github.com/shopspring/decimal"
)

// PlanResponse defines the data returned for a billing plan.
type PlanResponse struct {
	Name           domain.PlanName `json:"name"`
	MonthlyPrice   decimal.Decimal `json:"monthlyPrice"`
	FormattedPrice string          `json:"formattedPrice"`
	Description    string          `json:"description"`
	Current        bool            `json:"current"`
}

// ListPlansResponse wraps the plan catalogue.
type ListPlansResponse struct {
	Plans       []PlanResponse  `json:"plans"`
	CurrentPlan domain.PlanName `json:"currentPlan"`
}

// SelectPlanRequest switches the caller to another plan. Payment is required
// for paid plans only.
type SelectPlanRequest struct {
	Plan    domain.PlanName        `json:"plan" binding:"required,plan"`
	Payment *domain.PaymentDetails `json:"payment"`
}

// SelectPlanResponse reports the outcome of a plan switch.
type SelectPlanResponse struct {
	Plan    PlanResponse `json:"plan"`
	Message string       `json:"message"`
}

// ToPlanResponse converts a domain.Plan to PlanResponse DTO
func ToPlanResponse(p domain.Plan, current domain.PlanName) PlanResponse {
	return PlanResponse{
		Name:           p.Name,
		MonthlyPrice:   p.MonthlyPrice,
		FormattedPrice: utils.FormatAmount(p.MonthlyPrice),
		Description:    p.Description,
		Current:        p.Name == current,
	}
}

// ToListPlansResponse renders the catalogue with the caller's plan flagged.
func ToListPlansResponse(plans []domain.Plan, current domain.PlanName) ListPlansResponse {
	out := make([]PlanResponse, len(plans))
	for i, p := range plans {
		out[i] = ToPlanResponse(p, current)
	}
	return ListPlansResponse{Plans: out, CurrentPlan: current}
}
