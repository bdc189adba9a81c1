package services

import (
	"context"

	"github.com/SscSPs/billing_dashboard/internal/core/domain"
	"github.com/SscSPs/billing_dashboard/internal/dto"
)

// BillingSvcFacade defines plan selection and checkout.
type BillingSvcFacade interface {
	// ListPlans returns the plan catalogue with the caller's plan flagged.
	ListPlans(ctx context.Context, userEmail string) (*dto.ListPlansResponse, error)

	// GetCurrentPlan returns the caller's active plan.
	GetCurrentPlan(ctx context.Context, userEmail string) (*dto.PlanResponse, error)

	// SelectPlan switches the caller to another plan, charging the payment
	// details first when the plan is paid.
	SelectPlan(ctx context.Context, userEmail string, req dto.SelectPlanRequest) (*dto.SelectPlanResponse, error)
}

// PaymentGateway charges a card for a plan.
type PaymentGateway interface {
	Charge(ctx context.Context, userEmail string, plan domain.Plan, payment domain.PaymentDetails) error
}
