package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/billing_dashboard/internal/apperrors"
	"github.com/SscSPs/billing_dashboard/internal/core/domain"
	portsrepo "github.com/SscSPs/billing_dashboard/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/billing_dashboard/internal/core/ports/services"
	"github.com/SscSPs/billing_dashboard/internal/dto"
	"github.com/SscSPs/billing_dashboard/internal/notify"
)

// PaymentSimulator stands in for a card processor: every complete charge
// succeeds after a fixed delay.
type PaymentSimulator struct {
	Delay time.Duration
}

var _ portssvc.PaymentGateway = (*PaymentSimulator)(nil)

// Charge waits for the configured delay, or until ctx is done.
func (p *PaymentSimulator) Charge(ctx context.Context, _ string, _ domain.Plan, payment domain.PaymentDetails) error {
	if !payment.IsComplete() {
		return fmt.Errorf("%w: incomplete payment details", apperrors.ErrValidation)
	}
	if p.Delay <= 0 {
		return nil
	}
	timer := time.NewTimer(p.Delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// billingService implements BillingSvcFacade.
type billingService struct {
	BaseService
	userRepo portsrepo.UserRepositoryFacade
	gateway  portssvc.PaymentGateway
	now      func() time.Time
}

// NewBillingService creates a new billing service.
func NewBillingService(userRepo portsrepo.UserRepositoryFacade, gateway portssvc.PaymentGateway, notifier notify.Notifier) portssvc.BillingSvcFacade {
	return &billingService{
		BaseService: BaseService{Notifier: notifier},
		userRepo:    userRepo,
		gateway:     gateway,
		now:         time.Now,
	}
}

func (s *billingService) currentUser(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("User not found")
		}
		s.LogError(ctx, err, "Failed to load user", slog.String("user_email", email))
		return nil, apperrors.NewAppError(http.StatusServiceUnavailable, "Could not load your account. Please try again.", err)
	}
	return user, nil
}

// ListPlans returns the plan catalogue with the caller's plan flagged.
func (s *billingService) ListPlans(ctx context.Context, userEmail string) (*dto.ListPlansResponse, error) {
	user, err := s.currentUser(ctx, userEmail)
	if err != nil {
		return nil, err
	}
	resp := dto.ToListPlansResponse(domain.Plans(), user.Plan)
	return &resp, nil
}

// GetCurrentPlan returns the caller's active plan.
func (s *billingService) GetCurrentPlan(ctx context.Context, userEmail string) (*dto.PlanResponse, error) {
	user, err := s.currentUser(ctx, userEmail)
	if err != nil {
		return nil, err
	}
	plan, ok := domain.FindPlan(user.Plan)
	if !ok {
		plan, _ = domain.FindPlan(domain.PlanFree)
	}
	resp := dto.ToPlanResponse(plan, plan.Name)
	return &resp, nil
}

// SelectPlan switches the caller to another plan. Paid plans are charged
// before the switch is stored.
func (s *billingService) SelectPlan(ctx context.Context, userEmail string, req dto.SelectPlanRequest) (*dto.SelectPlanResponse, error) {
	plan, ok := domain.FindPlan(req.Plan)
	if !ok {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("Unknown plan %q", req.Plan))
	}

	user, err := s.currentUser(ctx, userEmail)
	if err != nil {
		return nil, err
	}
	if user.Plan == plan.Name {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("You are already on the %s plan", plan.Name))
	}

	message := fmt.Sprintf("Plan updated to %s", plan.Name)
	if plan.RequiresPayment() {
		if req.Payment == nil || !req.Payment.IsComplete() {
			return nil, apperrors.NewBadRequestError("Please fill in all fields")
		}
		if err := s.gateway.Charge(ctx, userEmail, plan, *req.Payment); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, apperrors.NewGatewayTimeoutError("Payment was interrupted. Please try again.")
			}
			s.LogError(ctx, err, "Payment failed",
				slog.String("user_email", userEmail),
				slog.String("plan", string(plan.Name)))
			return nil, apperrors.NewAppError(http.StatusPaymentRequired, "Payment failed. Please try again.", err)
		}
		message = fmt.Sprintf("Payment for %s plan successful!", plan.Name)
	}

	previous := user.Plan
	user.Plan = plan.Name
	user.LastUpdatedAt = s.now().UTC()
	if err := s.userRepo.UpdateUser(context.WithoutCancel(ctx), *user); err != nil {
		s.LogError(ctx, err, "Failed to store plan change",
			slog.String("user_email", userEmail),
			slog.String("plan", string(plan.Name)))
		return nil, apperrors.NewAppError(http.StatusServiceUnavailable, "Could not save your plan. Please try again.", err)
	}

	s.LogInfo(ctx, "Plan changed",
		slog.String("user_email", userEmail),
		slog.String("from", string(previous)),
		slog.String("to", string(plan.Name)))
	s.Notify(ctx, notify.KindPlanUpdated, notify.LevelSuccess, userEmail, message)
	return &dto.SelectPlanResponse{
		Plan:    dto.ToPlanResponse(plan, plan.Name),
		Message: message,
	}, nil
}
