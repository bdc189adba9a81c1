package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/billing_dashboard/internal/core/ports/services"
	"github.com/SscSPs/billing_dashboard/internal/dto"
	"github.com/SscSPs/billing_dashboard/internal/middleware"
	"github.com/gin-gonic/gin"
)

// billingHandler handles HTTP requests related to plans and checkout.
type billingHandler struct {
	billingService portssvc.BillingSvcFacade
}

// registerBillingRoutes registers routes related to billing.
func registerBillingRoutes(rg *gin.RouterGroup, billingService portssvc.BillingSvcFacade) {
	h := &billingHandler{billingService: billingService}

	billing := rg.Group("/billing")
	{
		billing.GET("/plans", h.listPlans)
		billing.GET("/plan", h.getCurrentPlan)
		billing.POST("/plan", h.selectPlan)
	}
}

// listPlans godoc
// @Summary List plans
// @Description Returns the plan catalogue with the caller's plan flagged
// @Tags billing
// @Produce  json
// @Success 200 {object} dto.ListPlansResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /billing/plans [get]
func (h *billingHandler) listPlans(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	email, ok := requireUserEmail(c, logger)
	if !ok {
		return
	}

	plans, err := h.billingService.ListPlans(c.Request.Context(), email)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list plans")
		return
	}
	c.JSON(http.StatusOK, plans)
}

// getCurrentPlan godoc
// @Summary Get the current plan
// @Tags billing
// @Produce  json
// @Success 200 {object} dto.PlanResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "User not found"
// @Security BearerAuth
// @Router /billing/plan [get]
func (h *billingHandler) getCurrentPlan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	email, ok := requireUserEmail(c, logger)
	if !ok {
		return
	}

	plan, err := h.billingService.GetCurrentPlan(c.Request.Context(), email)
	if err != nil {
		respondWithError(c, logger, err, "Failed to load plan")
		return
	}
	c.JSON(http.StatusOK, plan)
}

// selectPlan godoc
// @Summary Switch plan
// @Description Switches to another plan. Paid plans require complete card details and are charged first.
// @Tags billing
// @Accept  json
// @Produce  json
// @Param   plan body dto.SelectPlanRequest true "Plan and payment details"
// @Success 200 {object} dto.SelectPlanResponse
// @Failure 400 {object} ErrorResponse "Unknown plan, already on plan, or incomplete payment details"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 402 {object} ErrorResponse "Payment failed"
// @Failure 503 {object} ErrorResponse "Plan could not be saved"
// @Security BearerAuth
// @Router /billing/plan [post]
func (h *billingHandler) selectPlan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.SelectPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithBindError(c, logger, err, "Please choose a valid plan")
		return
	}

	email, ok := requireUserEmail(c, logger)
	if !ok {
		return
	}

	logger.Info("Received request to switch plan", slog.String("plan", string(req.Plan)))
	resp, err := h.billingService.SelectPlan(c.Request.Context(), email, req)
	if err != nil {
		respondWithError(c, logger, err, "Failed to switch plan")
		return
	}
	c.JSON(http.StatusOK, resp)
}
