package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/billing_dashboard/internal/core/ports/services"
	"github.com/SscSPs/billing_dashboard/internal/dto"
	"github.com/SscSPs/billing_dashboard/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ledgerHandler handles HTTP requests related to the caller's ledger.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

// newLedgerHandler creates a new ledgerHandler.
func newLedgerHandler(ls portssvc.LedgerSvcFacade) *ledgerHandler {
	return &ledgerHandler{
		ledgerService: ls,
	}
}

// registerLedgerRoutes registers routes related to the ledger.
func registerLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newLedgerHandler(ledgerService)

	ledger := rg.Group("/ledger")
	{
		ledger.GET("", h.getDashboard)
		ledger.GET("/transactions", h.listTransactions)
		ledger.POST("/transactions", h.addTransaction)
		ledger.DELETE("/transactions/:transactionID", h.removeTransaction)
		ledger.POST("/transactions/:transactionID/mark-success", h.markTransactionSuccess)
	}
}

// getDashboard godoc
// @Summary Get the ledger dashboard
// @Description Returns balances over the whole ledger, the months present, and the records and balance series matching the filters
// @Tags ledger
// @Produce  json
// @Param   search query string false "Case-insensitive transaction id substring"
// @Param   month  query string false "Month filter (YYYY-MM)"
// @Success 200 {object} dto.DashboardResponse
// @Failure 400 {object} ErrorResponse "Invalid filters"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 503 {object} ErrorResponse "Ledger could not be loaded"
// @Security BearerAuth
// @Router /ledger [get]
func (h *ledgerHandler) getDashboard(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var query dto.LedgerQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithBindError(c, logger, err, "Please enter valid filters")
		return
	}

	email, ok := requireUserEmail(c, logger)
	if !ok {
		return
	}

	dashboard, err := h.ledgerService.GetDashboard(c.Request.Context(), email, query)
	if err != nil {
		respondWithError(c, logger, err, "Failed to load dashboard")
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// listTransactions godoc
// @Summary List transactions
// @Description Returns one page of the caller's transactions in insertion order
// @Tags ledger
// @Produce  json
// @Param   search    query string false "Case-insensitive transaction id substring"
// @Param   month     query string false "Month filter (YYYY-MM)"
// @Param   limit     query int    false "Page size (1-100, default 20)"
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} ErrorResponse "Invalid query parameters or token"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 503 {object} ErrorResponse "Ledger could not be loaded"
// @Security BearerAuth
// @Router /ledger/transactions [get]
func (h *ledgerHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondWithBindError(c, logger, err, "Please enter valid filters")
		return
	}

	email, ok := requireUserEmail(c, logger)
	if !ok {
		return
	}

	page, err := h.ledgerService.ListTransactions(c.Request.Context(), email, params)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list transactions")
		return
	}

	c.JSON(http.StatusOK, page)
}

// addTransaction godoc
// @Summary Add a transaction
// @Description Records a transaction dated today. Status defaults to Success.
// @Tags ledger
// @Accept  json
// @Produce  json
// @Param   transaction body dto.AddTransactionRequest true "Transaction details"
// @Success 201 {object} dto.TransactionMutationResponse
// @Failure 400 {object} ErrorResponse "Invalid details"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 503 {object} ErrorResponse "Change could not be saved"
// @Security BearerAuth
// @Router /ledger/transactions [post]
func (h *ledgerHandler) addTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.AddTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithBindError(c, logger, err, "Please enter valid details")
		return
	}

	email, ok := requireUserEmail(c, logger)
	if !ok {
		return
	}

	resp, err := h.ledgerService.AddTransaction(c.Request.Context(), email, req)
	if err != nil {
		respondWithError(c, logger, err, "Failed to add transaction")
		return
	}

	logger.Info("Transaction added", slog.String("transaction_id", resp.Transaction.TransactionID))
	c.JSON(http.StatusCreated, resp)
}

// removeTransaction godoc
// @Summary Delete a transaction
// @Tags ledger
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} dto.TransactionMutationResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Transaction not found"
// @Failure 503 {object} ErrorResponse "Change could not be saved"
// @Security BearerAuth
// @Router /ledger/transactions/{transactionID} [delete]
func (h *ledgerHandler) removeTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")

	email, ok := requireUserEmail(c, logger)
	if !ok {
		return
	}

	resp, err := h.ledgerService.RemoveTransaction(c.Request.Context(), email, transactionID)
	if err != nil {
		respondWithError(c, logger.With(slog.String("transaction_id", transactionID)), err, "Failed to delete transaction")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// markTransactionSuccess godoc
// @Summary Mark a transaction as settled
// @Description Sets the status to Success. Settling a settled transaction is a no-op.
// @Tags ledger
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} dto.TransactionMutationResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Transaction not found"
// @Failure 503 {object} ErrorResponse "Change could not be saved"
// @Security BearerAuth
// @Router /ledger/transactions/{transactionID}/mark-success [post]
func (h *ledgerHandler) markTransactionSuccess(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")

	email, ok := requireUserEmail(c, logger)
	if !ok {
		return
	}

	resp, err := h.ledgerService.MarkTransactionSuccess(c.Request.Context(), email, transactionID)
	if err != nil {
		respondWithError(c, logger.With(slog.String("transaction_id", transactionID)), err, "Failed to update transaction")
		return
	}

	c.JSON(http.StatusOK, resp)
}
