package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/billing_dashboard/internal/apperrors"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every failed request. Error is the status
// text; Message is the notice shown to the user.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// respondWithError writes err using the status and message it carries.
// Errors without a user-facing message fall back to the given one.
func respondWithError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	status := apperrors.HTTPStatus(err)
	message := fallback

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		message = appErr.Message
	}

	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", slog.Int("status", status), slog.String("error", err.Error()))
	} else {
		logger.Warn("Request rejected", slog.Int("status", status), slog.String("error", err.Error()))
	}
	c.JSON(status, ErrorResponse{Error: http.StatusText(status), Message: message})
}

// respondWithBindError reports a request that failed binding or validation.
func respondWithBindError(c *gin.Context, logger *slog.Logger, err error, message string) {
	logger.Warn("Failed to bind request", slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error(), Message: message})
}

// requireUserEmail reads the authenticated email, writing 401 when absent.
func requireUserEmail(c *gin.Context, logger *slog.Logger) (string, bool) {
	email, ok := userEmail(c)
	if !ok {
		logger.Error("User email not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized", Message: "Please log in first."})
	}
	return email, ok
}
