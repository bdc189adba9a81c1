package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/SscSPs/billing_dashboard/internal/apperrors"
	"github.com/SscSPs/billing_dashboard/internal/core/domain"
	portssvc "github.com/SscSPs/billing_dashboard/internal/core/ports/services"
	"github.com/SscSPs/billing_dashboard/internal/dto"
	"github.com/SscSPs/billing_dashboard/internal/middleware"
	"github.com/gin-gonic/gin"
)

// GoogleOAuthHandler handles Google OAuth related requests.
type GoogleOAuthHandler struct {
	googleOAuthService portssvc.GoogleOAuthHandlerSvcFacade
	authService        portssvc.AuthSvcFacade
}

// NewGoogleOAuthHandler creates a new instance of GoogleOAuthHandler.
func NewGoogleOAuthHandler(googleOAuthService portssvc.GoogleOAuthHandlerSvcFacade, authService portssvc.AuthSvcFacade) *GoogleOAuthHandler {
	return &GoogleOAuthHandler{
		googleOAuthService: googleOAuthService,
		authService:        authService,
	}
}

// registerGoogleOAuthRoutes registers the Google OAuth routes.
func registerGoogleOAuthRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := NewGoogleOAuthHandler(services.GoogleOAuth, services.Auth)
	googleRoutes := rg.Group("/google")
	{
		googleRoutes.GET("/login", h.LoginURLGoogle)
		googleRoutes.POST("/exchange-code", h.ExchangeCodeGoogle)
	}
}

// LoginURLGoogle returns the Google consent URL together with the CSRF state.
// @Summary Get the Google sign-in URL
// @Tags oauth
// @Produce  json
// @Success 200 {object} dto.GoogleLoginURLResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/google/login [get]
func (h *GoogleOAuthHandler) LoginURLGoogle(c *gin.Context) {
	ctx := c.Request.Context()
	logger := middleware.GetLoggerFromCtx(ctx)

	state, err := h.googleOAuthService.GenerateStateString(ctx)
	if err != nil {
		respondWithError(c, logger, err, "Failed to start Google sign-in")
		return
	}
	c.JSON(http.StatusOK, dto.GoogleLoginURLResponse{
		URL:   h.googleOAuthService.GetGoogleLoginURL(ctx, state),
		State: state,
	})
}

// ExchangeCodeGoogle handles the POST request from the frontend containing the authorization code from Google.
// It exchanges the code for Google tokens, validates the ID token, creates or retrieves the user,
// and returns an application JWT.
// @Summary Exchange authorization code for access token
// @Tags oauth
// @Accept  json
// @Produce  json
// @Param   code body dto.ExchangeCodeRequest true "Authorization code"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} ErrorResponse "Invalid authorization code"
// @Failure 401 {object} ErrorResponse "Invalid Google ID token"
// @Failure 504 {object} ErrorResponse "Google could not be reached"
// @Router /auth/google/exchange-code [post]
func (h *GoogleOAuthHandler) ExchangeCodeGoogle(c *gin.Context) {
	ctx := c.Request.Context()
	logger := middleware.GetLoggerFromCtx(ctx)

	var req dto.ExchangeCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithBindError(c, logger, err, "Authorization code is required.")
		return
	}

	oauth2Token, err := h.googleOAuthService.ExchangeCodeForToken(ctx, req.Code)
	if err != nil {
		var appErr error = apperrors.NewGatewayTimeoutError("Failed to communicate with Google OAuth service.")
		lower := strings.ToLower(err.Error())
		if strings.Contains(lower, "invalid_grant") || strings.Contains(lower, "bad request") {
			appErr = apperrors.NewBadRequestError("Invalid or expired authorization code provided by Google.")
		}
		logger.ErrorContext(ctx, "Failed to exchange authorization code with Google", slog.String("error", err.Error()))
		respondWithError(c, logger, appErr, "")
		return
	}

	idTokenString, ok := oauth2Token.Extra("id_token").(string)
	if !ok || idTokenString == "" {
		respondWithError(c, logger, apperrors.NewInternalServerError("Failed to retrieve ID token from Google."), "")
		return
	}

	payload, err := h.googleOAuthService.ValidateGoogleIDToken(ctx, idTokenString)
	if err != nil {
		respondWithError(c, logger, apperrors.NewAppError(http.StatusUnauthorized, "Invalid Google ID token.", err), "")
		return
	}

	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	picture, _ := payload.Claims["picture"].(string)
	verified, _ := payload.Claims["email_verified"].(bool)
	if email == "" || payload.Subject == "" {
		logger.ErrorContext(ctx, "Essential claims (email or sub) missing from Google ID token payload")
		respondWithError(c, logger, apperrors.NewInternalServerError("Essential user information missing from Google token."), "")
		return
	}

	info := domain.GoogleUserInfo{
		ID:            payload.Subject,
		Email:         email,
		VerifiedEmail: verified,
		Name:          name,
		Picture:       picture,
	}
	if info.Name == "" || info.Picture == "" {
		// ID tokens only carry profile claims when the profile scope was granted.
		if profile, err := h.googleOAuthService.GetUserInfo(ctx, oauth2Token); err == nil {
			if info.Name == "" {
				info.Name = profile.Name
			}
			if info.Picture == "" {
				info.Picture = profile.Picture
			}
		} else {
			logger.WarnContext(ctx, "Failed to fetch Google profile", slog.String("error", err.Error()))
		}
	}

	resp, err := h.authService.LoginWithGoogle(ctx, info)
	if err != nil {
		respondWithError(c, logger, err, "Failed to process user authentication")
		return
	}

	logger.InfoContext(ctx, "User signed in with Google", slog.String("email", resp.User.Email))
	c.JSON(http.StatusOK, resp)
}
