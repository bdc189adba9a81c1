package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/billing_dashboard/internal/core/ports/services"
	"github.com/SscSPs/billing_dashboard/internal/dto"
	"github.com/SscSPs/billing_dashboard/internal/middleware"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication related requests.
type AuthHandler struct {
	authService portssvc.AuthSvcFacade
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(as portssvc.AuthSvcFacade) *AuthHandler {
	return &AuthHandler{authService: as}
}

// registerAuthRoutes sets up the public authentication routes. Credential
// endpoints share the given rate limiting middleware.
func registerAuthRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer, limitMiddleware gin.HandlerFunc) {
	h := NewAuthHandler(services.Auth)

	auth := rg.Group("/auth")
	{
		auth.POST("/signup", limitMiddleware, h.Signup)
		auth.POST("/login", limitMiddleware, h.Login)
	}
	registerGoogleOAuthRoutes(auth, services)
}

// Signup godoc
// @Summary Register a new user
// @Description Creates an account on the Free plan with an empty ledger and returns a JWT token.
// @Tags auth
// @Accept json
// @Produce json
// @Param signup body dto.SignupRequest true "Signup details"
// @Success 201 {object} dto.LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Email already registered"
// @Failure 429 {object} ErrorResponse
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithBindError(c, logger, err, "Please fill all fields")
		return
	}

	resp, err := h.authService.Signup(c.Request.Context(), req)
	if err != nil {
		respondWithError(c, logger, err, "Signup failed")
		return
	}

	logger.Info("User signed up", slog.String("email", resp.User.Email))
	c.JSON(http.StatusCreated, resp)
}

// Login godoc
// @Summary User login
// @Description Authenticates a user and returns a JWT token.
// @Tags auth
// @Accept json
// @Produce json
// @Param login body dto.LoginRequest true "Login Credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithBindError(c, logger, err, "Please fill in all fields")
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		respondWithError(c, logger, err, "Login failed")
		return
	}

	logger.Info("User logged in", slog.String("email", resp.User.Email))
	c.JSON(http.StatusOK, resp)
}
