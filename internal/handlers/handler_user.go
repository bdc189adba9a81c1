package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/billing_dashboard/internal/core/ports/services"
	"github.com/SscSPs/billing_dashboard/internal/dto"
	"github.com/SscSPs/billing_dashboard/internal/middleware"
	"github.com/gin-gonic/gin"
)

// userHandler handles HTTP requests for the caller's own account settings.
type userHandler struct {
	userService portssvc.UserSvcFacade
}

// newUserHandler creates a new userHandler.
func newUserHandler(us portssvc.UserSvcFacade) *userHandler {
	return &userHandler{
		userService: us,
	}
}

// registerUserRoutes registers routes related to users.
func registerUserRoutes(rg *gin.RouterGroup, userService portssvc.UserSvcFacade) {
	h := newUserHandler(userService)

	users := rg.Group("/users")
	{
		users.GET("/me", h.getMe)
		users.PUT("/me", h.updateMe)
		users.PUT("/me/password", h.changePassword)
	}
}

// getMe godoc
// @Summary Get the current user's profile
// @Tags users
// @Produce  json
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "User not found"
// @Security BearerAuth
// @Router /users/me [get]
func (h *userHandler) getMe(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	email, ok := requireUserEmail(c, logger)
	if !ok {
		return
	}

	user, err := h.userService.GetUserByEmail(c.Request.Context(), email)
	if err != nil {
		respondWithError(c, logger, err, "Failed to retrieve user")
		return
	}
	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

// updateMe godoc
// @Summary Update the current user's profile
// @Tags users
// @Accept  json
// @Produce  json
// @Param   profile body dto.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} dto.ProfileResponse
// @Failure 400 {object} ErrorResponse "Name missing or invalid picture URL"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /users/me [put]
func (h *userHandler) updateMe(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithBindError(c, logger, err, "Name is required")
		return
	}

	email, ok := requireUserEmail(c, logger)
	if !ok {
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), email, req)
	if err != nil {
		respondWithError(c, logger, err, "Failed to update profile")
		return
	}
	c.JSON(http.StatusOK, dto.ProfileResponse{User: dto.ToUserResponse(user), Message: "Profile updated"})
}

// changePassword godoc
// @Summary Change the current user's password
// @Tags users
// @Accept  json
// @Produce  json
// @Param   password body dto.ChangePasswordRequest true "Old, new and confirmed password"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} ErrorResponse "Missing fields, mismatch or wrong old password"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /users/me/password [put]
func (h *userHandler) changePassword(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithBindError(c, logger, err, "Please fill all fields")
		return
	}

	email, ok := requireUserEmail(c, logger)
	if !ok {
		return
	}

	if err := h.userService.ChangePassword(c.Request.Context(), email, req); err != nil {
		respondWithError(c, logger, err, "Failed to change password")
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Password updated successfully"})
}
