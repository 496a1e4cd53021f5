package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog/log"

	"pos-backend/internal/domains/user/model"
	"pos-backend/internal/domains/user/service"
	"pos-backend/internal/shared/middleware"
	"pos-backend/internal/shared/response"
	"pos-backend/pkg/jwt"
)

type UserHandler struct {
	service service.Service
}

func NewUserHandler(svc service.Service) *UserHandler {
	return &UserHandler{service: svc}
}

// RegisterRoutes mounts /auth. Only /auth/me requires a token.
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup, jwtManager *jwt.Manager) {
	auth := router.Group("/auth")
	{
		auth.POST("/login", h.Login)                                         // POST /v1/auth/login
		auth.GET("/me", middleware.AuthMiddleware(jwtManager), h.GetProfile) // GET /v1/auth/me
	}
}

// Login godoc
// @Summary Register login
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body model.LoginRequest true "Credentials"
// @Success 200 {object} response.Response{data=model.LoginResponse}
// @Failure 401 {object} response.Response
// @Failure 429 {object} response.Response
// @Router /v1/auth/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VAL_INVALID_INPUT", "Invalid request body", err.Error())
		return
	}

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, res)
}

// GetProfile godoc
// @Summary Current operator
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=model.AuthUser}
// @Router /v1/auth/me [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.ErrorResponse(c, http.StatusUnauthorized, "AUTH_001", "Unauthorized")
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, profile)
}

func (h *UserHandler) handleError(c *gin.Context, err error) {
	var fieldErrs validation.Errors
	switch {
	case errors.As(err, &fieldErrs):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VAL_INVALID_INPUT", "Validation failed", fieldErrs)
	case errors.Is(err, model.ErrInvalidCredentials):
		response.ErrorResponse(c, http.StatusUnauthorized, "USR_001", err.Error())
	case errors.Is(err, model.ErrUserInactive):
		response.ErrorResponse(c, http.StatusForbidden, "USR_002", err.Error())
	case errors.Is(err, model.ErrTooManyAttempts):
		response.ErrorResponse(c, http.StatusTooManyRequests, "USR_003", err.Error())
	case errors.Is(err, model.ErrUserNotFound):
		response.ErrorResponse(c, http.StatusNotFound, "USR_004", err.Error())
	default:
		log.Error().Err(err).Str("request_id", c.GetString(middleware.ContextRequestID)).Msg("auth request failed")
		response.InternalServerError(c, "Internal server error")
	}
}
