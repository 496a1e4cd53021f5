package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"pos-backend/internal/domains/promotion/model"
	"pos-backend/internal/domains/promotion/service"
	"pos-backend/internal/shared/middleware"
	"pos-backend/internal/shared/response"
)

// =====================================================
// PROMOTION HANDLER
// =====================================================
type PromotionHandler struct {
	service service.ServiceInterface
}

func NewPromotionHandler(svc service.ServiceInterface) *PromotionHandler {
	return &PromotionHandler{service: svc}
}

// RegisterRoutes expects router to be behind AuthMiddleware.
func (h *PromotionHandler) RegisterRoutes(router *gin.RouterGroup) {
	promotions := router.Group("/promotions")
	{
		promotions.GET("", h.ListActivePromotions)   // GET /v1/promotions
		promotions.POST("/evaluate", h.EvaluateCart) // POST /v1/promotions/evaluate
	}
}

// =====================================================
// EVALUATE CART
// =====================================================

// EvaluateCart godoc
// @Summary Evaluate cart promotions
// @Description Prices a cart with the active promotions and an optional cashier discount. Nothing is persisted.
// @Tags Promotions
// @Accept json
// @Produce json
// @Param request body model.EvaluateRequest true "Cart lines"
// @Success 200 {object} response.Response{data=model.EvaluateResponse}
// @Failure 400 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /v1/promotions/evaluate [post]
func (h *PromotionHandler) EvaluateCart(c *gin.Context) {
	var req model.EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, string(model.ErrCodeValidationFailed),
			"Invalid request body", err.Error())
		return
	}

	if err := req.Validate(); err != nil {
		h.handleServiceError(c, model.NewValidationError(err))
		return
	}

	result, err := h.service.Evaluate(c.Request.Context(), req.Items, req.CustomDiscountPercent)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, model.EvaluateResponse{
		Sequence: req.Sequence,
		Result:   result,
	})
}

// =====================================================
// LIST ACTIVE PROMOTIONS
// =====================================================

// ListActivePromotions godoc
// @Summary List active promotions
// @Tags Promotions
// @Produce json
// @Success 200 {object} response.Response{data=[]model.PromotionListItem}
// @Failure 500 {object} response.Response
// @Router /v1/promotions [get]
func (h *PromotionHandler) ListActivePromotions(c *gin.Context) {
	items, err := h.service.ListActivePromotions(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, items, &response.Meta{Total: len(items)})
}

func (h *PromotionHandler) handleServiceError(c *gin.Context, err error) {
	var appErr *model.AppError
	if errors.As(err, &appErr) {
		if appErr.HTTPStatus >= http.StatusInternalServerError {
			log.Error().Err(err).Str("request_id", c.GetString(middleware.ContextRequestID)).Msg("promotion request failed")
			response.InternalServerError(c, "Internal server error")
			return
		}
		response.ErrorWithDetails(c, appErr.HTTPStatus, string(appErr.Code), appErr.Message, appErr.Details)
		return
	}

	log.Error().Err(err).Str("request_id", c.GetString(middleware.ContextRequestID)).Msg("unexpected promotion error")
	response.InternalServerError(c, "Internal server error")
}
