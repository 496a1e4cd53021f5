package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"pos-backend/internal/domains/sale/model"
	"pos-backend/internal/domains/sale/service"
	"pos-backend/internal/shared/middleware"
	"pos-backend/internal/shared/response"
)

// HeaderIdempotencyKey lets a register retry a checkout safely.
const HeaderIdempotencyKey = "Idempotency-Key"

// =====================================================
// SALE HANDLER
// =====================================================
type SaleHandler struct {
	service service.SaleService
}

func NewSaleHandler(svc service.SaleService) *SaleHandler {
	return &SaleHandler{service: svc}
}

// RegisterRoutes expects router to be behind AuthMiddleware.
func (h *SaleHandler) RegisterRoutes(router *gin.RouterGroup) {
	sales := router.Group("/sales")
	{
		sales.POST("", h.CreateSale) // POST /v1/sales
		sales.GET("/:id", h.GetSale) // GET /v1/sales/:id
	}
}

// CreateSale godoc
// @Summary Finalize a sale
// @Description Re-prices the cart on the server, checks stock and payment, and records the sale.
// @Tags Sales
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string false "UUID identifying this checkout attempt"
// @Param request body model.CreateSaleBody true "Sale"
// @Success 201 {object} response.Response{data=model.CreateSaleResponse}
// @Success 200 {object} response.Response{data=model.CreateSaleResponse} "Replayed"
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /v1/sales [post]
func (h *SaleHandler) CreateSale(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.ErrorResponse(c, http.StatusUnauthorized, "AUTH_001", "Unauthorized")
		return
	}

	var body model.CreateSaleBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, model.ErrCodeInvalidRequest,
			"Invalid request body", err.Error())
		return
	}

	resp, err := h.service.CreateSale(c.Request.Context(), userID, &body.CreateSaleRequest,
		body.CustomDiscountPercent, c.GetHeader(HeaderIdempotencyKey))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	status := http.StatusCreated
	if resp.Replayed {
		status = http.StatusOK
	}
	response.Success(c, status, resp)
}

// GetSale godoc
// @Summary Get a sale with its lines
// @Tags Sales
// @Produce json
// @Security BearerAuth
// @Param id path int true "Sale ID"
// @Success 200 {object} response.Response{data=model.Sale}
// @Failure 404 {object} response.Response
// @Router /v1/sales/{id} [get]
func (h *SaleHandler) GetSale(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.ErrorResponse(c, http.StatusBadRequest, model.ErrCodeInvalidRequest, "Invalid sale ID")
		return
	}

	sale, err := h.service.GetSale(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, sale)
}

func (h *SaleHandler) handleServiceError(c *gin.Context, err error) {
	var saleErr *model.SaleError
	if !errors.As(err, &saleErr) {
		log.Error().Err(err).Str("request_id", c.GetString(middleware.ContextRequestID)).Msg("unexpected sale error")
		response.InternalServerError(c, "Internal server error")
		return
	}

	switch saleErr.Code {
	case model.ErrCodeCartEmpty,
		model.ErrCodeInvalidLine,
		model.ErrCodeInvalidPaymentMethod,
		model.ErrCodeInvalidRequest,
		model.ErrCodeInvalidIdempotencyKey:
		response.ErrorWithDetails(c, http.StatusBadRequest, saleErr.Code, saleErr.Message, saleErr.Details)
	case model.ErrCodeInsufficientCash:
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, saleErr.Code, saleErr.Message, saleErr.Details)
	case model.ErrCodeStockInsufficient,
		model.ErrCodeProductUnavailable,
		model.ErrCodeDuplicateInFlight:
		response.ErrorWithDetails(c, http.StatusConflict, saleErr.Code, saleErr.Message, saleErr.Details)
	case model.ErrCodeSaleNotFound:
		response.ErrorResponse(c, http.StatusNotFound, saleErr.Code, saleErr.Message)
	default:
		log.Error().Err(err).Str("request_id", c.GetString(middleware.ContextRequestID)).Msg("sale request failed")
		response.InternalServerError(c, "Internal server error")
	}
}
