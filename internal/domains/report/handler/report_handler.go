package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"pos-backend/internal/domains/report/model"
	"pos-backend/internal/domains/report/service"
	"pos-backend/internal/shared/middleware"
	"pos-backend/internal/shared/response"
)

const (
	ErrCodeInvalidRange = "RPT001"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type ReportHandler struct {
	service service.Service
}

func NewReportHandler(svc service.Service) *ReportHandler {
	return &ReportHandler{service: svc}
}

// RegisterRoutes expects router to be restricted to admins.
func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	reports := router.Group("/reports")
	{
		reports.GET("/sales", h.GetSalesReport)           // GET /v1/reports/sales
		reports.GET("/sales/export", h.ExportSalesReport) // GET /v1/reports/sales/export
	}
}

// GetSalesReport godoc
// @Summary Sales report
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param from query string false "First day, YYYY-MM-DD"
// @Param to query string false "Last day, YYYY-MM-DD"
// @Success 200 {object} response.Response{data=model.SalesReport}
// @Failure 400 {object} response.Response
// @Router /v1/reports/sales [get]
func (h *ReportHandler) GetSalesReport(c *gin.Context) {
	dr, ok := h.parseRange(c)
	if !ok {
		return
	}

	report, err := h.service.GetSalesReport(c.Request.Context(), dr)
	if err != nil {
		h.internalError(c, err)
		return
	}

	response.Success(c, http.StatusOK, report)
}

// ExportSalesReport godoc
// @Summary Download the sales report as XLSX
// @Tags Reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param from query string false "First day, YYYY-MM-DD"
// @Param to query string false "Last day, YYYY-MM-DD"
// @Router /v1/reports/sales/export [get]
func (h *ReportHandler) ExportSalesReport(c *gin.Context) {
	dr, ok := h.parseRange(c)
	if !ok {
		return
	}

	f, err := h.service.ExportSalesReport(c.Request.Context(), dr)
	if err != nil {
		h.internalError(c, err)
		return
	}
	defer f.Close()

	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="sales-report-%s.xlsx"`, dr.Key()))
	c.Status(http.StatusOK)

	if _, err := f.WriteTo(c.Writer); err != nil {
		log.Error().Err(err).Msg("failed to stream report workbook")
	}
}

func (h *ReportHandler) parseRange(c *gin.Context) (model.DateRange, bool) {
	dr, err := model.ParseDateRange(c.Query("from"), c.Query("to"))
	if err != nil {
		if errors.Is(err, model.ErrInvalidDateRange) {
			response.ErrorResponse(c, http.StatusBadRequest, ErrCodeInvalidRange, err.Error())
			return model.DateRange{}, false
		}
		h.internalError(c, err)
		return model.DateRange{}, false
	}
	return dr, true
}

func (h *ReportHandler) internalError(c *gin.Context, err error) {
	log.Error().Err(err).Str("request_id", c.GetString(middleware.ContextRequestID)).Msg("report request failed")
	response.InternalServerError(c, "Failed to build report")
}
