package controller

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"comms-metrics-backend/internal/dto"
	"comms-metrics-backend/internal/model"
	"comms-metrics-backend/internal/query"
	"comms-metrics-backend/internal/service"
	"comms-metrics-backend/internal/util"
)

type MetricController struct {
	metricsService  service.CommsMetricsService
	snapshotService service.SnapshotQueryService
	loc             *time.Location
}

func NewMetricController(metricsService service.CommsMetricsService, snapshotService service.SnapshotQueryService, builder *query.Builder) *MetricController {
	return &MetricController{
		metricsService:  metricsService,
		snapshotService: snapshotService,
		loc:             builder.Location(),
	}
}

func RegisterMetricRoutes(router *gin.Engine, controller *MetricController) {
	v1Metrics := router.Group("/api/v1/metrics")
	{
		v1Metrics.GET("/failures", controller.GetFailureDetails)
		v1Metrics.GET("/providers", controller.GetProviderMetrics)
		v1Metrics.GET("/snapshots", controller.GetSnapshotHistory)
	}
}

// GetFailureDetails godoc
// @Summary      Get failure detail rows
// @Description  Returns up to 1000 failure events for one category, newest first.
// @Tags         metrics
// @Produce      json
// @Param        category      query     string  true   "Failure category" Enums(THREADS_API, THREADS_DELIVERY, THREADS_TOTAL, NON_THREADS_API, NON_THREADS_DELIVERY, NON_THREADS_TOTAL, TWILIO_API, TWILIO_DELIVERY, TWILIO_TOTAL)
// @Param        tenantId      query     string  false  "Tenant ID"
// @Param        dealerId      query     string  false  "Dealer ID"
// @Param        startDate     query     string  false  "Start date (YYYY-MM-DD), defaults to the first day of the current month"
// @Param        endDate       query     string  false  "End date (YYYY-MM-DD), defaults to the last day of the current month"
// @Param        startTime     query     string  false  "Start time of day (HH:MM[:SS]), default 00:00:00"
// @Param        endTime       query     string  false  "End time of day (HH:MM[:SS]), default 23:59:59"
// @Param        X-Request-ID  header    string  false  "Echoed back in the response"
// @Success      200           {object}  dto.FailureDetailsResponse
// @Failure      400           {object}  model.Response "Invalid query parameters"
// @Failure      502           {object}  model.Response "Analytics service error"
// @Failure      503           {object}  model.Response "Analytics service unreachable"
// @Router       /api/v1/metrics/failures [get]
func (c *MetricController) GetFailureDetails(ctx *gin.Context) {
	category, err := model.ParseFailureCategory(ctx.Query("category"))
	if err != nil {
		badRequest(ctx, err.Error())
		return
	}
	filter, err := parseFilter(ctx, c.loc)
	if err != nil {
		badRequest(ctx, err.Error())
		return
	}

	result, err := c.metricsService.GetFailureDetails(ctx.Request.Context(), sessionFrom(ctx), dto.FailureDetailsRequest{
		RequestID: requestIDFrom(ctx),
		Category:  category,
		Filter:    filter,
	})
	if err != nil {
		respondError(ctx, err, "Error getting failure details")
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// GetProviderMetrics godoc
// @Summary      Get provider metrics
// @Description  Aggregates initiated/success/failure counts per channel for a tenant or dealer.
// @Tags         metrics
// @Produce      json
// @Param        tenantId      query     string  false  "Tenant ID (tenantId or dealerId is required)"
// @Param        dealerId      query     string  false  "Dealer ID (tenantId or dealerId is required)"
// @Param        startDate     query     string  false  "Start date (YYYY-MM-DD)"
// @Param        endDate       query     string  false  "End date (YYYY-MM-DD)"
// @Param        startTime     query     string  false  "Start time of day (HH:MM[:SS])"
// @Param        endTime       query     string  false  "End time of day (HH:MM[:SS])"
// @Param        providerType  query     string  false  "Provider filter" Enums(ALL, GTC, TWILIO)
// @Param        X-Request-ID  header    string  false  "Echoed back in the response"
// @Success      200           {object}  dto.ProviderMetricsResponse
// @Failure      400           {object}  model.Response "Invalid query parameters or missing scope"
// @Failure      502           {object}  model.Response "Analytics service error"
// @Failure      503           {object}  model.Response "Analytics service unreachable"
// @Router       /api/v1/metrics/providers [get]
func (c *MetricController) GetProviderMetrics(ctx *gin.Context) {
	filter, err := parseFilter(ctx, c.loc)
	if err != nil {
		badRequest(ctx, err.Error())
		return
	}

	result, err := c.metricsService.GetProviderMetrics(ctx.Request.Context(), sessionFrom(ctx), dto.ProviderMetricsRequest{
		RequestID: requestIDFrom(ctx),
		Filter:    filter,
	})
	if err != nil {
		respondError(ctx, err, "Error getting provider metrics")
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// GetSnapshotHistory godoc
// @Summary      Get metric snapshot history
// @Description  Returns periodically captured provider metrics, newest first.
// @Tags         metrics
// @Produce      json
// @Param        startTime  query     string  false  "Start (ISO 8601 or epoch ms), default 7 days before endTime"
// @Param        endTime    query     string  false  "End (ISO 8601 or epoch ms), default now"
// @Param        tenantId   query     string  false  "Tenant ID"
// @Param        dealerId   query     string  false  "Dealer ID"
// @Param        size       query     int     false  "Max snapshots (default: 50, max: 500)" minimum(1) maximum(500)
// @Success      200        {object}  dto.SnapshotHistoryResponse
// @Failure      400        {object}  model.Response "Invalid query parameters"
// @Failure      500        {object}  model.Response "Internal server error"
// @Router       /api/v1/metrics/snapshots [get]
func (c *MetricController) GetSnapshotHistory(ctx *gin.Context) {
	req := dto.SnapshotHistoryRequest{
		TenantID: ctx.Query("tenantId"),
		DealerID: ctx.Query("dealerId"),
	}
	var err error
	if s := ctx.Query("startTime"); s != "" {
		if req.StartTime, err = util.ParseTimeFlexible(s); err != nil {
			badRequest(ctx, err.Error())
			return
		}
	}
	if s := ctx.Query("endTime"); s != "" {
		if req.EndTime, err = util.ParseTimeFlexible(s); err != nil {
			badRequest(ctx, err.Error())
			return
		}
	}
	if s := ctx.Query("size"); s != "" {
		if req.Size, err = strconv.Atoi(s); err != nil || req.Size < 1 {
			badRequest(ctx, "size must be a positive integer")
			return
		}
	}

	result, err := c.snapshotService.GetHistory(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, err, "Error getting snapshot history")
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// parseFilter reads the dashboard filter. Absent values stay zero so the
// query builder applies its defaults.
func parseFilter(ctx *gin.Context, loc *time.Location) (model.Filter, error) {
	filter := model.Filter{
		TenantID: ctx.Query("tenantId"),
		DealerID: ctx.Query("dealerId"),
	}
	var err error

	if filter.ProviderType, err = model.ParseProviderType(ctx.Query("providerType")); err != nil {
		return model.Filter{}, err
	}
	if s := ctx.Query("startDate"); s != "" {
		if filter.StartDate, err = util.ParseDate(s, loc); err != nil {
			return model.Filter{}, fmt.Errorf("startDate: %w", err)
		}
	}
	if s := ctx.Query("endDate"); s != "" {
		if filter.EndDate, err = util.ParseDate(s, loc); err != nil {
			return model.Filter{}, fmt.Errorf("endDate: %w", err)
		}
	}
	if s := ctx.Query("startTime"); s != "" {
		tod, err := util.ParseTimeOfDay(s)
		if err != nil {
			return model.Filter{}, fmt.Errorf("startTime: %w", err)
		}
		filter.StartTime = &tod
	}
	if s := ctx.Query("endTime"); s != "" {
		tod, err := util.ParseTimeOfDay(s)
		if err != nil {
			return model.Filter{}, fmt.Errorf("endTime: %w", err)
		}
		filter.EndTime = &tod
	}
	return filter, nil
}
