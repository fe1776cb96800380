package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"comms-metrics-backend/internal/audit"
	"comms-metrics-backend/internal/dto"
)

type AuditController struct {
	recorder audit.Recorder
}

func NewAuditController(recorder audit.Recorder) *AuditController {
	return &AuditController{recorder: recorder}
}

func RegisterAuditRoutes(router *gin.Engine, controller *AuditController) {
	router.GET("/api/v1/audit/queries", controller.GetRecentQueries)
}

// GetRecentQueries godoc
// @Summary      List recent analytics queries
// @Tags         audit
// @Produce      json
// @Param        limit  query     int  false  "Max entries (default: 50, max: 500)"
// @Success      200    {object}  dto.AuditListResponse
// @Failure      400    {object}  model.Response "Invalid query parameters"
// @Failure      500    {object}  model.Response "Internal server error"
// @Router       /api/v1/audit/queries [get]
func (c *AuditController) GetRecentQueries(ctx *gin.Context) {
	limit := 0
	if s := ctx.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			badRequest(ctx, "limit must be an integer")
			return
		}
		limit = n
	}

	audits, err := c.recorder.Recent(ctx.Request.Context(), limit)
	if err != nil {
		respondError(ctx, err, "Error listing query audits")
		return
	}
	ctx.JSON(http.StatusOK, dto.AuditListResponse{Audits: audits})
}
