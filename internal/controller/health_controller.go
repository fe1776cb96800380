package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"comms-metrics-backend/internal/model"
)

// RegisterHealthRoutes exposes liveness and the Prometheus scrape endpoint.
func RegisterHealthRoutes(router *gin.Engine, gatherer prometheus.Gatherer, backend string) {
	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, model.NewResponse("ok", gin.H{"backend": backend}))
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
}
