package controller

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"comms-metrics-backend/internal/analytics"
	"comms-metrics-backend/internal/dto"
	"comms-metrics-backend/internal/mapper"
	"comms-metrics-backend/internal/model"
	"comms-metrics-backend/internal/service"
	"comms-metrics-backend/internal/timescaledb"
)

// statusFor maps service errors onto HTTP statuses and user-facing messages.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrMissingScope), errors.Is(err, service.ErrInvalidTimeRange):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, analytics.ErrTransport), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "Analytics service is unreachable"
	case errors.Is(err, analytics.ErrUpstreamStatus):
		return http.StatusBadGateway, "Analytics query was rejected"
	case errors.Is(err, analytics.ErrMalformedResponse), errors.Is(err, mapper.ErrMalformedRow):
		return http.StatusBadGateway, "Analytics service returned unexpected data"
	case errors.Is(err, timescaledb.ErrQueryFailed):
		return http.StatusBadGateway, "Events query failed"
	}
	return http.StatusInternalServerError, "Internal server error"
}

// respondError degrades to an empty result carrying an error flag so the
// dashboard can keep rendering.
func respondError(ctx *gin.Context, err error, logMsg string) {
	status, msg := statusFor(err)
	evt := log.Warn()
	if status >= http.StatusInternalServerError {
		evt = log.Error()
	}
	evt.Err(err).Str("request_id", requestIDFrom(ctx)).Int("status", status).Msg(logMsg)

	ctx.JSON(status, model.NewResponse(msg, emptyPayload(ctx)))
}

func badRequest(ctx *gin.Context, msg string) {
	ctx.JSON(http.StatusBadRequest, model.NewResponse(msg, emptyPayload(ctx)))
}

func emptyPayload(ctx *gin.Context) dto.ErrorPayload {
	return dto.ErrorPayload{RequestID: requestIDFrom(ctx), Rows: []any{}, Error: true}
}
