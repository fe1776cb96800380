package controller

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"comms-metrics-backend/internal/analytics"
	"comms-metrics-backend/internal/model"
	"comms-metrics-backend/internal/observability"
)

const (
	HeaderRequestID = "X-Request-ID"

	ctxKeySession   = "session"
	ctxKeyRequestID = "request_id"
)

// RequestIDMiddleware echoes the caller's X-Request-ID, or a fresh uuid, so the
// dashboard can drop responses to superseded filter changes.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		ctx.Set(ctxKeyRequestID, id)
		ctx.Header(HeaderRequestID, id)
		ctx.Next()
	}
}

// SessionMiddleware reads the caller's identity headers into a model.Session.
func SessionMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Set(ctxKeySession, model.Session{
			Token:      ctx.GetHeader(analytics.HeaderToken),
			UserID:     ctx.GetHeader(analytics.HeaderUserID),
			TenantID:   ctx.GetHeader(analytics.HeaderTenantID),
			TenantName: ctx.GetHeader(analytics.HeaderTenantName),
			DealerID:   ctx.GetHeader(analytics.HeaderDealerID),
			RoleID:     ctx.GetHeader(analytics.HeaderRoleID),
		})
		ctx.Next()
	}
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Next()
		endpoint := ctx.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		observability.APIRequests.WithLabelValues(endpoint, strconv.Itoa(ctx.Writer.Status())).Inc()
	}
}

func sessionFrom(ctx *gin.Context) model.Session {
	if v, ok := ctx.Get(ctxKeySession); ok {
		if sess, ok := v.(model.Session); ok {
			return sess
		}
	}
	return model.Session{}
}

func requestIDFrom(ctx *gin.Context) string {
	return ctx.GetString(ctxKeyRequestID)
}
