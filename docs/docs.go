// Package docs registers the Swagger document served under /swagger. It is
// maintained by hand alongside the controller annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/v1/audit/queries": {
            "get": {
                "produces": ["application/json"],
                "tags": ["audit"],
                "summary": "List recent analytics queries",
                "parameters": [
                    {"type": "integer", "description": "Max entries (default: 50, max: 500)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.AuditListResponse"}},
                    "400": {"description": "Invalid query parameters", "schema": {"$ref": "#/definitions/model.Response"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/model.Response"}}
                }
            }
        },
        "/api/v1/metrics/failures": {
            "get": {
                "description": "Returns up to 1000 failure events for one category, newest first.",
                "produces": ["application/json"],
                "tags": ["metrics"],
                "summary": "Get failure detail rows",
                "parameters": [
                    {
                        "enum": ["THREADS_API", "THREADS_DELIVERY", "THREADS_TOTAL", "NON_THREADS_API", "NON_THREADS_DELIVERY", "NON_THREADS_TOTAL", "TWILIO_API", "TWILIO_DELIVERY", "TWILIO_TOTAL"],
                        "type": "string", "description": "Failure category", "name": "category", "in": "query", "required": true
                    },
                    {"type": "string", "description": "Tenant ID", "name": "tenantId", "in": "query"},
                    {"type": "string", "description": "Dealer ID", "name": "dealerId", "in": "query"},
                    {"type": "string", "description": "Start date (YYYY-MM-DD), defaults to the first day of the current month", "name": "startDate", "in": "query"},
                    {"type": "string", "description": "End date (YYYY-MM-DD), defaults to the last day of the current month", "name": "endDate", "in": "query"},
                    {"type": "string", "description": "Start time of day (HH:MM[:SS]), default 00:00:00", "name": "startTime", "in": "query"},
                    {"type": "string", "description": "End time of day (HH:MM[:SS]), default 23:59:59", "name": "endTime", "in": "query"},
                    {"type": "string", "description": "Echoed back in the response", "name": "X-Request-ID", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.FailureDetailsResponse"}},
                    "400": {"description": "Invalid query parameters", "schema": {"$ref": "#/definitions/model.Response"}},
                    "502": {"description": "Analytics service error", "schema": {"$ref": "#/definitions/model.Response"}},
                    "503": {"description": "Analytics service unreachable", "schema": {"$ref": "#/definitions/model.Response"}}
                }
            }
        },
        "/api/v1/metrics/providers": {
            "get": {
                "description": "Aggregates initiated/success/failure counts per channel for a tenant or dealer.",
                "produces": ["application/json"],
                "tags": ["metrics"],
                "summary": "Get provider metrics",
                "parameters": [
                    {"type": "string", "description": "Tenant ID (tenantId or dealerId is required)", "name": "tenantId", "in": "query"},
                    {"type": "string", "description": "Dealer ID (tenantId or dealerId is required)", "name": "dealerId", "in": "query"},
                    {"type": "string", "description": "Start date (YYYY-MM-DD)", "name": "startDate", "in": "query"},
                    {"type": "string", "description": "End date (YYYY-MM-DD)", "name": "endDate", "in": "query"},
                    {"type": "string", "description": "Start time of day (HH:MM[:SS])", "name": "startTime", "in": "query"},
                    {"type": "string", "description": "End time of day (HH:MM[:SS])", "name": "endTime", "in": "query"},
                    {"enum": ["ALL", "GTC", "TWILIO"], "type": "string", "description": "Provider filter", "name": "providerType", "in": "query"},
                    {"type": "string", "description": "Echoed back in the response", "name": "X-Request-ID", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ProviderMetricsResponse"}},
                    "400": {"description": "Invalid query parameters or missing scope", "schema": {"$ref": "#/definitions/model.Response"}},
                    "502": {"description": "Analytics service error", "schema": {"$ref": "#/definitions/model.Response"}},
                    "503": {"description": "Analytics service unreachable", "schema": {"$ref": "#/definitions/model.Response"}}
                }
            }
        },
        "/api/v1/metrics/snapshots": {
            "get": {
                "description": "Returns periodically captured provider metrics, newest first.",
                "produces": ["application/json"],
                "tags": ["metrics"],
                "summary": "Get metric snapshot history",
                "parameters": [
                    {"type": "string", "description": "Start (ISO 8601 or epoch ms), default 7 days before endTime", "name": "startTime", "in": "query"},
                    {"type": "string", "description": "End (ISO 8601 or epoch ms), default now", "name": "endTime", "in": "query"},
                    {"type": "string", "description": "Tenant ID", "name": "tenantId", "in": "query"},
                    {"type": "string", "description": "Dealer ID", "name": "dealerId", "in": "query"},
                    {"maximum": 500, "minimum": 1, "type": "integer", "description": "Max snapshots (default: 50, max: 500)", "name": "size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.SnapshotHistoryResponse"}},
                    "400": {"description": "Invalid query parameters", "schema": {"$ref": "#/definitions/model.Response"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/model.Response"}}
                }
            }
        }
    },
    "definitions": {
        "dto.AuditListResponse": {"type": "object", "properties": {"audits": {"type": "array", "items": {"type": "object"}}}},
        "dto.FailureDetailsResponse": {
            "type": "object",
            "properties": {
                "requestId": {"type": "string"},
                "category": {"type": "string"},
                "window": {"$ref": "#/definitions/dto.Window"},
                "rows": {"type": "array", "items": {"type": "object"}},
                "count": {"type": "integer"},
                "truncated": {"type": "boolean"}
            }
        },
        "dto.ProviderMetricsResponse": {
            "type": "object",
            "properties": {
                "requestId": {"type": "string"},
                "window": {"$ref": "#/definitions/dto.Window"},
                "metrics": {"type": "object"}
            }
        },
        "dto.SnapshotHistoryResponse": {
            "type": "object",
            "properties": {
                "snapshots": {"type": "array", "items": {"type": "object"}},
                "totalCount": {"type": "integer"}
            }
        },
        "dto.Window": {"type": "object", "properties": {"start": {"type": "string"}, "end": {"type": "string"}}},
        "model.Response": {"type": "object", "properties": {"message": {"type": "string"}, "data": {}}}
    },
    "securityDefinitions": {
        "AuthToken": {"type": "apiKey", "name": "X-Auth-Token", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Communications Metrics API",
	Description:      "Failure details and provider metrics for the messaging analytics dashboard.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
