// Package docs holds the OpenAPI description served at /swagger.
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
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/healthz": {"get": {"tags": ["System"], "summary": "Health check", "responses": {"200": {"description": "OK"}}}},
        "/api/v1/daily_logs": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Progress"], "summary": "List daily logs", "parameters": [{"type": "string", "name": "from", "in": "query"}, {"type": "string", "name": "to", "in": "query"}], "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["Progress"], "summary": "Record daily log", "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/daily_logs/{id}": {
            "put": {"security": [{"BearerAuth": []}], "tags": ["Progress"], "summary": "Update daily log", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["Progress"], "summary": "Delete daily log", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/coach/accounts/{account_id}/daily_logs": {"post": {"security": [{"BearerAuth": []}], "tags": ["Progress"], "summary": "Record daily log for a coached account", "parameters": [{"type": "string", "name": "account_id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/api/v1/statistics": {"get": {"security": [{"BearerAuth": []}], "tags": ["Progress"], "summary": "Get statistics", "responses": {"200": {"description": "OK"}}}},
        "/api/v1/smoking_profile": {"put": {"security": [{"BearerAuth": []}], "tags": ["Progress"], "summary": "Save smoking profile", "responses": {"200": {"description": "OK"}}}},
        "/api/v1/risk": {"get": {"security": [{"BearerAuth": []}], "tags": ["Progress"], "summary": "Get risk report", "responses": {"200": {"description": "OK"}}}},
        "/api/v1/quit_plan/suggested": {"get": {"security": [{"BearerAuth": []}], "tags": ["Progress"], "summary": "Get suggested quit plan", "responses": {"200": {"description": "OK"}}}},
        "/api/v1/subscription": {"get": {"security": [{"BearerAuth": []}], "tags": ["Subscription"], "summary": "Get entitlement", "responses": {"200": {"description": "OK"}}}},
        "/api/v1/subscription/history": {"get": {"security": [{"BearerAuth": []}], "tags": ["Subscription"], "summary": "Subscription history", "responses": {"200": {"description": "OK"}}}},
        "/api/v1/subscription/packages": {"get": {"security": [{"BearerAuth": []}], "tags": ["Subscription"], "summary": "List packages", "responses": {"200": {"description": "OK"}}}},
        "/api/v1/subscription/upgrade": {"post": {"security": [{"BearerAuth": []}], "tags": ["Subscription"], "summary": "Upgrade subscription", "responses": {"200": {"description": "OK"}}}},
        "/api/v1/subscription/cancel": {"post": {"security": [{"BearerAuth": []}], "tags": ["Subscription"], "summary": "Cancel subscription", "responses": {"200": {"description": "OK"}}}},
        "/api/v1/stage/current": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Stage"], "summary": "Current stage (Premium)", "responses": {"200": {"description": "OK"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["Stage"], "summary": "Update current stage (Premium)", "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/stage/history": {"get": {"security": [{"BearerAuth": []}], "tags": ["Stage"], "summary": "Stage history (Premium)", "responses": {"200": {"description": "OK"}}}},
        "/api/v1/stage/advance": {"post": {"security": [{"BearerAuth": []}], "tags": ["Stage"], "summary": "Advance stage (Premium)", "responses": {"200": {"description": "OK"}}}},
        "/api/v1/achievements": {"get": {"security": [{"BearerAuth": []}], "tags": ["Achievement"], "summary": "List achievements", "responses": {"200": {"description": "OK"}}}},
        "/api/v1/achievements/unlocked": {"get": {"security": [{"BearerAuth": []}], "tags": ["Achievement"], "summary": "List unlocked achievements", "responses": {"200": {"description": "OK"}}}},
        "/api/v1/achievements/leaderboard": {"get": {"security": [{"BearerAuth": []}], "tags": ["Achievement"], "summary": "Achievement leaderboard", "parameters": [{"type": "integer", "name": "take", "in": "query"}], "responses": {"200": {"description": "OK"}}}},
        "/api/v1/achievements/check": {"post": {"security": [{"BearerAuth": []}], "tags": ["Achievement"], "summary": "Re-check achievements", "responses": {"200": {"description": "OK"}}}},
        "/api/v1/admin/achievements": {"post": {"security": [{"BearerAuth": []}], "tags": ["Admin"], "summary": "Create achievement (Admin)", "responses": {"200": {"description": "OK"}}}},
        "/api/v1/admin/grant_package": {"post": {"security": [{"BearerAuth": []}], "tags": ["Admin"], "summary": "Grant package (Admin)", "responses": {"200": {"description": "OK"}}}},
        "/api/v1/admin/risk_overview": {"get": {"security": [{"BearerAuth": []}], "tags": ["Admin"], "summary": "Risk overview (Admin)", "responses": {"200": {"description": "OK"}}}},
        "/api/v1/admin/snapshot": {"post": {"security": [{"BearerAuth": []}], "tags": ["Admin"], "summary": "Take subscription snapshot (Admin)", "responses": {"200": {"description": "OK"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8888",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "QuitSmart Backend API",
	Description:      "Entitlement and progression engine for a smoking-cessation platform.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
