// Package docs registers the OpenAPI document for the DuckSnap API.
// Regenerate with `swag init -g cmd/app/main.go -o docs`.
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
        "/auth/register": {"post": {"tags": ["auth"], "summary": "Register a new account", "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/dto.RegisterRequest"}}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.UserResponse"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}}}},
        "/auth/login": {"post": {"tags": ["auth"], "summary": "Sign in", "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/dto.LoginRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.UserResponse"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}}}},
        "/auth/logout": {"post": {"tags": ["auth"], "summary": "Sign out", "responses": {"204": {"description": "No Content"}}}},
        "/auth/me": {"get": {"tags": ["auth"], "summary": "Current user", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.UserResponse"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}}}},
        "/subscription": {"get": {"tags": ["subscription"], "summary": "Current subscription", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/service.SubscriptionStatus"}}}}},
        "/subscription/upgrade": {"post": {"tags": ["subscription"], "summary": "Upgrade to premium", "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/dto.UpgradeRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/service.SubscriptionStatus"}}, "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.CheckoutResponse"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}}}},
        "/subscription/cancel": {"post": {"tags": ["subscription"], "summary": "Cancel premium at period end", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/service.SubscriptionStatus"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}}}},
        "/pricing/plans": {"get": {"tags": ["pricing"], "summary": "Pricing plans", "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/dto.PlanResponse"}}}}}},
        "/paypal/webhook": {"post": {"tags": ["paypal"], "summary": "PayPal approval callback", "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/dto.PayPalWebhookRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.WebhookResponse"}}, "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}}}},
        "/paypal/events": {"post": {"tags": ["paypal"], "summary": "PayPal event notifications", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.WebhookResponse"}}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}, "500": {"description": "Internal Server Error"}}}},
        "/competitor-analysis": {"get": {"tags": ["analysis"], "summary": "Latest competitor analysis", "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/dto.UpgradeRequiredResponse"}}}}},
        "/competitor-analysis/generate": {"post": {"tags": ["analysis"], "summary": "Generate a competitor analysis", "responses": {"201": {"description": "Created"}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/dto.UpgradeRequiredResponse"}}, "409": {"description": "Conflict"}, "429": {"description": "Too Many Requests"}}}},
        "/dashboard": {"get": {"tags": ["dashboard"], "summary": "Dashboard data", "responses": {"200": {"description": "OK"}}}},
        "/support/tickets": {
            "get": {"tags": ["support"], "summary": "List my support tickets", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["support"], "summary": "Submit a support ticket", "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/dto.TicketRequest"}}], "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ToastResponse"}}}}
        },
        "/help/faq": {"get": {"tags": ["help"], "summary": "Help page FAQ", "responses": {"200": {"description": "OK"}}}},
        "/help/prerequisites": {"get": {"tags": ["help"], "summary": "Snapchat connection prerequisites", "responses": {"200": {"description": "OK"}}}},
        "/settings": {
            "get": {"tags": ["settings"], "summary": "Settings page data", "responses": {"200": {"description": "OK"}}},
            "patch": {"tags": ["settings"], "summary": "Update profile settings", "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/dto.SettingsUpdateRequest"}}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}}
        },
        "/connect/snapchat": {
            "get": {"tags": ["connect"], "summary": "Start Snapchat linking", "responses": {"302": {"description": "Found"}}},
            "delete": {"tags": ["connect"], "summary": "Unlink Snapchat", "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found"}}}
        },
        "/connect/snapchat/callback": {"get": {"tags": ["connect"], "summary": "Snapchat OAuth2 callback", "parameters": [{"in": "query", "name": "code", "type": "string", "required": true}, {"in": "query", "name": "state", "type": "string", "required": true}], "responses": {"302": {"description": "Found"}, "400": {"description": "Bad Request"}}}},
        "/connect/snapchat/sync": {"post": {"tags": ["connect"], "summary": "Request a manual sync", "responses": {"202": {"description": "Accepted"}, "429": {"description": "Too Many Requests"}}}},
        "/connect/status": {"get": {"tags": ["connect"], "summary": "Snapchat link status", "responses": {"200": {"description": "OK"}}}},
        "/reports/history": {"get": {"tags": ["reports"], "summary": "Snapshot history within the plan's retention window", "responses": {"200": {"description": "OK"}}}},
        "/reports/export": {"post": {"tags": ["reports"], "summary": "Export history", "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/dto.ExportRequest"}}], "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/dto.UpgradeRequiredResponse"}}}}},
        "/insights": {"get": {"tags": ["reports"], "summary": "Recent AI insights", "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/dto.UpgradeRequiredResponse"}}}}}
    },
    "definitions": {
        "dto.ErrorResponse": {"type": "object", "properties": {"error": {"type": "string"}}},
        "dto.UpgradeRequiredResponse": {"type": "object", "properties": {"error": {"type": "string"}, "upgradeRequired": {"type": "boolean"}, "upgradePrompt": {"type": "string"}}},
        "dto.ToastResponse": {"type": "object", "properties": {"title": {"type": "string"}, "description": {"type": "string"}}},
        "dto.RegisterRequest": {"type": "object", "required": ["username", "email", "password"], "properties": {"username": {"type": "string"}, "email": {"type": "string"}, "password": {"type": "string"}}},
        "dto.LoginRequest": {"type": "object", "required": ["username", "password"], "properties": {"username": {"type": "string"}, "password": {"type": "string"}}},
        "dto.UserResponse": {"type": "object", "properties": {"id": {"type": "integer"}, "username": {"type": "string"}, "email": {"type": "string"}, "subscription": {"type": "string"}, "subscriptionExpiresAt": {"type": "string"}, "createdAt": {"type": "string"}}},
        "dto.UpgradeRequest": {"type": "object", "required": ["plan"], "properties": {"plan": {"type": "string"}, "subscriptionId": {"type": "string"}}},
        "dto.CheckoutResponse": {"type": "object", "properties": {"approvalUrl": {"type": "string"}, "subscriptionId": {"type": "string"}}},
        "dto.PayPalWebhookRequest": {"type": "object", "required": ["subscriptionId", "payerId"], "properties": {"subscriptionId": {"type": "string"}, "payerId": {"type": "string"}}},
        "dto.WebhookResponse": {"type": "object", "properties": {"success": {"type": "boolean"}, "message": {"type": "string"}}},
        "dto.PlanResponse": {"type": "object", "properties": {"id": {"type": "string"}, "name": {"type": "string"}, "tier": {"type": "string"}, "billingPeriod": {"type": "string"}, "price": {"type": "string", "example": "19.99"}, "currency": {"type": "string"}, "features": {"type": "array", "items": {"type": "string"}}}},
        "dto.TicketRequest": {"type": "object", "properties": {"subject": {"type": "string"}, "message": {"type": "string"}}},
        "dto.SettingsUpdateRequest": {"type": "object", "properties": {"email": {"type": "string"}}},
        "dto.ExportRequest": {"type": "object", "required": ["format"], "properties": {"format": {"type": "string", "enum": ["csv", "json"]}}},
        "service.SubscriptionStatus": {"type": "object", "properties": {"plan": {"type": "string"}, "planId": {"type": "string"}, "status": {"type": "string"}, "expiresAt": {"type": "string"}, "isPremium": {"type": "boolean"}, "cancelAtPeriodEnd": {"type": "boolean"}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{"http", "https"},
	Title:            "DuckSnap API",
	Description:      "DuckShots SnapAlytics API documentation",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
