// Package docs holds the OpenAPI document served at /swagger.
// Regenerate with: swag init -g cmd/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support",
            "url": "https://github.com/guttosm/macro-service"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/products": {
            "get": {"tags": ["Products"], "summary": "List products", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/SuccessResponse"}}}},
            "post": {"tags": ["Products"], "summary": "Add a product", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/SuccessResponse"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ErrorResponse"}}}}
        },
        "/api/products/{id}": {
            "get": {"tags": ["Products"], "summary": "Get a product", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/SuccessResponse"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ErrorResponse"}}}},
            "patch": {"tags": ["Products"], "summary": "Update a product", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/SuccessResponse"}}}},
            "delete": {"tags": ["Products"], "summary": "Remove a product", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/SuccessResponse"}}}}
        },
        "/api/products/starter": {
            "post": {"tags": ["Products"], "summary": "Replace the catalog with the starter products", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/SuccessResponse"}}}}
        },
        "/api/planner": {
            "get": {"tags": ["Planner"], "summary": "Planner state", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/SuccessResponse"}}}}
        },
        "/api/planner/plans": {
            "post": {"tags": ["Planner"], "summary": "Add a plan", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/SuccessResponse"}}}}
        },
        "/api/planner/plans/{planId}/summary": {
            "get": {"tags": ["Planner"], "summary": "Plan totals, targets and grades", "parameters": [{"type": "string", "description": "Plan id or active", "name": "planId", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/SuccessResponse"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ErrorResponse"}}}}
        },
        "/api/planner/plans/{planId}/export.csv": {
            "get": {"tags": ["Planner"], "summary": "Export a plan as CSV", "produces": ["text/csv"], "parameters": [{"type": "string", "name": "planId", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/planner/plans/{planId}/meals/{meal}/balance": {
            "post": {"tags": ["Planner"], "summary": "Auto-balance a meal toward a target", "parameters": [{"type": "string", "name": "planId", "in": "path", "required": true}, {"type": "integer", "name": "meal", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/SuccessResponse"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ErrorResponse"}}}}
        },
        "/api/share/link": {
            "post": {"tags": ["Share"], "summary": "Create a share link", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/SuccessResponse"}}}}
        },
        "/api/share/preview": {
            "post": {"tags": ["Share"], "summary": "Decode a share link without importing", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/SuccessResponse"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ErrorResponse"}}}}
        },
        "/api/share/import": {
            "post": {"tags": ["Share"], "summary": "Import a share link", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/SuccessResponse"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ErrorResponse"}}}}
        },
        "/api/session": {
            "get": {"tags": ["Session"], "summary": "First-run session state", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/SuccessResponse"}}}}
        },
        "/api/session/start": {
            "post": {"tags": ["Session"], "summary": "Start a session", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/SuccessResponse"}}}}
        },
        "/api/transfer/{kind}": {
            "get": {"tags": ["Transfer"], "summary": "Export products, planner or backup", "parameters": [{"enum": ["products", "planner", "backup"], "type": "string", "name": "kind", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Transfer"], "summary": "Import products, planner or backup", "consumes": ["application/json", "multipart/form-data"], "parameters": [{"enum": ["products", "planner", "backup"], "type": "string", "name": "kind", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/SuccessResponse"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ErrorResponse"}}}}
        },
        "/api/lookup/products": {
            "get": {"tags": ["Lookup"], "summary": "Search the food database", "parameters": [{"type": "string", "name": "q", "in": "query", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/SuccessResponse"}}, "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/ErrorResponse"}}}}
        },
        "/api/labels/parse": {
            "post": {"tags": ["Lookup"], "summary": "Parse nutrition label text", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/SuccessResponse"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ErrorResponse"}}}}
        },
        "/healthz": {
            "get": {"tags": ["Health"], "summary": "Liveness probe", "responses": {"200": {"description": "Service is alive"}}}
        },
        "/readyz": {
            "get": {"tags": ["Health"], "summary": "Readiness probe", "responses": {"200": {"description": "Service is ready"}, "503": {"description": "Service is not ready"}}}
        }
    },
    "definitions": {
        "SuccessResponse": {
            "type": "object",
            "properties": {
                "data": {},
                "message": {"type": "string"},
                "request_id": {"type": "string"},
                "timestamp": {"type": "string"}
            }
        },
        "ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "message": {"type": "string"},
                "details": {"type": "object", "additionalProperties": {"type": "string"}},
                "request_id": {"type": "string"},
                "timestamp": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Macro Service API",
	Description:      "Meal-planning macro engine: product catalog, meal plans with daily totals, auto-balance, share links, JSON backups and food database lookup.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
