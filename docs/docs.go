// Package docs registers the OpenAPI document served under /swagger/.
// The annotations on the HTTP handlers are the source; regenerate with
// `swag init -g cmd/shelfwise-core/main.go`.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {
            "name": "Apache 2.0",
            "url": "http://www.apache.org/licenses/LICENSE-2.0.html"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register an account",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/domain.RegisterRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.UserSummary"}},
                    "400": {"description": "Missing or invalid fields", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "409": {"description": "Username taken", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "User login",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/domain.LoginRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.LoginResponse"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh token",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/domain.RefreshRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.LoginResponse"}},
                    "401": {"description": "Invalid refresh token", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/books/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Books"],
                "summary": "Get book",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Book"}},
                    "404": {"description": "Book not found", "schema": {"$ref": "#/definitions/http.MessageResponse"}}
                }
            }
        },
        "/books/search": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Books"],
                "summary": "Search books",
                "parameters": [
                    {"type": "string", "name": "title", "in": "query"},
                    {"type": "string", "name": "category", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.BookSummary"}}}
                }
            }
        },
        "/ml/training-data": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["ML"],
                "summary": "Train the recommender",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.TrainingResult"}},
                    "409": {"description": "Training already in progress", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/ml/predictions": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["ML"],
                "summary": "Recommend books",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/domain.PredictRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Recommendation"}}},
                    "400": {"description": "Missing or unknown title", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "409": {"description": "Artifacts do not match the catalog", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "500": {"description": "Artifacts not found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/ml/user-preferences/{user_id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["ML"],
                "summary": "Recommendation history",
                "parameters": [{"type": "string", "name": "user_id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.PreferenceView"}}},
                    "403": {"description": "Not your history", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "No history", "schema": {"$ref": "#/definitions/http.MessageResponse"}}
                }
            }
        },
        "/ml/status": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["ML"],
                "summary": "Recommender status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.ArtifactManifest"}},
                    "404": {"description": "Not trained yet", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "http.ErrorResponse": {"type": "object", "properties": {"error": {"type": "string", "example": "invalid request body"}}},
        "http.MessageResponse": {"type": "object", "properties": {"msg": {"type": "string"}}},
        "domain.RegisterRequest": {"type": "object", "properties": {"username": {"type": "string"}, "password": {"type": "string"}}},
        "domain.LoginRequest": {"type": "object", "properties": {"username": {"type": "string"}, "password": {"type": "string"}}},
        "domain.RefreshRequest": {"type": "object", "properties": {"refresh_token": {"type": "string"}}},
        "domain.UserSummary": {"type": "object", "properties": {"id": {"type": "string"}, "username": {"type": "string"}, "role": {"type": "string"}, "active": {"type": "boolean"}}},
        "domain.LoginResponse": {"type": "object", "properties": {"token": {"type": "string"}, "refresh_token": {"type": "string"}, "expires_at": {"type": "string"}, "user": {"$ref": "#/definitions/domain.UserSummary"}}},
        "domain.Book": {"type": "object", "properties": {"id": {"type": "integer"}, "upc": {"type": "string"}, "title": {"type": "string"}, "genre": {"type": "string"}, "price": {"type": "number"}, "availability": {"type": "integer"}, "rating": {"type": "string"}, "description": {"type": "string"}, "image_url": {"type": "string"}}},
        "domain.BookSummary": {"type": "object", "properties": {"id": {"type": "integer"}, "title": {"type": "string"}, "genre": {"type": "string"}, "price": {"type": "number"}, "rating": {"type": "string"}, "image_url": {"type": "string"}}},
        "domain.TrainingResult": {"type": "object", "properties": {"msg": {"type": "string"}, "total_records": {"type": "integer"}, "generation": {"type": "string"}}},
        "domain.PredictRequest": {"type": "object", "properties": {"title": {"type": "string"}}},
        "domain.Recommendation": {"type": "object", "properties": {"id": {"type": "integer"}, "title": {"type": "string"}, "similarity_score": {"type": "number"}}},
        "domain.PreferenceView": {"type": "object", "properties": {"id": {"type": "integer"}, "title": {"type": "string"}, "price": {"type": "number"}, "rating": {"type": "string"}, "image_url": {"type": "string"}, "similarity_score": {"type": "number"}}},
        "domain.ArtifactManifest": {"type": "object", "properties": {"generation": {"type": "string"}, "fingerprint": {"type": "string"}, "rows": {"type": "integer"}, "terms": {"type": "integer"}, "trained_at": {"type": "string"}}}
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "JWT Bearer token. Format: \"Bearer {token}\"",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "Shelfwise Core API",
	Description:      "Book catalog API with content-based recommendations.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
