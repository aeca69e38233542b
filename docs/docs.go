// Package docs registers the OpenAPI document served at /swagger.
// Regenerate with: swag init -g cmd/api/main.go
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
        "/groups": {
            "get": {
                "produces": ["application/json"],
                "tags": ["groups"],
                "summary": "List groups",
                "parameters": [
                    {"type": "integer", "default": 1, "description": "Page number", "name": "page", "in": "query"},
                    {"type": "integer", "default": 20, "description": "Items per page", "name": "per_page", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.APIResponse"}}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["groups"],
                "summary": "Create a new group",
                "parameters": [
                    {"description": "Group creation request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/group.CreateGroupRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/response.APIResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.APIResponse"}}
                }
            }
        },
        "/groups/{groupId}/players": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["players"],
                "summary": "Add a player",
                "parameters": [
                    {"type": "string", "description": "Group ID", "name": "groupId", "in": "path", "required": true},
                    {"description": "Player creation request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/player.CreatePlayerRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/response.APIResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/response.APIResponse"}}
                }
            }
        },
        "/groups/{groupId}/sessions": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Record a session",
                "parameters": [
                    {"type": "string", "description": "Group ID", "name": "groupId", "in": "path", "required": true},
                    {"description": "Session creation request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/session.CreateSessionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/response.APIResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/response.APIResponse"}}
                }
            }
        },
        "/groups/{groupId}/sessions/{sessionId}/end": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "End a live session",
                "parameters": [
                    {"type": "string", "description": "Group ID", "name": "groupId", "in": "path", "required": true},
                    {"type": "string", "description": "Session ID", "name": "sessionId", "in": "path", "required": true},
                    {"description": "Cash-outs", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/session.EndSessionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.APIResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/response.APIResponse"}}
                }
            }
        },
        "/groups/{groupId}/stats/leaderboard": {
            "get": {
                "produces": ["application/json"],
                "tags": ["stats"],
                "summary": "Get the group leaderboard",
                "parameters": [
                    {"type": "string", "description": "Group ID", "name": "groupId", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.APIResponse"}}}
            }
        },
        "/groups/{groupId}/stats/sessions/{sessionId}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["stats"],
                "summary": "Get a session summary",
                "parameters": [
                    {"type": "string", "description": "Group ID", "name": "groupId", "in": "path", "required": true},
                    {"type": "string", "description": "Session ID", "name": "sessionId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.APIResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.APIResponse"}}
                }
            }
        },
        "/settlements/preview": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["settlements"],
                "summary": "Preview settlements",
                "parameters": [
                    {"description": "Session entries", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/settlement.PreviewRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.APIResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/response.APIResponse"}}
                }
            }
        }
    },
    "definitions": {
        "response.APIError": {
            "type": "object",
            "properties": {"code": {"type": "string"}, "message": {"type": "string"}}
        },
        "response.APIResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {},
                "error": {"$ref": "#/definitions/response.APIError"}
            }
        },
        "group.CreateGroupRequest": {
            "type": "object",
            "properties": {"name": {"type": "string"}, "default_buy_in": {"type": "number"}}
        },
        "player.CreatePlayerRequest": {
            "type": "object",
            "properties": {"name": {"type": "string"}}
        },
        "session.EntryInput": {
            "type": "object",
            "properties": {"player_id": {"type": "string"}, "buy_in": {"type": "number"}, "cash_out": {"type": "number"}}
        },
        "session.CreateSessionRequest": {
            "type": "object",
            "properties": {
                "date": {"type": "string", "example": "2024-03-01"},
                "location": {"type": "string"},
                "notes": {"type": "string"},
                "live": {"type": "boolean"},
                "entries": {"type": "array", "items": {"$ref": "#/definitions/session.EntryInput"}}
            }
        },
        "session.CashOutInput": {
            "type": "object",
            "properties": {"player_id": {"type": "string"}, "cash_out": {"type": "number"}}
        },
        "session.EndSessionRequest": {
            "type": "object",
            "properties": {"cash_outs": {"type": "array", "items": {"$ref": "#/definitions/session.CashOutInput"}}}
        },
        "settlement.Entry": {
            "type": "object",
            "properties": {
                "player_id": {"type": "string"},
                "player_name": {"type": "string"},
                "buy_in": {"type": "number"},
                "cash_out": {"type": "number"}
            }
        },
        "settlement.PreviewRequest": {
            "type": "object",
            "properties": {"entries": {"type": "array", "items": {"$ref": "#/definitions/settlement.Entry"}}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Pokerbook API",
	Description:      "Poker group session tracking: sessions, settlements, leaderboards and session summaries.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
