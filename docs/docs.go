// Package docs registers the OpenAPI description served at /swagger.
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
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Operator login",
                "parameters": [
                    {"description": "Admin password", "name": "input", "in": "body", "required": true,
                     "schema": {"type": "object", "properties": {"password": {"type": "string"}}}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.Session"}},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/tournaments": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["tournaments"],
                "summary": "List tournaments",
                "parameters": [
                    {"type": "string", "name": "status", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "integer", "name": "offset", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["tournaments"],
                "summary": "Create a tournament",
                "parameters": [
                    {"description": "Tournament", "name": "input", "in": "body", "required": true,
                     "schema": {"$ref": "#/definitions/services.CreateTournamentInput"}}
                ],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/tournaments/{tournamentID}/standings": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["standings"],
                "summary": "Current standings of a tournament",
                "parameters": [
                    {"type": "integer", "description": "Tournament ID", "name": "tournamentID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/standings.Result"}},
                    "422": {"description": "Malformed games or schedule"}
                }
            }
        },
        "/portal/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["portal"],
                "summary": "Team login with access code",
                "parameters": [
                    {"description": "Credentials", "name": "input", "in": "body", "required": true,
                     "schema": {"type": "object", "properties": {
                        "tournament_id": {"type": "integer"},
                        "team_number": {"type": "integer"},
                        "access_code": {"type": "string"}}}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.Session"}},
                    "401": {"description": "Unauthorized"},
                    "429": {"description": "Too many attempts"}
                }
            }
        }
    },
    "definitions": {
        "services.Session": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "expires_at": {"type": "string"}
            }
        },
        "services.CreateTournamentInput": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "location": {"type": "string"},
                "rounds": {"type": "integer"},
                "tables": {"type": "integer"}
            }
        },
        "standings.Result": {
            "type": "object",
            "properties": {
                "num_rounds": {"type": "integer"},
                "teams": {"type": "array", "items": {"type": "object"}},
                "results": {"type": "object"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Card League API",
	Description:      "Tournament results, standings and exports for a card-game league.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
