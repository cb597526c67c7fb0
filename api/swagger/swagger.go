package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "PhishWise API",
        "description": "Phishing-awareness training service: schools, simulation ledger, dashboards",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Authentication", "description": "Account registration and token lifecycle"},
        {"name": "Schools", "description": "School directory and invite codes"},
        {"name": "Simulations", "description": "Per-user simulation ledger, clicks and training completion"},
        {"name": "Users", "description": "Profile and metrics"},
        {"name": "Dashboard", "description": "Manager school overview"},
        {"name": "Campaigns", "description": "Template catalog and campaign dispatch"},
        {"name": "Reports", "description": "Exported school reports"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/auth/register": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/TokenPair"}},
                    "409": {"description": "Email already registered", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/TokenPair"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/TokenPair"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Logout current session",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/schools": {
            "get": {
                "tags": ["Schools"],
                "summary": "Get own school",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/SchoolBody"}}
                }
            },
            "post": {
                "tags": ["Schools"],
                "summary": "Create school and become manager",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSchoolRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/SchoolBody"}},
                    "409": {"description": "Already in a school", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/schools/join": {
            "post": {
                "tags": ["Schools"],
                "summary": "Join school via invite code",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/JoinSchoolRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/SchoolBody"}},
                    "404": {"description": "Invalid invite code", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "409": {"description": "Already in a school", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/schools/report": {
            "get": {
                "tags": ["Reports"],
                "summary": "Export school risk report",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Report file"}
                }
            }
        },
        "/simulations": {
            "get": {
                "tags": ["Simulations"],
                "summary": "List own simulations",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "offset", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/SimulationList"}}
                }
            },
            "post": {
                "tags": ["Simulations"],
                "summary": "Record a simulation click",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ClickRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ClickResult"}},
                    "404": {"description": "Simulation not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/simulations/{id}/complete": {
            "post": {
                "tags": ["Simulations"],
                "summary": "Complete training for a clicked simulation",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "Simulation not clicked yet", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/users": {
            "get": {
                "tags": ["Users"],
                "summary": "Get profile with metrics",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/dashboard/school": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "School overview with per-member performance",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Manager role required", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/templates": {
            "get": {
                "tags": ["Campaigns"],
                "summary": "List phishing templates",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/campaigns": {
            "post": {
                "tags": ["Campaigns"],
                "summary": "Dispatch a campaign to every school member",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DispatchRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "403": {"description": "Manager role required", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        }
    },
    "definitions": {
        "ErrorBody": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
            }
        },
        "RegisterRequest": {
            "type": "object",
            "required": ["email", "name", "password"],
            "properties": {
                "email": {"type": "string"},
                "name": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "RefreshRequest": {
            "type": "object",
            "required": ["refresh_token"],
            "properties": {
                "refresh_token": {"type": "string"}
            }
        },
        "TokenPair": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "refresh_token": {"type": "string"},
                "expires_in": {"type": "integer"},
                "user": {"type": "object"}
            }
        },
        "CreateSchoolRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string"}
            }
        },
        "JoinSchoolRequest": {
            "type": "object",
            "required": ["inviteCode"],
            "properties": {
                "inviteCode": {"type": "string"}
            }
        },
        "SchoolBody": {
            "type": "object",
            "properties": {
                "school": {"type": "object"}
            }
        },
        "ClickRequest": {
            "type": "object",
            "required": ["simulationId"],
            "properties": {
                "simulationId": {"type": "string"}
            }
        },
        "ClickResult": {
            "type": "object",
            "properties": {
                "clicked": {"type": "boolean"},
                "moduleId": {"type": "string"}
            }
        },
        "SimulationList": {
            "type": "object",
            "properties": {
                "simulations": {"type": "array", "items": {"type": "object"}},
                "total": {"type": "integer"}
            }
        },
        "DispatchRequest": {
            "type": "object",
            "required": ["templateId", "name"],
            "properties": {
                "templateId": {"type": "string"},
                "name": {"type": "string"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
