package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Student Portfolio Hub API",
        "description": "Achievement review workflow and talent discovery",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Registration and login"},
        {"name": "Achievements", "description": "Submitter-side record lifecycle"},
        {"name": "Reviews", "description": "Faculty review queue and decisions"},
        {"name": "Talent", "description": "Employer-facing search and profiles"},
        {"name": "Profiles", "description": "Owner profile management"},
        {"name": "Exports", "description": "Portfolio downloads"},
        {"name": "Notifications", "description": "Decision notifications"}
    ],
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["Auth"],
                "summary": "Register an account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Email already registered"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Login with email and password",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/achievements": {
            "get": {
                "tags": ["Achievements"],
                "summary": "List the caller's achievements",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Achievements"],
                "summary": "Submit a new achievement for review",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitAchievementRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation failure"}
                }
            }
        },
        "/achievements/{id}": {
            "get": {
                "tags": ["Achievements"],
                "summary": "Get an achievement with its review history",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "delete": {
                "tags": ["Achievements"],
                "summary": "Delete one of the caller's achievements",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "403": {"description": "Not the owner"}
                }
            }
        },
        "/achievements/{id}/resubmit": {
            "post": {
                "tags": ["Achievements"],
                "summary": "Resubmit an achievement after requested changes",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Record is not awaiting changes"}
                }
            }
        },
        "/reviews/queue": {
            "get": {
                "tags": ["Reviews"],
                "summary": "List pending achievements awaiting review",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "category", "in": "query", "type": "string"},
                    {"name": "priority", "in": "query", "type": "string"},
                    {"name": "sort_by", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reviews/{id}/decision": {
            "post": {
                "tags": ["Reviews"],
                "summary": "Approve, reject, or request changes",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DecisionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Feedback missing"},
                    "409": {"description": "Record is not pending"}
                }
            }
        },
        "/reviews/{id}/priority": {
            "put": {
                "tags": ["Reviews"],
                "summary": "Set the review priority of a pending achievement",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PriorityRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/talent/search": {
            "get": {
                "tags": ["Talent"],
                "summary": "Search discoverable talent profiles",
                "parameters": [
                    {"name": "term", "in": "query", "type": "string"},
                    {"name": "skills", "in": "query", "type": "string"},
                    {"name": "majors", "in": "query", "type": "string"},
                    {"name": "locations", "in": "query", "type": "string"},
                    {"name": "years", "in": "query", "type": "string"},
                    {"name": "gpa_min", "in": "query", "type": "number"},
                    {"name": "gpa_max", "in": "query", "type": "number"},
                    {"name": "availability", "in": "query", "type": "string"},
                    {"name": "graduation_year", "in": "query", "type": "integer"},
                    {"name": "sort_by", "in": "query", "type": "string"},
                    {"name": "offset", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid range or pagination"}
                }
            }
        },
        "/talent/facets/{attribute}": {
            "get": {
                "tags": ["Talent"],
                "summary": "List the distinct values of a filterable attribute",
                "parameters": [
                    {"name": "attribute", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Unknown attribute"}
                }
            }
        },
        "/talent/saved": {
            "get": {
                "tags": ["Talent"],
                "summary": "List the calling employer's saved profiles",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/talent/{id}": {
            "get": {
                "tags": ["Talent"],
                "summary": "View a talent profile with its approved achievements",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/talent/{id}/view": {
            "post": {
                "tags": ["Talent"],
                "summary": "Record a profile view",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/talent/{id}/save": {
            "post": {
                "tags": ["Talent"],
                "summary": "Save or unsave a profile",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/profiles/me": {
            "get": {
                "tags": ["Profiles"],
                "summary": "Get the caller's own profile",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Profiles"],
                "summary": "Update the caller's own profile",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateProfileRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/portfolio": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download the caller's approved portfolio",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File download"}
                }
            }
        },
        "/notifications": {
            "get": {
                "tags": ["Notifications"],
                "summary": "List the caller's notifications",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/notifications/{id}/read": {
            "post": {
                "tags": ["Notifications"],
                "summary": "Mark a notification as read",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "RegisterRequest": {
            "type": "object",
            "required": ["email", "password", "name", "role"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "name": {"type": "string"},
                "role": {"type": "string", "enum": ["STUDENT", "FACULTY", "EMPLOYER"]}
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
        "SubmitAchievementRequest": {
            "type": "object",
            "required": ["title", "category"],
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "category": {"type": "string"},
                "skills": {"type": "array", "items": {"type": "string"}},
                "attachments": {"type": "array", "items": {"$ref": "#/definitions/AttachmentInput"}}
            }
        },
        "AttachmentInput": {
            "type": "object",
            "required": ["name", "size_bytes", "media_type"],
            "properties": {
                "name": {"type": "string"},
                "size_bytes": {"type": "integer"},
                "media_type": {"type": "string"}
            }
        },
        "DecisionRequest": {
            "type": "object",
            "required": ["decision"],
            "properties": {
                "decision": {"type": "string", "enum": ["APPROVE", "REJECT", "REQUEST_CHANGES"]},
                "feedback": {"type": "string"}
            }
        },
        "PriorityRequest": {
            "type": "object",
            "required": ["priority"],
            "properties": {
                "priority": {"type": "string", "enum": ["high", "medium", "low"]}
            }
        },
        "UpdateProfileRequest": {
            "type": "object",
            "properties": {
                "major": {"type": "string"},
                "location": {"type": "string"},
                "graduation_year": {"type": "integer"},
                "gpa": {"type": "number"},
                "bio": {"type": "string"},
                "roles": {"type": "array", "items": {"type": "string"}},
                "available": {"type": "boolean"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
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
