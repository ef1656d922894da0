package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Announcement API",
        "description": "Announcement dispatch and targeting fan-out service",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http"],
    "tags": [
        {"name": "Announcements", "description": "Dispatch announcements and browse the dispatch history"}
    ],
    "paths": {
        "/announcements": {
            "post": {
                "tags": ["Announcements"],
                "summary": "Send an announcement",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/DispatchAnnouncementRequest"}}
                ],
                "responses": {
                    "201": {"description": "Dispatched", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload or targeting", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "500": {"description": "Delivery or audit persistence failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Storage unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/announcements/history": {
            "get": {
                "tags": ["Announcements"],
                "summary": "List the latest 100 announcements, newest first",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Storage unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/announcements/history/export": {
            "get": {
                "tags": ["Announcements"],
                "summary": "Export announcement history",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"in": "query", "name": "format", "type": "string", "enum": ["csv", "pdf"], "default": "csv"}
                ],
                "responses": {
                    "200": {"description": "File download", "schema": {"type": "file"}},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/announcements/test": {
            "get": {
                "tags": ["Announcements"],
                "summary": "Announcement routes liveness probe",
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "definitions": {
        "FilterCriteria": {
            "type": "object",
            "properties": {
                "companies": {"type": "array", "items": {"type": "string"}},
                "positions": {"type": "array", "items": {"type": "string"}},
                "roles": {"type": "array", "items": {"type": "string"}}
            }
        },
        "TargetingSpec": {
            "type": "object",
            "required": ["type"],
            "properties": {
                "type": {"type": "string", "enum": ["all", "filter", "manual"]},
                "filter": {"$ref": "#/definitions/FilterCriteria"},
                "userIds": {"type": "array", "items": {"type": "string"}}
            }
        },
        "DispatchAnnouncementRequest": {
            "type": "object",
            "required": ["title", "body", "targeting"],
            "properties": {
                "title": {"type": "string"},
                "body": {"type": "string"},
                "priority": {"type": "integer", "default": 1},
                "color": {"type": "string", "default": "#f5872dff"},
                "icon": {"type": "string", "default": "paper"},
                "actionUrl": {"type": "string"},
                "targeting": {"$ref": "#/definitions/TargetingSpec"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "detail": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
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
