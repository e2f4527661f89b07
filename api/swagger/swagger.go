package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Campus Schedule API",
        "description": "Class scheduling with conflict detection, room availability and calendar views",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Authentication and session management"},
        {"name": "Schedules", "description": "Schedule entries and conflict detection"},
        {"name": "Availability", "description": "Room availability queries"},
        {"name": "Calendar", "description": "Day, week and month views"},
        {"name": "Rooms", "description": "Room catalog and CSV import"},
        {"name": "Subjects", "description": "Subject catalog"},
        {"name": "Instructors", "description": "Instructor catalog"},
        {"name": "Sections", "description": "Section catalog"},
        {"name": "Exports", "description": "Schedule file exports"}
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
        "/schedules": {
            "get": {
                "tags": ["Schedules"],
                "summary": "List schedule entries",
                "parameters": [
                    {"name": "sectionId", "in": "query", "type": "string"},
                    {"name": "subjectId", "in": "query", "type": "string"},
                    {"name": "roomId", "in": "query", "type": "string"},
                    {"name": "instructorId", "in": "query", "type": "string"},
                    {"name": "day", "in": "query", "type": "string"},
                    {"name": "kind", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Schedules"],
                "summary": "Create schedule entry, optionally with a laboratory component",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateScheduleRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Conflicts detected, report in data", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/{id}": {
            "get": {
                "tags": ["Schedules"],
                "summary": "Get schedule entry",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Schedules"],
                "summary": "Update schedule entry",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Conflicts detected, report in data", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Schedules"],
                "summary": "Delete schedule entry",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/schedules/check-conflicts": {
            "post": {
                "tags": ["Schedules"],
                "summary": "Run conflict detection without saving",
                "parameters": [
                    {"name": "excludeId", "in": "query", "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "Conflict report", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/rooms/availability": {
            "post": {
                "tags": ["Availability"],
                "summary": "Query free rooms for a day and time selection",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AvailabilityRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/rooms": {
            "get": {
                "tags": ["Rooms"],
                "summary": "List rooms",
                "parameters": [
                    {"name": "type", "in": "query", "type": "string"},
                    {"name": "floor", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Rooms"],
                "summary": "Create room",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RoomRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/rooms/import": {
            "post": {
                "tags": ["Rooms"],
                "summary": "Bulk import rooms from CSV",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "200": {"description": "Import result", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/calendar/week": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Weekly recurring schedule grid",
                "parameters": [
                    {"name": "sectionId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/calendar/day": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Blocks for one calendar date",
                "parameters": [
                    {"name": "sectionId", "in": "query", "type": "string"},
                    {"name": "date", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/calendar/month": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Month grid with entry counts",
                "parameters": [
                    {"name": "sectionId", "in": "query", "type": "string"},
                    {"name": "year", "in": "query", "required": true, "type": "integer"},
                    {"name": "month", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports": {
            "post": {
                "tags": ["Exports"],
                "summary": "Generate a schedule export file",
                "parameters": [
                    {"name": "format", "in": "query", "required": true, "type": "string"},
                    {"name": "sectionId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/download": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a generated export by signed token",
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File stream"},
                    "403": {"description": "Invalid or expired token"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "TimeFields": {
            "type": "object",
            "required": ["hour", "minute", "period"],
            "properties": {
                "hour": {"type": "string"},
                "minute": {"type": "string"},
                "period": {"type": "string", "enum": ["AM", "PM"]}
            }
        },
        "EntryPayload": {
            "type": "object",
            "required": ["room_id", "instructor_id", "start_time", "end_time", "days"],
            "properties": {
                "room_id": {"type": "string"},
                "instructor_id": {"type": "string"},
                "start_time": {"$ref": "#/definitions/TimeFields"},
                "end_time": {"$ref": "#/definitions/TimeFields"},
                "days": {"type": "array", "items": {"type": "string"}}
            }
        },
        "CreateScheduleRequest": {
            "type": "object",
            "required": ["section_id", "subject_id", "lecture"],
            "properties": {
                "section_id": {"type": "string"},
                "subject_id": {"type": "string"},
                "color": {"type": "string"},
                "lecture": {"$ref": "#/definitions/EntryPayload"},
                "lab": {"$ref": "#/definitions/EntryPayload"},
                "force": {"type": "boolean"}
            }
        },
        "UpdateScheduleRequest": {
            "type": "object",
            "required": ["section_id", "subject_id", "entry"],
            "properties": {
                "section_id": {"type": "string"},
                "subject_id": {"type": "string"},
                "color": {"type": "string"},
                "entry": {"$ref": "#/definitions/EntryPayload"},
                "force": {"type": "boolean"}
            }
        },
        "AvailabilityRequest": {
            "type": "object",
            "required": ["days", "start_time", "end_time"],
            "properties": {
                "room_type": {"type": "string"},
                "days": {"type": "array", "items": {"type": "string"}},
                "start_time": {"$ref": "#/definitions/TimeFields"},
                "end_time": {"$ref": "#/definitions/TimeFields"},
                "selected_room_id": {"type": "string"},
                "exclude_entry_ids": {"type": "array", "items": {"type": "string"}}
            }
        },
        "RoomRequest": {
            "type": "object",
            "required": ["name", "floor", "type"],
            "properties": {
                "name": {"type": "string"},
                "floor": {"type": "string"},
                "type": {"type": "string", "enum": ["lecture", "laboratory"]},
                "capacity": {"type": "integer"},
                "status": {"type": "string", "enum": ["available", "maintenance", "retired"]}
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
