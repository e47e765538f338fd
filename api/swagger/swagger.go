package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Study Planner API",
        "description": "Allocates curriculum disciplines into semesters and keeps versioned study plans per student",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Plans", "description": "Plan simulation, previews and saved versions"},
        {"name": "System", "description": "Health and service information"}
    ],
    "paths": {
        "/plans/simulate": {
            "post": {
                "tags": ["Plans"],
                "summary": "Simulate a study plan",
                "description": "Runs the allocation and keeps the result as a preview. Omitted parameters take the service defaults.",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SimulatePlanRequest"}}
                ],
                "responses": {
                    "200": {"description": "Preview", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid curriculum or parameters", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/plans": {
            "post": {
                "tags": ["Plans"],
                "summary": "Save a preview as the next plan version of a student",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SavePlanRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Preview expired or unknown", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "501": {"description": "Persistence disabled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/plans/{id}": {
            "get": {
                "tags": ["Plans"],
                "summary": "Get a stored plan",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Plans"],
                "summary": "Delete a stored plan",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/plans/{id}/export": {
            "get": {
                "tags": ["Plans"],
                "summary": "Export a stored plan",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Rendered document", "schema": {"type": "file"}},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Plan belongs to another student", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/previews/{id}/export": {
            "get": {
                "tags": ["Plans"],
                "summary": "Export a live plan preview",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Rendered document", "schema": {"type": "file"}},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Preview expired", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/cache/plans": {
            "delete": {
                "tags": ["Admin"],
                "summary": "Flush cached planner results",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "Flushed"},
                    "501": {"description": "Result cache disabled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/plans": {
            "get": {
                "tags": ["Plans"],
                "summary": "List a student's plan versions, newest first",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "TimetableInput": {
            "type": "object",
            "properties": {
                "days": {"type": "string", "example": "SEG QUA"},
                "hours": {"type": "string", "example": "AB-M AB-M"},
                "teacher": {"type": "string"}
            }
        },
        "DisciplineInput": {
            "type": "object",
            "required": ["name", "code", "workload", "type"],
            "properties": {
                "name": {"type": "string"},
                "code": {"type": "string"},
                "semester": {"type": "integer"},
                "workload": {"type": "integer"},
                "type": {"type": "string", "enum": ["OBG", "OPT", "REQUIRED", "ELECTIVE"]},
                "attended": {"type": "boolean"},
                "pre_requiriments": {"type": "array", "items": {"type": "string"}},
                "timetables": {"type": "array", "items": {"$ref": "#/definitions/TimetableInput"}}
            }
        },
        "SimulatePlanRequest": {
            "type": "object",
            "required": ["disciplines"],
            "properties": {
                "disciplines": {"type": "array", "items": {"$ref": "#/definitions/DisciplineInput"}},
                "preferred_periods": {"type": "array", "items": {"type": "string", "enum": ["morning", "afternoon", "evening"]}},
                "max_workload": {"type": "integer"},
                "max_optative_workload": {"type": "integer"},
                "current_student_semester": {"type": "integer"},
                "ignore_tcc_period_filter": {"type": "boolean"},
                "strategy": {"type": "string", "enum": ["score", "distance"]}
            }
        },
        "SavePlanRequest": {
            "type": "object",
            "required": ["plan_id", "student_id"],
            "properties": {
                "plan_id": {"type": "string", "format": "uuid"},
                "student_id": {"type": "string"}
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
