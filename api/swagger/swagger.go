package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "NCC Attendance API",
        "description": "Parade attendance tracking for NCC cadets",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Authentication and access tiers"},
        {"name": "Students", "description": "Cadet roster management"},
        {"name": "Parades", "description": "Parade scheduling"},
        {"name": "Attendance", "description": "Attendance marking"},
        {"name": "Reports", "description": "Attendance reports and dashboard"},
        {"name": "Email", "description": "Report email dispatch"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate and obtain an access token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"},
                    "403": {"description": "Not authorized to access the system"}
                }
            }
        },
        "/auth/register": {
            "post": {
                "tags": ["Auth"],
                "summary": "Register a new account (starts unauthorized)",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Username taken"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Return the authenticated principal",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "branch", "in": "query", "type": "string"},
                    {"name": "category", "in": "query", "type": "string"},
                    {"name": "include_inactive", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Students"],
                "summary": "Register a student (admin)",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateStudentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Duplicate regimental or roll number"}
                }
            }
        },
        "/students/import": {
            "post": {
                "tags": ["Students"],
                "summary": "Bulk import students from CSV (admin)",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "type": "file", "required": true}
                ],
                "responses": {
                    "200": {"description": "Import summary", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/filters/branches": {
            "get": {
                "tags": ["Students"],
                "summary": "List branch codes with display labels",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/students/{id}": {
            "get": {
                "tags": ["Students"],
                "summary": "Get a student",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            },
            "put": {
                "tags": ["Students"],
                "summary": "Update a student (admin)",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateStudentRequest"}}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "delete": {
                "tags": ["Students"],
                "summary": "Deactivate a student (admin, soft delete)",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/parades": {
            "get": {
                "tags": ["Parades"],
                "summary": "List parades",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "type", "in": "query", "type": "string"},
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Parades"],
                "summary": "Schedule a parade (admin)",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateParadeRequest"}}
                ],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/parades/{id}": {
            "get": {
                "tags": ["Parades"],
                "summary": "Get a parade",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            },
            "put": {
                "tags": ["Parades"],
                "summary": "Update a parade (admin)",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}}
            },
            "delete": {
                "tags": ["Parades"],
                "summary": "Delete a parade and its attendance (super admin)",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"204": {"description": "No Content"}, "403": {"description": "Super admin required"}}
            }
        },
        "/parades/{id}/status": {
            "patch": {
                "tags": ["Parades"],
                "summary": "Change a parade's lifecycle status (admin)",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/attendance": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Mark attendance for one student (admin)",
                "description": "Re-marking the same (parade, student) pair overwrites the earlier record.",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MarkRequest"}}
                ],
                "responses": {
                    "200": {"description": "Existing record overwritten"},
                    "201": {"description": "New record created"}
                }
            }
        },
        "/attendance/batch": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Mark attendance for many students (admin)",
                "description": "Entries fail independently; the response lists created, updated and per-entry errors.",
                "responses": {
                    "200": {"description": "All entries written"},
                    "207": {"description": "Completed with per-entry errors"}
                }
            }
        },
        "/attendance/{id}": {
            "put": {
                "tags": ["Attendance"],
                "summary": "Correct an attendance record (admin)",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}}
            },
            "delete": {
                "tags": ["Attendance"],
                "summary": "Delete an attendance record (super admin)",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/attendance/parade/{id}": {
            "get": {
                "tags": ["Attendance"],
                "summary": "List attendance for a parade",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/attendance/student/{id}": {
            "get": {
                "tags": ["Attendance"],
                "summary": "List a student's attendance history",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/reports/branch/{branch}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Branch attendance report",
                "parameters": [
                    {"name": "branch", "in": "path", "type": "string", "required": true},
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/reports/branch/{branch}/export": {
            "get": {
                "tags": ["Reports"],
                "summary": "Export a branch report as CSV, PDF or JSON",
                "parameters": [
                    {"name": "branch", "in": "path", "type": "string", "required": true},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf", "json"]}
                ],
                "responses": {"200": {"description": "File download"}}
            }
        },
        "/reports/daily": {
            "get": {
                "tags": ["Reports"],
                "summary": "Per-parade reports for one day",
                "parameters": [{"name": "date", "in": "query", "type": "string"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/reports/matrix": {
            "get": {
                "tags": ["Reports"],
                "summary": "Attendance matrix of students against parades",
                "parameters": [
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"},
                    {"name": "branch", "in": "query", "type": "string"},
                    {"name": "category", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/reports/parade/{id}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Aggregated attendance for one parade",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/reports/student/{id}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Aggregated attendance history for one student",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/reports/dashboard": {
            "get": {
                "tags": ["Reports"],
                "summary": "Cached overview statistics",
                "parameters": [{"name": "refresh", "in": "query", "type": "boolean"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/email/branches": {
            "get": {
                "tags": ["Email"],
                "summary": "List branches with their configured department inboxes (admin)",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/email/weekly/{branch}": {
            "post": {
                "tags": ["Email"],
                "summary": "Queue the weekly report email for one branch (admin)",
                "parameters": [{"name": "branch", "in": "path", "type": "string", "required": true}],
                "responses": {"202": {"description": "Queued"}}
            }
        },
        "/email/weekly-all": {
            "post": {
                "tags": ["Email"],
                "summary": "Queue weekly report emails for every branch (admin)",
                "responses": {
                    "202": {"description": "All queued"},
                    "207": {"description": "Queued with per-branch failures"}
                }
            }
        },
        "/email/daily-parade": {
            "post": {
                "tags": ["Email"],
                "summary": "Queue daily parade report emails per parade and branch (admin)",
                "parameters": [{"name": "date", "in": "query", "type": "string"}],
                "responses": {
                    "202": {"description": "All queued"},
                    "207": {"description": "Queued with per-branch failures"}
                }
            }
        },
        "/email/test": {
            "post": {
                "tags": ["Email"],
                "summary": "Queue a test email (admin)",
                "responses": {"202": {"description": "Queued"}}
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "RegisterRequest": {
            "type": "object",
            "required": ["username", "password", "full_name"],
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"},
                "full_name": {"type": "string"},
                "email": {"type": "string"},
                "role": {"type": "string"}
            }
        },
        "CreateStudentRequest": {
            "type": "object",
            "required": ["name", "regimental_number", "roll_number", "category", "branch", "address"],
            "properties": {
                "name": {"type": "string"},
                "regimental_number": {"type": "string"},
                "roll_number": {"type": "string"},
                "category": {"type": "string", "enum": ["C", "B1", "B2"]},
                "branch": {"type": "string"},
                "rank": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "address": {"type": "string"}
            }
        },
        "CreateParadeRequest": {
            "type": "object",
            "required": ["name", "type", "date"],
            "properties": {
                "name": {"type": "string"},
                "type": {"type": "string"},
                "date": {"type": "string", "format": "date-time"},
                "time_of_day": {"type": "string"},
                "location": {"type": "string"},
                "instructor": {"type": "string"},
                "description": {"type": "string"},
                "max_participants": {"type": "integer"},
                "requirements": {"type": "array", "items": {"type": "string"}},
                "status": {"type": "string"}
            }
        },
        "MarkRequest": {
            "type": "object",
            "required": ["parade_id", "student_id", "status"],
            "properties": {
                "parade_id": {"type": "string"},
                "student_id": {"type": "string"},
                "status": {"type": "string", "enum": ["Present", "Absent", "Late", "Excused"]},
                "remarks": {"type": "string"}
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
