package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "ClotSync API",
        "description": "Blood donation coordination platform",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "tags": [
        {"name": "Authentication", "description": "Hospital and donor login"},
        {"name": "Donors", "description": "Donor registration, eligibility and ranking"},
        {"name": "Hospitals", "description": "Hospital accounts, inventory and fulfilment"},
        {"name": "Requests", "description": "Blood request lifecycle"},
        {"name": "Patients", "description": "Patient lookups and resource finder"}
    ],
    "paths": {
        "/auth/hospital/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate hospital",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/HospitalLoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/donor/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate donor",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DonorLoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Get current actor",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/donors": {
            "get": {
                "tags": ["Donors"],
                "summary": "List donors",
                "parameters": [
                    {"name": "bloodType", "in": "query", "type": "string"},
                    {"name": "available", "in": "query", "type": "boolean"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Donors"],
                "summary": "Register donor",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterDonorRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Contact already registered"}
                }
            }
        },
        "/donors/export": {
            "get": {
                "tags": ["Donors"],
                "summary": "Export donor roster",
                "produces": ["text/csv"],
                "parameters": [
                    {"name": "bloodType", "in": "query", "type": "string"},
                    {"name": "available", "in": "query", "type": "boolean"},
                    {"name": "search", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "CSV document"}
                }
            }
        },
        "/donors/leaderboard": {
            "get": {
                "tags": ["Donors"],
                "summary": "Donation leaderboard",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/donors/{id}": {
            "get": {
                "tags": ["Donors"],
                "summary": "Get donor profile",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/donors/{id}/eligibility": {
            "get": {
                "tags": ["Donors"],
                "summary": "Check donor eligibility",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/donors/{id}/donations": {
            "post": {
                "tags": ["Donors"],
                "summary": "Record a past donation",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RecordDonationRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid date"}
                }
            }
        },
        "/donors/{id}/availability": {
            "patch": {
                "tags": ["Donors"],
                "summary": "Toggle donor availability",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/donors/{id}/history": {
            "get": {
                "tags": ["Donors"],
                "summary": "Donor donation history",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/donors/{id}/alerts": {
            "get": {
                "tags": ["Donors"],
                "summary": "Donor alerts",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/donors/{id}/accept": {
            "post": {
                "tags": ["Donors"],
                "summary": "Accept a blood request",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AcceptRequestRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already accepted or request closed"}
                }
            }
        },
        "/donors/{id}/requests": {
            "get": {
                "tags": ["Donors"],
                "summary": "Pending requests matching the donor",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/donors/{id}/position": {
            "get": {
                "tags": ["Donors"],
                "summary": "Donor leaderboard position",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/donors/{id}/certificate": {
            "get": {
                "tags": ["Donors"],
                "summary": "Download donor certificate",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "PDF document"}
                }
            }
        },
        "/hospitals": {
            "get": {
                "tags": ["Hospitals"],
                "summary": "List hospitals",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Hospitals"],
                "summary": "Register hospital",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterHospitalRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Username already taken"}
                }
            }
        },
        "/hospitals/{id}/inventory": {
            "get": {
                "tags": ["Hospitals"],
                "summary": "Hospital blood inventory",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "patch": {
                "tags": ["Hospitals"],
                "summary": "Adjust inventory stock",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AdjustInventoryRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Insufficient stock"}
                }
            }
        },
        "/hospitals/{id}/acceptances": {
            "get": {
                "tags": ["Hospitals"],
                "summary": "Pending donor acceptances",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/hospitals/{id}/confirm": {
            "post": {
                "tags": ["Hospitals"],
                "summary": "Confirm a donation",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ConfirmDonationRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Request belongs to another hospital"},
                    "409": {"description": "Already confirmed or request closed"}
                }
            }
        },
        "/hospitals/{id}/fulfill": {
            "post": {
                "tags": ["Hospitals"],
                "summary": "Fulfil a request from stock",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StockFulfillRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Insufficient stock or request closed"}
                }
            }
        },
        "/hospitals/{id}/transfers": {
            "get": {
                "tags": ["Hospitals"],
                "summary": "List blood transfers",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Hospitals"],
                "summary": "Transfer blood units",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TransferRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Insufficient stock"}
                }
            }
        },
        "/requests": {
            "get": {
                "tags": ["Requests"],
                "summary": "List blood requests",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "bloodType", "in": "query", "type": "string"},
                    {"name": "hospitalId", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Requests"],
                "summary": "Create blood request",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateRequestRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Daily request limit reached"}
                }
            }
        },
        "/requests/track": {
            "get": {
                "tags": ["Requests"],
                "summary": "Track latest request by patient name and contact",
                "parameters": [
                    {"name": "name", "in": "query", "required": true, "type": "string"},
                    {"name": "contact", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No pending request"}
                }
            }
        },
        "/requests/{id}": {
            "get": {
                "tags": ["Requests"],
                "summary": "Get request detail",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "delete": {
                "tags": ["Requests"],
                "summary": "Cancel a pending request",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Cancelled"},
                    "409": {"description": "Request already closed"}
                }
            }
        },
        "/patients": {
            "post": {
                "tags": ["Patients"],
                "summary": "Register patient",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterPatientRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload"}
                }
            }
        },
        "/patients/{id}": {
            "get": {
                "tags": ["Patients"],
                "summary": "Get patient detail",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/patients/{id}/resources": {
            "get": {
                "tags": ["Patients"],
                "summary": "Blood resources for a patient",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/resources": {
            "get": {
                "tags": ["Patients"],
                "summary": "Nearby blood resources",
                "parameters": [
                    {"name": "bloodType", "in": "query", "required": true, "type": "string"},
                    {"name": "location", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "HospitalLoginRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "DonorLoginRequest": {
            "type": "object",
            "required": ["identifier", "password"],
            "properties": {
                "identifier": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "RegisterDonorRequest": {
            "type": "object",
            "required": ["name", "blood_type", "location", "contact"],
            "properties": {
                "name": {"type": "string"},
                "blood_type": {"type": "string"},
                "location": {"type": "string"},
                "contact": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "gender": {"type": "string"}
            }
        },
        "RecordDonationRequest": {
            "type": "object",
            "required": ["last_donated"],
            "properties": {
                "last_donated": {"type": "string", "format": "date"}
            }
        },
        "AcceptRequestRequest": {
            "type": "object",
            "required": ["request_id"],
            "properties": {
                "request_id": {"type": "string"},
                "note": {"type": "string"}
            }
        },
        "RegisterPatientRequest": {
            "type": "object",
            "required": ["name", "blood_type", "location", "contact"],
            "properties": {
                "name": {"type": "string"},
                "blood_type": {"type": "string"},
                "location": {"type": "string"},
                "contact": {"type": "string"},
                "gender": {"type": "string"},
                "age": {"type": "integer"},
                "problem": {"type": "string"},
                "district": {"type": "string"},
                "state": {"type": "string"},
                "hospital_id": {"type": "string"}
            }
        },
        "RegisterHospitalRequest": {
            "type": "object",
            "required": ["name", "location", "contact", "username", "password"],
            "properties": {
                "name": {"type": "string"},
                "location": {"type": "string"},
                "contact": {"type": "string"},
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "AdjustInventoryRequest": {
            "type": "object",
            "required": ["blood_type", "delta"],
            "properties": {
                "blood_type": {"type": "string"},
                "delta": {"type": "integer"}
            }
        },
        "ConfirmDonationRequest": {
            "type": "object",
            "required": ["acceptance_id", "units_donated"],
            "properties": {
                "acceptance_id": {"type": "string"},
                "units_donated": {"type": "integer"}
            }
        },
        "StockFulfillRequest": {
            "type": "object",
            "required": ["request_id", "units"],
            "properties": {
                "request_id": {"type": "string"},
                "units": {"type": "integer"}
            }
        },
        "TransferRequest": {
            "type": "object",
            "required": ["blood_type", "units"],
            "properties": {
                "to_hospital_id": {"type": "string"},
                "blood_type": {"type": "string"},
                "units": {"type": "integer"}
            }
        },
        "CreateRequestRequest": {
            "type": "object",
            "required": ["patient_name", "contact", "blood_type", "units_needed", "urgency", "location"],
            "properties": {
                "patient_name": {"type": "string"},
                "contact": {"type": "string"},
                "blood_type": {"type": "string"},
                "units_needed": {"type": "integer"},
                "urgency": {"type": "string", "enum": ["normal", "urgent", "emergency"]},
                "location": {"type": "string"},
                "hospital_id": {"type": "string"},
                "gender": {"type": "string"},
                "age": {"type": "integer"},
                "problem": {"type": "string"},
                "district": {"type": "string"},
                "state": {"type": "string"},
                "required_by": {"type": "string", "format": "date"}
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
