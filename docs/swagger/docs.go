// Package swagger registers the OpenAPI document served under /swagger.
// Keep it in step with the @-annotations on the handlers.
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support"
        },
        "license": {
            "name": "MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/healthz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["ops"],
                "summary": "Dependency health",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.HealthResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/server.HealthResponse"}}
                }
            }
        },
        "/scans": {
            "post": {
                "description": "Applies a status change to the shipment identified by tracking number.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["shipments"],
                "summary": "Report an agency scan",
                "parameters": [
                    {"description": "Scan", "name": "scan", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.ScanRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Shipment"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/shipments": {
            "post": {
                "description": "Creates a shipment in CREATED status at its origin agency.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["shipments"],
                "summary": "Register a shipment",
                "parameters": [
                    {"description": "Shipment intake", "name": "shipment", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.CreateShipmentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.Shipment"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/shipments/{ref}": {
            "get": {
                "description": "Resolves the reference as a shipment id, then as a tracking number, and returns the shipment with its events and delivery attempts (most recent first).",
                "produces": ["application/json"],
                "tags": ["shipments"],
                "summary": "Get a shipment with its history",
                "parameters": [
                    {"type": "string", "description": "Shipment id or tracking number", "name": "ref", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.ShipmentView"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/shipments/{id}/archive": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["shipments"],
                "summary": "Archive a terminal shipment",
                "parameters": [
                    {"type": "string", "description": "Shipment id", "name": "id", "in": "path", "required": true},
                    {"description": "Actor", "name": "actor", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.ActorRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Shipment"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/shipments/{id}/attempts": {
            "post": {
                "description": "Stores the next numbered attempt and moves the shipment to DELIVERED, FAILED_DELIVERY or keeps OUT_FOR_DELIVERY for PENDING.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["shipments"],
                "summary": "Record a delivery attempt",
                "parameters": [
                    {"type": "string", "description": "Shipment id", "name": "id", "in": "path", "required": true},
                    {"description": "Attempt outcome", "name": "attempt", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.AttemptRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.DeliveryAttempt"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/shipments/{id}/events": {
            "get": {
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "List the events of a shipment",
                "parameters": [
                    {"type": "string", "description": "Shipment id", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "asc or desc (default desc)", "name": "order", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.TrackingEvent"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            },
            "post": {
                "description": "Adds an event to the timeline without changing the shipment status.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "Append a tracking event",
                "parameters": [
                    {"type": "string", "description": "Shipment id", "name": "id", "in": "path", "required": true},
                    {"description": "Event", "name": "event", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.AppendEventRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.TrackingEvent"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/shipments/{id}/return": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["shipments"],
                "summary": "Return a shipment to its sender",
                "parameters": [
                    {"type": "string", "description": "Shipment id", "name": "id", "in": "path", "required": true},
                    {"description": "Actor", "name": "actor", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.ActorRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Shipment"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/shipments/{id}/transitions": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["shipments"],
                "summary": "Change the status of a shipment",
                "parameters": [
                    {"type": "string", "description": "Shipment id", "name": "id", "in": "path", "required": true},
                    {"description": "Target status", "name": "transition", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.TransitionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Shipment"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/tracking/{ref}": {
            "get": {
                "description": "Returns the current status and timeline of a shipment without actor identities or internal notes.",
                "produces": ["application/json"],
                "tags": ["tracking"],
                "summary": "Public tracking timeline",
                "parameters": [
                    {"type": "string", "description": "Tracking number or shipment id", "name": "ref", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.PublicTrackingResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.DeliveryAttempt": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "shipment_id": {"type": "string"},
                "attempt_number": {"type": "integer"},
                "outcome": {"type": "string", "enum": ["SUCCESS", "FAILED", "PENDING"]},
                "failure_reason": {"type": "string", "enum": ["ABSENT", "REFUSED", "WRONG_ADDRESS", "BUSINESS_CLOSED", "OTHER"]},
                "recipient": {"$ref": "#/definitions/domain.Recipient"},
                "location": {"$ref": "#/definitions/domain.GeoPoint"},
                "proof_refs": {"type": "array", "items": {"type": "string"}},
                "notes": {"type": "string"},
                "actor_id": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "domain.GeoPoint": {
            "type": "object",
            "properties": {
                "latitude": {"type": "number"},
                "longitude": {"type": "number"}
            }
        },
        "domain.PublicEvent": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "location_agency_id": {"type": "string"},
                "description": {"type": "string"},
                "timestamp": {"type": "string"}
            }
        },
        "domain.Recipient": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "relationship": {"type": "string"},
                "id_type": {"type": "string"},
                "id_number": {"type": "string"}
            }
        },
        "domain.Shipment": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "tracking_number": {"type": "string"},
                "status": {"type": "string"},
                "held_from_status": {"type": "string"},
                "current_location_agency_id": {"type": "string"},
                "origin_agency_id": {"type": "string"},
                "destination_agency_id": {"type": "string"},
                "version": {"type": "integer"},
                "archived_at": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "domain.ShipmentView": {
            "type": "object",
            "properties": {
                "shipment": {"$ref": "#/definitions/domain.Shipment"},
                "events": {"type": "array", "items": {"$ref": "#/definitions/domain.TrackingEvent"}},
                "attempts": {"type": "array", "items": {"$ref": "#/definitions/domain.DeliveryAttempt"}}
            }
        },
        "domain.TrackingEvent": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "shipment_id": {"type": "string"},
                "status": {"type": "string"},
                "previous_status": {"type": "string"},
                "location_agency_id": {"type": "string"},
                "description": {"type": "string"},
                "notes": {"type": "string"},
                "actor_id": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "handler.ActorRequest": {
            "type": "object",
            "required": ["actor_id"],
            "properties": {
                "actor_id": {"type": "string"}
            }
        },
        "handler.AppendEventRequest": {
            "type": "object",
            "required": ["actor_id", "status"],
            "properties": {
                "status": {"type": "string"},
                "location_agency_id": {"type": "string"},
                "description": {"type": "string", "maxLength": 500},
                "notes": {"type": "string", "maxLength": 2000},
                "actor_id": {"type": "string"}
            }
        },
        "handler.AttemptRequest": {
            "type": "object",
            "required": ["actor_id", "outcome"],
            "properties": {
                "outcome": {"type": "string", "enum": ["SUCCESS", "FAILED", "PENDING"]},
                "failure_reason": {"type": "string", "enum": ["ABSENT", "REFUSED", "WRONG_ADDRESS", "BUSINESS_CLOSED", "OTHER"]},
                "recipient": {"$ref": "#/definitions/handler.RecipientRequest"},
                "location": {"$ref": "#/definitions/handler.GeoPointRequest"},
                "proof_refs": {"type": "array", "maxItems": 20, "items": {"type": "string"}},
                "notes": {"type": "string", "maxLength": 2000},
                "actor_id": {"type": "string"}
            }
        },
        "handler.CreateShipmentRequest": {
            "type": "object",
            "required": ["actor_id", "destination_agency_id", "origin_agency_id", "tracking_number"],
            "properties": {
                "tracking_number": {"type": "string", "maxLength": 64},
                "origin_agency_id": {"type": "string"},
                "destination_agency_id": {"type": "string"},
                "actor_id": {"type": "string"}
            }
        },
        "handler.ErrorResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "code": {"type": "string"},
                "ray_id": {"type": "string"},
                "details": {}
            }
        },
        "handler.GeoPointRequest": {
            "type": "object",
            "properties": {
                "latitude": {"type": "number", "maximum": 90, "minimum": -90},
                "longitude": {"type": "number", "maximum": 180, "minimum": -180}
            }
        },
        "handler.PublicTrackingResponse": {
            "type": "object",
            "properties": {
                "reference": {"type": "string"},
                "current_status": {"type": "string"},
                "events": {"type": "array", "items": {"$ref": "#/definitions/domain.PublicEvent"}}
            }
        },
        "handler.RecipientRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string"},
                "relationship": {"type": "string"},
                "id_type": {"type": "string"},
                "id_number": {"type": "string"}
            }
        },
        "handler.ScanRequest": {
            "type": "object",
            "required": ["actor_id", "location_agency_id", "status", "tracking_number"],
            "properties": {
                "tracking_number": {"type": "string"},
                "status": {"type": "string"},
                "location_agency_id": {"type": "string"},
                "actor_id": {"type": "string"},
                "notes": {"type": "string", "maxLength": 2000}
            }
        },
        "handler.TransitionRequest": {
            "type": "object",
            "required": ["actor_id", "status"],
            "properties": {
                "status": {"type": "string"},
                "location_agency_id": {"type": "string"},
                "actor_id": {"type": "string"},
                "description": {"type": "string", "maxLength": 500},
                "notes": {"type": "string", "maxLength": 2000}
            }
        },
        "server.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "checks": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Shipment Tracker API",
	Description:      "This API tracks postal shipments through their delivery lifecycle.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
