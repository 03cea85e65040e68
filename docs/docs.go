// Package docs registers the OpenAPI description served by the development
// server under /swagger. Keep it in step with the annotations on
// handlers.(*ReviewHandler).SubmitReview.
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
        "/submit-review": {
            "post": {
                "description": "Checks the shared proxy secret, verifies the user token with the identity backend, then inserts the review under that user's row-level policies.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["reviews"],
                "summary": "Submit a review",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Shared proxy secret",
                        "name": "x-proxy-secret",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Request ID echoed on the response",
                        "name": "X-Request-ID",
                        "in": "header"
                    },
                    {
                        "description": "Review submission",
                        "name": "submission",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/models.ReviewSubmission"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.SuccessResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "405": {"description": "Method Not Allowed", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
            }
        },
        "handlers.SuccessResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {"type": "array", "items": {"type": "object"}}
            }
        },
        "models.ReviewFields": {
            "type": "object",
            "properties": {
                "provider_id": {},
                "prix": {},
                "service": {},
                "fiabilite": {},
                "ecologie": {},
                "engagement": {},
                "comment": {}
            }
        },
        "models.ReviewSubmission": {
            "type": "object",
            "required": ["userToken"],
            "properties": {
                "avisData": {"$ref": "#/definitions/models.ReviewFields"},
                "userToken": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8081",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Review Proxy API",
	Description:      "Authenticated review submission proxy in front of a hosted row-level-security data store",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
