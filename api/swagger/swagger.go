package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "QRShelf API",
        "description": "Multi-tenant QR code storefront backend",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http",
        "https"
    ],
    "tags": [
        {"name": "Public", "description": "Scan redirects and anonymous attribution"},
        {"name": "Auth", "description": "Accounts and sessions"},
        {"name": "Shops", "description": "Shop management"},
        {"name": "Team", "description": "Shop membership and invites"},
        {"name": "Collections", "description": "Item collections and shares"},
        {"name": "Items", "description": "Product items"},
        {"name": "QR Codes", "description": "Short code minting and images"},
        {"name": "Analytics", "description": "Scan and click analytics"}
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
        "/metrics": {
            "get": {
                "summary": "Prometheus metrics",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/r/{code}": {
            "get": {
                "tags": ["Public"],
                "summary": "Resolve a scanned code",
                "parameters": [
                    {"name": "code", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "302": {"description": "Redirect to landing page"},
                    "404": {"description": "Unknown code"},
                    "429": {"description": "Rate limited"}
                }
            }
        },
        "/api/track-scan": {
            "post": {
                "tags": ["Public"],
                "summary": "Track a scan",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TrackScanRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Unknown code"},
                    "429": {"description": "Rate limited"}
                }
            }
        },
        "/api/track-click": {
            "post": {
                "tags": ["Public"],
                "summary": "Track an item click",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TrackClickRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Invalid payload"}
                }
            }
        },
        "/api/subscribe": {
            "post": {
                "tags": ["Public"],
                "summary": "Subscribe to collection updates",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubscribeRequest"}}
                ],
                "responses": {
                    "201": {"description": "Subscribed"},
                    "404": {"description": "Unknown collection"}
                }
            }
        },
        "/api/v1/auth/register": {
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
        "/api/v1/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Log in",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/api/v1/auth/refresh": {
            "post": {
                "tags": ["Auth"],
                "summary": "Rotate a refresh token",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid or expired token"}
                }
            }
        },
        "/api/v1/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Current account profile",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/shops": {
            "get": {
                "tags": ["Shops"],
                "summary": "List the caller's shops",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Shops"],
                "summary": "Create a shop",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateShopRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Slug taken"}
                }
            }
        },
        "/api/v1/shops/{slug}/collections": {
            "get": {
                "tags": ["Collections"],
                "summary": "List visible collections",
                "parameters": [
                    {"name": "slug", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Collections"],
                "summary": "Create a collection",
                "parameters": [
                    {"name": "slug", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateCollectionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/shops/{slug}/qr-codes": {
            "get": {
                "tags": ["QR Codes"],
                "summary": "List the shop's QR codes",
                "parameters": [
                    {"name": "slug", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["QR Codes"],
                "summary": "Mint a QR code for a collection or item",
                "parameters": [
                    {"name": "slug", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateQrCodeRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Exactly one target required"}
                }
            }
        },
        "/api/v1/shops/{slug}/qr-codes/{id}/image": {
            "get": {
                "tags": ["QR Codes"],
                "summary": "Printable PNG for a code",
                "produces": ["image/png"],
                "parameters": [
                    {"name": "slug", "in": "path", "type": "string", "required": true},
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "PNG image"},
                    "404": {"description": "Unknown code"}
                }
            }
        },
        "/api/v1/shops/{slug}/analytics": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Shop scan and click analytics",
                "parameters": [
                    {"name": "slug", "in": "path", "type": "string", "required": true},
                    {"name": "days", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Owner or admin only"}
                }
            }
        },
        "/api/v1/shops/{slug}/export": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Export event history",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "slug", "in": "path", "type": "string", "required": true},
                    {"name": "type", "in": "query", "type": "string", "enum": ["scans", "clicks"]},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Document download"},
                    "400": {"description": "Unknown export type"},
                    "403": {"description": "Owner or admin only"}
                }
            }
        },
        "/api/v1/shops/{slug}/exports/scans": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Export scan history",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "slug", "in": "path", "type": "string", "required": true},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Document download"},
                    "403": {"description": "Owner or admin only"}
                }
            }
        },
        "/api/v1/shops/{slug}/exports/clicks": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Export click history",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "slug", "in": "path", "type": "string", "required": true},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Document download"},
                    "403": {"description": "Owner or admin only"}
                }
            }
        },
        "/api/v1/shops/{slug}/exports/download": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Fetch an archived export by token",
                "parameters": [
                    {"name": "slug", "in": "path", "type": "string", "required": true},
                    {"name": "token", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Document download"},
                    "404": {"description": "File no longer available"}
                }
            }
        },
        "/api/v1/metadata": {
            "post": {
                "tags": ["Items"],
                "summary": "Fetch product page metadata",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/FetchMetadataRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Page unreachable"}
                }
            }
        }
    },
    "definitions": {
        "TrackScanRequest": {
            "type": "object",
            "required": ["code"],
            "properties": {
                "code": {"type": "string"}
            }
        },
        "TrackClickRequest": {
            "type": "object",
            "required": ["item_id"],
            "properties": {
                "item_id": {"type": "string"},
                "collection_id": {"type": "string"},
                "qr_code_id": {"type": "string"}
            }
        },
        "SubscribeRequest": {
            "type": "object",
            "required": ["collection_id", "email"],
            "properties": {
                "collection_id": {"type": "string"},
                "email": {"type": "string"}
            }
        },
        "RegisterRequest": {
            "type": "object",
            "required": ["email", "password", "display_name"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "display_name": {"type": "string"}
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
        "CreateShopRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string"},
                "slug": {"type": "string"},
                "description": {"type": "string"}
            }
        },
        "CreateCollectionRequest": {
            "type": "object",
            "required": ["title", "visibility"],
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "visibility": {"type": "string", "enum": ["shop", "personal"]}
            }
        },
        "CreateQrCodeRequest": {
            "type": "object",
            "properties": {
                "label": {"type": "string"},
                "collection_id": {"type": "string"},
                "item_id": {"type": "string"}
            }
        },
        "FetchMetadataRequest": {
            "type": "object",
            "required": ["url"],
            "properties": {
                "url": {"type": "string"}
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
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
