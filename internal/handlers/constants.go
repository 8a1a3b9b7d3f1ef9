package handlers

// Common error message constants shared across handlers
const (
	ErrMsgInvalidRequestBody = "Invalid request body"
	ErrMsgUnauthorized       = "Unauthorized"
	ErrMsgAdminNotFound      = "Administrator not found"
	ErrMsgInvalidID          = "Invalid id"
)

// API path constants
const (
	APIBasePath = "/api/v1"
)
