package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"notaryapi/internal/http/middleware"
	"notaryapi/internal/ledger"
	"notaryapi/internal/service"
	"notaryapi/internal/storage"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "UNSUPPORTED_LEDGER", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// serviceError translates domain errors into standardized responses.
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ledger.ErrUnsupportedLedger):
		return writeError(c, fiber.StatusBadRequest, "UNSUPPORTED_LEDGER", "selected ledger is not supported")
	case errors.Is(err, service.ErrMalformedPayload):
		return writeError(c, fiber.StatusBadRequest, "MALFORMED_PAYLOAD", "document payload is not valid base64")
	case errors.Is(err, storage.ErrInvalidKey):
		return writeError(c, fiber.StatusBadRequest, "INVALID_PATH", "invalid storage path")
	case errors.Is(err, service.ErrInvalidName):
		return writeError(c, fiber.StatusBadRequest, "INVALID_NAME", "invalid target name")
	case errors.Is(err, service.ErrFolderNotEmpty):
		return writeError(c, fiber.StatusBadRequest, "FOLDER_NOT_EMPTY", "folder is not empty")
	case errors.Is(err, storage.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "resource not found")
	case errors.Is(err, service.ErrIntegrity):
		return writeError(c, fiber.StatusConflict, "INTEGRITY_ERROR", "stored document no longer matches its fingerprint")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
