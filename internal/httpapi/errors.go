package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/Theomnitron/SummaRead/internal/errortypes"
	"github.com/gin-gonic/gin"
)

// ErrorResponse represents the structure of error responses sent by the API
type ErrorResponse struct {
	Status  string         `json:"status"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Error codes
const (
	// ErrorCodeInvalidRequest indicates the client sent an invalid request
	ErrorCodeInvalidRequest = "INVALID_REQUEST"

	// ErrorCodeResourceNotFound indicates a requested resource was not found
	ErrorCodeResourceNotFound = "RESOURCE_NOT_FOUND"

	// ErrorCodeBadGateway indicates a failure in a remote model
	ErrorCodeBadGateway = "BAD_GATEWAY"

	// ErrorCodeInternalError indicates an internal server error
	ErrorCodeInternalError = "INTERNAL_ERROR"
)

// StatusFor maps an error to its HTTP status, error code and client message.
func StatusFor(err error) (int, string, string) {
	switch errortypes.TypeOf(err) {
	case errortypes.ErrorTypeInput:
		return http.StatusBadRequest, ErrorCodeInvalidRequest, "Invalid request"
	case errortypes.ErrorTypeNotFound:
		return http.StatusNotFound, ErrorCodeResourceNotFound, "Resource not found"
	case errortypes.ErrorTypeRemoteCall, errortypes.ErrorTypeRanking, errortypes.ErrorTypeRecursionLimit:
		return http.StatusBadGateway, ErrorCodeBadGateway, "Downstream model error"
	default:
		return http.StatusInternalServerError, ErrorCodeInternalError, "An unexpected error occurred"
	}
}

// writeError logs err and aborts the request with a structured body.
// Internal failures hide their cause from the client.
func writeError(c *gin.Context, logger *slog.Logger, err error) {
	status, code, message := StatusFor(err)

	resp := ErrorResponse{
		Status:  "error",
		Code:    code,
		Message: message,
	}
	if status != http.StatusInternalServerError {
		resp.Details = errortypes.FieldsOf(err)
		if resp.Details == nil {
			resp.Details = map[string]any{}
		}
		resp.Details["error"] = err.Error()
	}

	errortypes.LogError(logger.With("status_code", status, "error_code", code, "path", c.FullPath()), err)
	c.AbortWithStatusJSON(status, resp)
}

// badRequest aborts with a 400 for malformed request bodies.
func badRequest(c *gin.Context, logger *slog.Logger, err error, message string) {
	writeError(c, logger, errortypes.InputError(err, message))
}
