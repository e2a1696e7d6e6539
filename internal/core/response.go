// AngelaMos | 2026
// response.go

package core

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the envelope for every non-2xx reply. Errors repeats the
// human readable messages so clients can render them as a list.
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
	Errors  []string  `json:"errors"`
}

func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, data)
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func JSONError(w http.ResponseWriter, err error) {
	appErr, ok := AsAppError(err)
	if !ok {
		InternalServerError(w, err)
		return
	}

	details := appErr.Details
	if len(details) == 0 {
		details = []string{appErr.Message}
	}

	JSON(w, appErr.Status, ErrorResponse{
		Success: false,
		Error: ErrorBody{
			Code:    appErr.Code,
			Message: appErr.Message,
		},
		Errors: details,
	})
}

func BadRequest(w http.ResponseWriter, message string) {
	JSONError(w, ValidationError([]string{message}))
}

func NotFound(w http.ResponseWriter, resource string) {
	JSONError(w, NotFoundError(resource+" not found"))
}

func Unauthorized(w http.ResponseWriter, message string) {
	JSONError(w, UnauthorizedError(message))
}

func Forbidden(w http.ResponseWriter, message string) {
	JSONError(w, ForbiddenError(message))
}

// InternalServerError logs the full error chain and hides it from the client.
func InternalServerError(w http.ResponseWriter, err error) {
	slog.Error("internal server error", "error", err)

	JSON(w, http.StatusInternalServerError, ErrorResponse{
		Success: false,
		Error: ErrorBody{
			Code:    "INTERNAL_ERROR",
			Message: "Internal server error",
		},
		Errors: []string{"Internal server error"},
	})
}

// ServerError is InternalServerError with the request's span marked failed.
func ServerError(w http.ResponseWriter, r *http.Request, err error) {
	SetSpanError(r.Context(), err)
	InternalServerError(w, err)
}
