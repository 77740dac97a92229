// Package response renders the error body shared by all endpoints:
// {path, timestamp, message} with an optional validationErrors field map.
package response

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type ErrorResponse struct {
	Path             string            `json:"path"`
	Timestamp        int64             `json:"timestamp"`
	Message          string            `json:"message"`
	ValidationErrors map[string]string `json:"validationErrors,omitempty"`
}

// Error builds the standard error body. Timestamp is Unix milliseconds.
func Error(r *http.Request, message string) ErrorResponse {
	return ErrorResponse{
		Path:      r.URL.Path,
		Timestamp: time.Now().UnixMilli(),
		Message:   message,
	}
}

// ValidationError maps validator failures to per-field messages.
func ValidationError(r *http.Request, errs validator.ValidationErrors) ErrorResponse {
	out := Error(r, "Validation failure")
	out.ValidationErrors = make(map[string]string, len(errs))

	for _, fe := range errs {
		out.ValidationErrors[fieldName(fe)] = fieldMessage(fe)
	}

	return out
}

// FieldError builds a validation body for a single field, for failures found
// past struct validation (e.g. a duplicate e-mail rejected by the database).
func FieldError(r *http.Request, field, message string) ErrorResponse {
	out := Error(r, "Validation failure")
	out.ValidationErrors = map[string]string{field: message}
	return out
}

func fieldName(fe validator.FieldError) string {
	return strings.ToLower(fe.Field())
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "Username":
		return "Username cannot be null"
	case "Email":
		if fe.Tag() == "email" {
			return "E-mail is not valid."
		}
		return "E-mail cannot be null"
	case "Password":
		if fe.Tag() == "min" {
			return "Password must be at least 6 characters"
		}
		return "Password cannot be null"
	}

	return strings.ToLower(fe.Field()) + " is not valid"
}
