package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apperrors "github.com/testra/backoffice-api/pkg/errors"
)

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// FieldError is one failed binding constraint, keyed by the request
// field's JSON name.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var validationMessages = map[string]string{
	"required": "field is required",
	"email":    "invalid email format",
	"min":      "value is too short",
	"datetime": "invalid date or time format",
	"oneof":    "value is not one of the allowed options",
	"gt":       "value must be greater than zero",
	"dive":     "invalid list entry",
}

// RespondBindError writes a 400 for request binding failures. Validator
// errors are broken out per field; anything else (malformed JSON, wrong
// types) is reported as-is.
func RespondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, NewErrorResponse(err.Error()))
		return
	}
	fields := make([]FieldError, 0, len(verrs))
	for _, e := range verrs {
		msg := validationMessages[e.Tag()]
		if msg == "" {
			msg = e.Error()
		}
		fields = append(fields, FieldError{Field: e.Field(), Message: msg})
	}
	c.JSON(http.StatusBadRequest, &Response{
		Status:  "error",
		Message: "validation failed",
		Data:    fields,
	})
}

// RespondError writes the error with the status its code maps to. Unknown
// errors become opaque 500s so internals never leak into a response body.
func RespondError(c *gin.Context, err error) {
	if appErr, ok := apperrors.AsAppError(err); ok {
		c.JSON(appErr.StatusCode(), NewErrorResponse(appErr.Message))
		_ = c.Error(err)
		return
	}
	internal := apperrors.Internal(err)
	c.JSON(internal.StatusCode(), NewErrorResponse(internal.Message))
	_ = c.Error(err)
}
