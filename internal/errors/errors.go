package errors

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yukikurage/cse-council-api/internal/logging"
	"github.com/yukikurage/cse-council-api/internal/services"
)

// Error codes
const (
	// Authentication errors
	ErrCodeUnauthorized = "UNAUTHORIZED"

	// Authorization errors
	ErrCodeForbidden   = "FORBIDDEN"
	ErrCodeNotSignable = "NOT_SIGNABLE"

	// Validation errors
	ErrCodeInvalidInput      = "INVALID_INPUT"
	ErrCodeInvalidTransition = "INVALID_TRANSITION"
	ErrCodeDeadlinePassed    = "DEADLINE_PASSED"
	ErrCodeNotRemovable      = "NOT_REMOVABLE"

	// Resource errors
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeAlreadySigned = "ALREADY_SIGNED"
	ErrCodeAlreadySent   = "ALREADY_SENT"
	ErrCodeConflict      = "CONFLICT"

	// Service errors
	ErrCodeDeliveryFailed = "DELIVERY_FAILED"
	ErrCodeInternalError  = "INTERNAL_ERROR"
)

// APIError represents a standardized API error response
type APIError struct {
	Message string      `json:"error"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new APIError
func NewAPIError(code, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
	}
}

// NewAPIErrorWithDetails creates a new APIError with details
func NewAPIErrorWithDetails(code, message string, details interface{}) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// Field errors report JSON names rather than Go field names.
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return field.Name
			}
			return name
		})
	}
}

// FieldError is one invalid field in a validation error response.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, statusCode int, err *APIError) {
	c.JSON(statusCode, err)
}

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	RespondWithError(c, http.StatusUnauthorized, NewAPIError(ErrCodeUnauthorized, message))
}

// Forbidden sends a 403 response
func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "Access denied"
	}
	RespondWithError(c, http.StatusForbidden, NewAPIError(ErrCodeForbidden, message))
}

// NotFound sends a 404 response
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	RespondWithError(c, http.StatusNotFound, NewAPIError(ErrCodeNotFound, message))
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	RespondWithError(c, http.StatusBadRequest, NewAPIError(ErrCodeInvalidInput, message))
}

// BadRequestWithDetails sends a 400 response with details
func BadRequestWithDetails(c *gin.Context, message string, details interface{}) {
	RespondWithError(c, http.StatusBadRequest, NewAPIErrorWithDetails(ErrCodeInvalidInput, message, details))
}

// InternalError sends a 500 response
func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "Internal server error"
	}
	RespondWithError(c, http.StatusInternalServerError, NewAPIError(ErrCodeInternalError, message))
}

// BindingError sends a 400 response for a request that failed to bind,
// with one entry per invalid field when the validator reports them.
func BindingError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		BadRequest(c, "Invalid request body")
		return
	}

	details := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, FieldError{
			Field:   fieldName(fe),
			Message: describeTag(fe),
		})
	}
	BadRequestWithDetails(c, "Invalid request body", details)
}

// FromService maps a service error to its status code and sends it.
// Unknown errors are logged and hidden behind a 500.
func FromService(c *gin.Context, err error) {
	status, apiErr := classify(err)
	if status == http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).Error("request failed",
			"error", err,
			"path", c.FullPath(),
		)
	}
	RespondWithError(c, status, apiErr)
}

func classify(err error) (int, *APIError) {
	var (
		validationErr *services.ValidationError
		transitionErr *services.InvalidTransitionError
		signedErr     *services.AlreadySignedError
		sentErr       *services.AlreadySentError
		deadlineErr   *services.DeadlinePassedError
		deliveryErr   *services.DeliveryFailedError
	)

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, NewAPIErrorWithDetails(ErrCodeInvalidInput, err.Error(),
			[]FieldError{{Field: validationErr.Field, Message: validationErr.Message}})
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest, NewAPIError(ErrCodeInvalidInput, err.Error())
	case errors.As(err, &transitionErr):
		return http.StatusBadRequest, NewAPIErrorWithDetails(ErrCodeInvalidTransition, err.Error(),
			gin.H{"from": transitionErr.From, "to": transitionErr.To})
	case errors.Is(err, services.ErrInvalidTransition):
		return http.StatusBadRequest, NewAPIError(ErrCodeInvalidTransition, err.Error())
	case errors.As(err, &deadlineErr):
		return http.StatusBadRequest, NewAPIErrorWithDetails(ErrCodeDeadlinePassed, err.Error(),
			gin.H{"deadline": deadlineErr.Deadline})
	case errors.Is(err, services.ErrNotRemovable):
		return http.StatusBadRequest, NewAPIError(ErrCodeNotRemovable, err.Error())
	case errors.Is(err, services.ErrUnauthenticated):
		return http.StatusUnauthorized, NewAPIError(ErrCodeUnauthorized, err.Error())
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden, NewAPIError(ErrCodeForbidden, err.Error())
	case errors.Is(err, services.ErrNotSignable):
		return http.StatusForbidden, NewAPIError(ErrCodeNotSignable, err.Error())
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, NewAPIError(ErrCodeNotFound, err.Error())
	case errors.As(err, &signedErr):
		return http.StatusConflict, NewAPIErrorWithDetails(ErrCodeAlreadySigned, err.Error(),
			gin.H{"signature_id": signedErr.SignatureID, "signed_at": signedErr.SignedAt})
	case errors.Is(err, services.ErrAlreadySigned):
		return http.StatusConflict, NewAPIError(ErrCodeAlreadySigned, err.Error())
	case errors.As(err, &sentErr):
		return http.StatusConflict, NewAPIErrorWithDetails(ErrCodeAlreadySent, err.Error(),
			gin.H{"sent_at": sentErr.SentAt})
	case errors.Is(err, services.ErrAlreadySent):
		return http.StatusConflict, NewAPIError(ErrCodeAlreadySent, err.Error())
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict, NewAPIError(ErrCodeConflict, err.Error())
	case errors.As(err, &deliveryErr):
		return http.StatusBadGateway, NewAPIErrorWithDetails(ErrCodeDeliveryFailed, err.Error(), deliveryErr.Errors)
	case errors.Is(err, services.ErrDeliveryFailed):
		return http.StatusBadGateway, NewAPIError(ErrCodeDeliveryFailed, err.Error())
	default:
		return http.StatusInternalServerError, NewAPIError(ErrCodeInternalError, "Internal server error")
	}
}

func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	return ns
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "datetime":
		return fmt.Sprintf("must match the format %s", fe.Param())
	default:
		return fmt.Sprintf("failed the %s check", fe.Tag())
	}
}
