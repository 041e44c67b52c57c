package response

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	apperrors "furiousrepair/pkg/errors"
	"furiousrepair/pkg/logger"
)

// ErrorBody is the shape of every failed response.
type ErrorBody struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func Success(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

func Created(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, data)
}

func Message(c echo.Context, message string) error {
	return c.JSON(http.StatusOK, map[string]string{"message": message})
}

func Error(c echo.Context, err error) error {
	var validationErr validator.ValidationErrors
	if errors.As(err, &validationErr) {
		return handleValidationError(c, validationErr)
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Status >= http.StatusInternalServerError {
			logger.Error("%s %s: %v", c.Request().Method, c.Request().URL.Path, appErr)
			return c.JSON(appErr.Status, ErrorBody{
				Code:    appErr.Code,
				Message: "Server error",
			})
		}
		return c.JSON(appErr.Status, ErrorBody{
			Code:    appErr.Code,
			Message: appErr.Message,
		})
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return handleHTTPError(c, httpErr)
	}

	logger.Error("%s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	return c.JSON(http.StatusInternalServerError, ErrorBody{
		Code:    apperrors.CodeInternal,
		Message: "An unexpected error occurred",
	})
}

// HTTPErrorHandler renders errors that escape handlers (route misses, binder
// failures, middleware rejections) in the same body shape as Error.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	if writeErr := Error(c, err); writeErr != nil {
		logger.Error("failed to write error response: %v", writeErr)
	}
}

func handleHTTPError(c echo.Context, httpErr *echo.HTTPError) error {
	message := http.StatusText(httpErr.Code)
	if m, ok := httpErr.Message.(string); ok && m != "" {
		message = m
	}
	if httpErr.Code >= http.StatusInternalServerError {
		message = "Server error"
	}

	code := apperrors.CodeBadRequest
	switch httpErr.Code {
	case http.StatusUnauthorized:
		code = apperrors.CodeUnauthorized
	case http.StatusForbidden:
		code = apperrors.CodeForbidden
	case http.StatusNotFound:
		code = apperrors.CodeNotFound
	case http.StatusTooManyRequests:
		code = apperrors.CodeTooManyRequests
	default:
		if httpErr.Code >= http.StatusInternalServerError {
			code = apperrors.CodeInternal
		}
	}

	return c.JSON(httpErr.Code, ErrorBody{Code: code, Message: message})
}

func handleValidationError(c echo.Context, validationErr validator.ValidationErrors) error {
	for _, err := range validationErr {
		field := err.Field()
		param := err.Param()

		var message string
		switch err.Tag() {
		case "required":
			message = field + " is required"
		case "min":
			message = field + " must be at least " + param + " characters"
		case "max":
			message = field + " must be at most " + param + " characters"
		case "oneof":
			message = field + " must be one of: " + param
		case "email":
			message = field + " must be a valid email address"
		case "latitude", "longitude":
			message = field + " is out of range"
		default:
			message = field + " is invalid"
		}

		return c.JSON(http.StatusBadRequest, ErrorBody{
			Code:    apperrors.CodeValidation,
			Message: message,
		})
	}

	return c.JSON(http.StatusBadRequest, ErrorBody{
		Code:    apperrors.CodeValidation,
		Message: "Invalid input data",
	})
}
