package server

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"

	"github.com/cronoplan/cronoplan-api/internal/auth"
)

// ErrorResponse is the JSON body for every non-2xx response.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorHandler maps application errors to HTTP responses. Validation errors
// from ozzo get a 400 with field details; rich errors carry their own status
// code; everything else is a 500 with a generic message.
func ErrorHandler(logger auth.Logger, debug bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if verr, ok := err.(validation.Errors); ok {
			details := map[string]any{}
			for field, ferr := range verr {
				details[field] = ferr.Error()
			}
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Error:   "validation_error",
				Message: "Invalid request payload",
				Details: details,
			})
		}

		var fiberErr *fiber.Error
		if goerrors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(ErrorResponse{
				Error:   "http_error",
				Message: fiberErr.Message,
			})
		}

		var richErr *goerrors.Error
		if !goerrors.As(err, &richErr) {
			richErr = goerrors.Wrap(err, goerrors.CategoryInternal, "An unexpected error occurred").
				WithTextCode("internal_error").
				WithCode(goerrors.CodeInternal)
		}

		status := richErr.Code
		if status < fiber.StatusBadRequest {
			status = fiber.StatusInternalServerError
		}

		if debug {
			fmt.Println("======= REQUEST ERROR =======")
			fmt.Println(print.MaybePrettyJSON(richErr))
			fmt.Println("=============================")
		}

		if status >= fiber.StatusInternalServerError {
			logger.Error("request failed: path=%s error=%v", c.Path(), err)
			return c.Status(status).JSON(ErrorResponse{
				Error:   "internal_error",
				Message: "An unexpected error occurred",
			})
		}

		body := ErrorResponse{
			Error:   richErr.TextCode,
			Message: richErr.Message,
		}
		if len(richErr.Metadata) > 0 {
			body.Details = richErr.Metadata
		}

		return c.Status(status).JSON(body)
	}
}
