package middleware

import (
	"errors"
	"strings"

	"ouvidoria/utils"

	"github.com/gofiber/fiber/v2"
)

// IsAPIRequest reports whether the response should be JSON rather than a page
func IsAPIRequest(c *fiber.Ctx) bool {
	if c == nil {
		return false
	}

	// HTMX swaps fragments and reads errors from JSON
	if c.Get("HX-Request") != "" {
		return true
	}

	if strings.HasPrefix(c.Path(), "/api") {
		return true
	}

	return strings.Contains(c.Get(fiber.HeaderAccept), fiber.MIMEApplicationJSON)
}

// ErrorHandler turns handler errors into JSON for API requests and into the
// error page otherwise
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	body := fiber.Map{"error": fiber.ErrInternalServerError.Message}

	var appErr *utils.AppError
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &appErr):
		code = appErr.Code
		body = appErr.Body()
		if code >= fiber.StatusInternalServerError {
			utils.Log.Error("Application error: %v", appErr)
		}
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
		body = fiber.Map{"error": fiberErr.Message}
	default:
		utils.Log.Error("Unhandled error on %s %s: %v", c.Method(), c.Path(), err)
	}

	if IsAPIRequest(c) {
		return c.Status(code).JSON(body)
	}

	return c.Status(code).Render("error", fiber.Map{
		"Error": body["error"],
		"Code":  code,
	})
}
