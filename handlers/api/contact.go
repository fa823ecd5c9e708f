package api

import (
	"ouvidoria/contact"
	"ouvidoria/models"
	"ouvidoria/utils"

	"github.com/gofiber/fiber/v2"
)

// ContactHandler exposes the formatter and the validator as JSON endpoints
type ContactHandler struct {
	validator *contact.Validator
}

// NewContactHandler creates a new instance of ContactHandler
func NewContactHandler(v *contact.Validator) *ContactHandler {
	return &ContactHandler{validator: v}
}

type formatRequest struct {
	Value string `json:"value" form:"value"`
}

// PhoneResponse is the formatted view of a raw phone input
type PhoneResponse struct {
	Display  string `json:"display"`
	Digits   string `json:"digits"`
	Complete bool   `json:"complete"`
}

// ValidateResponse reports the field errors of a draft
type ValidateResponse struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors"`
}

// FormatPhone masks a raw phone value
func (h *ContactHandler) FormatPhone(c *fiber.Ctx) error {
	var req formatRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequestError("Invalid request body", err)
	}

	display := contact.FormatPhone(req.Value)
	return c.JSON(PhoneResponse{
		Display:  display,
		Digits:   contact.PhoneDigits(display),
		Complete: contact.PhoneComplete(display),
	})
}

// Validate checks a whole draft and returns every field error
func (h *ContactHandler) Validate(c *fiber.Ctx) error {
	var draft models.Draft
	if err := c.BodyParser(&draft); err != nil {
		return utils.BadRequestError("Invalid request body", err)
	}
	draft.Phone = contact.FormatPhone(draft.Phone)

	errs := h.validator.Validate(draft)
	return c.JSON(ValidateResponse{
		Valid:  errs.Valid(),
		Errors: errs.Strings(),
	})
}
