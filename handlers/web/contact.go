package web

import (
	"errors"

	"ouvidoria/contact"
	"ouvidoria/middleware"
	"ouvidoria/models"
	"ouvidoria/storage"
	"ouvidoria/utils"

	"github.com/gofiber/fiber/v2"
)

// ContactHandler serves the contact page and its form events
type ContactHandler struct {
	forms   *storage.FormStore
	service *contact.Service
	catalog *utils.Catalog
}

// NewContactHandler creates a new instance of ContactHandler
func NewContactHandler(forms *storage.FormStore, service *contact.Service, catalog *utils.Catalog) *ContactHandler {
	return &ContactHandler{
		forms:   forms,
		service: service,
		catalog: catalog,
	}
}

// ShowForm renders the contact page with the visitor's current draft
func (h *ContactHandler) ShowForm(c *fiber.Ctx) error {
	state, err := h.forms.Load(c)
	if err != nil {
		return utils.InternalServerError("Session error", err)
	}
	return c.Render("contact", h.formView(c, state))
}

// HandleInput applies a keystroke to one field
func (h *ContactHandler) HandleInput(c *fiber.Ctx) error {
	field, err := h.field(c)
	if err != nil {
		return err
	}
	return h.apply(c, contact.Event{Kind: contact.EventChange, Field: field, Value: h.fieldValue(c, field)})
}

// HandleBlur marks a field as touched. A value posted along with the blur is
// applied first so a debounced keystroke is never lost.
func (h *ContactHandler) HandleBlur(c *fiber.Ctx) error {
	field, err := h.field(c)
	if err != nil {
		return err
	}

	events := []contact.Event{{Kind: contact.EventBlur, Field: field}}
	if h.hasValue(c, field) {
		change := contact.Event{Kind: contact.EventChange, Field: field, Value: h.fieldValue(c, field)}
		events = append([]contact.Event{change}, events...)
	}
	return h.apply(c, events...)
}

// HandleSubmit applies any posted values and submits the draft
func (h *ContactHandler) HandleSubmit(c *fiber.Ctx) error {
	unlock := h.forms.Lock(c)
	defer unlock()

	state, err := h.forms.Load(c)
	if err != nil {
		return utils.InternalServerError("Session error", err)
	}

	reducer := h.service.Reducer()
	args := c.Request().PostArgs()
	for _, f := range models.Fields {
		if !args.Has(string(f)) {
			continue
		}
		if state, err = reducer.Change(state, f, c.FormValue(string(f))); err != nil {
			return h.eventError(err)
		}
	}

	final, receipt, err := h.service.Submit(c.UserContext(), state, func(submitting contact.FormState) error {
		if err := h.forms.Save(c, submitting); err != nil {
			return utils.InternalServerError("Session error", err)
		}
		return nil
	})

	var appErr *utils.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, contact.ErrSubmitInProgress):
		return utils.ConflictError(h.catalog.T(utils.MsgSubmitInProgress), err)
	case errors.Is(err, contact.ErrNotSubmittable):
		if err := h.forms.Save(c, final); err != nil {
			return utils.InternalServerError("Session error", err)
		}
		if c.Get("HX-Request") == "" && middleware.IsAPIRequest(c) {
			return utils.UnprocessableError(h.catalog.T(utils.MsgInvalidDraft), final.Errors.Strings())
		}
		view := h.formView(c, final)
		view["Error"] = h.catalog.T(utils.MsgInvalidDraft)
		return h.render(c, fiber.StatusUnprocessableEntity, "contact", "partials/form", view)
	case err != nil:
		if saveErr := h.forms.Save(c, final); saveErr != nil {
			utils.Log.Error("Failed to save form after failed submission: %v", saveErr)
		}
		return utils.BadGatewayError(h.catalog.T(utils.MsgSubmitFailed), err)
	}

	if err := h.forms.Save(c, final); err != nil {
		return utils.InternalServerError("Session error", err)
	}

	if c.Get("HX-Request") == "" && middleware.IsAPIRequest(c) {
		return c.JSON(fiber.Map{
			"receipt": receipt,
			"state":   final.Snapshot(),
		})
	}

	view := h.formView(c, final)
	view["Receipt"] = receipt
	return h.render(c, fiber.StatusOK, "acknowledgment", "partials/acknowledgment", view)
}

// apply runs events against the stored state and answers with the new state
func (h *ContactHandler) apply(c *fiber.Ctx, events ...contact.Event) error {
	unlock := h.forms.Lock(c)
	defer unlock()

	state, err := h.forms.Load(c)
	if err != nil {
		return utils.InternalServerError("Session error", err)
	}

	for _, ev := range events {
		if state, err = h.service.Reducer().Apply(state, ev); err != nil {
			return h.eventError(err)
		}
	}

	if err := h.forms.Save(c, state); err != nil {
		return utils.InternalServerError("Session error", err)
	}

	if c.Get("HX-Request") != "" {
		return c.Render("partials/form", h.formView(c, state), "")
	}
	return c.JSON(state.Snapshot())
}

// render answers HTMX requests with the fragment and others with the page.
// HTMX only swaps 2xx responses, so fragments always go out as 200.
func (h *ContactHandler) render(c *fiber.Ctx, status int, page, partial string, view fiber.Map) error {
	if c.Get("HX-Request") != "" {
		return c.Render(partial, view, "")
	}
	return c.Status(status).Render(page, view)
}

func (h *ContactHandler) eventError(err error) error {
	switch {
	case errors.Is(err, contact.ErrSubmitInProgress):
		return utils.ConflictError(h.catalog.T(utils.MsgSubmitInProgress), err)
	case errors.Is(err, contact.ErrUnknownField):
		return utils.BadRequestError("Unknown field", err)
	}
	return utils.BadRequestError("Invalid event", err)
}

// field reads the field name from the query string or the form body
func (h *ContactHandler) field(c *fiber.Ctx) (models.Field, error) {
	name := c.Query("field")
	if name == "" {
		name = c.FormValue("field")
	}
	field, ok := models.ParseField(name)
	if !ok {
		return "", utils.BadRequestError("Unknown field", nil).WithContext("field", name)
	}
	return field, nil
}

// hasValue reports whether the request body carries a value for f, either
// under "value" or under the field's own name
func (h *ContactHandler) hasValue(c *fiber.Ctx, f models.Field) bool {
	args := c.Request().PostArgs()
	return args.Has("value") || args.Has(string(f))
}

func (h *ContactHandler) fieldValue(c *fiber.Ctx, f models.Field) string {
	if c.Request().PostArgs().Has("value") {
		return c.FormValue("value")
	}
	return c.FormValue(string(f))
}
