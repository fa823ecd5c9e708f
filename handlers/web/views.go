package web

import (
	"net/http"

	"ouvidoria/contact"
	"ouvidoria/models"
	"ouvidoria/templates"
	"ouvidoria/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
)

// NewEngine creates the template engine over the embedded views
func NewEngine(catalog *utils.Catalog) *html.Engine {
	engine := html.NewFileSystem(http.FS(templates.FS), ".html")

	engine.AddFunc("t", catalog.T)
	engine.AddFunc("tWithData", catalog.TWithData)

	return engine
}

// fieldView is what the form partial needs to render one input
type fieldView struct {
	Name        string
	Type        string
	Value       string
	Placeholder string
	Error       string
}

var fieldInputs = map[models.Field]struct {
	inputType   string
	placeholder string
}{
	models.FieldFullName: {"text", utils.MsgPlaceholderName},
	models.FieldEmail:    {"email", utils.MsgPlaceholderEmail},
	models.FieldPhone:    {"tel", utils.MsgPlaceholderPhone},
	models.FieldMessage:  {"textarea", utils.MsgPlaceholderText},
}

func (h *ContactHandler) formView(c *fiber.Ctx, state contact.FormState) fiber.Map {
	fields := make([]fieldView, 0, len(models.Fields))
	for _, f := range models.Fields {
		input := fieldInputs[f]
		fields = append(fields, fieldView{
			Name:        string(f),
			Type:        input.inputType,
			Value:       state.Values.Get(f),
			Placeholder: h.catalog.T(input.placeholder),
			Error:       state.Errors.Get(f),
		})
	}

	token, _ := c.Locals("csrf").(string)
	return fiber.Map{
		"Fields":     fields,
		"CanSubmit":  state.CanSubmit(),
		"Submitting": state.Submitting,
		"CSRFToken":  token,
	}
}
