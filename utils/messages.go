package utils

import (
	"fmt"
	"io/fs"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

// Message ids used by the validator, the handlers and the templates
const (
	MsgFullNameRequired = "error_full_name_required"
	MsgEmailRequired    = "error_email_required"
	MsgEmailInvalid     = "error_email_invalid"
	MsgPhoneIncomplete  = "error_phone_incomplete"
	MsgMessageTooShort  = "error_message_too_short"
	MsgInvalidDraft     = "error_invalid_draft"
	MsgSubmitInProgress = "error_submit_in_progress"
	MsgSubmitFailed     = "error_submit_failed"
	MsgRateLimited      = "error_rate_limited"
	MsgNotFound         = "error_404"
	MsgInternal         = "error_500"
	MsgPageTitle        = "page_title"
	MsgPageSubtitle     = "page_subtitle"
	MsgResponseTime     = "page_response_time"
	MsgFormHeading      = "form_heading"
	MsgPlaceholderName  = "placeholder_full_name"
	MsgPlaceholderEmail = "placeholder_email"
	MsgPlaceholderPhone = "placeholder_phone"
	MsgPlaceholderText  = "placeholder_message"
	MsgSubmitButton     = "button_submit"
	MsgSubmittingButton = "button_submitting"
	MsgAckHeading       = "ack_heading"
	MsgAckBack          = "ack_back"
	MsgPhoneNotInformed = "phone_not_informed"
	MsgLabelFullName    = "label_full_name"
	MsgLabelEmail       = "label_email"
	MsgLabelPhone       = "label_phone"
	MsgLabelMessage     = "label_message"
)

var defaultMessages = []*i18n.Message{
	{ID: MsgFullNameRequired, Other: "full name is required"},
	{ID: MsgEmailRequired, Other: "email is required"},
	{ID: MsgEmailInvalid, Other: "invalid email format"},
	{ID: MsgPhoneIncomplete, Other: "phone number is incomplete"},
	{ID: MsgMessageTooShort, Other: "message must be at least {{.Min}} characters"},
	{ID: MsgInvalidDraft, Other: "please fix the highlighted fields"},
	{ID: MsgSubmitInProgress, Other: "a submission is already in progress"},
	{ID: MsgSubmitFailed, Other: "the message could not be delivered, please try again"},
	{ID: MsgRateLimited, Other: "Rate limit exceeded. Please try again later."},
	{ID: MsgNotFound, Other: "Page not found"},
	{ID: MsgInternal, Other: "Something went wrong"},
	{ID: MsgPageTitle, Other: "OUVIDORIA ONLINE"},
	{ID: MsgPageSubtitle, Other: "Write your question and wait for one of our agents to contact you"},
	{ID: MsgResponseTime, Other: "Average response time: 5hrs"},
	{ID: MsgFormHeading, Other: "GET IN TOUCH"},
	{ID: MsgPlaceholderName, Other: "Full name"},
	{ID: MsgPlaceholderEmail, Other: "Email"},
	{ID: MsgPlaceholderPhone, Other: "Phone"},
	{ID: MsgPlaceholderText, Other: "Message"},
	{ID: MsgSubmitButton, Other: "Send"},
	{ID: MsgSubmittingButton, Other: "Sending..."},
	{ID: MsgAckHeading, Other: "Submitted data"},
	{ID: MsgAckBack, Other: "Send another message"},
	{ID: MsgPhoneNotInformed, Other: "Not informed"},
	{ID: MsgLabelFullName, Other: "Name"},
	{ID: MsgLabelEmail, Other: "E-mail"},
	{ID: MsgLabelPhone, Other: "Phone"},
	{ID: MsgLabelMessage, Other: "Message"},
}

// Catalog resolves user-facing strings by message id. Built-in defaults can
// be reworded through a TOML message file.
type Catalog struct {
	bundle    *i18n.Bundle
	localizer *i18n.Localizer
}

// NewCatalog builds a catalog from the built-in defaults
func NewCatalog() *Catalog {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	if err := bundle.AddMessages(language.English, defaultMessages...); err != nil {
		// defaultMessages is static
		panic(fmt.Sprintf("messages: %v", err))
	}
	return &Catalog{
		bundle:    bundle,
		localizer: i18n.NewLocalizer(bundle, language.English.String()),
	}
}

// LoadOverrides reads a message file such as "active.en.toml" from fsys and
// replaces the matching defaults
func (c *Catalog) LoadOverrides(fsys fs.FS, path string) error {
	if _, err := c.bundle.LoadMessageFileFS(fsys, path); err != nil {
		return fmt.Errorf("load message file %s: %w", path, err)
	}
	c.localizer = i18n.NewLocalizer(c.bundle, language.English.String())
	return nil
}

// T translates a message ID
func (c *Catalog) T(messageID string) string {
	return c.TWithData(messageID, nil)
}

// TWithData translates a message ID with template data
func (c *Catalog) TWithData(messageID string, data map[string]interface{}) string {
	msg, err := c.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	})
	if err != nil {
		Log.Debug("Missing message '%s': %v", messageID, err)
		return messageID
	}
	return msg
}

// All returns every known message, for client-side rendering
func (c *Catalog) All() map[string]string {
	out := make(map[string]string, len(defaultMessages))
	for _, m := range defaultMessages {
		out[m.ID] = c.T(m.ID)
	}
	return out
}
