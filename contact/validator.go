package contact

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"ouvidoria/models"
	"ouvidoria/utils"

	"github.com/go-playground/validator/v10"
)

// PhonePolicy decides whether a partially typed phone number blocks submission
type PhonePolicy string

const (
	// PhoneOptional accepts any mask output, including partial numbers
	PhoneOptional PhonePolicy = "optional"
	// PhoneRequireComplete rejects a non-empty phone with fewer than 11 digits
	PhoneRequireComplete PhonePolicy = "complete"
)

// ParsePhonePolicy converts a config value into a PhonePolicy
func ParsePhonePolicy(s string) (PhonePolicy, error) {
	switch p := PhonePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PhoneOptional, nil
	case PhoneOptional, PhoneRequireComplete:
		return p, nil
	}
	return "", fmt.Errorf("unknown phone policy %q", s)
}

// FieldErrors maps each failing field to its message
type FieldErrors map[models.Field]string

// Valid reports whether no field failed
func (fe FieldErrors) Valid() bool {
	return len(fe) == 0
}

// Get returns the message for a field, or "" when it is valid
func (fe FieldErrors) Get(f models.Field) string {
	return fe[f]
}

// Strings converts the map for JSON responses keyed by field name
func (fe FieldErrors) Strings() map[string]string {
	out := make(map[string]string, len(fe))
	for f, msg := range fe {
		out[string(f)] = msg
	}
	return out
}

// ruleMessages maps a failing "field.tag" pair to its message id
var ruleMessages = map[string]string{
	"fullName.required": utils.MsgFullNameRequired,
	"email.required":    utils.MsgEmailRequired,
	"email.email":       utils.MsgEmailInvalid,
	"phone.phone_mask":  utils.MsgPhoneIncomplete,
	"message.min":       utils.MsgMessageTooShort,
}

// Validator evaluates the rules declared on models.Draft
type Validator struct {
	validate *validator.Validate
	catalog  *utils.Catalog
	policy   PhonePolicy
}

// NewValidator creates a validator resolving messages through catalog
func NewValidator(catalog *utils.Catalog, policy PhonePolicy) (*Validator, error) {
	if policy == "" {
		policy = PhoneOptional
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("phone_mask", func(fl validator.FieldLevel) bool {
		if policy != PhoneRequireComplete {
			return true
		}
		return PhoneComplete(fl.Field().String())
	}); err != nil {
		return nil, fmt.Errorf("register phone_mask validation: %w", err)
	}

	return &Validator{validate: v, catalog: catalog, policy: policy}, nil
}

// MustNewValidator returns a validator or panics
func MustNewValidator(catalog *utils.Catalog, policy PhonePolicy) *Validator {
	v, err := NewValidator(catalog, policy)
	if err != nil {
		panic(err)
	}
	return v
}

// Policy returns the phone policy in effect
func (v *Validator) Policy() PhonePolicy {
	return v.policy
}

// Validate checks every field of the draft independently
func (v *Validator) Validate(d models.Draft) FieldErrors {
	errs := FieldErrors{}

	err := v.validate.Struct(d)
	if err == nil {
		return errs
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		utils.Log.Error("Unexpected validation failure: %v", err)
		return errs
	}

	for _, fe := range verrs {
		field := models.Field(fe.Field())
		if _, seen := errs[field]; seen {
			continue
		}
		errs[field] = v.message(fe)
	}
	return errs
}

func (v *Validator) message(fe validator.FieldError) string {
	id, ok := ruleMessages[fe.Field()+"."+fe.Tag()]
	if !ok {
		return fmt.Sprintf("%s is invalid", fe.Field())
	}

	data := map[string]interface{}{}
	if n, err := strconv.Atoi(fe.Param()); err == nil {
		data["Min"] = n
	}
	return v.catalog.TWithData(id, data)
}
