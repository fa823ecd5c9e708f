package models

// Field names a single input of the contact form
type Field string

const (
	FieldFullName Field = "fullName"
	FieldEmail    Field = "email"
	FieldPhone    Field = "phone"
	FieldMessage  Field = "message"
)

// Fields lists the form inputs in display order
var Fields = []Field{FieldFullName, FieldEmail, FieldPhone, FieldMessage}

// ParseField converts a raw field name into a Field
func ParseField(name string) (Field, bool) {
	for _, f := range Fields {
		if string(f) == name {
			return f, true
		}
	}
	return "", false
}

// Draft represents the unsaved state of the contact form
type Draft struct {
	FullName string `json:"fullName" form:"fullName" validate:"required"`
	Email    string `json:"email" form:"email" validate:"required,email"`
	Phone    string `json:"phone" form:"phone" validate:"omitempty,phone_mask"`
	Message  string `json:"message" form:"message" validate:"min=20"`
}

// Get returns the value of a field
func (d Draft) Get(f Field) string {
	switch f {
	case FieldFullName:
		return d.FullName
	case FieldEmail:
		return d.Email
	case FieldPhone:
		return d.Phone
	case FieldMessage:
		return d.Message
	}
	return ""
}

// With returns a copy of the draft with one field replaced
func (d Draft) With(f Field, value string) Draft {
	switch f {
	case FieldFullName:
		d.FullName = value
	case FieldEmail:
		d.Email = value
	case FieldPhone:
		d.Phone = value
	case FieldMessage:
		d.Message = value
	}
	return d
}
