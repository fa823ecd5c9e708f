package contact

import (
	"strings"
	"testing"

	"ouvidoria/models"
	"ouvidoria/utils"
)

func newTestValidator(t *testing.T, policy PhonePolicy) *Validator {
	t.Helper()
	v, err := NewValidator(utils.NewCatalog(), policy)
	if err != nil {
		t.Fatalf("NewValidator() error = %v", err)
	}
	return v
}

func validDraft() models.Draft {
	return models.Draft{
		FullName: "Ana Silva",
		Email:    "ana@x.com",
		Message:  strings.Repeat("x", 20),
	}
}

func TestValidate_ValidDraft(t *testing.T) {
	v := newTestValidator(t, PhoneOptional)
	if errs := v.Validate(validDraft()); !errs.Valid() {
		t.Errorf("Validate(valid draft) = %v, want no errors", errs)
	}
}

func TestValidate_FieldRules(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(d *models.Draft)
		field models.Field
		want  string
	}{
		{
			name:  "empty full name",
			edit:  func(d *models.Draft) { d.FullName = "" },
			field: models.FieldFullName,
			want:  "full name is required",
		},
		{
			name:  "empty email",
			edit:  func(d *models.Draft) { d.Email = "" },
			field: models.FieldEmail,
			want:  "email is required",
		},
		{
			name:  "malformed email",
			edit:  func(d *models.Draft) { d.Email = "not-an-email" },
			field: models.FieldEmail,
			want:  "invalid email format",
		},
		{
			name:  "message of 19 characters",
			edit:  func(d *models.Draft) { d.Message = strings.Repeat("x", 19) },
			field: models.FieldMessage,
			want:  "message must be at least 20 characters",
		},
		{
			name:  "empty message",
			edit:  func(d *models.Draft) { d.Message = "" },
			field: models.FieldMessage,
			want:  "message must be at least 20 characters",
		},
	}

	v := newTestValidator(t, PhoneOptional)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			tt.edit(&d)

			errs := v.Validate(d)
			if errs.Valid() {
				t.Fatal("Validate() reported a valid draft")
			}
			if got := errs.Get(tt.field); got != tt.want {
				t.Errorf("error for %s = %q, want %q", tt.field, got, tt.want)
			}
			if len(errs) != 1 {
				t.Errorf("got %d errors, want 1: %v", len(errs), errs)
			}
		})
	}
}

func TestValidate_MessageBoundary(t *testing.T) {
	v := newTestValidator(t, PhoneOptional)
	d := validDraft()

	d.Message = strings.Repeat("a", 20)
	if errs := v.Validate(d); !errs.Valid() {
		t.Errorf("20 characters: got errors %v", errs)
	}

	d.Message = strings.Repeat("é", 20)
	if errs := v.Validate(d); !errs.Valid() {
		t.Errorf("20 accented characters: got errors %v", errs)
	}
}

func TestValidate_EmptyDraftReportsEveryRequiredField(t *testing.T) {
	v := newTestValidator(t, PhoneOptional)
	errs := v.Validate(models.Draft{})

	for _, f := range []models.Field{models.FieldFullName, models.FieldEmail, models.FieldMessage} {
		if errs.Get(f) == "" {
			t.Errorf("missing error for %s", f)
		}
	}
	if msg := errs.Get(models.FieldPhone); msg != "" {
		t.Errorf("empty phone error = %q, want none", msg)
	}
}

func TestValidate_PhonePolicy(t *testing.T) {
	tests := []struct {
		policy PhonePolicy
		phone  string
		want   string
	}{
		{PhoneOptional, "", ""},
		{PhoneOptional, "(1", ""},
		{PhoneOptional, "(11) 98765-4321", ""},
		{PhoneRequireComplete, "", ""},
		{PhoneRequireComplete, "(11) 98765-432", "phone number is incomplete"},
		{PhoneRequireComplete, "(11) 98765-4321", ""},
	}

	for _, tt := range tests {
		v := newTestValidator(t, tt.policy)
		d := validDraft()
		d.Phone = tt.phone
		if got := v.Validate(d).Get(models.FieldPhone); got != tt.want {
			t.Errorf("policy %s, phone %q: error = %q, want %q", tt.policy, tt.phone, got, tt.want)
		}
	}
}

func TestParsePhonePolicy(t *testing.T) {
	if p, err := ParsePhonePolicy(""); err != nil || p != PhoneOptional {
		t.Errorf("ParsePhonePolicy(\"\") = %q, %v; want optional", p, err)
	}
	if p, err := ParsePhonePolicy(" Complete "); err != nil || p != PhoneRequireComplete {
		t.Errorf("ParsePhonePolicy(Complete) = %q, %v; want complete", p, err)
	}
	if _, err := ParsePhonePolicy("strict"); err == nil {
		t.Error("ParsePhonePolicy(strict) should fail")
	}
}

func TestFieldErrorsStrings(t *testing.T) {
	errs := FieldErrors{models.FieldEmail: "invalid email format"}
	got := errs.Strings()
	if got["email"] != "invalid email format" || len(got) != 1 {
		t.Errorf("Strings() = %v", got)
	}
}
