package contact

import (
	"errors"
	"fmt"

	"ouvidoria/models"
)

var (
	// ErrUnknownField is returned for events naming a field the form lacks
	ErrUnknownField = errors.New("unknown form field")
	// ErrNotSubmittable is returned when submit is attempted on an invalid or
	// pristine draft
	ErrNotSubmittable = errors.New("form is not ready to submit")
	// ErrSubmitInProgress is returned while a previous submit has not finished
	ErrSubmitInProgress = errors.New("submission already in progress")
	// ErrNotSubmitting is returned when a submission outcome arrives for a
	// form that is not submitting
	ErrNotSubmitting = errors.New("form is not submitting")
)

// FormState is the complete state of one contact form instance
type FormState struct {
	Values     models.Draft          `json:"values"`
	Touched    map[models.Field]bool `json:"touched"`
	Errors     FieldErrors           `json:"errors"`
	Valid      bool                  `json:"valid"`
	Dirty      bool                  `json:"dirty"`
	Submitting bool                  `json:"submitting"`
}

// CanSubmit is the submit gate: a modified, valid draft with no submission
// in flight
func (s FormState) CanSubmit() bool {
	return s.Valid && s.Dirty && !s.Submitting
}

// Snapshot is the client view of a form state
type Snapshot struct {
	FormState
	Submittable bool `json:"can_submit"`
}

// Snapshot returns the state together with its submit gate
func (s FormState) Snapshot() Snapshot {
	return Snapshot{FormState: s, Submittable: s.CanSubmit()}
}

// IsTouched reports whether the field has lost focus at least once
func (s FormState) IsTouched(f models.Field) bool {
	return s.Touched[f]
}

// clone copies the maps so reducers never mutate their input
func (s FormState) clone() FormState {
	touched := make(map[models.Field]bool, len(s.Touched))
	for f, v := range s.Touched {
		touched[f] = v
	}
	errs := make(FieldErrors, len(s.Errors))
	for f, msg := range s.Errors {
		errs[f] = msg
	}
	s.Touched = touched
	s.Errors = errs
	return s
}

// EventKind identifies a discrete form event
type EventKind string

const (
	EventChange   EventKind = "change"
	EventBlur     EventKind = "blur"
	EventSubmit   EventKind = "submit"
	EventComplete EventKind = "complete"
	EventFail     EventKind = "fail"
	EventReset    EventKind = "reset"
)

// Event is one input to the reducer
type Event struct {
	Kind  EventKind    `json:"type"`
	Field models.Field `json:"field,omitempty"`
	Value string       `json:"value,omitempty"`
}

// Reducer derives new form states from events
type Reducer struct {
	validator *Validator
}

// NewReducer creates a reducer validating drafts with v
func NewReducer(v *Validator) *Reducer {
	return &Reducer{validator: v}
}

// Initial returns the pristine state of an empty form
func (r *Reducer) Initial() FormState {
	s := FormState{
		Touched: map[models.Field]bool{},
		Errors:  FieldErrors{},
	}
	s.Valid = r.validate(s.Values).Valid()
	return s
}

// Apply dispatches an event to the matching reducer function
func (r *Reducer) Apply(s FormState, ev Event) (FormState, error) {
	switch ev.Kind {
	case EventChange:
		return r.Change(s, ev.Field, ev.Value)
	case EventBlur:
		return r.Blur(s, ev.Field)
	case EventSubmit:
		return r.Submit(s)
	case EventComplete:
		return r.Complete(s)
	case EventFail:
		return r.Fail(s)
	case EventReset:
		return r.Initial(), nil
	}
	return s, fmt.Errorf("unknown event %q", ev.Kind)
}

// Change stores a new field value. The phone value always passes through
// FormatPhone. A touched field other than phone has its error refreshed.
func (r *Reducer) Change(s FormState, f models.Field, value string) (FormState, error) {
	if _, ok := models.ParseField(string(f)); !ok {
		return s, fmt.Errorf("%w: %q", ErrUnknownField, f)
	}
	if s.Submitting {
		return s, ErrSubmitInProgress
	}

	next := s.clone()
	if f == models.FieldPhone {
		value = FormatPhone(value)
	}
	if next.Values.Get(f) != value {
		next.Values = next.Values.With(f, value)
		next.Dirty = true
	}

	errs := r.validate(next.Values)
	next.Valid = errs.Valid()
	if f != models.FieldPhone && next.Touched[f] {
		setError(next.Errors, f, errs)
	}
	return next, nil
}

// Blur marks a field touched and refreshes its error
func (r *Reducer) Blur(s FormState, f models.Field) (FormState, error) {
	if _, ok := models.ParseField(string(f)); !ok {
		return s, fmt.Errorf("%w: %q", ErrUnknownField, f)
	}

	next := s.clone()
	next.Touched[f] = true

	errs := r.validate(next.Values)
	next.Valid = errs.Valid()
	setError(next.Errors, f, errs)
	return next, nil
}

// Submit enters the submitting state when the gate allows it. Otherwise
// every field is touched so all errors become visible.
func (r *Reducer) Submit(s FormState) (FormState, error) {
	if s.Submitting {
		return s, ErrSubmitInProgress
	}

	next := s.clone()
	errs := r.validate(next.Values)
	next.Valid = errs.Valid()

	if !next.CanSubmit() {
		for _, f := range models.Fields {
			next.Touched[f] = true
			setError(next.Errors, f, errs)
		}
		return next, ErrNotSubmittable
	}

	next.Submitting = true
	return next, nil
}

// Complete ends a successful submission and resets the draft
func (r *Reducer) Complete(s FormState) (FormState, error) {
	if !s.Submitting {
		return s, ErrNotSubmitting
	}
	return r.Initial(), nil
}

// Fail ends an unsuccessful submission and keeps the values
func (r *Reducer) Fail(s FormState) (FormState, error) {
	if !s.Submitting {
		return s, ErrNotSubmitting
	}
	next := s.clone()
	next.Submitting = false
	return next, nil
}

// validate checks the draft as it will be forwarded, so values that only
// pass while they still carry markup or padding are rejected
func (r *Reducer) validate(d models.Draft) FieldErrors {
	return r.validator.Validate(SanitizeDraft(d))
}

func setError(visible FieldErrors, f models.Field, errs FieldErrors) {
	if msg := errs.Get(f); msg != "" {
		visible[f] = msg
	} else {
		delete(visible, f)
	}
}
