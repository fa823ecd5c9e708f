package models

import "time"

// Receipt acknowledges an accepted submission
type Receipt struct {
	ID          string    `json:"id"`
	Draft       Draft     `json:"draft"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// HasPhone reports whether the visitor left a phone number
func (r *Receipt) HasPhone() bool {
	return r.Draft.Phone != ""
}
