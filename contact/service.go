package contact

import (
	"context"
	"fmt"

	"ouvidoria/models"
	"ouvidoria/utils"
)

// Service runs submissions of a form state through a Submitter
type Service struct {
	reducer   *Reducer
	submitter Submitter
	log       *utils.Logger
}

// NewService creates a submission service
func NewService(reducer *Reducer, submitter Submitter, log *utils.Logger) *Service {
	if log == nil {
		log = utils.Log
	}
	return &Service{reducer: reducer, submitter: submitter, log: log}
}

// Reducer returns the reducer the service applies events with
func (s *Service) Reducer() *Reducer {
	return s.reducer
}

// Submit moves state into submitting, hands the draft to the submitter and
// returns the final state. onSubmitting, when set, observes the submitting
// state before the submitter runs; an error from it aborts the submission
// and leaves state unchanged.
func (s *Service) Submit(ctx context.Context, state FormState, onSubmitting func(FormState) error) (FormState, *models.Receipt, error) {
	submitting, err := s.reducer.Submit(state)
	if err != nil {
		return submitting, nil, err
	}

	if onSubmitting != nil {
		if err := onSubmitting(submitting); err != nil {
			return state, nil, err
		}
	}

	draft := SanitizeDraft(submitting.Values)
	receipt, err := s.submitter.Submit(ctx, draft)
	if err != nil {
		s.log.WithField("email", draft.Email).Error("Submission failed: %v", err)
		failed, _ := s.reducer.Fail(submitting)
		return failed, nil, fmt.Errorf("submit draft: %w", err)
	}

	s.log.WithFields(map[string]interface{}{
		"receipt": receipt.ID,
		"email":   draft.Email,
	}).Info("Submission acknowledged")

	done, _ := s.reducer.Complete(submitting)
	return done, receipt, nil
}

// SanitizeDraft strips markup from the free-text fields and re-applies the
// phone mask
func SanitizeDraft(d models.Draft) models.Draft {
	return models.Draft{
		FullName: utils.CleanText(d.FullName),
		Email:    utils.CleanText(d.Email),
		Phone:    FormatPhone(d.Phone),
		Message:  utils.CleanText(d.Message),
	}
}
