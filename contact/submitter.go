package contact

import (
	"context"
	"time"

	"ouvidoria/models"

	"github.com/google/uuid"
)

// DefaultSubmitDelay stands in for the response time of a real backend
const DefaultSubmitDelay = 1500 * time.Millisecond

// Submitter accepts a validated draft and acknowledges it
type Submitter interface {
	Submit(ctx context.Context, draft models.Draft) (*models.Receipt, error)
}

// MockSubmitter acknowledges every draft after a fixed delay without any I/O.
// The zero value answers immediately and stamps receipts with time.Now.
type MockSubmitter struct {
	Delay time.Duration
	now   func() time.Time
}

// NewMockSubmitter creates a mock submitter waiting delay before answering
func NewMockSubmitter(delay time.Duration) *MockSubmitter {
	return &MockSubmitter{Delay: delay, now: time.Now}
}

// Submit waits for the configured delay and returns a receipt. The wait is
// not cut short by ctx.
func (m *MockSubmitter) Submit(_ context.Context, draft models.Draft) (*models.Receipt, error) {
	if m.Delay > 0 {
		timer := time.NewTimer(m.Delay)
		<-timer.C
	}

	now := time.Now
	if m.now != nil {
		now = m.now
	}

	return &models.Receipt{
		ID:          uuid.New().String(),
		Draft:       draft,
		SubmittedAt: now(),
	}, nil
}
