package contact

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ouvidoria/models"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

// WebhookSubmitter forwards drafts as JSON to an HTTP endpoint
type WebhookSubmitter struct {
	url     string
	timeout time.Duration
	client  *fasthttp.Client
}

type webhookPayload struct {
	models.Draft
	SubmittedAt time.Time `json:"submitted_at"`
}

type webhookAck struct {
	ID string `json:"id"`
}

// NewWebhookSubmitter creates a submitter posting to url. A nil client uses
// a default fasthttp client.
func NewWebhookSubmitter(url string, timeout time.Duration, client *fasthttp.Client) *WebhookSubmitter {
	if client == nil {
		client = &fasthttp.Client{Name: "ouvidoria"}
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookSubmitter{url: url, timeout: timeout, client: client}
}

// Submit posts the draft and turns a 2xx answer into a receipt. An "id" in
// the JSON answer becomes the receipt id.
func (w *WebhookSubmitter) Submit(ctx context.Context, draft models.Draft) (*models.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	submittedAt := time.Now()
	body, err := json.Marshal(webhookPayload{Draft: draft, SubmittedAt: submittedAt})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal draft: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(w.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	timeout := w.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}

	if err := w.client.DoTimeout(req, resp, timeout); err != nil {
		return nil, fmt.Errorf("webhook request failed: %w", err)
	}

	if code := resp.StatusCode(); code < 200 || code >= 300 {
		return nil, fmt.Errorf("webhook responded with status %d", code)
	}

	var ack webhookAck
	if raw := resp.Body(); len(raw) > 0 {
		if err := json.Unmarshal(raw, &ack); err != nil {
			return nil, fmt.Errorf("failed to decode webhook response: %w", err)
		}
	}
	if ack.ID == "" {
		ack.ID = uuid.New().String()
	}

	return &models.Receipt{
		ID:          ack.ID,
		Draft:       draft,
		SubmittedAt: submittedAt,
	}, nil
}
