package google

import (
	"context"

	"golang.org/x/time/rate"
)

// The Gmail API allows 250 quota units/sec per user; staying at 150 calls a
// minute process-wide keeps batch agents well clear of quota exhaustion.
const (
	gmailCallsPerMinute = 150
)

// throttledGmail wraps a GmailService with a client-side request limiter so
// plan execution cannot burn through API quota.
type throttledGmail struct {
	base    GmailService
	limiter *rate.Limiter
}

// ThrottleGmail applies the process-wide outbound Gmail limit. Waits honor
// context cancellation.
func ThrottleGmail(base GmailService) GmailService {
	return &throttledGmail{
		base:    base,
		limiter: rate.NewLimiter(rate.Limit(gmailCallsPerMinute)/60.0, 10),
	}
}

func (t *throttledGmail) wait(ctx context.Context) error {
	return t.limiter.Wait(ctx)
}

func (t *throttledGmail) GetEmail(ctx context.Context, messageID string) (EmailMessage, error) {
	if err := t.wait(ctx); err != nil {
		return EmailMessage{}, err
	}
	return t.base.GetEmail(ctx, messageID)
}

func (t *throttledGmail) Search(ctx context.Context, query string, maxResults int) ([]EmailMessage, error) {
	if err := t.wait(ctx); err != nil {
		return nil, err
	}
	return t.base.Search(ctx, query, maxResults)
}

func (t *throttledGmail) SendEmail(ctx context.Context, to []string, subject, body string) (string, error) {
	if err := t.wait(ctx); err != nil {
		return "", err
	}
	return t.base.SendEmail(ctx, to, subject, body)
}

func (t *throttledGmail) ModifyLabels(ctx context.Context, messageID string, add, remove []string) error {
	if err := t.wait(ctx); err != nil {
		return err
	}
	return t.base.ModifyLabels(ctx, messageID, add, remove)
}
