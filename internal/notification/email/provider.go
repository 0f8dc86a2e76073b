package email

import "context"

// Provider delivers a single plain-text message.
type Provider interface {
	Send(ctx context.Context, to string, subject string, body string) error
}

type NoOpProvider struct{}

func (NoOpProvider) Send(ctx context.Context, to string, subject string, body string) error {
	return nil
}
