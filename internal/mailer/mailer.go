// Package mailer delivers transactional email for the reset flow. Delivery
// is always best-effort: callers wrap Send in a non-propagating boundary, so
// a provider outage never fails the surrounding operation.
package mailer

import (
	"context"

	"spendtrack/internal/logger"
)

// Dispatcher sends a formatted message to a single recipient.
type Dispatcher interface {
	Send(ctx context.Context, to, subject, htmlBody, textBody string) error
}

// LogDispatcher is the development dispatcher: it records that a message
// would have been sent without delivering anything. Bodies are never logged,
// they carry one-time codes.
type LogDispatcher struct{}

// NewLogDispatcher creates a LogDispatcher.
func NewLogDispatcher() *LogDispatcher {
	return &LogDispatcher{}
}

// Send logs the recipient and subject and reports success.
func (d *LogDispatcher) Send(_ context.Context, to, subject, _, _ string) error {
	logger.Get().Infow("mail (log dispatcher, not delivered)",
		"to", to,
		"subject", subject,
	)
	return nil
}
