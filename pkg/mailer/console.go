package mailer

import (
	"context"

	"go.uber.org/zap"
)

// ConsoleService logs messages instead of delivering them. Used in
// development when no SendGrid key is configured.
type ConsoleService struct {
	logger *zap.Logger
}

var _ Service = (*ConsoleService)(nil)

// NewConsoleService builds a log-only mailer.
func NewConsoleService(logger *zap.Logger) *ConsoleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleService{logger: logger}
}

// Send logs the message envelope and succeeds.
func (svc *ConsoleService) Send(_ context.Context, msg Message) error {
	recipients := make([]string, 0, len(msg.To))
	for _, to := range msg.To {
		recipients = append(recipients, to.Address)
	}
	svc.logger.Info("email (console transport)",
		zap.Strings("to", recipients),
		zap.String("subject", msg.Subject),
		zap.Int("attachments", len(msg.Attachments)),
	)
	return nil
}
