package notification

import (
	"context"
	"log/slog"
)

const (
	// KindRegistration indicates a new event registration.
	KindRegistration = "registration"
	// KindChargeCreated indicates a PIX charge was generated.
	KindChargeCreated = "charge_created"
	// KindChargePaid indicates a PIX charge was confirmed as paid.
	KindChargePaid = "charge_paid"
	// KindCertificate indicates an attendance certificate was issued.
	KindCertificate = "certificate_issued"
)

// Message describes a notification payload.
type Message struct {
	Kind        string
	Destination string
	Body        string
}

// Notifier delivers notifications to downstream systems. Anything that needs
// to surface a user-facing message takes a Notifier explicitly; there is no
// process-wide broadcast channel.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier is a stub implementation that writes notifications to the logger.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier stub.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification", "kind", message.Kind, "destination", message.Destination, "body", message.Body)
	return nil
}
