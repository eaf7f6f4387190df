package payments

import "time"

const (
	// StatusCreated is the initial charge status.
	StatusCreated = "created"
	// StatusPaid marks a manually confirmed charge.
	StatusPaid = "paid"
)

// Charge is a persisted offline PIX charge for an event registration. The
// payload is the complete BR Code string; the QR image is rendered on demand.
type Charge struct {
	ID             string
	RegistrationID string
	TxID           string
	AmountCents    int64
	Payload        string
	Status         string
	CreatedAt      time.Time
	PaidAt         time.Time
}
