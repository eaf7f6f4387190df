package certificates

import "time"

// Certificate attests attendance at an event. The code is the public
// verification handle printed on the document.
type Certificate struct {
	ID             string
	RegistrationID string
	Code           string
	IssuedAt       time.Time
}
