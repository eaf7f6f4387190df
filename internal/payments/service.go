package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/HenriqueLauxen/signea-sub001/internal/notification"
	"github.com/HenriqueLauxen/signea-sub001/internal/pix"
	"github.com/HenriqueLauxen/signea-sub001/internal/registry"
)

// ErrNothingToCharge rejects charges for free registrations.
var ErrNothingToCharge = errors.New("payments: amount must be positive")

// Merchant identifies the institution on generated BR Codes.
type Merchant struct {
	PayeeKey string
	Name     string
	City     string
}

// Service issues and confirms offline PIX charges for registrations.
type Service struct {
	store    Store
	registry *registry.Service
	merchant Merchant
	notifier notification.Notifier
}

// NewService constructs a payment service.
func NewService(store Store, reg *registry.Service, merchant Merchant, notifier notification.Notifier) *Service {
	return &Service{store: store, registry: reg, merchant: merchant, notifier: notifier}
}

// ChargeInput captures the data needed to issue a charge.
type ChargeInput struct {
	RegistrationID string
	AmountCents    int64
}

// CreateCharge generates the BR Code payload for a registration and persists
// the charge. One charge per registration; repeats return the existing one
// with ErrChargeExists.
func (s *Service) CreateCharge(ctx context.Context, input ChargeInput) (Charge, error) {
	if input.AmountCents <= 0 {
		return Charge{}, ErrNothingToCharge
	}
	reg, err := s.registry.Get(ctx, input.RegistrationID)
	if err != nil {
		return Charge{}, err
	}

	chargeID := uuid.New().String()
	payload, err := pix.GeneratePayload(pix.ChargeRequest{
		PayeeKey:     s.merchant.PayeeKey,
		MerchantName: s.merchant.Name,
		MerchantCity: s.merchant.City,
		Amount:       float64(input.AmountCents) / 100,
		TxID:         txIDFrom(chargeID),
	})
	if err != nil {
		return Charge{}, err
	}

	charge := Charge{
		ID:             chargeID,
		RegistrationID: reg.ID,
		TxID:           txIDFrom(chargeID),
		AmountCents:    input.AmountCents,
		Payload:        payload,
		Status:         StatusCreated,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.store.Create(ctx, charge); err != nil {
		if errors.Is(err, ErrChargeExists) {
			if existing, findErr := s.store.FindByRegistration(ctx, reg.ID); findErr == nil {
				return existing, ErrChargeExists
			}
		}
		return Charge{}, err
	}

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindChargeCreated,
			Destination: reg.AccountID,
			Body:        fmt.Sprintf("Cobrança PIX de R$ %d,%02d gerada para sua inscrição", input.AmountCents/100, input.AmountCents%100),
		})
	}

	return charge, nil
}

// Get fetches a charge.
func (s *Service) Get(ctx context.Context, id string) (Charge, error) {
	return s.store.Get(ctx, id)
}

// QR renders the charge's BR Code as a PNG.
func (s *Service) QR(ctx context.Context, id string) ([]byte, error) {
	charge, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return pix.RenderQR(charge.Payload)
}

// Confirm marks a charge as paid. Settlement is manual: this service only
// encodes payloads, it does not talk to any payment gateway.
func (s *Service) Confirm(ctx context.Context, id string) (Charge, error) {
	charge, err := s.store.Get(ctx, id)
	if err != nil {
		return Charge{}, err
	}
	if charge.Status == StatusPaid {
		return charge, nil
	}
	now := time.Now().UTC()
	if err := s.store.MarkPaid(ctx, id, now); err != nil {
		return Charge{}, err
	}
	charge.Status = StatusPaid
	charge.PaidAt = now

	if s.notifier != nil {
		reg, regErr := s.registry.Get(ctx, charge.RegistrationID)
		if regErr == nil {
			_ = s.notifier.Send(ctx, notification.Message{
				Kind:        notification.KindChargePaid,
				Destination: reg.AccountID,
				Body:        "Pagamento confirmado",
			})
		}
	}
	return charge, nil
}

// txIDFrom derives a BR Code reference label from the charge id: uppercase
// alphanumerics only, bounded at 25 characters.
func txIDFrom(chargeID string) string {
	id := strings.ToUpper(strings.ReplaceAll(chargeID, "-", ""))
	if len(id) > 25 {
		id = id[:25]
	}
	return id
}
