package certificates

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/HenriqueLauxen/signea-sub001/internal/events"
	"github.com/HenriqueLauxen/signea-sub001/internal/geo"
	"github.com/HenriqueLauxen/signea-sub001/internal/registry"
)

func setup(t *testing.T) (*Service, *registry.Service, registry.Registration) {
	t.Helper()
	ctx := context.Background()

	eventSvc := events.NewService(events.NewMemoryRepository())
	regSvc := registry.NewService(registry.NewInMemory(), eventSvc)
	svc := NewService(NewMemoryStore(), regSvc)

	starts := time.Now().UTC().Add(-time.Hour)
	event, err := eventSvc.Create(ctx, events.CreateInput{
		Title:        "Minicurso",
		Location:     geo.Point{Lat: -29.7133, Lon: -53.7172},
		RadiusMeters: 100,
		StartsAt:     starts,
		EndsAt:       starts.Add(4 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	reg, err := regSvc.Register(ctx, event.ID, uuid.NewString())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return svc, regSvc, reg
}

func TestIssueRequiresCheckIn(t *testing.T) {
	ctx := context.Background()
	svc, _, reg := setup(t)

	if _, err := svc.Issue(ctx, reg.ID); !errors.Is(err, ErrNotCheckedIn) {
		t.Fatalf("expected ErrNotCheckedIn, got %v", err)
	}
}

func TestIssueAndVerify(t *testing.T) {
	ctx := context.Background()
	svc, regSvc, reg := setup(t)

	if _, err := regSvc.CheckIn(ctx, reg.ID, geo.Point{Lat: -29.7133, Lon: -53.7172}, time.Now().UTC()); err != nil {
		t.Fatalf("check-in: %v", err)
	}

	cert, err := svc.Issue(ctx, reg.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if cert.Code == "" || cert.RegistrationID != reg.ID {
		t.Fatalf("unexpected certificate: %+v", cert)
	}

	found, err := svc.Verify(ctx, cert.Code)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if found.ID != cert.ID {
		t.Fatalf("verify resolved a different certificate: %s vs %s", found.ID, cert.ID)
	}

	again, err := svc.Issue(ctx, reg.ID)
	if !errors.Is(err, ErrAlreadyIssued) {
		t.Fatalf("repeat issue: expected ErrAlreadyIssued, got %v", err)
	}
	if again.ID != cert.ID {
		t.Fatalf("repeat issue returned a different certificate")
	}
}

func TestVerifyUnknownCode(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setup(t)

	if _, err := svc.Verify(ctx, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
