package registry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/HenriqueLauxen/signea-sub001/internal/events"
	"github.com/HenriqueLauxen/signea-sub001/internal/geo"
)

var campus = geo.Point{Lat: -29.7133, Lon: -53.7172}

func setupService(t *testing.T) (*Service, events.Event) {
	t.Helper()
	ctx := context.Background()
	eventSvc := events.NewService(events.NewMemoryRepository())
	svc := NewService(NewInMemory(), eventSvc)

	starts := time.Now().UTC().Add(-time.Hour)
	event, err := eventSvc.Create(ctx, events.CreateInput{
		Title:        "Palestra de Extensão",
		Location:     campus,
		RadiusMeters: 100,
		StartsAt:     starts,
		EndsAt:       starts.Add(4 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	return svc, event
}

func TestRegisterIsIdempotentPerAccount(t *testing.T) {
	ctx := context.Background()
	svc, event := setupService(t)
	accountID := uuid.NewString()

	first, err := svc.Register(ctx, event.ID, accountID)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	second, err := svc.Register(ctx, event.ID, accountID)
	if !errors.Is(err, ErrDuplicateRegistration) {
		t.Fatalf("expected ErrDuplicateRegistration, got %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("duplicate returned a different registration: %s vs %s", second.ID, first.ID)
	}
}

func TestCheckInWithinRadius(t *testing.T) {
	ctx := context.Background()
	svc, event := setupService(t)

	reg, err := svc.Register(ctx, event.ID, uuid.NewString())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	nearby := geo.Point{Lat: campus.Lat + 0.0004, Lon: campus.Lon}
	res, err := svc.CheckIn(ctx, reg.ID, nearby, time.Now().UTC())
	if err != nil {
		t.Fatalf("check-in: %v", err)
	}
	if !res.Registration.CheckedIn {
		t.Fatal("registration not marked checked in")
	}
	if res.Proximity.DistanceMeters > event.RadiusMeters {
		t.Fatalf("distance %d beyond radius", res.Proximity.DistanceMeters)
	}

	if _, err := svc.CheckIn(ctx, reg.ID, nearby, time.Now().UTC()); !errors.Is(err, ErrAlreadyCheckedIn) {
		t.Fatalf("repeat check-in: expected ErrAlreadyCheckedIn, got %v", err)
	}
}

func TestCheckInOutsideRadius(t *testing.T) {
	ctx := context.Background()
	svc, event := setupService(t)

	reg, err := svc.Register(ctx, event.ID, uuid.NewString())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	far := geo.Point{Lat: campus.Lat + 0.01, Lon: campus.Lon}
	res, err := svc.CheckIn(ctx, reg.ID, far, time.Now().UTC())
	if !errors.Is(err, ErrOutsideRadius) {
		t.Fatalf("expected ErrOutsideRadius, got %v", err)
	}
	if res.Proximity.WithinRadius {
		t.Fatal("proximity result claims within radius")
	}

	// the failed attempt must not consume the check-in
	fetched, err := svc.Get(ctx, reg.ID)
	if err != nil {
		t.Fatalf("get registration: %v", err)
	}
	if fetched.CheckedIn {
		t.Fatal("failed check-in recorded attendance")
	}
}

func TestCheckInOutsideWindow(t *testing.T) {
	ctx := context.Background()
	svc, event := setupService(t)

	reg, err := svc.Register(ctx, event.ID, uuid.NewString())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	late := event.EndsAt.Add(time.Hour)
	if _, err := svc.CheckIn(ctx, reg.ID, campus, late); !errors.Is(err, ErrCheckInClosed) {
		t.Fatalf("expected ErrCheckInClosed, got %v", err)
	}
}

func TestRegisterOnCanceledEvent(t *testing.T) {
	ctx := context.Background()
	eventSvc := events.NewService(events.NewMemoryRepository())
	svc := NewService(NewInMemory(), eventSvc)

	starts := time.Now().UTC().Add(time.Hour)
	event, err := eventSvc.Create(ctx, events.CreateInput{
		Title: "Oficina", Location: campus, RadiusMeters: 50,
		StartsAt: starts, EndsAt: starts.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	if err := eventSvc.Cancel(ctx, event.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if _, err := svc.Register(ctx, event.ID, uuid.NewString()); !errors.Is(err, ErrEventCanceled) {
		t.Fatalf("expected ErrEventCanceled, got %v", err)
	}
}

func TestAttendanceListing(t *testing.T) {
	ctx := context.Background()
	svc, event := setupService(t)

	for i := 0; i < 3; i++ {
		if _, err := svc.Register(ctx, event.ID, uuid.NewString()); err != nil {
			t.Fatalf("register %d: %v", i, err)
		}
	}

	list, err := svc.Attendance(ctx, event.ID)
	if err != nil {
		t.Fatalf("attendance: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 registrations, got %d", len(list))
	}
}
