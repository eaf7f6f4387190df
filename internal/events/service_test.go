package events

import (
	"context"
	"testing"
	"time"

	"github.com/HenriqueLauxen/signea-sub001/internal/geo"
)

func validInput() CreateInput {
	starts := time.Date(2026, 9, 14, 19, 0, 0, 0, time.UTC)
	return CreateInput{
		Title:        "Semana Acadêmica",
		Description:  "Abertura",
		Location:     geo.Point{Lat: -29.7133, Lon: -53.7172},
		RadiusMeters: 100,
		StartsAt:     starts,
		EndsAt:       starts.Add(3 * time.Hour),
		PriceCents:   1500,
	}
}

func TestServiceCreateAndGet(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryRepository())

	event, err := svc.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	if event.Status != StatusScheduled {
		t.Fatalf("status = %q, want %q", event.Status, StatusScheduled)
	}

	fetched, err := svc.Get(ctx, event.ID)
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	if fetched.Title != "Semana Acadêmica" || fetched.RadiusMeters != 100 {
		t.Fatalf("unexpected event: %+v", fetched)
	}
}

func TestServiceCreateValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryRepository())

	cases := []struct {
		name   string
		mutate func(*CreateInput)
	}{
		{"missing title", func(in *CreateInput) { in.Title = "" }},
		{"bad coordinates", func(in *CreateInput) { in.Location.Lat = 91 }},
		{"zero radius", func(in *CreateInput) { in.RadiusMeters = 0 }},
		{"ends before start", func(in *CreateInput) { in.EndsAt = in.StartsAt.Add(-time.Hour) }},
		{"negative price", func(in *CreateInput) { in.PriceCents = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			if _, err := svc.Create(ctx, in); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCheckInWindow(t *testing.T) {
	in := validInput()
	event := Event{StartsAt: in.StartsAt, EndsAt: in.EndsAt}

	cases := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"an hour early", in.StartsAt.Add(-time.Hour), false},
		{"inside the grace window", in.StartsAt.Add(-20 * time.Minute), true},
		{"exactly at grace boundary", in.StartsAt.Add(-30 * time.Minute), true},
		{"during the event", in.StartsAt.Add(time.Hour), true},
		{"at the end", in.EndsAt, true},
		{"after the end", in.EndsAt.Add(time.Minute), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := event.CheckInOpen(tc.at); got != tc.want {
				t.Errorf("CheckInOpen(%v) = %v, want %v", tc.at, got, tc.want)
			}
		})
	}
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryRepository())

	event, err := svc.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	if err := svc.Cancel(ctx, event.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	fetched, err := svc.Get(ctx, event.ID)
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	if fetched.Status != StatusCanceled {
		t.Fatalf("status = %q, want canceled", fetched.Status)
	}
}
