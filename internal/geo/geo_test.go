package geo

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

var campus = Point{Lat: -29.7133, Lon: -53.7172}

func TestDistanceKnownValues(t *testing.T) {
	cases := []struct {
		name string
		a, b Point
		want int
	}{
		{"one degree of longitude at the equator", Point{0, 0}, Point{0, 1}, 111195},
		{"santa maria to porto alegre", Point{-29.6842, -53.8069}, Point{-30.0346, -51.2177}, 252702},
		{"hundred meters north of campus", campus, Point{campus.Lat + 0.00089932, campus.Lon}, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Distance(tc.a, tc.b); got != tc.want {
				t.Errorf("Distance = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestDistanceSymmetricAndZero(t *testing.T) {
	a := Point{Lat: -29.6842, Lon: -53.8069}
	b := Point{Lat: -30.0346, Lon: -51.2177}
	if Distance(a, b) != Distance(b, a) {
		t.Error("distance is not symmetric")
	}
	if d := Distance(a, a); d != 0 {
		t.Errorf("distance to self = %d, want 0", d)
	}
}

func TestCheckProximityBoundary(t *testing.T) {
	north100 := Point{Lat: campus.Lat + 0.00089932, Lon: campus.Lon}

	at := CheckProximity(north100, campus, 100)
	if at.DistanceMeters != 100 || !at.WithinRadius {
		t.Errorf("distance equal to radius must pass: %+v", at)
	}
	beyond := CheckProximity(north100, campus, 99)
	if beyond.WithinRadius {
		t.Errorf("distance beyond radius must fail: %+v", beyond)
	}
	if !strings.Contains(at.Message, "100") {
		t.Errorf("message should embed the distance: %q", at.Message)
	}
	if !strings.Contains(beyond.Message, "fora do raio") {
		t.Errorf("rejection message should say out of radius: %q", beyond.Message)
	}
}

func TestAcquireLocation(t *testing.T) {
	ctx := context.Background()
	want := Position{Point: campus, AccuracyMeters: 12}

	pos, err := AcquireLocation(ctx, StaticProvider{Position: want}, Options{Timeout: time.Second})
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if pos.Point != campus {
		t.Fatalf("position = %+v, want %+v", pos.Point, campus)
	}
}

func TestAcquireLocationErrors(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name     string
		provider Provider
		opts     Options
		want     error
	}{
		{"permission denied", StaticProvider{Err: ErrPermissionDenied}, Options{Timeout: time.Second}, ErrPermissionDenied},
		{"unavailable", StaticProvider{Err: errors.New("gps cold start")}, Options{Timeout: time.Second}, ErrPositionUnavailable},
		{"timeout", StaticProvider{Position: Position{Point: campus}, Delay: 200 * time.Millisecond}, Options{Timeout: 10 * time.Millisecond}, ErrTimeout},
		{"invalid fix", StaticProvider{Position: Position{Point: Point{Lat: 123, Lon: 0}}}, Options{Timeout: time.Second}, ErrPositionUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := AcquireLocation(ctx, tc.provider, tc.opts); !errors.Is(err, tc.want) {
				t.Fatalf("error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestAcquireLocationCallerAbandons(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := AcquireLocation(ctx, StaticProvider{Position: Position{Point: campus}, Delay: time.Second}, Options{Timeout: time.Minute})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("abandoned acquisition should report timeout, got %v", err)
	}
}
