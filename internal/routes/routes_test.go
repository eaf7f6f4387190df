package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/HenriqueLauxen/signea-sub001/internal/config"
	"github.com/HenriqueLauxen/signea-sub001/internal/logging"
)

func setupTestApp(t *testing.T) (*fiber.App, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := config.Config{
		AppName:        "Signea",
		Env:            "development",
		Port:           "8080",
		SessionSecret:  "test-secret",
		PixKey:         "pagamentos@iffar.edu.br",
		MerchantName:   "Instituto Federal Farroupilha",
		MerchantCity:   "Sao Francisco de Assis",
		IdempotencyTTL: time.Hour,
	}

	app := fiber.New()
	if err := Setup(app, Deps{Cfg: cfg, Cache: cache, Logger: logging.Discard()}); err != nil {
		t.Fatalf("setup routes: %v", err)
	}

	cleanup := func() {
		cache.Close()
		mr.Close()
	}
	return app, cleanup
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any, headers map[string]string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	var decoded map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("decode response %s: %v", string(raw), err)
		}
	}
	return resp.StatusCode, decoded
}

func TestPing(t *testing.T) {
	app, cleanup := setupTestApp(t)
	defer cleanup()

	status, body := doJSON(t, app, fiber.MethodGet, "/api/v1/ping", nil, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 got %d", status)
	}
	if body["status"] != "ok" {
		t.Fatalf("unexpected ping body: %v", body)
	}
}

func TestProtectedRoutesRejectWithoutSession(t *testing.T) {
	app, cleanup := setupTestApp(t)
	defer cleanup()

	status, _ := doJSON(t, app, fiber.MethodGet, "/api/v1/me", nil, nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", status)
	}
}

func TestRegisterRejectsExternalEmail(t *testing.T) {
	app, cleanup := setupTestApp(t)
	defer cleanup()

	status, _ := doJSON(t, app, fiber.MethodPost, "/api/v1/accounts", map[string]any{
		"email":    "someone@gmail.com",
		"name":     "Someone",
		"password": "supersecret",
	}, nil)
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", status)
	}
}

func TestLoginRequiresConfirmedEmail(t *testing.T) {
	app, cleanup := setupTestApp(t)
	defer cleanup()

	status, _ := doJSON(t, app, fiber.MethodPost, "/api/v1/accounts", map[string]any{
		"email":    "aluno@aluno.iffar.edu.br",
		"name":     "Aluno",
		"password": "supersecret",
	}, nil)
	if status != http.StatusCreated {
		t.Fatalf("register: expected 201 got %d", status)
	}

	login := map[string]any{"email": "aluno@aluno.iffar.edu.br", "password": "supersecret"}
	status, _ = doJSON(t, app, fiber.MethodPost, "/api/v1/auth/login", login, nil)
	if status != http.StatusForbidden {
		t.Fatalf("unconfirmed login: expected 403 got %d", status)
	}

	status, _ = doJSON(t, app, fiber.MethodPost, "/api/v1/accounts/confirm", map[string]any{
		"email": "aluno@aluno.iffar.edu.br",
	}, nil)
	if status != http.StatusOK {
		t.Fatalf("confirm: expected 200 got %d", status)
	}

	status, body := doJSON(t, app, fiber.MethodPost, "/api/v1/auth/login", login, nil)
	if status != http.StatusOK {
		t.Fatalf("login: expected 200 got %d", status)
	}
	if body["token"] == "" || body["token"] == nil {
		t.Fatalf("expected a session token, got %v", body)
	}
}

// Full attendee journey: account, login, event, registration, GPS check-in,
// PIX charge, settlement, certificate.
func TestEventLifecycleFlow(t *testing.T) {
	app, cleanup := setupTestApp(t)
	defer cleanup()

	const email = "aluno@aluno.iffar.edu.br"

	status, _ := doJSON(t, app, fiber.MethodPost, "/api/v1/accounts", map[string]any{
		"email": email, "name": "Aluno", "password": "supersecret",
	}, nil)
	if status != http.StatusCreated {
		t.Fatalf("register: expected 201 got %d", status)
	}
	if status, _ := doJSON(t, app, fiber.MethodPost, "/api/v1/accounts/confirm", map[string]any{"email": email}, nil); status != http.StatusOK {
		t.Fatalf("confirm: expected 200 got %d", status)
	}
	status, _ = doJSON(t, app, fiber.MethodPost, "/api/v1/auth/login", map[string]any{
		"email": email, "password": "supersecret",
	}, nil)
	if status != http.StatusOK {
		t.Fatalf("login: expected 200 got %d", status)
	}

	now := time.Now().UTC()
	status, event := doJSON(t, app, fiber.MethodPost, "/api/v1/events", map[string]any{
		"title":         "Semana Acadêmica",
		"description":   "Palestras e oficinas",
		"lat":           -29.7133,
		"lon":           -53.7172,
		"radius_meters": 100,
		"starts_at":     now.Format(time.RFC3339),
		"ends_at":       now.Add(2 * time.Hour).Format(time.RFC3339),
		"price_cents":   1234,
	}, nil)
	if status != http.StatusCreated {
		t.Fatalf("create event: expected 201 got %d (%v)", status, event)
	}
	eventID, _ := event["id"].(string)
	if eventID == "" {
		t.Fatalf("event id missing: %v", event)
	}

	status, reg := doJSON(t, app, fiber.MethodPost, fmt.Sprintf("/api/v1/events/%s/registrations", eventID), map[string]any{}, nil)
	if status != http.StatusCreated {
		t.Fatalf("registration: expected 201 got %d (%v)", status, reg)
	}
	regID, _ := reg["id"].(string)

	// Repeat enrollment is idempotent.
	status, regAgain := doJSON(t, app, fiber.MethodPost, fmt.Sprintf("/api/v1/events/%s/registrations", eventID), map[string]any{}, nil)
	if status != http.StatusOK {
		t.Fatalf("repeat registration: expected 200 got %d", status)
	}
	if regAgain["id"] != regID {
		t.Fatalf("repeat registration returned a different row: %v vs %v", regAgain["id"], regID)
	}

	// A point well outside the radius is rejected without consuming check-in.
	status, far := doJSON(t, app, fiber.MethodPost, fmt.Sprintf("/api/v1/registrations/%s/checkin", regID), map[string]any{
		"lat": -30.0346, "lon": -51.2177,
	}, nil)
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("far check-in: expected 422 got %d", status)
	}
	if far["checked_in"] != false {
		t.Fatalf("far check-in should not mark attendance: %v", far)
	}

	status, checkin := doJSON(t, app, fiber.MethodPost, fmt.Sprintf("/api/v1/registrations/%s/checkin", regID), map[string]any{
		"lat": -29.7133, "lon": -53.7172,
	}, nil)
	if status != http.StatusOK {
		t.Fatalf("check-in: expected 200 got %d (%v)", status, checkin)
	}
	if checkin["checked_in"] != true {
		t.Fatalf("expected checked_in true: %v", checkin)
	}

	idem := map[string]string{"Idempotency-Key": "charge-1"}
	status, charge := doJSON(t, app, fiber.MethodPost, fmt.Sprintf("/api/v1/registrations/%s/charge", regID), map[string]any{
		"amount_cents": 1234,
	}, idem)
	if status != http.StatusCreated {
		t.Fatalf("charge: expected 201 got %d (%v)", status, charge)
	}
	chargeID, _ := charge["id"].(string)
	payload, _ := charge["payload"].(string)
	if len(payload) == 0 || payload[:8] != "00020101" {
		t.Fatalf("unexpected BR Code payload: %q", payload)
	}

	// Retried key replays the stored response.
	status, replay := doJSON(t, app, fiber.MethodPost, fmt.Sprintf("/api/v1/registrations/%s/charge", regID), map[string]any{
		"amount_cents": 1234,
	}, idem)
	if status != http.StatusCreated || replay["id"] != chargeID {
		t.Fatalf("idempotent replay failed: status %d body %v", status, replay)
	}

	status, _ = doJSON(t, app, fiber.MethodPost, fmt.Sprintf("/api/v1/charges/%s/confirm", chargeID), nil, nil)
	if status != http.StatusOK {
		t.Fatalf("confirm charge: expected 200 got %d", status)
	}

	status, cert := doJSON(t, app, fiber.MethodPost, fmt.Sprintf("/api/v1/registrations/%s/certificate", regID), nil, nil)
	if status != http.StatusCreated {
		t.Fatalf("certificate: expected 201 got %d (%v)", status, cert)
	}
	code, _ := cert["code"].(string)
	if code == "" {
		t.Fatalf("certificate code missing: %v", cert)
	}

	status, verified := doJSON(t, app, fiber.MethodGet, "/api/v1/certificates/"+code, nil, nil)
	if status != http.StatusOK {
		t.Fatalf("verify: expected 200 got %d", status)
	}
	if verified["registration_id"] != regID {
		t.Fatalf("verify returned wrong registration: %v", verified)
	}

	if status, _ := doJSON(t, app, fiber.MethodPost, "/api/v1/auth/logout", nil, nil); status != http.StatusNoContent {
		t.Fatalf("logout: expected 204 got %d", status)
	}
	if status, _ := doJSON(t, app, fiber.MethodGet, "/api/v1/me", nil, nil); status != http.StatusUnauthorized {
		t.Fatalf("after logout: expected 401 got %d", status)
	}
}
