package session

import (
	"strings"
	"testing"
)

func TestSignAndVerifyHS256(t *testing.T) {
	secret := []byte("test-secret")
	claims := map[string]any{"sub": testEmail, "exp": float64(4102444800)}

	token, err := SignHS256(claims, secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	parsed, err := ParseAndVerifyHS256(token, secret)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if parsed["sub"] != testEmail {
		t.Fatalf("sub = %v", parsed["sub"])
	}
}

func TestVerifyRejectsBadSignature(t *testing.T) {
	token, err := SignHS256(map[string]any{"sub": testEmail}, []byte("secret-a"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := ParseAndVerifyHS256(token, []byte("secret-b")); err == nil {
		t.Fatal("wrong secret accepted")
	}

	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]
	if _, err := ParseAndVerifyHS256(tampered, []byte("secret-a")); err == nil {
		t.Fatal("tampered payload accepted")
	}

	if _, err := ParseAndVerifyHS256("not-a-token", []byte("secret-a")); err == nil {
		t.Fatal("malformed token accepted")
	}
}
