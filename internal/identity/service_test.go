package identity

import (
	"context"
	"errors"
	"testing"
)

func TestInstitutionalEmail(t *testing.T) {
	cases := []struct {
		email string
		want  bool
	}{
		{"aluno@aluno.iffar.edu.br", true},
		{"docente@iffar.edu.br", true},
		{"ALUNO@ALUNO.IFFAR.EDU.BR", true},
		{"aluno@gmail.com", false},
		{"aluno@iffar.edu.br.evil.com", false},
		{"aluno@aluno-iffar.edu.br", false},
		{"@iffar.edu.br", false},
		{"aluno@", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := InstitutionalEmail(tc.email); got != tc.want {
			t.Errorf("InstitutionalEmail(%q) = %v, want %v", tc.email, got, tc.want)
		}
	}
}

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryRepository())

	account, err := svc.Register(ctx, Credentials{
		Email:    "Aluno@Aluno.IFFAR.edu.br",
		Password: "senha-segura",
		Name:     "Aluno Teste",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if account.Email != "aluno@aluno.iffar.edu.br" {
		t.Fatalf("email not normalized: %q", account.Email)
	}
	if account.EmailConfirmed {
		t.Fatal("new accounts must start unconfirmed")
	}

	confirmed, err := svc.Authenticate(ctx, account.Email, "senha-segura")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if confirmed {
		t.Fatal("authenticate reported confirmed for an unconfirmed account")
	}

	if err := svc.ConfirmEmail(ctx, account.Email); err != nil {
		t.Fatalf("confirm email: %v", err)
	}
	confirmed, err = svc.Authenticate(ctx, account.Email, "senha-segura")
	if err != nil {
		t.Fatalf("authenticate after confirm: %v", err)
	}
	if !confirmed {
		t.Fatal("expected confirmed account")
	}
}

func TestRegisterRejectsOutsideDomain(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryRepository())

	if _, err := svc.Register(ctx, Credentials{Email: "aluno@gmail.com", Password: "senha-segura"}); !errors.Is(err, ErrNotInstitutional) {
		t.Fatalf("expected ErrNotInstitutional, got %v", err)
	}
}

func TestAuthenticateRejectsBadPassword(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryRepository())

	if _, err := svc.Register(ctx, Credentials{Email: "aluno@aluno.iffar.edu.br", Password: "senha-segura"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Authenticate(ctx, "aluno@aluno.iffar.edu.br", "errada12"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "outro@aluno.iffar.edu.br", "senha-segura"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown account: expected ErrInvalidCredentials, got %v", err)
	}
}
