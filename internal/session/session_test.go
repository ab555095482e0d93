package session

import (
	"encoding/base64"
	"testing"

	"expenseportal/internal/model"
)

func TestSetCredentialsEncodesBasic(t *testing.T) {
	s := New()
	if s.Authenticated() {
		t.Fatal("fresh session claims authenticated")
	}

	s.SetCredentials("filial.centro", "senha")
	want := base64.StdEncoding.EncodeToString([]byte("filial.centro:senha"))
	if s.Basic() != want {
		t.Fatalf("Basic() = %q, want %q", s.Basic(), want)
	}
	if s.Usuario() != "filial.centro" || !s.Authenticated() {
		t.Fatalf("usuario = %q authenticated = %v", s.Usuario(), s.Authenticated())
	}
}

func TestInvalidateClearsAndRunsHooks(t *testing.T) {
	s := New()
	s.SetCredentials("admin", "senha")
	s.SetProfile(&model.Profile{Usuario: "admin", Tipo: model.TipoAdmin})

	ran := 0
	s.OnInvalidate(func() { ran++ })
	s.OnInvalidate(func() { ran++ })

	s.Invalidate()
	if s.Authenticated() || s.Usuario() != "" || s.Profile() != nil {
		t.Fatal("state survived invalidation")
	}
	if ran != 2 {
		t.Fatalf("hooks ran = %d, want 2", ran)
	}

	// Hooks stay registered for the next session.
	s.SetCredentials("admin", "senha")
	s.Invalidate()
	if ran != 4 {
		t.Fatalf("hooks ran = %d, want 4", ran)
	}
}
