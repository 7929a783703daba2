package auth

import (
	"testing"
	"time"
)

func TestAuthorizer_StaticToken(t *testing.T) {
	t.Parallel()

	a := Authorizer{APIToken: "op-token"}
	if !a.Authorize("op-token") {
		t.Fatal("configured operator token rejected")
	}
	if a.Authorize("other") || a.Authorize("") {
		t.Fatal("wrong or empty credential accepted")
	}
}

func TestAuthorizer_SignedToken(t *testing.T) {
	t.Parallel()

	secret := []byte("jwt-secret")
	a := Authorizer{JWTSecret: secret}

	tok, err := Sign("7", "admin", secret, time.Hour)
	if err != nil {
		t.Fatalf("Sign error: %v", err)
	}
	if !a.Authorize(tok) {
		t.Fatal("valid signed token rejected")
	}

	other, _ := Sign("7", "admin", []byte("other-secret"), time.Hour)
	if a.Authorize(other) {
		t.Fatal("token signed with a different secret accepted")
	}
}

func TestAuthorizer_EitherSchemeSuffices(t *testing.T) {
	t.Parallel()

	secret := []byte("jwt-secret")
	a := Authorizer{APIToken: "op-token", JWTSecret: secret}

	tok, _ := Sign("1", "admin", secret, time.Hour)
	if !a.Authorize("op-token") || !a.Authorize(tok) {
		t.Fatal("dual scheme must accept both credential kinds")
	}
}

func TestAuthorizer_ZeroValueRejects(t *testing.T) {
	t.Parallel()

	var a Authorizer
	tok, _ := Sign("1", "admin", []byte("any"), time.Hour)
	if a.Authorize(tok) || a.Authorize("anything") {
		t.Fatal("unconfigured authorizer must reject everything")
	}
}

func TestBearerFromHeader(t *testing.T) {
	t.Parallel()

	if got, ok := BearerFromHeader("Bearer abc.def.ghi"); !ok || got != "abc.def.ghi" {
		t.Fatalf("unexpected result: %q %v", got, ok)
	}
	for _, h := range []string{"", "Basic abc", "bearer abc", "Bearerabc"} {
		if _, ok := BearerFromHeader(h); ok {
			t.Fatalf("header %q should not yield a bearer", h)
		}
	}
}
