package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"purecerts-console/internal/model"
)

func mint(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("remote-secret"))
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}
	return tok
}

func TestInspectToken(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok := mint(t, jwt.MapClaims{
		"user_id":   "u1",
		"tenant_id": "t1",
		"email":     "a@b.com",
		"role":      2,
		"exp":       exp.Unix(),
	})

	claims, err := InspectToken(tok)
	if err != nil {
		t.Fatalf("InspectToken: %v", err)
	}
	if claims.UserID != "u1" || claims.TenantID != "t1" || claims.Email != "a@b.com" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.Role != model.RoleAdmin {
		t.Fatalf("expected admin role, got %q", claims.Role)
	}
	got, ok := claims.ExpiresAtTime()
	if !ok || !got.Equal(exp) {
		t.Fatalf("expected expiry %v, got %v", exp, got)
	}
	if claims.Expired(time.Now()) {
		t.Fatalf("expected token to be live")
	}
	if !claims.Expired(exp.Add(time.Second)) {
		t.Fatalf("expected token to be expired after exp")
	}
}

func TestInspectToken_SubjectFallback(t *testing.T) {
	tok := mint(t, jwt.MapClaims{"sub": "u9"})
	claims, err := InspectToken(tok)
	if err != nil {
		t.Fatalf("InspectToken: %v", err)
	}
	if claims.UserID != "u9" {
		t.Fatalf("expected u9, got %q", claims.UserID)
	}
	if _, ok := claims.ExpiresAtTime(); ok {
		t.Fatalf("expected no expiry")
	}
	if claims.Expired(time.Now()) {
		t.Fatalf("token without exp should not report expired")
	}
}

func TestInspectToken_Malformed(t *testing.T) {
	for _, tok := range []string{"", "   ", "opaque-token", "a.b.c"} {
		if _, err := InspectToken(tok); !errors.Is(err, ErrMalformedToken) {
			t.Fatalf("%q: expected ErrMalformedToken, got %v", tok, err)
		}
	}
}
