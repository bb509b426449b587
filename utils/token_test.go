package utils

import "testing"

func TestJwtRoundTrip(t *testing.T) {
	token, err := JwtGenerate("alice", "Acme Corp")
	if err != nil {
		t.Fatalf("JwtGenerate: %v", err)
	}
	parsed, err := JwtValidate(token)
	if err != nil || !parsed.Valid {
		t.Fatalf("JwtValidate: %v", err)
	}
	claims, ok := parsed.Claims.(*JwtCustomClaim)
	if !ok || claims.Username != "alice" || claims.Company != "Acme Corp" {
		t.Fatalf("claims = %+v", parsed.Claims)
	}

	if _, err := JwtValidate(token + "x"); err == nil {
		t.Fatalf("tampered token must not validate")
	}
}
