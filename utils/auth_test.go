package utils

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "test-secret")
	os.Exit(m.Run())
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(42, "leo", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != 42 || claims.Username != "leo" {
		t.Fatalf("claims = %d/%s", claims.UserID, claims.Username)
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	if _, err := ParseToken("not-a-jwt"); err == nil {
		t.Fatal("garbage token parsed")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token, err := GenerateToken(1, "leo", -time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := ParseToken(token); err == nil {
		t.Fatal("expired token parsed")
	}
}

func TestPasswordHashAndCheck(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "hunter22" {
		t.Fatal("password stored in the clear")
	}
	if !CheckPassword(hash, "hunter22") {
		t.Fatal("correct password rejected")
	}
	if CheckPassword(hash, "wrong") {
		t.Fatal("wrong password accepted")
	}
}

func TestSanitizeStripsScript(t *testing.T) {
	out := Sanitize(`hello <script>alert(1)</script><b>bold</b>`)
	if strings.Contains(out, "script") {
		t.Fatalf("script survived: %q", out)
	}
	if !strings.Contains(out, "<b>bold</b>") {
		t.Fatalf("benign markup stripped: %q", out)
	}
}

func TestTokenBlacklist(t *testing.T) {
	token := "blacklist-probe-" + time.Now().Format(time.RFC3339Nano)
	if IsTokenBlacklisted(token) {
		t.Fatal("unknown token reported blacklisted")
	}
	BlacklistToken(token, time.Now().Add(time.Minute))
	if !IsTokenBlacklisted(token) {
		t.Fatal("blacklisted token reported clean")
	}
}

func TestVerificationCodeSingleUse(t *testing.T) {
	code := GenerateVerificationCode(6)
	if len(code) != 6 {
		t.Fatalf("code %q has wrong length", code)
	}

	SaveCode("probe@example.com", code, time.Minute)
	if VerifyAndConsumeCode("probe@example.com", "wrong") {
		t.Fatal("wrong code accepted")
	}
	// Any attempt consumes the stored code, right or wrong.
	if VerifyAndConsumeCode("probe@example.com", code) {
		t.Fatal("code survived a failed attempt")
	}

	SaveCode("probe@example.com", code, time.Minute)
	if !VerifyAndConsumeCode("probe@example.com", code) {
		t.Fatal("saved code rejected")
	}
	if VerifyAndConsumeCode("probe@example.com", code) {
		t.Fatal("code accepted twice")
	}
}
