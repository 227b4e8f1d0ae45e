package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/KhoaTranProgrammer/Common-Topics/app/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	testIssuer   = "https://reviews.example.org/"
	testAudience = "https://api.reviews.example.org"
	testKid      = "test-key"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequireNilVerifierIsOpen(t *testing.T) {
	if code := serveGuarded(t, nil, "evaluate:games", ""); code != http.StatusOK {
		t.Fatalf("expected 200 without a verifier, got %d", code)
	}
}

func TestRequireRejectsMissingAndMalformedHeaders(t *testing.T) {
	v, _ := newTestVerifier(t)
	for _, header := range []string{"", "Token abc", "Bearer", "Bearer   "} {
		if code := serveGuarded(t, v, "", header); code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, code)
		}
	}
}

func TestRequireRejectsForeignSignature(t *testing.T) {
	v, _ := newTestVerifier(t)
	other, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	tok := signToken(t, other, jwt.MapClaims{"sub": "mallory", "scope": "evaluate:games"})

	if code := serveGuarded(t, v, "evaluate:games", "Bearer "+tok); code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
}

func TestRequireRejectsExpiredToken(t *testing.T) {
	v, key := newTestVerifier(t)
	tok := signToken(t, key, jwt.MapClaims{
		"sub": "alice",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	if code := serveGuarded(t, v, "", "Bearer "+tok); code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
}

func TestRequireChecksScope(t *testing.T) {
	v, key := newTestVerifier(t)
	tok := signToken(t, key, jwt.MapClaims{"sub": "alice", "scope": "read:tournament"})

	if code := serveGuarded(t, v, "evaluate:games", "Bearer "+tok); code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", code)
	}
}

func TestRequireStoresReviewer(t *testing.T) {
	v, key := newTestVerifier(t)
	tok := signToken(t, key, jwt.MapClaims{"sub": "alice", "scope": "read:tournament evaluate:games"})

	router := gin.New()
	router.POST("/evaluate", Require(v, "evaluate:games"), func(c *gin.Context) {
		r, ok := ReviewerFromContext(c.Request.Context())
		if !ok || r.Subject != "alice" || r.ExpiresAt.IsZero() {
			c.Status(http.StatusTeapot)
			return
		}
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/evaluate", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestNewVerifierDisabled(t *testing.T) {
	v, err := NewVerifier(config.AuthConfig{})
	if err != nil || v != nil {
		t.Fatalf("NewVerifier without issuer = (%v, %v), want (nil, nil)", v, err)
	}
	if _, err := NewVerifier(config.AuthConfig{Issuer: testIssuer}); err == nil {
		t.Fatalf("expected an error without audience")
	}
}

func TestBearerToken(t *testing.T) {
	if tok, ok := bearerToken("bearer abc"); !ok || tok != "abc" {
		t.Fatalf("bearerToken = (%q, %v)", tok, ok)
	}
	if _, ok := bearerToken("Basic abc"); ok {
		t.Fatalf("expected Basic scheme to be rejected")
	}
}

func TestReviewerContext(t *testing.T) {
	if _, ok := ReviewerFromContext(context.Background()); ok {
		t.Fatalf("empty context should carry no reviewer")
	}
	ctx := WithReviewer(context.Background(), &Reviewer{Subject: "bob", Scopes: []string{"evaluate:games"}})
	r, ok := ReviewerFromContext(ctx)
	if !ok || !r.HasScope("evaluate:games") || r.HasScope("admin") {
		t.Fatalf("unexpected reviewer %+v", r)
	}
}

func serveGuarded(t *testing.T, v *Verifier, scope, header string) int {
	t.Helper()
	router := gin.New()
	router.POST("/evaluate", Require(v, scope), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/evaluate", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code
}

func newTestVerifier(t *testing.T) (*Verifier, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	n := base64.RawURLEncoding.EncodeToString(key.PublicKey.N.Bytes())
	e := base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.PublicKey.E)).Bytes())
	jwks := map[string]any{
		"keys": []map[string]string{
			{"kty": "RSA", "kid": testKid, "use": "sig", "alg": "RS256", "n": n, "e": e},
		},
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(jwks)
	}))
	t.Cleanup(server.Close)

	v, err := NewVerifier(config.AuthConfig{
		Issuer:   testIssuer,
		Audience: testAudience,
		JWKSURL:  server.URL,
	})
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}
	return v, key
}

// signToken fills in iss, aud and exp unless claims already set them.
func signToken(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	now := time.Now()
	defaults := jwt.MapClaims{
		"iss": testIssuer,
		"aud": testAudience,
		"iat": now.Unix(),
		"exp": now.Add(10 * time.Minute).Unix(),
	}
	for k, v := range defaults {
		if _, ok := claims[k]; !ok {
			claims[k] = v
		}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = testKid
	s, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}
