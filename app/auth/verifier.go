package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/KhoaTranProgrammer/Common-Topics/app/config"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

const leeway = 30 * time.Second

var ErrInvalidToken = errors.New("invalid token")

// Verifier checks RS-signed access tokens against the issuer's JWKS.
type Verifier struct {
	issuer   string
	audience string
	keys     keyfunc.Keyfunc
	parser   *jwt.Parser
}

// NewVerifier returns nil, nil when no issuer is configured.
func NewVerifier(cfg config.AuthConfig) (*Verifier, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	issuer := cfg.Issuer
	if !strings.HasSuffix(issuer, "/") {
		issuer += "/"
	}
	if cfg.Audience == "" {
		return nil, fmt.Errorf("%w: AUTH_AUDIENCE must be set with AUTH_ISSUER", config.ErrInvalidConfig)
	}
	jwksURL := cfg.JWKSURL
	if jwksURL == "" {
		jwksURL = issuer + ".well-known/jwks.json"
	}

	keys, err := keyfunc.NewDefault([]string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("loading JWKS from %s: %w", jwksURL, err)
	}

	return &Verifier{
		issuer:   issuer,
		audience: cfg.Audience,
		keys:     keys,
		parser: jwt.NewParser(
			jwt.WithIssuer(issuer),
			jwt.WithAudience(cfg.Audience),
			jwt.WithLeeway(leeway),
			jwt.WithExpirationRequired(),
			jwt.WithValidMethods([]string{"RS256", "RS384", "RS512"}),
		),
	}, nil
}

func (v *Verifier) Verify(raw string) (*Reviewer, error) {
	claims := jwt.MapClaims{}
	token, err := v.parser.ParseWithClaims(raw, claims, v.keys.Keyfunc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	sub, _ := claims.GetSubject()
	if sub == "" {
		return nil, fmt.Errorf("%w: missing sub", ErrInvalidToken)
	}
	r := &Reviewer{Subject: sub}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		r.ExpiresAt = exp.Time
	}
	if scope, ok := claims["scope"].(string); ok {
		r.Scopes = strings.Fields(scope)
	}
	return r, nil
}
