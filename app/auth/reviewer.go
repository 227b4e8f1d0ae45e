// Package auth guards the engine-backed HTTP routes with bearer tokens.
package auth

import (
	"context"
	"strings"
	"time"
)

type ctxKey int

const reviewerKey ctxKey = iota

// Reviewer is the verified caller of a guarded route.
type Reviewer struct {
	Subject   string
	Scopes    []string
	ExpiresAt time.Time
}

func (r *Reviewer) HasScope(scope string) bool {
	for _, s := range r.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

func WithReviewer(ctx context.Context, r *Reviewer) context.Context {
	return context.WithValue(ctx, reviewerKey, r)
}

func ReviewerFromContext(ctx context.Context) (*Reviewer, bool) {
	r, ok := ctx.Value(reviewerKey).(*Reviewer)
	return r, ok
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
