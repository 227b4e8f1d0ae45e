package auth

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Require rejects requests without a valid bearer token carrying scope.
// An empty scope only checks the token. A nil verifier lets everything through.
func Require(v *Verifier, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if v == nil {
			c.Next()
			return
		}

		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			log.Printf("auth: missing or malformed Authorization header path=%s", c.Request.URL.Path)
			unauthorized(c, "missing bearer token")
			return
		}

		r, err := v.Verify(token)
		if err != nil {
			log.Printf("auth: %v path=%s", err, c.Request.URL.Path)
			unauthorized(c, "invalid token")
			return
		}
		if scope != "" && !r.HasScope(scope) {
			log.Printf("auth: %s lacks scope %q", r.Subject, scope)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient scope"})
			return
		}

		c.Request = c.Request.WithContext(WithReviewer(c.Request.Context(), r))
		c.Next()
	}
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}
