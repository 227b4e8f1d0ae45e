// Package app wires shared HTTP routes for both local and Lambda execution.
package app

import (
	"log"
	"time"

	"github.com/KhoaTranProgrammer/Common-Topics/app/auth"
	"github.com/KhoaTranProgrammer/Common-Topics/app/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewGuard builds the middleware protecting POST /evaluate.
func NewGuard(cfg config.AuthConfig) (gin.HandlerFunc, error) {
	v, err := auth.NewVerifier(cfg)
	if err != nil {
		return nil, err
	}
	if v == nil {
		log.Print("AUTH_ISSUER not set: /evaluate is served without authentication")
	}
	return auth.Require(v, cfg.Scope), nil
}

// NewRouter builds the shared HTTP router. guard runs in front of the
// engine-backed route; nil leaves it open.
func NewRouter(h *Handlers, guard gin.HandlerFunc) *gin.Engine {
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       12 * time.Hour,
	}))

	router.GET("/health", h.Health)
	router.GET("/tournament", h.Tournament)

	evaluate := []gin.HandlerFunc{h.Evaluate}
	if guard != nil {
		evaluate = append([]gin.HandlerFunc{guard}, evaluate...)
	}
	router.POST("/evaluate", evaluate...)

	return router
}
