package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/KhoaTranProgrammer/Common-Topics/app/auth"
	"github.com/KhoaTranProgrammer/Common-Topics/app/models"

	"github.com/gin-gonic/gin"
)

// max PGN body accepted by POST /evaluate
const maxPGNBytes = 1 << 20

// RequestTimeout bounds a whole POST /evaluate request.
const RequestTimeout = 5 * time.Minute

// Handlers serves evaluations and tournament overviews over HTTP. Evaluations
// are serialized so only one engine query is in flight at a time.
type Handlers struct {
	Evaluator *Evaluator
	GamesDir  string
	Timeout   time.Duration

	mu sync.Mutex
}

func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type moveResponse struct {
	Ply     int            `json:"ply"`
	Move    string         `json:"move"`
	Verdict models.Verdict `json:"verdict"`
	Delta   int            `json:"delta"`
}

// Evaluate classifies the moves of the PGN in the request body. Nothing is persisted.
func (h *Handlers) Evaluate(c *gin.Context) {
	if h.Evaluator == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no engine configured"})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxPGNBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("PGN body exceeds %d bytes", tooLarge.Limit)})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	g, err := ParsePGN(string(body))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if r, ok := auth.ReviewerFromContext(ctx); ok {
		log.Printf("evaluate: %d plies requested by %s", len(g.Moves()), r.Subject)
	}
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}

	var moves []models.MoveVerdict
	h.mu.Lock()
	err = h.resetOracle()
	if err == nil {
		moves, err = h.Evaluator.EvaluateGame(ctx, g)
	}
	h.mu.Unlock()
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	eval := models.GameEval{Header: headerFromGame(g), Moves: moves}
	out := make([]moveResponse, 0, len(moves))
	for _, m := range moves {
		out = append(out, moveResponse{Ply: m.Ply, Move: m.MoveUCI, Verdict: m.Verdict, Delta: m.Delta})
	}
	c.JSON(http.StatusOK, gin.H{
		"header":     eval.Header,
		"moves":      out,
		"annotation": FormatAnnotation(eval.Verdicts()),
	})
}

func (h *Handlers) resetOracle() error {
	r, ok := h.Evaluator.Oracle.(gameResetter)
	if !ok {
		return nil
	}
	if err := r.NewGame(); err != nil {
		log.Printf("evaluate: ucinewgame failed: %v", err)
		return fmt.Errorf("%w: ucinewgame: %w", ErrOracleFailure, err)
	}
	return nil
}

// Tournament aggregates the configured games directory.
func (h *Handlers) Tournament(c *gin.Context) {
	if h.GamesDir == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "GAMES_DIR is not configured"})
		return
	}

	t, err := AggregateTournament(c.Request.Context(), h.GamesDir)
	if err != nil && t.Standings == nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrInputNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	resp := gin.H{
		"event":     t.Overview.Event,
		"date":      t.Overview.Date,
		"rounds":    t.Overview.Rounds,
		"winner":    t.Overview.Winner,
		"standings": t.Standings.Players(),
		"games":     t.Games,
	}
	if err != nil {
		resp["warnings"] = err.Error()
	}
	c.IndentedJSON(http.StatusOK, resp)
}
