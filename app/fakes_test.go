package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/KhoaTranProgrammer/Common-Topics/app/models"
)

func intPtr(v int) *int { return &v }

func cp(v int) models.UCIScore   { return models.UCIScore{CP: intPtr(v)} }
func mate(v int) models.UCIScore { return models.UCIScore{Mate: intPtr(v)} }

var errEngineCrashed = errors.New("engine crashed")

// scriptedOracle answers queries in call order.
type scriptedOracle struct {
	scores   []models.UCIScore
	failAt   int // 1-based call that fails, 0 = never
	cancel   context.CancelFunc
	cancelAt int // 1-based call after which cancel is invoked
	fens     []string
	newGames   int
	newGameErr error
}

func (o *scriptedOracle) EvalFEN(ctx context.Context, fen string, _ models.EngineSettings) (models.UCIScore, error) {
	o.fens = append(o.fens, fen)
	n := len(o.fens)
	if o.cancel != nil && n == o.cancelAt {
		o.cancel()
	}
	if n == o.failAt {
		return models.UCIScore{}, errors.Join(ErrOracleFailure, errEngineCrashed)
	}
	if n > len(o.scores) {
		return models.UCIScore{}, ErrOracleFailure
	}
	return o.scores[n-1], nil
}

func (o *scriptedOracle) NewGame() error {
	o.newGames++
	return o.newGameErr
}

const twoMovePGN = `[Event "Test Open"]
[Site "?"]
[Date "2025.11.30"]
[Round "1"]
[White "Alice"]
[Black "Bob"]
[Result "1-0"]

1. e4 e5 1-0
`

func gamePGN(event, round, white, black, result string) string {
	term := result
	if _, _, err := ParseResult(result); err != nil {
		term = "*"
	}
	return `[Event "` + event + `"]
[Site "?"]
[Date "2025.11.30"]
[Round "` + round + `"]
[White "` + white + `"]
[Black "` + black + `"]
[Result "` + result + `"]

1. d4 d5 ` + term + `
`
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
