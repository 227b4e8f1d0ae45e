// --- analyze.go ---
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/KhoaTranProgrammer/Common-Topics/app/models"

	"github.com/notnil/chess"
)

// Evaluator walks a game once, querying the oracle for every position.
type Evaluator struct {
	Oracle     Oracle
	Settings   models.EngineSettings
	Thresholds Thresholds
	Verbose    bool // log every classified move
}

// ParsePGN decodes the first game of a PGN record, header and moves together.
// Verdict annotations left by earlier runs are ignored.
func ParsePGN(pgn string) (*chess.Game, error) {
	pgn = StripAnnotations(pgn)
	if strings.TrimSpace(pgn) == "" {
		return nil, ErrNoGameParsed
	}

	// A record may hold several games; only the first one is reviewed.
	sc := chess.NewScanner(strings.NewReader(pgn))
	if !sc.Scan() {
		if err := sc.Err(); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %v", ErrNoGameParsed, err)
		}
		return nil, ErrNoGameParsed
	}
	g := sc.Next()
	if g == nil {
		return nil, ErrNoGameParsed
	}
	if len(g.Moves()) == 0 && len(g.TagPairs()) == 0 {
		return nil, ErrNoGameParsed
	}
	return g, nil
}

func LoadGame(path string) (*chess.Game, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return nil, err
	}
	g, err := ParsePGN(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// EvaluateFile parses and evaluates one PGN file. Nothing is persisted here.
func (ev *Evaluator) EvaluateFile(ctx context.Context, path string) (models.GameEval, error) {
	g, err := LoadGame(path)
	if err != nil {
		return models.GameEval{}, err
	}
	header := headerFromGame(g)
	log.Printf("Analyzing game: %s (%s vs %s)", header.Event, header.White, header.Black)

	moves, err := ev.EvaluateGame(ctx, g)
	if err != nil {
		return models.GameEval{}, fmt.Errorf("%s: %w", path, err)
	}
	return models.GameEval{Source: path, Header: header, Moves: moves}, nil
}

// EvaluateGame classifies every move of g. Each position is scored once: the
// score after ply i is the score before ply i+1, as both are taken from the
// side to move. On any failure the partial result is discarded.
func (ev *Evaluator) EvaluateGame(ctx context.Context, g *chess.Game) ([]models.MoveVerdict, error) {
	positions := g.Positions()
	moves := g.Moves()
	if len(moves) == 0 {
		return []models.MoveVerdict{}, nil
	}

	fenBefore := fenInfoFromPosition(positions[0])
	before, err := ev.evalPosition(ctx, &fenBefore)
	if err != nil {
		return nil, fmt.Errorf("initial position: %w", err)
	}

	out := make([]models.MoveVerdict, 0, len(moves))
	for i, m := range moves {
		uciStr := chess.UCINotation{}.Encode(positions[i], m)
		sanStr := chess.AlgebraicNotation{}.Encode(positions[i], m)

		fenAfter := fenInfoFromPosition(positions[i+1])
		after, err := ev.evalPosition(ctx, &fenAfter)
		if err != nil {
			return nil, fmt.Errorf("ply %d (%s): %w", i+1, uciStr, err)
		}

		// after is from the opponent's side; flip it back to the mover.
		delta := MoverDelta(before, after)
		verdict := Classify(delta, ev.Thresholds)

		if ev.Verbose {
			log.Printf("%d. %s -> %s (%+d cp) eval %s", fenBefore.MoveNumber, uciStr, verdict, delta, FormatScore(fenAfter.Score))
		}

		out = append(out, models.MoveVerdict{
			Ply:        i + 1,
			MoveNumber: fenBefore.MoveNumber,
			Color:      fenBefore.SideToMove,
			MoveUCI:    uciStr,
			MoveSAN:    sanStr,
			FenBefore:  fenBefore,
			FenAfter:   fenAfter,
			EvalBefore: before,
			EvalAfter:  after,
			Delta:      delta,
			Verdict:    verdict,
		})

		fenBefore, before = fenAfter, after
	}

	return out, nil
}

// MoverDelta is the gain for the side that just moved. before is scored for
// the mover, afterRaw for the opponent who is now to move.
func MoverDelta(before, afterRaw int) int {
	return -afterRaw - before
}

func (ev *Evaluator) evalPosition(ctx context.Context, fen *models.FENInfo) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	qctx := ctx
	if ev.Settings.QueryTimeout > 0 {
		var cancel context.CancelFunc
		qctx, cancel = context.WithTimeout(ctx, ev.Settings.QueryTimeout)
		defer cancel()
	}

	score, err := ev.Oracle.EvalFEN(qctx, fen.FEN, ev.Settings)
	if err != nil {
		return 0, err
	}
	fen.Score = score
	return NormalizeScore(score)
}

func fenInfoFromPosition(pos *chess.Position) models.FENInfo {
	fen := pos.String()

	side := "w"
	if pos.Turn() == chess.Black {
		side = "b"
	}
	// Full move number is at the end of FEN; chess.Position doesn’t expose it directly,
	// but notnil/chess puts it in pos.String(). We'll parse minimally:
	parts := strings.Split(fen, " ")
	moveNum := 1
	if len(parts) >= 6 {
		fmt.Sscanf(parts[5], "%d", &moveNum)
	}
	return models.FENInfo{
		MoveNumber: moveNum,
		SideToMove: side,
		FEN:        fen,
	}
}
