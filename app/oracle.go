package app

import (
	"context"
	"fmt"

	"github.com/KhoaTranProgrammer/Common-Topics/app/config"
	"github.com/KhoaTranProgrammer/Common-Topics/app/models"
)

// MateScore stands in for a forced mate so deltas stay comparable with centipawns.
const MateScore = 100000

// Oracle scores a position from the point of view of the side to move.
type Oracle interface {
	EvalFEN(ctx context.Context, fen string, s models.EngineSettings) (models.UCIScore, error)
}

// gameResetter is implemented by oracles that carry state between games.
type gameResetter interface {
	NewGame() error
}

func EngineSettingsFromConfig(cfg *config.Config) models.EngineSettings {
	return models.EngineSettings{
		Depth:        cfg.Engine.Depth,
		MoveTimeMS:   cfg.Engine.MoveTime,
		UseDepth:     cfg.Engine.DepthOrTime,
		QueryTimeout: cfg.Engine.QueryTimeout,
	}
}

// NormalizeScore turns an engine score into centipawns. Mate 0 means the side
// to move is already mated.
func NormalizeScore(s models.UCIScore) (int, error) {
	switch {
	case s.Mate != nil:
		if *s.Mate > 0 {
			return MateScore, nil
		}
		return -MateScore, nil
	case s.CP != nil:
		return *s.CP, nil
	}
	return 0, fmt.Errorf("%w: engine reported no score", ErrOracleFailure)
}

// FormatScore renders a score for logs: "#3", "#-2", "+0.25".
func FormatScore(s models.UCIScore) string {
	switch {
	case s.Mate != nil:
		return fmt.Sprintf("#%d", *s.Mate)
	case s.CP != nil:
		return fmt.Sprintf("%+.2f", float64(*s.CP)/100)
	}
	return "?"
}
