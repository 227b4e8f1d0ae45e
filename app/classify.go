package app

import (
	"github.com/KhoaTranProgrammer/Common-Topics/app/config"
	"github.com/KhoaTranProgrammer/Common-Topics/app/models"
)

// Thresholds are signed centipawn deltas from the mover's point of view.
type Thresholds struct {
	Good       int
	Inaccuracy int
	Mistake    int
	Blunder    int
}

var DefaultThresholds = Thresholds{
	Good:       config.DefaultGoodThreshold,
	Inaccuracy: config.DefaultInaccuracyThreshold,
	Mistake:    config.DefaultMistakeThreshold,
	Blunder:    config.DefaultBlunderThreshold,
}

func ThresholdsFromConfig(cfg *config.Config) Thresholds {
	return Thresholds{
		Good:       cfg.Thresholds.Good,
		Inaccuracy: cfg.Thresholds.Inaccuracy,
		Mistake:    cfg.Thresholds.Mistake,
		Blunder:    cfg.Thresholds.Blunder,
	}
}

// Classify maps a delta to a verdict. Each boundary belongs to the harsher verdict,
// except Good which is inclusive of its own threshold.
func Classify(delta int, t Thresholds) models.Verdict {
	switch {
	case delta >= t.Good:
		return models.Good
	case delta <= t.Blunder:
		return models.Blunder
	case delta <= t.Mistake:
		return models.Mistake
	case delta <= t.Inaccuracy:
		return models.Inaccuracy
	default:
		return models.Neutral
	}
}
