package app

import (
	"context"
	"database/sql"

	"github.com/KhoaTranProgrammer/Common-Topics/app/config"

	"github.com/hashicorp/go-multierror"
)

// Pipeline owns the engine process and the optional database for one run.
// Close must be called on every exit path.
type Pipeline struct {
	Evaluator *Evaluator
	Recorder  Recorder

	engine *UCIEngine
	db     *sql.DB
}

// NewEvaluator builds an Evaluator from cfg. LOG_LEVEL=debug turns on the
// per-move log just like verbose.
func NewEvaluator(o Oracle, cfg *config.Config, verbose bool) *Evaluator {
	return &Evaluator{
		Oracle:     o,
		Settings:   EngineSettingsFromConfig(cfg),
		Thresholds: ThresholdsFromConfig(cfg),
		Verbose:    verbose || cfg.Logs.Debug(),
	}
}

func OpenPipeline(ctx context.Context, cfg *config.Config, verbose bool) (*Pipeline, error) {
	if err := cfg.ValidateEngine(); err != nil {
		return nil, err
	}

	eng, err := NewUCIEngine(cfg.Engine.Path)
	if err != nil {
		return nil, err
	}
	p := &Pipeline{
		engine:    eng,
		Evaluator: NewEvaluator(eng, cfg, verbose),
	}

	recorders := MultiRecorder{FileRecorder{}}
	if cfg.DB.Enabled() {
		d, err := OpenDB(ctx, cfg)
		if err != nil {
			p.Close()
			return nil, err
		}
		p.db = d
		recorders = append(recorders, DBRecorder{DB: d})
	}
	p.Recorder = recorders
	return p, nil
}

func (p *Pipeline) Close() error {
	var errs *multierror.Error
	if p.engine != nil {
		if err := p.engine.Close(); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	if p.db != nil {
		if err := p.db.Close(); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}
