package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-multierror"
)

// BatchReport summarizes one --evaluation run.
type BatchReport struct {
	Evaluated []string // files that received an annotation
	Failed    []string
	Skipped   []string // files with no parsable game
}

// ListGameFiles resolves --input: a file is returned as is, a directory yields
// its PGN files (not recursive) in directory order.
func ListGameFiles(input string) ([]string, error) {
	info, err := os.Stat(input)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, input)
		}
		return nil, err
	}
	if !info.IsDir() {
		return []string{input}, nil
	}

	entries, err := os.ReadDir(input)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !IsGameFile(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(input, e.Name()))
	}
	return files, nil
}

// RunEvaluation evaluates every game under input and records each one that
// completes. A failing game is reported and the batch moves on; a canceled
// context stops the batch before anything is written for the game in flight.
func RunEvaluation(ctx context.Context, input string, ev *Evaluator, rec Recorder) (BatchReport, error) {
	var report BatchReport
	start := time.Now()

	info, err := os.Stat(input)
	if err != nil {
		if os.IsNotExist(err) {
			return report, fmt.Errorf("%w: %s", ErrInputNotFound, input)
		}
		return report, err
	}
	singleFile := !info.IsDir()

	files, err := ListGameFiles(input)
	if err != nil {
		return report, err
	}
	log.Printf("Analyzing %d game files from %s", len(files), input)

	var errs *multierror.Error
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return report, multierror.Append(errs, err).ErrorOrNil()
		}

		if r, ok := ev.Oracle.(gameResetter); ok {
			// New game (lets the engine clear its internal state)
			if err := r.NewGame(); err != nil {
				errs = multierror.Append(errs, fmt.Errorf("%w: %s: ucinewgame: %w", ErrOracleFailure, path, err))
				report.Failed = append(report.Failed, path)
				continue
			}
		}

		g, err := ev.EvaluateFile(ctx, path)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				log.Printf("evaluation of %s interrupted: %v", path, ctxErr)
				return report, multierror.Append(errs, ctxErr).ErrorOrNil()
			}
			if errors.Is(err, ErrNoGameParsed) {
				if singleFile {
					return report, err
				}
				log.Printf("skipping %s: %v", path, err)
				report.Skipped = append(report.Skipped, path)
				continue
			}
			log.Printf("error analyzing game %s: %v", path, err)
			errs = multierror.Append(errs, err)
			report.Failed = append(report.Failed, path)
			continue
		}

		if err := ctx.Err(); err != nil {
			return report, multierror.Append(errs, err).ErrorOrNil()
		}
		if err := rec.Record(ctx, g); err != nil {
			log.Printf("error recording game %s: %v", path, err)
			errs = multierror.Append(errs, err)
			report.Failed = append(report.Failed, path)
			continue
		}
		report.Evaluated = append(report.Evaluated, path)
	}

	log.Printf("Batch complete: evaluated=%d failed=%d skipped=%d took=%s",
		len(report.Evaluated), len(report.Failed), len(report.Skipped), time.Since(start))
	return report, errs.ErrorOrNil()
}
