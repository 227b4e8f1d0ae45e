package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"

	"github.com/KhoaTranProgrammer/Common-Topics/app/models"
)

const AnnotationPrefix = "Evaluate:"

var reAnnotation = regexp.MustCompile(`(?m)^` + AnnotationPrefix + `.*$`)

// Recorder persists one evaluated game.
type Recorder interface {
	Record(ctx context.Context, g models.GameEval) error
}

// FormatAnnotation renders verdicts as "Evaluate:Good,Neutral,...".
func FormatAnnotation(verdicts []models.Verdict) string {
	names := make([]string, len(verdicts))
	for i, v := range verdicts {
		names[i] = v.String()
	}
	return AnnotationPrefix + strings.Join(names, ",")
}

// ParseAnnotations returns every annotation found in text, oldest first.
func ParseAnnotations(text string) ([][]models.Verdict, error) {
	var out [][]models.Verdict
	for _, line := range reAnnotation.FindAllString(text, -1) {
		body := strings.TrimSpace(strings.TrimPrefix(line, AnnotationPrefix))
		verdicts := []models.Verdict{}
		if body != "" {
			for _, name := range strings.Split(body, ",") {
				v, ok := models.ParseVerdict(name)
				if !ok {
					return nil, fmt.Errorf("unknown verdict %q in %q", name, line)
				}
				verdicts = append(verdicts, v)
			}
		}
		out = append(out, verdicts)
	}
	return out, nil
}

// StripAnnotations removes annotation lines written by earlier runs so the
// record parses as plain PGN again.
func StripAnnotations(pgn string) string {
	return reAnnotation.ReplaceAllString(pgn, "")
}

// FileRecorder appends the annotation to the game's own source file. Earlier
// annotations are never replaced, so repeated runs accumulate.
type FileRecorder struct{}

func (FileRecorder) Record(_ context.Context, g models.GameEval) error {
	if err := AppendAnnotation(g.Source, g.Verdicts()); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPersistFailure, g.Source, err)
	}
	log.Printf("Data appended successfully to '%s'.", g.Source)
	return nil
}

func AppendAnnotation(path string, verdicts []models.Verdict) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString("\n" + FormatAnnotation(verdicts) + "\n"); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// MultiRecorder runs each recorder in order and stops at the first failure.
type MultiRecorder []Recorder

func (m MultiRecorder) Record(ctx context.Context, g models.GameEval) error {
	for _, r := range m {
		if err := r.Record(ctx, g); err != nil {
			return err
		}
	}
	return nil
}
