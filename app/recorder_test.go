package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/KhoaTranProgrammer/Common-Topics/app/models"
	"github.com/stretchr/testify/require"
)

func TestFormatAnnotation(t *testing.T) {
	require.Equal(t, "Evaluate:Good,Neutral,Inaccuracy,Mistake,Blunder", FormatAnnotation(models.AllVerdicts))
	require.Equal(t, "Evaluate:", FormatAnnotation(nil))
}

func TestFileRecorderAppendsWithoutOverwriting(t *testing.T) {
	path := writeFile(t, t.TempDir(), "game.pgn", twoMovePGN)
	rec := FileRecorder{}

	first := models.GameEval{Source: path, Moves: []models.MoveVerdict{{Verdict: models.Good}, {Verdict: models.Neutral}}}
	second := models.GameEval{Source: path, Moves: []models.MoveVerdict{{Verdict: models.Blunder}}}
	require.NoError(t, rec.Record(context.Background(), first))
	require.NoError(t, rec.Record(context.Background(), second))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, twoMovePGN+"\nEvaluate:Good,Neutral\n\nEvaluate:Blunder\n", string(data))

	got, err := ParseAnnotations(string(data))
	require.NoError(t, err)
	require.Equal(t, [][]models.Verdict{{models.Good, models.Neutral}, {models.Blunder}}, got)
}

func TestFileRecorderCreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.pgn")
	require.NoError(t, AppendAnnotation(path, []models.Verdict{models.Mistake}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "\nEvaluate:Mistake\n", string(data))
}

func TestFileRecorderPersistFailure(t *testing.T) {
	// a directory cannot be opened for appending
	err := FileRecorder{}.Record(context.Background(), models.GameEval{Source: t.TempDir()})
	require.ErrorIs(t, err, ErrPersistFailure)
}

func TestParseAnnotationsRejectsUnknownVerdict(t *testing.T) {
	_, err := ParseAnnotations("1. e4 *\nEvaluate:Good,Brilliant\n")
	require.Error(t, err)
}

type recorderFunc func(ctx context.Context, g models.GameEval) error

func (f recorderFunc) Record(ctx context.Context, g models.GameEval) error { return f(ctx, g) }

func TestMultiRecorderStopsAtFirstFailure(t *testing.T) {
	var calls []string
	boom := errors.New("boom")
	m := MultiRecorder{
		recorderFunc(func(context.Context, models.GameEval) error { calls = append(calls, "a"); return nil }),
		recorderFunc(func(context.Context, models.GameEval) error { calls = append(calls, "b"); return boom }),
		recorderFunc(func(context.Context, models.GameEval) error { calls = append(calls, "c"); return nil }),
	}
	require.ErrorIs(t, m.Record(context.Background(), models.GameEval{}), boom)
	require.Equal(t, []string{"a", "b"}, calls)
}

func TestDBRecorderWithoutDatabase(t *testing.T) {
	require.NoError(t, DBRecorder{}.Record(context.Background(), models.GameEval{Moves: []models.MoveVerdict{{}}}))
}

func TestStripAnnotations(t *testing.T) {
	require.Equal(t, "1. e4 *\n\n", StripAnnotations("1. e4 *\nEvaluate:Good\n"))
}
