package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/KhoaTranProgrammer/Common-Topics/app"
	"github.com/KhoaTranProgrammer/Common-Topics/app/config"
	"github.com/KhoaTranProgrammer/Common-Topics/app/models"

	"github.com/spf13/cobra"
)

type options struct {
	input       string
	evaluation  bool
	documentary bool
	format      string
	debug       bool
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "chessreview",
		Short: "Classify chess moves with a UCI engine and summarize tournaments",
		Long: `chessreview reads PGN game records.

With --evaluation every move is scored by a UCI engine (ENGINE_PATH) and the
verdicts are appended to each PGN file as an "Evaluate:" line.
With --documentary a directory of PGN files is summarized into the event,
number of rounds and the winner.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.input, "input", "i", "", "PGN file or directory of PGN files")
	f.BoolVarP(&opts.evaluation, "evaluation", "e", false, "Add evaluation to PGN input")
	f.BoolVarP(&opts.documentary, "documentary", "d", false, "Summarize the tournament in the input directory")
	f.StringVarP(&opts.format, "format", "f", "text", "Overview output format: text or json")
	f.BoolVar(&opts.debug, "debug", false, "Log every classified move")
	_ = cmd.MarkFlagRequired("input")
	cmd.MarkFlagsMutuallyExclusive("evaluation", "documentary")
	cmd.MarkFlagsOneRequired("evaluation", "documentary")

	return cmd
}

func execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return newRootCommand().ExecuteContext(ctx)
}

func run(ctx context.Context, w io.Writer, opts *options) error {
	if opts.format != "text" && opts.format != "json" {
		return fmt.Errorf("unsupported format %q: must be text or json", opts.format)
	}
	if _, err := os.Stat(opts.input); err != nil {
		return fmt.Errorf("%w: %s", app.ErrInputNotFound, opts.input)
	}

	if opts.documentary {
		return runDocumentary(ctx, w, opts)
	}
	return runEvaluation(ctx, opts)
}

func runEvaluation(ctx context.Context, opts *options) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	cfg.Logs.Apply()

	p, err := app.OpenPipeline(ctx, cfg, opts.debug)
	if err != nil {
		return err
	}
	defer func() {
		if err := p.Close(); err != nil {
			log.Printf("closing pipeline: %v", err)
		}
	}()

	_, err = app.RunEvaluation(ctx, opts.input, p.Evaluator, p.Recorder)
	if err != nil {
		if errors.Is(err, app.ErrInputNotFound) || errors.Is(err, app.ErrNoGameParsed) ||
			errors.Is(err, context.Canceled) {
			return err
		}
		return &GameFailureError{Err: err}
	}
	return nil
}

func runDocumentary(ctx context.Context, w io.Writer, opts *options) error {
	t, err := app.AggregateTournament(ctx, opts.input)
	if t.Standings == nil {
		return err
	}
	if perr := printOverview(w, t, opts.format); perr != nil {
		return perr
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return &GameFailureError{Err: err}
	}
	return nil
}

type overviewJSON struct {
	models.Overview
	Standings []models.PlayerScore `json:"standings"`
	Games     []models.GameHeader  `json:"games"`
}

func printOverview(w io.Writer, t app.Tournament, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(overviewJSON{Overview: t.Overview, Standings: t.Standings.Players(), Games: t.Games})
	}

	o := t.Overview
	fmt.Fprintf(w, "Overview: {Event: %s, Date: %s, Rounds: %d, Winner: %s}\n", o.Event, o.Date, o.Rounds, o.Winner)
	for _, g := range t.Games {
		fmt.Fprintf(w, "  Round %s: %s (White) vs %s (Black) %s\n", g.Round, g.White, g.Black, g.Result)
	}
	for _, p := range t.Standings.Players() {
		fmt.Fprintf(w, "  %-30s %.1f\n", p.Player, p.Points)
	}
	return nil
}
