package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/KhoaTranProgrammer/Common-Topics/app/config"
	"github.com/KhoaTranProgrammer/Common-Topics/app/models"

	"github.com/lib/pq"
)

// OpenDB connects to Postgres and makes sure the verdict table exists.
func OpenDB(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s",
		cfg.DB.Username,
		cfg.DB.Password,
		cfg.DB.URL,
		cfg.DB.Port,
	)

	d, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := d.PingContext(ctx); err != nil {
		d.Close()
		return nil, fmt.Errorf("db.Ping: %w", err)
	}
	if _, err := d.ExecContext(ctx, schema); err != nil {
		d.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	log.Println("Connected to Postgres")
	return d, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS move_verdicts (
	id                    BIGSERIAL PRIMARY KEY,
	source                TEXT NOT NULL,
	event                 TEXT,
	white                 TEXT,
	black                 TEXT,
	ply                   INT NOT NULL,
	move_number           INT,
	color                 CHAR(1),
	move_uci              TEXT,
	move_san              TEXT,
	fen_before            TEXT,
	normalized_fen_before TEXT,
	eval_before           INT,
	eval_after            INT,
	centipawn_change      INT,
	best_move_uci         TEXT,
	verdict               TEXT NOT NULL,
	recorded_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// DBRecorder mirrors every move verdict of a game into Postgres. Like the file
// annotation, rows from repeated runs accumulate.
type DBRecorder struct {
	DB *sql.DB
}

func (r DBRecorder) Record(ctx context.Context, g models.GameEval) error {
	if r.DB == nil {
		// Allow runs without a backing DB.
		return nil
	}
	if err := saveMoveVerdicts(ctx, r.DB, g); err != nil {
		return fmt.Errorf("%w: postgres: %s: %w", ErrPersistFailure, g.Source, err)
	}
	return nil
}

func saveMoveVerdicts(ctx context.Context, db *sql.DB, g models.GameEval) error {
	if len(g.Moves) == 0 {
		return nil
	}

	// One transaction for everything
	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// 1) Temp staging table
	_, err = tx.ExecContext(ctx, `
		CREATE TEMP TABLE tmp_move_verdicts (
			source                TEXT,
			event                 TEXT,
			white                 TEXT,
			black                 TEXT,
			ply                   INT,
			move_number           INT,
			color                 CHAR(1),
			move_uci              TEXT,
			move_san              TEXT,
			fen_before            TEXT,
			normalized_fen_before TEXT,
			eval_before           INT,
			eval_after            INT,
			centipawn_change      INT,
			best_move_uci         TEXT,
			verdict               TEXT
		) ON COMMIT DROP;
	`)
	if err != nil {
		return err
	}

	// 2) COPY into tmp_move_verdicts
	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(
		"tmp_move_verdicts",
		"source", "event", "white", "black",
		"ply", "move_number", "color", "move_uci", "move_san",
		"fen_before", "normalized_fen_before",
		"eval_before", "eval_after", "centipawn_change",
		"best_move_uci", "verdict",
	))
	if err != nil {
		return err
	}

	for _, m := range g.Moves {
		if _, err := stmt.ExecContext(ctx,
			g.Source,
			g.Header.Event,
			g.Header.White,
			g.Header.Black,
			m.Ply,
			m.MoveNumber,
			m.Color,
			m.MoveUCI,
			m.MoveSAN,
			m.FenBefore.FEN,
			NormalizeFEN(m.FenBefore.FEN),
			m.EvalBefore,
			m.EvalAfter,
			m.Delta,
			m.FenBefore.Score.Best,
			m.Verdict.String(),
		); err != nil {
			stmt.Close()
			return err
		}
	}

	// finish COPY
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return err
	}
	if err := stmt.Close(); err != nil {
		return err
	}

	// 3) Insert into real table
	_, err = tx.ExecContext(ctx, `
		INSERT INTO move_verdicts (
			source, event, white, black,
			ply, move_number, color, move_uci, move_san,
			fen_before, normalized_fen_before,
			eval_before, eval_after, centipawn_change,
			best_move_uci, verdict
		)
		SELECT
			source, event, white, black,
			ply, move_number, color, move_uci, move_san,
			fen_before, normalized_fen_before,
			eval_before, eval_after, centipawn_change,
			best_move_uci, verdict
		FROM tmp_move_verdicts;
	`)
	if err != nil {
		return err
	}

	// 4) Commit
	return tx.Commit()
}
