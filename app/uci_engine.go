//starts the engine process, speaks UCI over stdin/stdout, and exposes a simple EvalFEN method.

package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/KhoaTranProgrammer/Common-Topics/app/models"
)

// how long a stopped search gets to print its bestmove before the handle is abandoned
const stopGracePeriod = 500 * time.Millisecond

var errEngineNotReady = errors.New("engine not ready")

type UCIEngine struct {
	cmd   *exec.Cmd
	stdin io.Closer
	in    *bufio.Writer
	out   *bufio.Scanner
	mu    sync.Mutex
	ready bool
}

func NewUCIEngine(path string) (*UCIEngine, error) {
	cmd := exec.Command(path)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}

	e := &UCIEngine{
		cmd:   cmd,
		stdin: stdin,
		in:    bufio.NewWriter(stdin),
		out:   bufio.NewScanner(stdout),
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: starting %s: %v", ErrOracleFailure, path, err)
	}
	// Handshake: "uci" -> wait for "uciok"; also "isready" -> "readyok"
	if err := e.handshake(); err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return nil, fmt.Errorf("%w: handshake with %s: %v", ErrOracleFailure, path, err)
	}
	e.ready = true
	return e, nil
}

func (e *UCIEngine) handshake() error {
	if err := e.send("uci"); err != nil {
		return err
	}
	if err := e.waitFor("uciok"); err != nil {
		return err
	}
	if err := e.send("isready"); err != nil {
		return err
	}
	return e.waitFor("readyok")
}

// Close asks the engine to quit and kills it if it has not exited within
// stopGracePeriod.
func (e *UCIEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ready = false
	if e.cmd == nil || e.cmd.Process == nil {
		return nil
	}
	_ = e.send("quit")
	if e.stdin != nil {
		_ = e.stdin.Close()
	}

	exited := make(chan error, 1)
	go func() { exited <- e.cmd.Wait() }()

	select {
	case err := <-exited:
		return err
	case <-time.After(stopGracePeriod):
		_ = e.cmd.Process.Kill()
		<-exited
		return fmt.Errorf("engine ignored quit, killed pid %d", e.cmd.Process.Pid)
	}
}

func (e *UCIEngine) NewGame() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.ready {
		return errEngineNotReady
	}
	if err := e.send("ucinewgame"); err != nil {
		return err
	}
	if err := e.send("isready"); err != nil {
		return err
	}
	return e.waitFor("readyok")
}

// EvalFEN evaluates one position. Use either a fixed depth or movetime.
// The score is reported from the side to move's point of view.
func (e *UCIEngine) EvalFEN(ctx context.Context, fen string, s models.EngineSettings) (models.UCIScore, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.ready {
		return models.UCIScore{}, fmt.Errorf("%w: %v", ErrOracleFailure, errEngineNotReady)
	}

	// Load position
	if err := e.send(fmt.Sprintf("position fen %s", fen)); err != nil {
		return models.UCIScore{}, e.fail(err)
	}

	if s.UseDepth {
		// Analyze using depth
		depth := s.Depth
		if depth <= 0 {
			depth = 12
		}
		if err := e.send(fmt.Sprintf("go depth %d", depth)); err != nil {
			return models.UCIScore{}, e.fail(err)
		}
	} else {
		//analyze using movetime
		if err := e.send(fmt.Sprintf("go movetime %d", s.MoveTimeMS)); err != nil {
			return models.UCIScore{}, e.fail(err)
		}
	}

	var lastScoreCP *int
	var lastScoreMate *int
	var best string
	sawBestMove := false

	// Read until "bestmove ..." or context cancels
	readDone := make(chan error, 1)
	go func() {
		for e.out.Scan() {
			line := e.out.Text()
			// Examples we parse:
			// info depth 18 ... score cp 23 ...
			// info depth 20 ... score mate 3 ...
			// bestmove e2e4
			if strings.HasPrefix(line, "info ") {
				if i := strings.Index(line, " score "); i != -1 {
					// score cp N  OR score mate N
					scorePart := line[i+1:]
					if strings.HasPrefix(scorePart, "score cp ") {
						var cp int
						if _, err := fmt.Sscanf(scorePart, "score cp %d", &cp); err == nil {
							lastScoreCP = &cp
							lastScoreMate = nil
						}
					} else if strings.HasPrefix(scorePart, "score mate ") {
						var m int
						if _, err := fmt.Sscanf(scorePart, "score mate %d", &m); err == nil {
							lastScoreMate = &m
							lastScoreCP = nil
						}
					}
				}
			} else if strings.HasPrefix(line, "bestmove ") {
				fields := strings.Fields(line)
				if len(fields) >= 2 {
					best = fields[1]
				}
				sawBestMove = true
				break
			}
		}
		err := e.out.Err()
		if err == nil && !sawBestMove {
			err = io.ErrUnexpectedEOF
		}
		readDone <- err
	}()

	var err error
	select {
	case <-ctx.Done():
		_ = e.send("stop")
		select {
		case <-readDone:
		case <-time.After(stopGracePeriod):
			// the reader goroutine still owns the scanner
			e.ready = false
		}
		err = ctx.Err()
	case err = <-readDone:
	}
	if err != nil {
		return models.UCIScore{}, e.fail(err)
	}

	score := models.UCIScore{CP: lastScoreCP, Mate: lastScoreMate, Best: best}
	if score.CP == nil && score.Mate == nil {
		return models.UCIScore{}, fmt.Errorf("%w: no score for %q", ErrOracleFailure, fen)
	}
	return score, nil
}

// fail marks broken pipes as fatal for the handle and wraps the cause.
func (e *UCIEngine) fail(err error) error {
	if !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		e.ready = false
	}
	return fmt.Errorf("%w: %w", ErrOracleFailure, err)
}

func (e *UCIEngine) waitFor(token string) error {
	for e.out.Scan() {
		if e.out.Text() == token {
			return nil
		}
	}
	if err := e.out.Err(); err != nil {
		return err
	}
	return fmt.Errorf("engine closed before %q", token)
}

func (e *UCIEngine) send(cmd string) error {
	_, err := fmt.Fprintln(e.in, cmd)
	if err != nil {
		return err
	}
	return e.in.Flush()
}
