package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"slices"
	"strings"

	"github.com/KhoaTranProgrammer/Common-Topics/app/models"

	"github.com/hashicorp/go-multierror"
	"github.com/notnil/chess"
)

// Standings accumulates points per player name, remembering the order in which
// players were first seen. Names are matched exactly.
type Standings struct {
	order  []string
	points map[string]float64
}

func NewStandings() *Standings {
	return &Standings{points: map[string]float64{}}
}

func (s *Standings) Add(player string, pts float64) {
	if _, ok := s.points[player]; !ok {
		s.order = append(s.order, player)
	}
	s.points[player] += pts
}

func (s *Standings) clone() *Standings {
	c := &Standings{
		order:  append([]string(nil), s.order...),
		points: make(map[string]float64, len(s.points)),
	}
	for p, pts := range s.points {
		c.points[p] = pts
	}
	return c
}

func (s *Standings) Points(player string) float64 {
	return s.points[player]
}

// Players returns scores in first-seen order.
func (s *Standings) Players() []models.PlayerScore {
	out := make([]models.PlayerScore, 0, len(s.order))
	for _, p := range s.order {
		out = append(out, models.PlayerScore{Player: p, Points: s.points[p]})
	}
	return out
}

// FindWinner returns the first player holding the highest strictly positive
// score, or "" when nobody scored.
func FindWinner(s *Standings) string {
	maxPoint := 0.0
	winner := ""
	for _, p := range s.order {
		if s.points[p] > maxPoint {
			maxPoint = s.points[p]
			winner = p
		}
	}
	return winner
}

// Tournament is the value threaded through the aggregation.
type Tournament struct {
	Overview  models.Overview
	Standings *Standings
	Games     []models.GameHeader
}

func NewTournament() Tournament {
	return Tournament{Standings: NewStandings()}
}

// ParseResult converts a PGN result into (white, black) points.
func ParseResult(result string) (float64, float64, error) {
	switch strings.TrimSpace(result) {
	case "1-0":
		return 1, 0, nil
	case "0-1":
		return 0, 1, nil
	case "1/2-1/2", "½-½":
		return 0.5, 0.5, nil
	}
	return 0, 0, fmt.Errorf("%w: %q", ErrMalformedResult, result)
}

// Fold returns t with one more game added; t itself is not modified. The first
// game folded names the event, and every folded game counts as a round whether
// or not its Event matches. A malformed result returns t unchanged.
func Fold(t Tournament, h models.GameHeader) (Tournament, error) {
	white, black, err := ParseResult(h.Result)
	if err != nil {
		return t, err
	}
	if t.Standings == nil {
		t.Standings = NewStandings()
	} else {
		t.Standings = t.Standings.clone()
	}
	t.Games = slices.Clip(t.Games)

	if t.Overview.Rounds == 0 {
		t.Overview.Event = h.Event
		t.Overview.Date = h.Date
	}
	t.Overview.Rounds++
	t.Standings.Add(h.White, white)
	t.Standings.Add(h.Black, black)
	t.Games = append(t.Games, h)
	t.Overview.Winner = FindWinner(t.Standings)
	return t, nil
}

// AggregateTournament folds every PGN file directly inside dir, in directory
// order. Files that cannot be read or have a malformed result are skipped and
// reported in the returned error alongside the partial tournament.
func AggregateTournament(ctx context.Context, dir string) (Tournament, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Tournament{}, fmt.Errorf("%w: %s", ErrInputNotFound, dir)
		}
		return Tournament{}, err
	}
	if !info.IsDir() {
		return Tournament{}, fmt.Errorf("%w: %s is not a directory", ErrInputNotFound, dir)
	}

	files, err := ListGameFiles(dir)
	if err != nil {
		return Tournament{}, err
	}

	t := NewTournament()
	var errs *multierror.Error
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return t, err
		}

		h, err := ReadGameHeader(path)
		if err != nil {
			log.Printf("skipping %s: %v", path, err)
			errs = multierror.Append(errs, err)
			continue
		}
		next, err := Fold(t, h)
		if err != nil {
			log.Printf("skipping %s: %v", path, err)
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		t = next
	}
	return t, errs.ErrorOrNil()
}

func ReadGameHeader(path string) (models.GameHeader, error) {
	g, err := LoadGame(path)
	if err != nil {
		return models.GameHeader{}, err
	}
	return headerFromGame(g), nil
}

func headerFromGame(g *chess.Game) models.GameHeader {
	tags := map[string]string{}
	for _, tp := range g.TagPairs() {
		tags[tp.Key] = tp.Value
	}
	return models.GameHeader{
		Event:  orUnknown(tags["Event"]),
		Site:   tags["Site"],
		Date:   orUnknown(tags["Date"]),
		Round:  orUnknown(tags["Round"]),
		White:  orUnknown(tags["White"]),
		Black:  orUnknown(tags["Black"]),
		Result: orUnknown(tags["Result"]),
		ECO:    tags["ECO"],
	}
}
