package models

// Verdict is the quality label given to one played move.
type Verdict int

const (
	Neutral Verdict = iota
	Good
	Inaccuracy
	Mistake
	Blunder
)

var verdictNames = map[Verdict]string{
	Good:       "Good",
	Neutral:    "Neutral",
	Inaccuracy: "Inaccuracy",
	Mistake:    "Mistake",
	Blunder:    "Blunder",
}

// AllVerdicts lists every verdict from best to worst.
var AllVerdicts = []Verdict{Good, Neutral, Inaccuracy, Mistake, Blunder}

func (v Verdict) String() string {
	if s, ok := verdictNames[v]; ok {
		return s
	}
	return "Unknown"
}

// ParseVerdict maps a canonical name back to its Verdict.
func ParseVerdict(s string) (Verdict, bool) {
	for v, name := range verdictNames {
		if name == s {
			return v, true
		}
	}
	return Neutral, false
}

func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

type FENInfo struct {
	MoveNumber int      `json:"move_number"` // fullmove number from FEN
	SideToMove string   `json:"side_to_move"`
	FEN        string   `json:"fen"`
	Score      UCIScore `json:"score"`
}

// MoveVerdict is one classified ply. Delta is centipawns gained by the mover.
type MoveVerdict struct {
	Ply        int     `json:"ply"`
	MoveNumber int     `json:"move_number"`
	Color      string  `json:"color"` // "w" or "b", the side that played the move
	MoveUCI    string  `json:"move_uci"`
	MoveSAN    string  `json:"move_san"`
	FenBefore  FENInfo `json:"fen_before"`
	FenAfter   FENInfo `json:"fen_after"`
	EvalBefore int     `json:"eval_before"` // normalized, mover's POV
	EvalAfter  int     `json:"eval_after"`  // normalized, opponent's POV
	Delta      int     `json:"delta"`
	Verdict    Verdict `json:"verdict"`
}

// GameEval is the full evaluation of one game record.
type GameEval struct {
	Source string        `json:"source"`
	Header GameHeader    `json:"header"`
	Moves  []MoveVerdict `json:"moves"`
}

func (g GameEval) Verdicts() []Verdict {
	out := make([]Verdict, 0, len(g.Moves))
	for _, m := range g.Moves {
		out = append(out, m.Verdict)
	}
	return out
}
