package models

// GameHeader is the subset of PGN tag pairs the tournament overview reads.
type GameHeader struct {
	Event  string `json:"event"`
	Site   string `json:"site,omitempty"`
	Date   string `json:"date"`  // "YYYY.MM.DD"
	Round  string `json:"round"`
	White  string `json:"white"`
	Black  string `json:"black"`
	Result string `json:"result"` // "1-0","0-1","1/2-1/2"
	ECO    string `json:"eco,omitempty"`
}

type PlayerScore struct {
	Player string  `json:"player"`
	Points float64 `json:"points"`
}

type Overview struct {
	Event  string `json:"event"`
	Date   string `json:"date"`
	Rounds int    `json:"rounds"`
	Winner string `json:"winner"`
}
