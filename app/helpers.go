package app

import (
	"path/filepath"
	"strings"
)

// recognized game-record extension, compared case-insensitively
const pgnExt = ".pgn"

func IsGameFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), pgnExt)
}

// NormalizeFEN strips move counters and keeps only the structural position:
// <pieces> <side> <castling> <en-passant>
func NormalizeFEN(fen string) string {
	parts := strings.Split(fen, " ")
	if len(parts) < 4 {
		// malformed FEN, return original
		return fen
	}
	return strings.Join(parts[:4], " ")
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}
