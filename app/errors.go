package app

import "errors"

var (
	ErrInputNotFound   = errors.New("input not found")
	ErrNoGameParsed    = errors.New("no game parsed")
	ErrOracleFailure   = errors.New("engine evaluation failed")
	ErrPersistFailure  = errors.New("persisting evaluation failed")
	ErrMalformedResult = errors.New("malformed result")
)
