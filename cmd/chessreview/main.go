package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess    = 0 // Everything evaluated or aggregated
	ExitGameFailed = 1 // One or more games could not be evaluated or recorded
	ExitError      = 2 // Configuration or runtime error
)

// GameFailureError means the run completed but some games failed on their own.
type GameFailureError struct {
	Err error
}

func (e *GameFailureError) Error() string {
	return e.Err.Error()
}

func (e *GameFailureError) Unwrap() error {
	return e.Err
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var gameErr *GameFailureError
		if errors.As(err, &gameErr) {
			os.Exit(ExitGameFailed)
		}

		// All other errors are configuration/runtime errors
		os.Exit(ExitError)
	}
}
