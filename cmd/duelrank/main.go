package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess = 0 // Tables rendered
	ExitNoDuels = 1 // The ledger held no usable duels and --require-duels was set
	ExitError   = 2 // Configuration or runtime error
)

// NoDuelsError indicates that the ledger was read successfully but held
// nothing to rank.
type NoDuelsError struct {
	Ledger string
}

func (e *NoDuelsError) Error() string {
	return fmt.Sprintf("ledger %s holds no duels", e.Ledger)
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var noDuels *NoDuelsError
		if errors.As(err, &noDuels) {
			os.Exit(ExitNoDuels)
		}

		// All other errors are configuration/runtime errors
		os.Exit(ExitError)
	}
}
