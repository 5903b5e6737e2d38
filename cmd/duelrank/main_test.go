package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoDuelsError(t *testing.T) {
	err := &NoDuelsError{Ledger: "duels.csv"}
	assert.Equal(t, "ledger duels.csv holds no duels", err.Error())
}

func TestErrorTypeDetection(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantNoDue bool
	}{
		{name: "NoDuelsError", err: &NoDuelsError{Ledger: "x"}, wantNoDue: true},
		{name: "regular error", err: errors.New("config error")},
		{name: "wrapped NoDuelsError", err: fmt.Errorf("building: %w", &NoDuelsError{Ledger: "x"}), wantNoDue: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var noDuels *NoDuelsError
			assert.Equal(t, tt.wantNoDue, errors.As(tt.err, &noDuels))
		})
	}
}

func TestRootCommand_Subcommands(t *testing.T) {
	root := newRootCommand()
	names := make(map[string]bool)
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"elo", "bt", "accuracy", "macro", "species", "confusion", "summary", "report", "import", "cache", "serve"} {
		assert.True(t, names[want], "root command should have %q subcommand", want)
	}
}
