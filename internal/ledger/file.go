package ledger

import (
	"context"
	"fmt"
	"os"

	"github.com/camtrap-arena/duelrank/internal/duel"
)

// FileSource reads a local ledger export. The file is re-read on every
// snapshot so that appended duels are picked up.
type FileSource struct {
	Path string
}

// Snapshot implements [Source].
func (s *FileSource) Snapshot(ctx context.Context) ([]duel.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("ledger: open %s: %w", s.Path, err)
	}
	defer f.Close() //nolint:errcheck

	records, err := decodeNamed(f, s.Path)
	if err != nil {
		return nil, fmt.Errorf("ledger: %s: %w", s.Path, err)
	}
	return records, nil
}
