package ledger

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/camtrap-arena/duelrank/internal/duel"
)

// maxLineBytes bounds a single JSONL record. Model responses can be long.
const maxLineBytes = 16 << 20

// ReadJSONL decodes one record per line, skipping blank lines.
func ReadJSONL(r io.Reader) ([]duel.Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var out []duel.Record
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		var rec duel.Record
		if err := json.Unmarshal(text, &rec); err != nil {
			return nil, fmt.Errorf("jsonl: line %d: %w", line, err)
		}
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("jsonl: line %d: %w", line, err)
		}
		out = append(out, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("jsonl: %w", err)
	}
	return out, nil
}

// ReadJSON decodes a JSON array of records.
func ReadJSON(r io.Reader) ([]duel.Record, error) {
	var out []duel.Record
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return nil, fmt.Errorf("json: %w", err)
	}
	for i, rec := range out {
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("json: record %d: %w", i, err)
		}
	}
	return out, nil
}
