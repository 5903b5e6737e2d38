package ledger

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/camtrap-arena/duelrank/internal/duel"
	"github.com/go-viper/mapstructure/v2"
)

// Row represents a single CSV row with column name to value mapping.
type Row map[string]string

// ReadCSV reads CSV data and returns rows as maps of column to value.
// The first row is treated as headers (column names).
func ReadCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv: parse: %w", err)
	}

	if len(records) == 0 {
		return []Row{}, nil
	}

	headers := records[0]
	rows := make([]Row, 0, len(records)-1)

	for i, record := range records[1:] {
		if len(record) != len(headers) {
			return nil, fmt.Errorf("csv: row %d has %d columns, expected %d", i+2, len(record), len(headers))
		}
		row := make(Row, len(headers))
		for j, h := range headers {
			row[h] = record[j]
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// DecodeRows converts CSV rows into duel records. Unknown columns are
// ignored; numeric columns may be empty.
func DecodeRows(rows []Row) ([]duel.Record, error) {
	out := make([]duel.Record, 0, len(rows))
	for i, row := range rows {
		var rec duel.Record
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			DecodeHook:       mapstructure.TextUnmarshallerHookFunc(),
			WeaklyTypedInput: true,
			Result:           &rec,
		})
		if err != nil {
			return nil, err
		}
		if err := dec.Decode(map[string]string(row)); err != nil {
			return nil, fmt.Errorf("csv: row %d: %w", i+2, err)
		}
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("csv: row %d: %w", i+2, err)
		}
		out = append(out, rec)
	}
	return out, nil
}
