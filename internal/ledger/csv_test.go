package ledger

import (
	"strings"
	"testing"

	"github.com/camtrap-arena/duelrank/internal/duel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	tests := []struct {
		name     string
		csv      string
		wantRows int
		wantErr  string
	}{
		{
			name:     "header and two rows",
			csv:      "model_a,model_b,species\nm1,m2,ocelot\nm2,m3,tapir\n",
			wantRows: 2,
		},
		{
			name:     "headers only",
			csv:      "model_a,model_b\n",
			wantRows: 0,
		},
		{
			name:     "empty input",
			csv:      "",
			wantRows: 0,
		},
		{
			name:    "mismatched column count",
			csv:     "model_a,model_b\nm1,m2\nm3\n",
			wantErr: "wrong number of fields",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := ReadCSV(strings.NewReader(tt.csv))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, rows, tt.wantRows)
		})
	}
}

func TestDecodeRows(t *testing.T) {
	rows := []Row{
		{
			"model_a":          "gpt-4o",
			"model_b":          "gemini",
			"species":          "Leopardus wiedii",
			"model_response_a": `{"nome_cientifico": "Leopardus wiedii"}`,
			"model_response_b": "null",
			"result_code":      "A>B",
			"time_a":           "1.5",
			"time_b":           "",
			"evaluator_email":  "someone@example.org",
			"prompt":           "ignored column",
		},
	}

	records, err := DecodeRows(rows)
	require.NoError(t, err)
	require.Len(t, records, 1)

	got := records[0]
	assert.Equal(t, "gpt-4o", got.ModelA)
	assert.Equal(t, "gemini", got.ModelB)
	assert.Equal(t, "Leopardus wiedii", got.Species)
	assert.Equal(t, duel.ResultAWins, got.Result)
	assert.InDelta(t, 1.5, got.TimeA, 1e-9)
	assert.Zero(t, got.TimeB)
	assert.Equal(t, "someone@example.org", got.Evaluator)
}

func TestDecodeRows_MissingModelReportsRow(t *testing.T) {
	rows := []Row{
		{"model_a": "m1", "model_b": "m2"},
		{"model_a": "m1", "model_b": ""},
	}

	_, err := DecodeRows(rows)
	require.Error(t, err)
	assert.ErrorIs(t, err, duel.ErrMissingField)
	assert.Contains(t, err.Error(), "row 3")
}

func TestDecodeRows_UnknownResultCode(t *testing.T) {
	_, err := DecodeRows([]Row{{"model_a": "m1", "model_b": "m2", "result_code": "A>>B"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}
