package duel

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResultCode(t *testing.T) {
	tests := []struct {
		in   string
		want ResultCode
	}{
		{"A_WINS", ResultAWins},
		{"b_wins", ResultBWins},
		{"TIE", ResultTie},
		{"BOTH_GOOD", ResultBothGood},
		{"BOTH_BAD", ResultBothBad},
		{"A>B", ResultAWins},
		{"A<B", ResultBWins},
		{"A=B", ResultTie},
		{"A=B_GOOD", ResultBothGood},
		{"!A!B", ResultBothBad},
		{" a>b ", ResultAWins},
		{"", ResultNone},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseResultCode(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseResultCode("A>>B")
	assert.ErrorIs(t, err, ErrUnknownResult)
}

func TestResultCode_UnmarshalJSON(t *testing.T) {
	var r Record
	require.NoError(t, json.Unmarshal([]byte(`{"model_a":"x","model_b":"y","result_code":"A=B_GOOD"}`), &r))
	assert.Equal(t, ResultBothGood, r.Result)

	err := json.Unmarshal([]byte(`{"model_a":"x","model_b":"y","result_code":"maybe"}`), &r)
	assert.ErrorIs(t, err, ErrUnknownResult)
}

func TestRecord_Validate(t *testing.T) {
	assert.NoError(t, Record{ModelA: "x", ModelB: "y"}.Validate())
	assert.NoError(t, Record{ModelA: "x", ModelB: "x"}.Validate(), "self-duels are tolerated")
	assert.ErrorIs(t, Record{ModelB: "y"}.Validate(), ErrMissingField)
	assert.ErrorIs(t, Record{ModelA: "x", ModelB: " "}.Validate(), ErrMissingField)
}

func TestModels(t *testing.T) {
	recs := []Record{{ModelA: "b", ModelB: "a"}, {ModelA: "c", ModelB: "a"}}
	assert.Equal(t, []string{"a", "b", "c"}, Models(recs))
	assert.Empty(t, Models(nil))
}
