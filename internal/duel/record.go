// Package duel defines the duel ledger record and flattens it into
// per-contestant predictions.
package duel

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrMissingField is returned when a record lacks a field the ranking
	// core cannot do without.
	ErrMissingField = errors.New("duel record missing required field")

	// ErrUnknownResult is returned for a result code outside the closed set.
	ErrUnknownResult = errors.New("unknown duel result code")
)

// ResultCode is the human preference vote cast on a duel.
type ResultCode string

const (
	ResultNone     ResultCode = ""
	ResultAWins    ResultCode = "A_WINS"
	ResultBWins    ResultCode = "B_WINS"
	ResultTie      ResultCode = "TIE"
	ResultBothGood ResultCode = "BOTH_GOOD"
	ResultBothBad  ResultCode = "BOTH_BAD"
)

// storedCodes maps the codes written by the arena UI onto ResultCode.
var storedCodes = map[string]ResultCode{
	"a>b":      ResultAWins,
	"a<b":      ResultBWins,
	"b>a":      ResultBWins,
	"a=b":      ResultTie,
	"a=b_good": ResultBothGood,
	"!a!b":     ResultBothBad,
}

// ParseResultCode accepts both canonical names (A_WINS, ...) and the
// symbolic codes stored by the arena (A>B, A<B, A=B, A=B_GOOD, !A!B).
// An empty string yields ResultNone.
func ParseResultCode(s string) (ResultCode, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ResultNone, nil
	}
	switch rc := ResultCode(strings.ToUpper(s)); rc {
	case ResultAWins, ResultBWins, ResultTie, ResultBothGood, ResultBothBad:
		return rc, nil
	}
	if rc, ok := storedCodes[strings.ToLower(s)]; ok {
		return rc, nil
	}
	return ResultNone, fmt.Errorf("%w: %q", ErrUnknownResult, s)
}

// UnmarshalText implements [encoding.TextUnmarshaler] so that JSON and
// mapstructure decoding accept the stored arena codes as well.
func (rc *ResultCode) UnmarshalText(text []byte) error {
	parsed, err := ParseResultCode(string(text))
	if err != nil {
		return err
	}
	*rc = parsed
	return nil
}

// Stored returns the symbolic code the arena writes for rc.
func (rc ResultCode) Stored() string {
	for code, v := range storedCodes {
		if v == rc && code != "b>a" {
			return strings.ToUpper(code)
		}
	}
	return ""
}

// Decisive reports whether the code names a single winner.
func (rc ResultCode) Decisive() bool {
	return rc == ResultAWins || rc == ResultBWins
}

// Record is one completed comparison between two contestants on one image.
// Records are immutable once created.
type Record struct {
	ModelA    string     `json:"model_a" mapstructure:"model_a" db:"model_a"`
	ModelB    string     `json:"model_b" mapstructure:"model_b" db:"model_b"`
	Species   string     `json:"species" mapstructure:"species" db:"species"`
	ResponseA string     `json:"model_response_a" mapstructure:"model_response_a" db:"model_response_a"`
	ResponseB string     `json:"model_response_b" mapstructure:"model_response_b" db:"model_response_b"`
	Result    ResultCode `json:"result_code,omitempty" mapstructure:"result_code" db:"result_code"`

	Evaluator string  `json:"evaluator_email,omitempty" mapstructure:"evaluator_email" db:"evaluator_email"`
	ImageID   string  `json:"image_id,omitempty" mapstructure:"image_id" db:"image_id"`
	ImagePath string  `json:"image_path,omitempty" mapstructure:"image_path" db:"image_path"`
	TimeA     float64 `json:"time_a,omitempty" mapstructure:"time_a" db:"time_a"`
	TimeB     float64 `json:"time_b,omitempty" mapstructure:"time_b" db:"time_b"`
	Comments  string  `json:"comments,omitempty" mapstructure:"comments" db:"comments"`
}

// Validate checks the fields the ranking core requires. Self-duels are
// allowed.
func (r Record) Validate() error {
	if strings.TrimSpace(r.ModelA) == "" {
		return fmt.Errorf("%w: model_a", ErrMissingField)
	}
	if strings.TrimSpace(r.ModelB) == "" {
		return fmt.Errorf("%w: model_b", ErrMissingField)
	}
	return nil
}

// Models returns the distinct contestants appearing in records, sorted.
func Models(records []Record) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range records {
		for _, m := range [2]string{r.ModelA, r.ModelB} {
			if _, ok := seen[m]; !ok {
				seen[m] = struct{}{}
				out = append(out, m)
			}
		}
	}
	sort.Strings(out)
	return out
}
