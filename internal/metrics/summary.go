package metrics

import (
	"sort"

	"github.com/camtrap-arena/duelrank/internal/duel"
	"github.com/camtrap-arena/duelrank/internal/labels"
	"github.com/camtrap-arena/duelrank/internal/response"
)

// ClassCount is the number of duels whose image carries Label.
type ClassCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// ComplianceRow reports how often a model answered in the expected
// structured format.
type ComplianceRow struct {
	Model        string  `json:"model"`
	Responses    int     `json:"responses"`
	Parsed       int     `json:"parsed"`
	Conforming   int     `json:"conforming"`
	FormatErrors int     `json:"format_errors"`
	Rate         float64 `json:"conformance_rate"`
}

// LedgerSummary is the header shown above the leaderboards.
type LedgerSummary struct {
	Duels      int                     `json:"duels"`
	Models     []string                `json:"models"`
	Support    []ClassCount            `json:"support"`
	Votes      map[duel.ResultCode]int `json:"votes"`
	Compliance []ComplianceRow         `json:"compliance"`
}

// Summarize counts duels, contestants, ground-truth class support, vote
// distribution and per-model structured-output compliance.
func Summarize(records []duel.Record, normalize labels.Normalizer) LedgerSummary {
	if normalize == nil {
		normalize = labels.Compact
	}

	s := LedgerSummary{
		Duels:      len(records),
		Models:     duel.Models(records),
		Support:    []ClassCount{},
		Votes:      make(map[duel.ResultCode]int),
		Compliance: []ComplianceRow{},
	}
	if len(records) == 0 {
		return s
	}

	support := make(map[string]int)
	compliance := make(map[string]*ComplianceRow)
	tally := func(model, raw string) {
		row, ok := compliance[model]
		if !ok {
			row = &ComplianceRow{Model: model}
			compliance[model] = row
		}
		row.Responses++
		if response.Parse(raw, normalize).OK {
			row.Parsed++
		} else {
			row.FormatErrors++
		}
		if response.Conforms(raw) {
			row.Conforming++
		}
	}

	for _, r := range records {
		support[normalize(r.Species)]++
		if r.Result != duel.ResultNone {
			s.Votes[r.Result]++
		}
		tally(r.ModelA, r.ResponseA)
		tally(r.ModelB, r.ResponseB)
	}

	for label, n := range support {
		s.Support = append(s.Support, ClassCount{Label: label, Count: n})
	}
	sort.Slice(s.Support, func(i, j int) bool {
		if s.Support[i].Count != s.Support[j].Count {
			return s.Support[i].Count > s.Support[j].Count
		}
		return s.Support[i].Label < s.Support[j].Label
	})

	for _, m := range s.Models {
		row := compliance[m]
		row.Rate = roundTo4(safeDivide(float64(row.Conforming), float64(row.Responses)))
		s.Compliance = append(s.Compliance, *row)
	}
	return s
}
