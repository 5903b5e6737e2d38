// Package report renders a leaderboard as aligned text, Markdown or HTML.
package report

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/camtrap-arena/duelrank/internal/duel"
	"github.com/camtrap-arena/duelrank/internal/leaderboard"
	"github.com/camtrap-arena/duelrank/internal/metrics"
	"github.com/camtrap-arena/duelrank/internal/ranking"
)

// Table is a titled grid of preformatted cells.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// Tables lists the board's tables in display order. Optional tables are
// included only when the board carries them.
func Tables(b *leaderboard.Board) []Table {
	tables := []Table{
		SupportTable(b.Summary),
		VotesTable(b.Summary),
		ComplianceTable(b.Summary),
		AccuracyTable(b.Accuracy),
		MacroTable(b.Macro),
		EloTable(b.Elo),
		StrengthTable(b.BradleyTerry),
	}
	if b.Target != "" {
		tables = append(tables, SpeciesTable(b.Target, b.Species))
	}
	for _, m := range b.Confusion {
		tables = append(tables, ConfusionTable(m))
	}
	return tables
}

func SupportTable(s metrics.LedgerSummary) Table {
	t := Table{Title: "Ground truth support", Headers: []string{"Class", "Duels"}}
	for _, c := range s.Support {
		t.Rows = append(t.Rows, []string{c.Label, strconv.Itoa(c.Count)})
	}
	return t
}

func VotesTable(s metrics.LedgerSummary) Table {
	t := Table{Title: "Human votes", Headers: []string{"Vote", "Duels"}}
	codes := make([]string, 0, len(s.Votes))
	for rc := range s.Votes {
		codes = append(codes, string(rc))
	}
	sort.Strings(codes)
	for _, c := range codes {
		name := c
		if name == "" {
			name = "(none)"
		}
		t.Rows = append(t.Rows, []string{name, strconv.Itoa(s.Votes[duel.ResultCode(c)])})
	}
	return t
}

func ComplianceTable(s metrics.LedgerSummary) Table {
	t := Table{
		Title:   "Structured output compliance",
		Headers: []string{"Model", "Responses", "Parsed", "Schema-conforming", "Format errors", "Rate"},
	}
	for _, r := range s.Compliance {
		t.Rows = append(t.Rows, []string{
			r.Model, strconv.Itoa(r.Responses), strconv.Itoa(r.Parsed),
			strconv.Itoa(r.Conforming), strconv.Itoa(r.FormatErrors), pct(r.Rate),
		})
	}
	return t
}

func AccuracyTable(rows []metrics.AccuracyRow) Table {
	t := Table{
		Title:   "Accuracy",
		Headers: []string{"Model", "Mode", "Correct", "Total", "Accuracy", "95% CI"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.Model, string(r.Mode), strconv.Itoa(r.Correct), strconv.Itoa(r.Total),
			pct(r.Accuracy), fmt.Sprintf("%s - %s", pct(r.CI.Lower), pct(r.CI.Upper)),
		})
	}
	return t
}

func MacroTable(rows []metrics.MacroRow) Table {
	t := Table{
		Title:   "Macro averages",
		Headers: []string{"Model", "Macro F1", "Macro recall", "Macro precision", "Accuracy", "Samples"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.Model, num(r.MacroF1, 4), num(r.MacroRecall, 4), num(r.MacroPrecision, 4),
			num(r.Accuracy, 4), strconv.Itoa(r.Samples),
		})
	}
	return t
}

func EloTable(rows []ranking.EloRow) Table {
	t := Table{Title: "Elo", Headers: []string{"Rank", "Model", "Rating", "Lower", "Upper"}}
	for i, r := range rows {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(i + 1), r.Model, num(r.Rating, 1), num(r.Lower, 1), num(r.Upper, 1),
		})
	}
	return t
}

func StrengthTable(rows []ranking.StrengthRow) Table {
	t := Table{Title: "Bradley-Terry", Headers: []string{"Rank", "Model", "Score", "Wins", "Matches"}}
	for i, r := range rows {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(i + 1), r.Model, num(r.Score, 3), num(r.Wins, 1), num(r.Matches, 1),
		})
	}
	return t
}

func SpeciesTable(target string, rows []metrics.BinaryRow) Table {
	t := Table{
		Title:   "One-vs-rest: " + target,
		Headers: []string{"Model", "TP", "FP", "TN", "FN", "Precision", "Recall", "F1", "Accuracy", "Error rate", "Support"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.Model, strconv.Itoa(r.TP), strconv.Itoa(r.FP), strconv.Itoa(r.TN), strconv.Itoa(r.FN),
			num(r.Precision, 4), num(r.Recall, 4), num(r.F1, 4), num(r.Accuracy, 4),
			num(r.ErrorRate, 4), strconv.Itoa(r.Support),
		})
	}
	return t
}

// ConfusionTable lays out rows as ground truth and columns as predictions.
func ConfusionTable(m metrics.ConfusionMatrix) Table {
	t := Table{Title: "Confusion: " + m.Model, Headers: append([]string{"truth \\ predicted"}, m.Labels...)}
	for i, label := range m.Labels {
		row := make([]string, 0, len(m.Labels)+1)
		row = append(row, label)
		for _, c := range m.Counts[i] {
			row = append(row, strconv.Itoa(c))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func num(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}

func pct(v float64) string {
	return strconv.FormatFloat(v*100, 'f', 1, 64) + "%"
}
