package duel

import (
	"github.com/camtrap-arena/duelrank/internal/labels"
	"github.com/camtrap-arena/duelrank/internal/response"
)

// Prediction is one contestant's answer on one duel, paired with the
// ground truth of the image. Two are derived per Record.
type Prediction struct {
	Model     string `json:"model"`
	Truth     string `json:"ground_truth"`
	Predicted string `json:"predicted"`

	// RawName and Detection carry the unnormalized response fields for the
	// fuzzy accuracy metric.
	RawName   string `json:"-"`
	Detection string `json:"-"`

	// Parsed is false when the response degraded to labels.FormatError.
	Parsed bool `json:"parsed"`
}

// Flatten converts duel records into a flat prediction pool. Each record
// yields the model_a entry followed by the model_b entry; repeated
// (model, image) pairs are all kept.
func Flatten(records []Record, normalize labels.Normalizer) []Prediction {
	if normalize == nil {
		normalize = labels.Compact
	}

	pool := make([]Prediction, 0, 2*len(records))
	for _, r := range records {
		truth := normalize(r.Species)
		pool = append(pool,
			predict(r.ModelA, truth, r.ResponseA, normalize),
			predict(r.ModelB, truth, r.ResponseB, normalize),
		)
	}
	return pool
}

func predict(model, truth, raw string, normalize labels.Normalizer) Prediction {
	p := response.Parse(raw, normalize)
	return Prediction{
		Model:     model,
		Truth:     truth,
		Predicted: p.Label,
		RawName:   p.RawName,
		Detection: p.Detection,
		Parsed:    p.OK,
	}
}
