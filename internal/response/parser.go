// Package response extracts a predicted species label from the free-text or
// JSON answer returned by a vision-language model.
package response

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/camtrap-arena/duelrank/internal/labels"
)

// NameAliases are the accepted keys for the predicted scientific name, in
// priority order: current schema first, legacy schema second.
var NameAliases = []string{"scientific_name", "nome_cientifico"}

// DetectionAliases are the accepted keys for the "was an animal detected"
// field.
var DetectionAliases = []string{"detection", "deteccao"}

var (
	fenceOpen  = regexp.MustCompile("^```[a-zA-Z]*[ \t]*\r?\n?")
	fenceClose = regexp.MustCompile("\r?\n?```$")
)

// Prediction is the parsed form of one model response.
type Prediction struct {
	// Label is the normalized predicted label, [labels.FormatError] when the
	// response could not be parsed.
	Label string

	// RawName is the scientific name exactly as the model wrote it.
	RawName string

	// Detection is the detection field exactly as the model wrote it.
	Detection string

	// OK is false when every parse attempt failed.
	OK bool

	// Fields is the decoded JSON object, nil when OK is false.
	Fields map[string]any
}

// ExtractLabel returns the normalized label predicted by raw, using compact
// normalization.
func ExtractLabel(raw any) string {
	return Parse(raw, labels.Compact).Label
}

// Parse decodes raw and extracts the predicted label, normalizing it with
// normalize. raw may be a map[string]any, a string, []byte or
// json.RawMessage. Parse never panics; failures yield a Prediction whose
// Label is [labels.FormatError].
func Parse(raw any, normalize labels.Normalizer) Prediction {
	if normalize == nil {
		normalize = labels.Compact
	}

	fields, ok := Decode(raw)
	if !ok {
		return Prediction{Label: labels.FormatError}
	}

	name, found := lookup(fields, NameAliases)
	p := Prediction{OK: true, Fields: fields, RawName: name}
	if det, ok := lookup(fields, DetectionAliases); ok {
		p.Detection = det
	}
	if !found {
		p.Label = labels.Background
		return p
	}
	p.Label = normalize(name)
	return p
}

// Decode turns raw into a JSON object. It accepts an already decoded map,
// strips a surrounding markdown code fence, and falls back to the outermost
// {...} span when strict decoding fails.
func Decode(raw any) (map[string]any, bool) {
	var text string
	switch v := raw.(type) {
	case map[string]any:
		return v, v != nil
	case string:
		text = v
	case []byte:
		text = string(v)
	case json.RawMessage:
		text = string(v)
	default:
		return nil, false
	}

	text = stripFence(strings.TrimSpace(text))
	if obj, ok := decodeObject(text); ok {
		return obj, true
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, false
	}
	return decodeObject(text[start : end+1])
}

func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = fenceOpen.ReplaceAllString(s, "")
	s = fenceClose.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func decodeObject(s string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// lookup returns the first non-blank value among aliases, so an empty
// current-schema field falls through to the legacy one. Keys are matched
// exactly first, then ignoring case, spaces and underscores so that
// "Nome Cientifico" resolves to nome_cientifico.
func lookup(fields map[string]any, aliases []string) (string, bool) {
	for _, key := range aliases {
		if s, ok := present(fields[key]); ok {
			return s, true
		}
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range aliases {
		want := foldKey(key)
		for _, k := range keys {
			if foldKey(k) != want {
				continue
			}
			if s, ok := present(fields[k]); ok {
				return s, true
			}
		}
	}
	return "", false
}

var keyFolder = strings.NewReplacer(" ", "", "_", "", "-", "")

func foldKey(k string) string {
	return keyFolder.Replace(strings.ToLower(strings.TrimSpace(k)))
}

// present reports v as a string unless it is null or blank.
func present(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	s := stringify(v)
	if strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
