package nutrition

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cast"

	"kcald/internal/models"
)

// ErrUnparseable is returned when no extraction rule matches. The wrapped
// message carries the offending model output so the caller can surface it.
var ErrUnparseable = errors.New("no calorie value found in model response")

// Bare numbers outside this open interval are ignored: a model that
// answers with a year or a product code must not become a logged meal.
// A genuine estimate above the bound still parses through the structured
// or unit-suffixed rules, which are unbounded.
const (
	bareNumberMin = 0
	bareNumberMax = 5000
)

var (
	unitNumberRe = regexp.MustCompile(`(?i)(\d+)\s*(?:calories|kcal)\b`)
	standaloneRe = regexp.MustCompile(`\b(\d+)\b`)
	digitRunRe   = regexp.MustCompile(`\d+`)
	codeFenceRe  = regexp.MustCompile("(?s)^```[a-zA-Z]*\n(.*?)\n?```$")
)

// Rule tries to extract a nutrition value from raw model text.
type Rule func(text string) (models.Nutrition, bool)

// Parser runs an ordered list of extraction rules and returns the first
// hit. It never panics on any input.
type Parser struct {
	rules []Rule
}

// NewParser builds the standard cascade: structured record, then a number
// with a calorie unit, then a standalone in-range number.
func NewParser() *Parser {
	return &Parser{rules: []Rule{
		structuredRecord,
		unitSuffixedNumber,
		standaloneNumber,
	}}
}

// NewLegacyParser additionally falls back to the first run of digits
// anywhere in the text, matching the behaviour of the no-macro variant.
func NewLegacyParser() *Parser {
	p := NewParser()
	p.rules = append(p.rules, bareDigitRun)
	return p
}

func (p *Parser) Parse(text string) (models.Nutrition, error) {
	for _, rule := range p.rules {
		if n, ok := rule(text); ok {
			return n, nil
		}
	}
	return models.Nutrition{}, fmt.Errorf("%w: %q", ErrUnparseable, strings.TrimSpace(text))
}

// structuredRecord accepts a JSON object with all four numeric fields,
// optionally wrapped in a markdown code fence. Non-numeric field values
// coerce to zero; negative values clamp to zero.
func structuredRecord(text string) (models.Nutrition, bool) {
	stripped := stripCodeFence(text)

	var record map[string]any
	if err := json.Unmarshal([]byte(stripped), &record); err != nil {
		return models.Nutrition{}, false
	}

	fields := [4]string{"calories", "carbs", "protein", "fat"}
	for _, f := range fields {
		if _, ok := record[f]; !ok {
			return models.Nutrition{}, false
		}
	}

	coerce := func(key string) int {
		return max(0, cast.ToInt(record[key]))
	}
	return models.Nutrition{
		Calories: coerce("calories"),
		Macros: models.Macros{
			Carbs:   coerce("carbs"),
			Protein: coerce("protein"),
			Fat:     coerce("fat"),
		},
	}, true
}

func unitSuffixedNumber(text string) (models.Nutrition, bool) {
	m := unitNumberRe.FindStringSubmatch(text)
	if m == nil {
		return models.Nutrition{}, false
	}
	return models.Nutrition{Calories: cast.ToInt(m[1])}, true
}

func standaloneNumber(text string) (models.Nutrition, bool) {
	for _, m := range standaloneRe.FindAllStringSubmatch(text, -1) {
		n := cast.ToInt(m[1])
		if n > bareNumberMin && n < bareNumberMax {
			return models.Nutrition{Calories: n}, true
		}
	}
	return models.Nutrition{}, false
}

func bareDigitRun(text string) (models.Nutrition, bool) {
	for _, m := range digitRunRe.FindAllString(text, -1) {
		n := cast.ToInt(m)
		if n > bareNumberMin && n < bareNumberMax {
			return models.Nutrition{Calories: n}, true
		}
	}
	return models.Nutrition{}, false
}

func stripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if m := codeFenceRe.FindStringSubmatch(trimmed); m != nil {
		return strings.TrimSpace(m[1])
	}
	return trimmed
}
