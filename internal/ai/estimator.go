package ai

import (
	"context"
	"errors"
	"strings"

	"kcald/internal/models"
)

// ErrNoCredential means the model project is not configured. It is a
// precondition failure: no network call is attempted. Manual entries
// bypass the estimator entirely and never hit it.
var ErrNoCredential = errors.New("ai project credential not configured")

const (
	estimatePrompt = `You are a nutrition estimator. Given a meal description and/or a photo of a meal,
estimate its nutrition. Respond with a single JSON object of exactly four integer fields:
{"calories": n, "carbs": n, "protein": n, "fat": n}
(carbs, protein and fat in grams). If you cannot estimate, respond with the words
"unable to estimate" instead.`

	describePrompt = `Name the meal shown on the photo in 2 to 5 words, for example "bowl of chicken soup".
If you cannot tell what the meal is, respond with exactly "` + noDescription + `".`

	// noDescription is the sentinel the model is instructed to answer
	// when unsure; it maps to an empty description.
	noDescription = "unrecognized meal"
)

type EstimatorInterface interface {
	// EstimateNutrition sends whichever of text/image is present to the
	// estimation model and parses the response. At least one must be set.
	EstimateNutrition(ctx context.Context, mealText string, image []byte) (models.Nutrition, error)
	// DescribeImage produces a short human-readable label for a photo
	// submitted without text. An empty result means the model was not
	// confident; the caller picks a fallback label.
	DescribeImage(ctx context.Context, image []byte) (string, error)
}

// mapDescription normalizes a raw description response: trims wrapping
// whitespace and quotes, collapses the sentinel to empty, and bounds the
// length so a rambling model cannot flood the log text.
func mapDescription(raw string) string {
	desc := strings.TrimSpace(raw)
	desc = strings.Trim(desc, `"'`)
	desc = strings.TrimSuffix(desc, ".")
	if strings.EqualFold(desc, noDescription) {
		return ""
	}
	if len(desc) > 80 {
		desc = desc[:80]
	}
	return desc
}
