package ai

import (
	"context"
	"strings"
	"testing"

	"cloud.google.com/go/vertexai/genai"
	"github.com/stretchr/testify/assert"

	"kcald/internal/structures"
	"kcald/internal/testutil"
)

func TestMapDescription(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", "bowl of chicken soup", "bowl of chicken soup"},
		{"whitespace", "  grilled salmon \n", "grilled salmon"},
		{"quoted", `"two eggs on toast"`, "two eggs on toast"},
		{"trailing period", "protein shake.", "protein shake"},
		{"sentinel", "unrecognized meal", ""},
		{"sentinel cased", "Unrecognized Meal", ""},
		{"truncated", strings.Repeat("x", 200), strings.Repeat("x", 80)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mapDescription(tt.raw))
		})
	}
}

func TestEstimateNutrition_NoCredential(t *testing.T) {
	conf := &structures.Config{} // no project configured
	g := NewGeminiEstimator(conf, &testutil.MockLogger{}, &testutil.MockMetrics{})

	_, err := g.EstimateNutrition(context.Background(), "toast", nil)
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestEstimateNutrition_NothingToEstimate(t *testing.T) {
	conf := &structures.Config{}
	g := NewGeminiEstimator(conf, &testutil.MockLogger{}, &testutil.MockMetrics{})

	_, err := g.EstimateNutrition(context.Background(), "", nil)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoCredential, "empty input is rejected before the credential check")
}

func TestNewGeminiEstimator_ParserSelection(t *testing.T) {
	// Output of the calories-only model: digits glued to words, which
	// only the legacy digit-run rule reads.
	const raw = "item300x"

	standard := NewGeminiEstimator(&structures.Config{}, &testutil.MockLogger{}, &testutil.MockMetrics{}).(*GeminiEstimator)
	_, err := standard.parser.Parse(raw)
	assert.Error(t, err)

	conf := &structures.Config{Ai: structures.AiConfig{LegacyParser: true}}
	legacy := NewGeminiEstimator(conf, &testutil.MockLogger{}, &testutil.MockMetrics{}).(*GeminiEstimator)
	n, err := legacy.parser.Parse(raw)
	assert.NoError(t, err)
	assert.Equal(t, 300, n.Calories)
}

func TestDescribeImage_NoCredential(t *testing.T) {
	conf := &structures.Config{}
	g := NewGeminiEstimator(conf, &testutil.MockLogger{}, &testutil.MockMetrics{})

	_, err := g.DescribeImage(context.Background(), []byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text("450"), genai.Text(" kcal")}},
		}},
	}
	text, err := responseText(resp)
	assert.NoError(t, err)
	assert.Equal(t, "450 kcal", text)
}

func TestResponseText_NoCandidates(t *testing.T) {
	_, err := responseText(&genai.GenerateContentResponse{})
	assert.Error(t, err)
}

func TestResponseText_NoText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{}}},
	}
	_, err := responseText(resp)
	assert.Error(t, err)
}
