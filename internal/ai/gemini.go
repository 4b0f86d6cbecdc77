package ai

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/option"

	"kcald/internal/models"
	"kcald/internal/nutrition"
	"kcald/internal/providers"
	"kcald/internal/structures"
)

// GeminiEstimator talks to a Vertex AI generative model. The client is
// created lazily on first use so a manual-only deployment never opens a
// connection to the platform.
type GeminiEstimator struct {
	conf    *structures.Config
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
	parser  *nutrition.Parser

	mu     sync.Mutex
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiEstimator(conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) EstimatorInterface {
	// Older deployments ran a calories-only model whose answers carry no
	// word boundary around the number; the legacy cascade still reads them.
	parser := nutrition.NewParser()
	if conf.Ai.LegacyParser {
		parser = nutrition.NewLegacyParser()
	}
	return &GeminiEstimator{
		conf:    conf,
		logger:  logger,
		metrics: metrics,
		parser:  parser,
	}
}

func (g *GeminiEstimator) EstimateNutrition(ctx context.Context, mealText string, image []byte) (models.Nutrition, error) {
	if mealText == "" && len(image) == 0 {
		return models.Nutrition{}, fmt.Errorf("nothing to estimate: no meal text and no image")
	}

	raw, err := g.generate(ctx, "estimate", estimatePrompt, mealText, image)
	if err != nil {
		return models.Nutrition{}, err
	}

	n, err := g.parser.Parse(raw)
	if err != nil {
		g.logger.Warnf(providers.TypeAi, "Unparseable estimation response: %s", raw)
		return models.Nutrition{}, err
	}
	return n, nil
}

func (g *GeminiEstimator) DescribeImage(ctx context.Context, image []byte) (string, error) {
	raw, err := g.generate(ctx, "describe", describePrompt, "", image)
	if err != nil {
		return "", err
	}
	return mapDescription(raw), nil
}

// generate sends one prompt with the optional text/image parts and
// returns the joined text of the first candidate.
func (g *GeminiEstimator) generate(ctx context.Context, kind, prompt, mealText string, image []byte) (string, error) {
	model, err := g.ensureModel(ctx)
	if err != nil {
		return "", err
	}

	parts := []genai.Part{genai.Text(prompt)}
	if mealText != "" {
		parts = append(parts, genai.Text("Meal: "+mealText))
	}
	if len(image) > 0 {
		parts = append(parts, genai.ImageData("image/jpeg", image))
	}

	ctx, cancel := context.WithTimeout(ctx, g.conf.Ai.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := model.GenerateContent(ctx, parts...)
	g.metrics.ObserveAiDuration(kind, time.Since(start))
	g.metrics.IncAiRequests(kind, err == nil)
	if err != nil {
		g.logger.Errorf(providers.TypeAi, "Model call failed (%s): %s", kind, err)
		return "", fmt.Errorf("model call failed: %w", err)
	}

	text, err := responseText(resp)
	if err != nil {
		return "", err
	}
	g.logger.Debugf(providers.TypeAi, "Model response (%s): %s", kind, text)
	return text, nil
}

func (g *GeminiEstimator) ensureModel(ctx context.Context) (*genai.GenerativeModel, error) {
	if g.conf.Ai.ProjectID == "" {
		return nil, ErrNoCredential
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.model != nil {
		return g.model, nil
	}

	opts := []option.ClientOption{}
	if g.conf.Ai.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(g.conf.Ai.CredentialsFile))
	}
	client, err := genai.NewClient(ctx, g.conf.Ai.ProjectID, g.conf.Ai.Location, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create model client: %w", err)
	}

	g.client = client
	g.model = client.GenerativeModel(g.conf.Ai.Model)
	g.logger.Infof(providers.TypeAi, "Model client initialized: %s (%s)", g.conf.Ai.Model, g.conf.Ai.Location)
	return g.model, nil
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("model returned no candidates")
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("model returned no text content")
	}
	return sb.String(), nil
}
