package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	json "github.com/goccy/go-json"

	"kcald/internal/models"
	"kcald/internal/providers"
	"kcald/internal/structures"
)

// MemoisedEstimator caches successful model responses keyed on the
// exact input, so re-submitting the same text or photo does not spend a
// second model call. Errors are never cached; a transient failure must
// stay retryable.
type MemoisedEstimator struct {
	inner  EstimatorInterface
	cache  providers.CacheProviderInterface
	logger providers.Logger
}

// NewMemoisedEstimator builds the production estimator: the Vertex AI
// client wrapped in the memoising layer. With the cache disabled the
// noop cache makes every lookup a miss, so the wrap is free.
func NewMemoisedEstimator(conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface, cache providers.CacheProviderInterface) EstimatorInterface {
	return &MemoisedEstimator{
		inner:  NewGeminiEstimator(conf, logger, metrics),
		cache:  cache,
		logger: logger,
	}
}

func NewCachingEstimator(inner EstimatorInterface, cache providers.CacheProviderInterface, logger providers.Logger) EstimatorInterface {
	return &MemoisedEstimator{inner: inner, cache: cache, logger: logger}
}

func (m *MemoisedEstimator) EstimateNutrition(ctx context.Context, mealText string, image []byte) (models.Nutrition, error) {
	key := estimateKey(mealText, image)
	if data, ok := m.cache.Get(key); ok {
		var n models.Nutrition
		if err := json.Unmarshal(data, &n); err == nil {
			m.logger.Debugf(providers.TypeAi, "Estimation served from cache")
			return n, nil
		}
	}

	n, err := m.inner.EstimateNutrition(ctx, mealText, image)
	if err != nil {
		return models.Nutrition{}, err
	}
	if data, err := json.Marshal(n); err == nil {
		m.cache.Set(key, data)
	}
	return n, nil
}

func (m *MemoisedEstimator) DescribeImage(ctx context.Context, image []byte) (string, error) {
	key := describeKey(image)
	if data, ok := m.cache.Get(key); ok {
		m.logger.Debugf(providers.TypeAi, "Description served from cache")
		return string(data), nil
	}

	desc, err := m.inner.DescribeImage(ctx, image)
	if err != nil {
		return "", err
	}
	m.cache.Set(key, []byte(desc))
	return desc, nil
}

func estimateKey(mealText string, image []byte) string {
	h := sha256.New()
	h.Write([]byte(mealText))
	h.Write([]byte{0})
	h.Write(image)
	return "ai:est:" + hex.EncodeToString(h.Sum(nil))
}

func describeKey(image []byte) string {
	sum := sha256.Sum256(image)
	return "ai:desc:" + hex.EncodeToString(sum[:])
}
