package controllers

import (
	"encoding/base64"
	"encoding/csv"
	"errors"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"

	"kcald/internal/ai"
	"kcald/internal/diary"
	"kcald/internal/models"
	"kcald/internal/nutrition"
	"kcald/internal/providers"
	"kcald/internal/realtime"
	"kcald/internal/services"
)

// Large enough for a base64 phone photo; the normalizer shrinks it
// before anything leaves the process.
const maxRequestBodySize = 16 << 20

// fallbackMealText labels photo entries when the model has no confident
// description.
const fallbackMealText = "Photo meal"

type ApiController struct {
	logger     providers.Logger
	service    services.TrackerServiceInterface
	estimator  ai.EstimatorInterface
	normalizer *ai.ImageNormalizer
	archiver   *diary.Archiver
	cache      providers.CacheProviderInterface
	hub        *realtime.Hub
}

func NewApiController(logger providers.Logger, service services.TrackerServiceInterface, estimator ai.EstimatorInterface, normalizer *ai.ImageNormalizer, archiver *diary.Archiver, cache providers.CacheProviderInterface, hub *realtime.Hub) *ApiController {
	return &ApiController{
		logger:     logger,
		service:    service,
		estimator:  estimator,
		normalizer: normalizer,
		archiver:   archiver,
		cache:      cache,
		hub:        hub,
	}
}

// AddEntry logs a meal. Manual calories skip the estimator entirely;
// otherwise whichever of text/image is present goes to the model and the
// response is parsed into nutrition.
func (ac *ApiController) AddEntry(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload models.AddEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	text := strings.TrimSpace(payload.Text)
	var imgData []byte
	if payload.Image != "" {
		decoded, err := decodeImagePayload(payload.Image)
		if err != nil {
			http.Error(w, "Bad Request: undecodable image", http.StatusBadRequest)
			return
		}
		normalized, err := ac.normalizer.Normalize(decoded)
		if err != nil {
			ac.logger.Warnf(providers.TypeApp, "Image processing failed: %s", err)
			http.Error(w, "Unable to process image", http.StatusUnprocessableEntity)
			return
		}
		imgData = normalized
	}

	var n models.Nutrition
	switch {
	case payload.Calories != nil:
		if *payload.Calories < 0 {
			http.Error(w, "Bad Request: negative calories", http.StatusBadRequest)
			return
		}
		n = models.Nutrition{Calories: *payload.Calories}
		if text == "" {
			text = "Manual entry"
		}
	case text == "" && imgData == nil:
		http.Error(w, "Bad Request: meal text, image or calories required", http.StatusBadRequest)
		return
	default:
		estimated, err := ac.estimator.EstimateNutrition(r.Context(), text, imgData)
		if err != nil {
			ac.writeEstimateError(w, err)
			return
		}
		n = estimated
		if text == "" {
			text = ac.describeImage(r, imgData)
		}
	}

	entry, err := ac.service.AddEntry(text, n)
	if err != nil {
		ac.logger.Errorf(providers.TypeApp, "Add entry failed: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.invalidateToday()
	ac.hub.Broadcast(realtime.EventEntryAdded, entry)
	writeJSON(w, http.StatusCreated, entry)
}

func (ac *ApiController) describeImage(r *http.Request, imgData []byte) string {
	desc, err := ac.estimator.DescribeImage(r.Context(), imgData)
	if err != nil {
		ac.logger.Warnf(providers.TypeAi, "Description failed: %s", err)
		return fallbackMealText
	}
	if desc == "" {
		return fallbackMealText
	}
	return desc
}

// writeEstimateError maps the estimation error taxonomy onto statuses:
// missing credential pre-empts the call, an unparseable response carries
// the raw model text, everything else is a transport failure.
func (ac *ApiController) writeEstimateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ai.ErrNoCredential):
		http.Error(w, err.Error(), http.StatusPreconditionFailed)
	case errors.Is(err, nutrition.ErrUnparseable):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		ac.logger.Errorf(providers.TypeAi, "Estimation failed: %s", err)
		http.Error(w, err.Error(), http.StatusBadGateway)
	}
}

func (ac *ApiController) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Bad Request: id required", http.StatusBadRequest)
		return
	}

	removed, err := ac.service.DeleteEntry(id)
	if err != nil {
		if errors.Is(err, services.ErrEntryNotFound) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.invalidateToday()
	ac.hub.Broadcast(realtime.EventEntryDeleted, removed)
	writeJSON(w, http.StatusOK, removed)
}

// DuplicateEntry clones a meal from today's log or, with a date, from a
// history entry — the path a past meal takes back into today without
// another model call.
func (ac *ApiController) DuplicateEntry(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var payload models.DuplicateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.ID == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	var entry *models.LogEntry
	var err error
	if payload.Date == "" {
		entry, err = ac.service.DuplicateEntry(payload.ID)
	} else {
		entry, err = ac.service.DuplicateFromHistory(payload.Date, payload.ID)
	}
	if err != nil {
		if errors.Is(err, services.ErrEntryNotFound) || errors.Is(err, services.ErrNoSuchDay) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.invalidateToday()
	ac.hub.Broadcast(realtime.EventEntryAdded, entry)
	writeJSON(w, http.StatusCreated, entry)
}

func (ac *ApiController) GetToday(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, providers.CacheKeyToday, func() (any, error) {
		return ac.service.TodaySummary(), nil
	})
}

func (ac *ApiController) GetHistory(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, providers.CacheKeyHistory, func() (any, error) {
		return ac.service.GetHistory(), nil
	})
}

// GetHistoryDay serves one archived day, falling back to the cold
// archive for dates pruned out of the live history.
func (ac *ApiController) GetHistoryDay(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		http.Error(w, "Bad Request: date required", http.StatusBadRequest)
		return
	}

	for _, day := range ac.service.GetHistory() {
		if day.Date == date {
			writeJSON(w, http.StatusOK, day)
			return
		}
	}

	day, err := ac.archiver.Restore(date)
	if err != nil {
		ac.logger.Errorf(providers.TypeApp, "Archive restore failed for %s: %s", date, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if day == nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, day)
}

func (ac *ApiController) ExportHistory(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="kcalog.csv"`)
	cw := csv.NewWriter(w)
	_ = cw.WriteAll(ac.service.ExportRows())
}

func (ac *ApiController) SetGoal(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var payload models.GoalRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if err := ac.service.SetGoal(payload.DailyGoal); err != nil {
		if errors.Is(err, services.ErrInvalidGoal) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.invalidateToday()
	ac.hub.Broadcast(realtime.EventGoalChanged, payload)
	writeJSON(w, http.StatusOK, ac.service.TodaySummary())
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func (ac *ApiController) invalidateToday() {
	ac.cache.Del(providers.CacheKeyToday)
	ac.cache.Del(providers.CacheKeyHistory)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

// decodeImagePayload accepts plain base64 or a data: URL as produced by
// a canvas export.
func decodeImagePayload(payload string) ([]byte, error) {
	if idx := strings.Index(payload, ";base64,"); idx >= 0 && strings.HasPrefix(payload, "data:") {
		payload = payload[idx+len(";base64,"):]
	}
	return base64.StdEncoding.DecodeString(payload)
}
