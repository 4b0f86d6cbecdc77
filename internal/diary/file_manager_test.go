package diary

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kcald/internal/models"
	"kcald/internal/services"
	"kcald/internal/structures"
	"kcald/internal/testutil"
)

func trackerConfig(filePath string) *structures.Config {
	return &structures.Config{
		Tracker: structures.TrackerConfig{DefaultGoal: 2000},
		Persistence: structures.Persistence{
			FilePath:     filePath,
			SaveInterval: 1 * time.Second,
		},
	}
}

func newTestFileManager(conf *structures.Config, svc services.TrackerServiceInterface) (*FileManager, *testutil.MockMetrics) {
	metrics := &testutil.MockMetrics{}
	fm := NewFileManager(conf, &testutil.MockCompressor{}, svc, &testutil.MockLogger{}, metrics)
	return fm, metrics
}

func TestFileManager_SaveToFile_CreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.dat")

	svc := services.NewTrackerService(trackerConfig(path))
	_, err := svc.AddEntry("toast", models.Nutrition{Calories: 300})
	require.NoError(t, err)

	fm, metrics := newTestFileManager(trackerConfig(path), svc)
	require.NoError(t, fm.SaveToFile(path))

	_, err = os.Stat(path)
	assert.NoError(t, err)

	// Temp file should not exist
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	assert.Equal(t, 1, metrics.Persists)
}

func TestFileManager_PersistImplementsPersister(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "persist.dat")
	conf := trackerConfig(path)

	svc := services.NewTrackerService(conf)
	fm, _ := newTestFileManager(conf, svc)
	svc.SetPersister(fm)

	// The mutation itself triggers the write.
	_, err := svc.AddEntry("lunch", models.Nutrition{Calories: 500})
	require.NoError(t, err)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestFileManager_LoadFromFile_FileNotExist(t *testing.T) {
	svc := services.NewTrackerService(trackerConfig(""))
	fm, _ := newTestFileManager(trackerConfig(""), svc)
	err := fm.LoadFromFile("/nonexistent/path/file.dat")
	assert.NoError(t, err) // not an error, just no data
}

func TestFileManager_SaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "roundtrip.dat")

	svc := services.NewTrackerService(trackerConfig(path))
	require.NoError(t, svc.SetGoal(1850))
	_, err := svc.AddEntry("pasta", models.Nutrition{Calories: 640, Macros: models.Macros{Carbs: 90, Protein: 20, Fat: 18}})
	require.NoError(t, err)

	fm, _ := newTestFileManager(trackerConfig(path), svc)
	require.NoError(t, fm.SaveToFile(path))

	restored := services.NewTrackerService(trackerConfig(path))
	fm2, _ := newTestFileManager(trackerConfig(path), restored)
	require.NoError(t, fm2.LoadFromFile(path))

	assert.Equal(t, 640, restored.ConsumedCalories())
	assert.Equal(t, 1850, restored.TodaySummary().DailyGoal)
	assert.Equal(t, 1, restored.LogSize())
}

func TestFileManager_LoadFromFile_PlainJSONSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plain.dat")

	snap := models.Snapshot{
		Version:   models.SnapshotVersion,
		DailyGoal: 1700,
		Log: []*models.LogEntry{
			models.NewMealEntry("soup", models.Nutrition{Calories: 220}, time.Now()),
		},
	}
	jsonData, _ := json.Marshal(snap)
	require.NoError(t, os.WriteFile(path, jsonData, 0644))

	svc := services.NewTrackerService(trackerConfig(path))
	// Real compressor: decompression of plain JSON fails, the loader
	// falls back to treating the file as uncompressed.
	comp, err := NewZstdCompressor()
	require.NoError(t, err)
	fm := NewFileManager(trackerConfig(path), comp, svc, &testutil.MockLogger{}, &testutil.MockMetrics{})

	require.NoError(t, fm.LoadFromFile(path))
	assert.Equal(t, 220, svc.ConsumedCalories())
	assert.Equal(t, 1700, svc.TodaySummary().DailyGoal)
}

func TestFileManager_LoadFromFile_NullLogIsEmptyDay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.dat")

	// A tracker persisted before the first meal of the day writes a
	// versioned envelope whose calorieLog is JSON null.
	raw := []byte(`{"version":2,"dailyGoal":1700,"consumedCalories":0,"calorieLog":null,"calorieHistory":null}`)
	require.NoError(t, os.WriteFile(path, raw, 0644))

	svc := services.NewTrackerService(trackerConfig(path))
	fm, _ := newTestFileManager(trackerConfig(path), svc)

	require.NoError(t, fm.LoadFromFile(path))
	assert.Zero(t, svc.ConsumedCalories())
	assert.Zero(t, svc.LogSize())
	assert.Equal(t, 1700, svc.TodaySummary().DailyGoal, "the envelope's goal survives, no legacy fallback")
}

func TestFileManager_LoadFromFile_LegacyEntryArray(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "legacy.dat")

	entries := []*models.LogEntry{
		models.NewMealEntry("toast", models.Nutrition{Calories: 120}, time.Now()),
		models.NewMealEntry("eggs", models.Nutrition{Calories: 180}, time.Now()),
	}
	jsonData, _ := json.Marshal(entries)
	require.NoError(t, os.WriteFile(path, jsonData, 0644))

	svc := services.NewTrackerService(trackerConfig(path))
	fm, _ := newTestFileManager(trackerConfig(path), svc)

	require.NoError(t, fm.LoadFromFile(path))
	assert.Equal(t, 300, svc.ConsumedCalories())
	assert.Equal(t, 2, svc.LogSize())
	// The legacy format carries no goal; the default applies.
	assert.Equal(t, 2000, svc.TodaySummary().DailyGoal)
}

func TestFileManager_LoadFromFile_CorruptedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corrupt.dat")
	require.NoError(t, os.WriteFile(path, []byte("not json at all"), 0644))

	svc := services.NewTrackerService(trackerConfig(path))
	fm, _ := newTestFileManager(trackerConfig(path), svc)

	err := fm.LoadFromFile(path)
	assert.Error(t, err)
	assert.Zero(t, svc.ConsumedCalories(), "corrupt data must not leak into state")
}

func TestFileManager_SaveToFile_BadPath(t *testing.T) {
	svc := services.NewTrackerService(trackerConfig(""))
	fm, _ := newTestFileManager(trackerConfig(""), svc)

	err := fm.SaveToFile("/nonexistent-dir/sub/file.dat")
	assert.Error(t, err)
}
