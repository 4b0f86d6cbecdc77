package diary

import (
	"os"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"kcald/internal/diary/interfaces"
	"kcald/internal/models"
	"kcald/internal/providers"
	"kcald/internal/services"
	"kcald/internal/structures"
)

// FileManager persists the tracker snapshot to a single compressed file
// and restores it at startup. It implements services.PersisterInterface,
// so every store mutation funnels through Persist.
type FileManager struct {
	conf       *structures.Config
	service    services.TrackerServiceInterface
	compressor interfaces.CompressorInterface
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface
	mu         sync.Mutex
}

func NewFileManager(conf *structures.Config, compressor interfaces.CompressorInterface, service services.TrackerServiceInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) *FileManager {
	return &FileManager{
		conf:       conf,
		service:    service,
		compressor: compressor,
		logger:     logger,
		metrics:    metrics,
	}
}

func (f *FileManager) Persist() error {
	return f.SaveToFile(f.conf.Persistence.FilePath)
}

func (f *FileManager) Load() error {
	return f.LoadFromFile(f.conf.Persistence.FilePath)
}

func (f *FileManager) SaveToFile(fileName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	start := time.Now()
	snapshot := f.service.GetSnapshot()

	jsonData, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	if err = os.Rename(tmpFile, fileName); err != nil {
		return err
	}

	f.metrics.ObservePersistenceDuration(time.Since(start))
	return nil
}

func (f *FileManager) Close() {
	f.compressor.Close()
}

func (f *FileManager) LoadFromFile(fileName string) error {
	data, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	// Current format: zstd-compressed snapshot envelope.
	raw, err := f.compressor.Decompress(data)
	if err != nil {
		// Early builds wrote the snapshot uncompressed.
		f.logger.Warnf(providers.TypeApp, "Snapshot is not compressed, trying plain JSON")
		raw = data
	}

	// A versioned envelope with a null calorieLog is an empty day, not a
	// legacy file; only unversioned data falls through to the array check.
	var snapshot models.Snapshot
	if err := json.Unmarshal(raw, &snapshot); err == nil && (snapshot.Log != nil || snapshot.Version > 0) {
		if snapshot.Version < models.SnapshotVersion {
			f.logger.Warnf(providers.TypeApp, "Migrating snapshot from version %d", snapshot.Version)
		}
		f.service.PutSnapshot(&snapshot)
		return nil
	}

	// Oldest format: a bare entry array, no goal/history.
	f.logger.Warnf(providers.TypeApp, "Inconsistent snapshot found, try to migrate from old data format")
	var entries []*models.LogEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		f.logger.Warnf(providers.TypeApp, "Migration failed")
		return err
	}
	f.logger.Warnf(providers.TypeApp, "Migration from legacy log format successful")
	f.service.PutSnapshot(&models.Snapshot{Log: entries})
	return nil
}
