package diary

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"kcald/internal/diary/interfaces"
	"kcald/internal/models"
	"kcald/internal/providers"
	"kcald/internal/services"
	"kcald/internal/structures"
)

const archiveSuffix = ".json.zst"

// Archiver writes each rolled-over day to its own compressed file, one
// per date, and prunes files past the retention TTL. It is best-effort
// cold storage on top of the snapshot: losing an archive file never
// loses live state.
type Archiver struct {
	mu         sync.Mutex
	dir        string
	ttl        time.Duration
	compressor interfaces.CompressorInterface
	logger     providers.Logger
}

func NewArchiver(conf *structures.Config, compressor interfaces.CompressorInterface, logger providers.Logger) *Archiver {
	return &Archiver{
		dir:        conf.Tracker.ArchiveDir,
		ttl:        conf.Tracker.ArchiveTTL,
		compressor: compressor,
		logger:     logger,
	}
}

// Archive writes the day under <dir>/<date>.json.zst, replacing any
// earlier file for the same date. A disabled archiver (empty dir) is a
// no-op.
func (a *Archiver) Archive(day *models.DailyHistoryEntry) error {
	if a.dir == "" || day == nil {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return err
	}

	jsonData, err := json.Marshal(day)
	if err != nil {
		return err
	}
	data, err := a.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	fileName := filepath.Join(a.dir, day.Date+archiveSuffix)
	tmpFile := fileName + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmpFile, fileName); err != nil {
		os.Remove(tmpFile)
		return err
	}

	a.logger.Infof(providers.TypeApp, "Archived day %s (%d kcal)", day.Date, day.TotalCalories)
	return nil
}

// Restore reads a single archived day back, e.g. after the live history
// was truncated. Returns nil when no file exists for the date.
func (a *Archiver) Restore(date string) (*models.DailyHistoryEntry, error) {
	if a.dir == "" {
		return nil, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	data, err := os.ReadFile(filepath.Join(a.dir, date+archiveSuffix))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	raw, err := a.compressor.Decompress(data)
	if err != nil {
		return nil, err
	}
	var day models.DailyHistoryEntry
	if err := json.Unmarshal(raw, &day); err != nil {
		return nil, err
	}
	return &day, nil
}

// Prune removes archive files whose date is older than the TTL. A zero
// TTL keeps everything forever.
func (a *Archiver) Prune(now time.Time) {
	if a.dir == "" || a.ttl <= 0 {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	files, err := os.ReadDir(a.dir)
	if err != nil {
		return
	}

	cutoff := now.Add(-a.ttl)
	for _, f := range files {
		name := f.Name()
		if !strings.HasSuffix(name, archiveSuffix) {
			continue
		}
		date, err := time.ParseInLocation(services.DateLayout, strings.TrimSuffix(name, archiveSuffix), time.Local)
		if err != nil {
			continue
		}
		if date.Before(cutoff) {
			if err := os.Remove(filepath.Join(a.dir, name)); err == nil {
				a.logger.Infof(providers.TypeApp, "Pruned archive %s", name)
			}
		}
	}
}
