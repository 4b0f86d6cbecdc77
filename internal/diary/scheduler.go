package diary

import (
	"sync"
	"time"

	"github.com/roylee0704/gron"
	"github.com/roylee0704/gron/xtime"

	"kcald/internal/diary/interfaces"
	"kcald/internal/providers"
	"kcald/internal/realtime"
	"kcald/internal/services"
	"kcald/internal/structures"
)

// Scheduler owns the two background jobs: the local-midnight rollover
// and a periodic snapshot save. The cron re-arms both after every
// firing; Stop cancels them on teardown so no duplicate timers survive
// a restart.
type Scheduler struct {
	config      *structures.Config
	logger      providers.Logger
	service     services.TrackerServiceInterface
	fileManager *FileManager
	archiver    *Archiver
	metrics     providers.MetricsProviderInterface
	hub         *realtime.Hub
	cache       providers.CacheProviderInterface
	cron        *gron.Cron
	opsMu       sync.Mutex
}

func (s *Scheduler) Init() {
	s.cron = gron.New()

	// Mutations already persist synchronously; this is a safety net for
	// anything that slipped through (e.g. a failed persist mid-burst).
	s.cron.AddFunc(gron.Every(s.config.Persistence.SaveInterval), func() {
		s.opsMu.Lock()
		defer s.opsMu.Unlock()

		err := s.fileManager.Persist()
		if err != nil {
			s.logger.Errorf(providers.TypeApp, "Error while persisting data: %s", err)
			return
		}
		s.logger.Debugf(providers.TypeApp, "Persisted snapshot to %s", s.config.Persistence.FilePath)
	})

	s.cron.AddFunc(gron.Every(1*xtime.Day).At("00:00"), func() {
		s.logger.Infof(providers.TypeApp, "Day boundary reached")
		s.rollover()
	})

	s.cron.Start()
}

// rollover runs the idempotent archive-and-reset check. Both trigger
// paths (startup restore and the midnight job) land here, so a late
// timer or a double fire converge on one history entry per date.
func (s *Scheduler) rollover() {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	archived, err := s.service.Rollover()
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Rollover error: %s", err)
	}
	if archived == nil {
		return
	}

	s.metrics.IncRollovers()
	s.logger.Infof(providers.TypeApp, "Rolled over %s: %d kcal over %d meals",
		archived.Date, archived.TotalCalories, len(archived.MealLog))

	// The day just changed under any cached responses.
	s.cache.Del(providers.CacheKeyToday)
	s.cache.Del(providers.CacheKeyHistory)

	if err := s.archiver.Archive(archived); err != nil {
		s.logger.Errorf(providers.TypeApp, "Archive error for %s: %s", archived.Date, err)
	}
	s.archiver.Prune(time.Now())

	s.hub.Broadcast(realtime.EventDayRollover, archived)
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Restore loads the snapshot and immediately runs the rollover check:
// a tracker restarted after midnight archives the stale day before it
// serves anything.
func (s *Scheduler) Restore() error {
	err := s.fileManager.Load()
	if err != nil {
		return err
	}
	s.rollover()
	return nil
}

func (s *Scheduler) Persist() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	s.logger.Infof(providers.TypeApp, "Persisting snapshot to file...")
	err := s.fileManager.Persist()
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while persisting data: %s", err)
		return err
	}
	return nil
}

func NewScheduler(config *structures.Config, logger providers.Logger, service services.TrackerServiceInterface, fileManager *FileManager, archiver *Archiver, metrics providers.MetricsProviderInterface, hub *realtime.Hub, cache providers.CacheProviderInterface) interfaces.SchedulerInterface {
	return &Scheduler{
		config:      config,
		logger:      logger,
		service:     service,
		fileManager: fileManager,
		archiver:    archiver,
		metrics:     metrics,
		hub:         hub,
		cache:       cache,
	}
}
