//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"kcald/internal"
	"kcald/internal/ai"
	"kcald/internal/controllers"
	"kcald/internal/diary"
	"kcald/internal/providers"
	"kcald/internal/realtime"
	"kcald/internal/services"
	"kcald/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		diary.NewZstdCompressor,
		services.NewTrackerService,
		ai.NewMemoisedEstimator,
		ai.NewImageNormalizer,
		realtime.NewHub,
		diary.NewFileManager,
		diary.NewArchiver,
		diary.NewScheduler,
		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
