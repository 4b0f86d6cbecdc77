package internal

import (
	"net/http"

	"kcald/internal/controllers"
	"kcald/internal/providers"
	"kcald/internal/realtime"
	"kcald/internal/structures"
)

func InitRoutes(apiController *controllers.ApiController, hub *realtime.Hub, conf *structures.Config) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Post("/log", http.HandlerFunc(apiController.AddEntry))
	routers.Delete("/log", http.HandlerFunc(apiController.DeleteEntry))
	routers.Post("/log/duplicate", http.HandlerFunc(apiController.DuplicateEntry))
	routers.Get("/today", http.HandlerFunc(apiController.GetToday))
	routers.Get("/history", http.HandlerFunc(apiController.GetHistory))
	routers.Get("/history/day", http.HandlerFunc(apiController.GetHistoryDay))
	routers.Get("/export", http.HandlerFunc(apiController.ExportHistory))
	routers.Put("/goal", http.HandlerFunc(apiController.SetGoal))
	routers.Get("/ws", http.HandlerFunc(hub.Handle))
	return routers
}
