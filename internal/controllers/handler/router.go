package handler

import (
	"calendarback/internal/transport/hub"
	"calendarback/pkg/config"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Router struct {
	handler  Handler
	hub      *hub.Hub
	app      *fiber.App
	gatherer prometheus.Gatherer
	conf     *config.Config
	logger   *zap.SugaredLogger
}

func NewRouter(handler Handler, notificationHub *hub.Hub, app *fiber.App, gatherer prometheus.Gatherer,
	conf *config.Config, logger *zap.SugaredLogger) *Router {
	return &Router{
		logger:   logger,
		app:      app,
		gatherer: gatherer,
		conf:     conf,
		handler:  handler,
		hub:      notificationHub,
	}
}

func (r *Router) RegisterRouter() {
	r.app.Get("/health", r.handler.HealthCheck)
	r.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})))

	r.app.Get("/swagger/*", swagger.New(swagger.Config{
		DeepLinking: false,
		URL:         "/swagger/doc.json",
	}))

	odata := r.app.Group("/odata")

	calendar := odata.Group("/Calendar")
	calendar.Get("/", r.handler.ListEntries)
	// export объявлен раньше /:id, иначе попадёт в GetEntry
	calendar.Get("/export", r.handler.ExportEntries)
	calendar.Get("/:id", r.handler.GetEntry)
	calendar.Post("/", r.handler.CreateEntry)
	calendar.Put("/:id", r.handler.UpdateEntry)
	calendar.Delete("/:id", r.handler.DeleteEntry)

	r.app.Use("/notificationHub", hub.Upgrade)
	r.app.Get("/notificationHub", r.hub.Handler())
}
