package httpserver

import (
	"calendarback/pkg/config"
	"calendarback/pkg/metrics"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const defaultBodyLimit = 4 * 1024 * 1024

func NewFiber(conf config.Config, m *metrics.Metrics) *fiber.App {
	bodyLimit := conf.Server.BodyLimit
	if bodyLimit <= 0 {
		bodyLimit = defaultBodyLimit
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 1024 * 100,
			BodyLimit:      bodyLimit,
			ErrorHandler:   errorHandler,
		},
	)

	app.Use(
		cors.New(cors.Config{
			AllowOrigins:  "*", // Разрешаем все источники по умолчанию
			AllowHeaders:  "*",
			ExposeHeaders: "Location, Content-Disposition",
		}),
		recover.New(recover.Config{
			EnableStackTrace: true,
		}),
		logger.New(),
	)

	// Prometheus middleware
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		// Путь роута, а не фактический: /odata/Calendar/:id вместо /odata/Calendar/17
		path := c.Path()
		method := c.Method()
		if r := c.Route(); r != nil {
			if r.Path != "" {
				path = r.Path
			}
			if r.Method != "" {
				method = r.Method
			}
		}
		method = normalizeHTTPMethod(method)

		// ошибку ещё не записал ErrorHandler, статус берём из неё
		status := c.Response().StatusCode()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		} else if err != nil {
			status = fiber.StatusInternalServerError
		}

		statusStr := strconv.Itoa(status)
		m.API.HTTPRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
		m.API.HTTPRequestDuration.WithLabelValues(method, path, statusStr).Observe(time.Since(start).Seconds())
		return err
	})

	return app
}

// errorHandler - ошибки, не обработанные хендлерами (404 роутера, паники, лимит тела)
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"message": err.Error(),
	})
}

// normalizeHTTPMethod оставляет стандартные методы, остальное сводит к OTHER,
// чтобы произвольный метод не раздувал число серий метрик
func normalizeHTTPMethod(method string) string {
	method = strings.ToUpper(strings.TrimSpace(method))

	switch method {
	case fiber.MethodGet, fiber.MethodPost, fiber.MethodPut, fiber.MethodDelete, fiber.MethodPatch,
		fiber.MethodHead, fiber.MethodOptions, fiber.MethodTrace, fiber.MethodConnect:
		return method
	default:
		return "OTHER"
	}
}
