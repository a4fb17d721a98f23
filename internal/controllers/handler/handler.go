package handler

import (
	"bytes"
	"calendarback/internal/appers"
	"calendarback/internal/application/common"
	"calendarback/internal/application/entity"
	"calendarback/internal/application/service"
	use_cases "calendarback/internal/application/use-cases"
	"calendarback/pkg/odata"
	"calendarback/pkg/validator"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	playgroundvalidator "github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const entitySet = "Calendar"

type Handler interface {
	ListEntries(c *fiber.Ctx) error
	GetEntry(c *fiber.Ctx) error
	CreateEntry(c *fiber.Ctx) error
	UpdateEntry(c *fiber.Ctx) error
	DeleteEntry(c *fiber.Ctx) error
	ExportEntries(c *fiber.Ctx) error
	HealthCheck(c *fiber.Ctx) error
}

type HandlerImpl struct {
	usecase      use_cases.UseCaser
	logger       *zap.SugaredLogger
	kafkaEnabled bool
	now          func() time.Time
}

func NewCalendarHandler(usecase use_cases.UseCaser, logger *zap.SugaredLogger, kafkaEnabled bool) *HandlerImpl {
	return &HandlerImpl{
		usecase:      usecase,
		logger:       logger,
		kafkaEnabled: kafkaEnabled,
		now:          time.Now,
	}
}

// formatValidationErrors форматирует ошибки валидации в понятный формат для клиента
func formatValidationErrors(err error) fiber.Map {
	var details []string
	var validationErrors playgroundvalidator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			field := e.Field()
			var message string
			switch e.Tag() {
			case "required", "notblank":
				message = fmt.Sprintf("поле '%s' обязательно для заполнения", field)
			case "max":
				message = fmt.Sprintf("поле '%s' должно содержать максимум %s символов", field, e.Param())
			case "datetime_utc":
				message = fmt.Sprintf("поле '%s' должно быть датой в формате ISO-8601 (например, 2025-02-23T10:00:00Z)", field)
			default:
				message = fmt.Sprintf("поле '%s' не прошло валидацию: %s", field, e.Tag())
			}
			details = append(details, message)
		}
	} else {
		details = append(details, err.Error())
	}
	return fiber.Map{
		"message": "validation failed",
		"details": details,
	}
}

// queryOptions разбирает системные параметры OData из строки запроса
func queryOptions(c *fiber.Ctx) (*odata.Options, error) {
	return odata.Parse(entity.CalendarEntrySchema, odata.RawOptions{
		Filter:  c.Query("$filter"),
		OrderBy: c.Query("$orderby"),
		Skip:    c.Query("$skip"),
		Top:     c.Query("$top"),
		Select:  c.Query("$select"),
		Count:   c.Query("$count"),
	})
}

// metadataContext - значение @odata.context для ответа
func metadataContext(c *fiber.Ctx, opts *odata.Options, suffix string) string {
	ctx := c.BaseURL() + "/odata/$metadata#" + entitySet
	if opts != nil && len(opts.Select) > 0 {
		names := make([]string, 0, len(opts.Select))
		for _, f := range opts.Select {
			names = append(names, f.Name)
		}
		ctx += "(" + strings.Join(names, ",") + ")"
	}
	return ctx + suffix
}

func entryID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, appers.ErrInvalidID
	}
	return id, nil
}

// parseEntryBody читает и валидирует тело POST/PUT
func (h *HandlerImpl) parseEntryBody(c *fiber.Ctx) (entity.CalendarEntry, error) {
	var req entity.CalendarEntryRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Warnf("error parsing body: %v", err)
		return entity.CalendarEntry{}, appers.ErrInvalidBody
	}

	if err := validator.Validate.Struct(&req); err != nil {
		h.logger.Warnf("validation error: %v", err)
		return entity.CalendarEntry{}, err
	}

	return req.ToEntry()
}

func badBody(c *fiber.Ctx, err error) error {
	if errors.Is(err, appers.ErrInvalidBody) {
		return appers.SanitizeError(c, err)
	}
	return c.Status(fiber.StatusBadRequest).JSON(formatValidationErrors(err))
}

// HealthCheck godoc
// @Summary     Проверка состояния сервиса
// @Description Проверяет доступность PostgreSQL и Kafka. Выключенная Kafka считается доступной.
// @Produce     json
// @Success     200   {object} entity.HealthCheckResponse "Все сервисы доступны"
// @Failure     503   {object} entity.HealthCheckResponse "Один или несколько сервисов недоступны"
// @tags        Health
// @Router      /health [get]
func (h *HandlerImpl) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	dbHealthy, kafkaHealthy, err := h.usecase.HealthCheck(ctx)
	if err != nil {
		h.logger.Warnf("[event: health] %v", err)
	}

	health := entity.NewHealthCheckResponse(common.Version, dbHealthy, kafkaHealthy, h.kafkaEnabled)
	if !health.Status {
		return c.Status(fiber.StatusServiceUnavailable).JSON(health)
	}
	return c.Status(fiber.StatusOK).JSON(health)
}

// ListEntries godoc
// @Summary     Список записей календаря
// @Description Выборка с параметрами OData: $filter, $orderby, $skip, $top (не больше 100), $select, $count
// @Produce     json
// @Param       $filter   query  string  false  "Фильтр, например contains(Title,'встреча') and NotificationSent eq false"
// @Param       $orderby  query  string  false  "Сортировка, например ReminderDateTime desc"
// @Param       $skip     query  int     false  "Пропустить N записей"
// @Param       $top      query  int     false  "Вернуть не больше N записей"
// @Param       $select   query  string  false  "Список свойств через запятую"
// @Param       $count    query  bool    false  "Добавить @odata.count"
// @Success     200
// @Failure     400
// @Failure     500
// @tags        Calendar
// @Router      /odata/Calendar [get]
func (h *HandlerImpl) ListEntries(c *fiber.Ctx) error {
	opts, err := queryOptions(c)
	if err != nil {
		h.logger.Warnf("bad query options: %v", err)
		return appers.SanitizeError(c, err)
	}

	page, err := h.usecase.ListEntries(c.UserContext(), opts)
	if err != nil {
		return appers.SanitizeError(c, err)
	}

	value := make([]map[string]any, 0, len(page.Entries))
	for _, e := range page.Entries {
		value = append(value, opts.Project(e.Record()))
	}

	resp := fiber.Map{
		"@odata.context": metadataContext(c, opts, ""),
		"value":          value,
	}
	if page.Count != nil {
		resp["@odata.count"] = *page.Count
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

// GetEntry godoc
// @Summary     Запись календаря по id
// @Produce     json
// @Param       id       path   int     true   "Id записи"
// @Param       $select  query  string  false  "Список свойств через запятую"
// @Success     200
// @Failure     400
// @Failure     404
// @tags        Calendar
// @Router      /odata/Calendar/{id} [get]
func (h *HandlerImpl) GetEntry(c *fiber.Ctx) error {
	id, err := entryID(c)
	if err != nil {
		return appers.SanitizeError(c, err)
	}

	opts, err := odata.Parse(entity.CalendarEntrySchema, odata.RawOptions{Select: c.Query("$select")})
	if err != nil {
		return appers.SanitizeError(c, err)
	}

	e, err := h.usecase.GetEntry(c.UserContext(), id)
	if err != nil {
		return appers.SanitizeError(c, err)
	}

	resp := fiber.Map{"@odata.context": metadataContext(c, opts, "/$entity")}
	for k, v := range opts.Project(e.Record()) {
		resp[k] = v
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

// CreateEntry godoc
// @Summary     Создание записи календаря
// @Description Id из тела игнорируется, Id и CreatedAt назначает сервер
// @Accept      json
// @Produce     json
// @Param       body  body     entity.CalendarEntryRequest  true  "Данные записи"
// @Success     201   {object} entity.CalendarEntry
// @Failure     400
// @Failure     500
// @tags        Calendar
// @Router      /odata/Calendar [post]
func (h *HandlerImpl) CreateEntry(c *fiber.Ctx) error {
	e, err := h.parseEntryBody(c)
	if err != nil {
		return badBody(c, err)
	}

	created, err := h.usecase.CreateEntry(c.UserContext(), e)
	if err != nil {
		return appers.SanitizeError(c, err)
	}

	c.Location(fmt.Sprintf("%s/odata/%s/%d", c.BaseURL(), entitySet, created.ID))
	return c.Status(fiber.StatusCreated).JSON(created)
}

// UpdateEntry godoc
// @Summary     Обновление записи календаря
// @Description Id в пути должен совпадать с Id в теле. Заменяет Title, Description и ReminderDateTime.
// @Accept      json
// @Produce     json
// @Param       id    path     int                          true  "Id записи"
// @Param       body  body     entity.CalendarEntryRequest  true  "Данные записи"
// @Success     200   {object} entity.CalendarEntry
// @Failure     400
// @Failure     404
// @Failure     500
// @tags        Calendar
// @Router      /odata/Calendar/{id} [put]
func (h *HandlerImpl) UpdateEntry(c *fiber.Ctx) error {
	id, err := entryID(c)
	if err != nil {
		return appers.SanitizeError(c, err)
	}

	e, err := h.parseEntryBody(c)
	if err != nil {
		return badBody(c, err)
	}

	updated, err := h.usecase.UpdateEntry(c.UserContext(), id, e)
	if err != nil {
		return appers.SanitizeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(updated)
}

// DeleteEntry godoc
// @Summary     Удаление записи календаря
// @Param       id   path  int  true  "Id записи"
// @Success     204
// @Failure     400
// @Failure     404
// @Failure     500
// @tags        Calendar
// @Router      /odata/Calendar/{id} [delete]
func (h *HandlerImpl) DeleteEntry(c *fiber.Ctx) error {
	id, err := entryID(c)
	if err != nil {
		return appers.SanitizeError(c, err)
	}

	if err := h.usecase.DeleteEntry(c.UserContext(), id); err != nil {
		return appers.SanitizeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ExportEntries godoc
// @Summary     Выгрузка записей в CSV
// @Description Все записи по возрастанию ReminderDateTime, заголовок и строка на запись
// @Produce     text/csv
// @Success     200
// @Failure     500
// @tags        Calendar
// @Router      /odata/Calendar/export [get]
func (h *HandlerImpl) ExportEntries(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if _, err := h.usecase.ExportEntries(c.UserContext(), &buf); err != nil {
		return appers.SanitizeError(c, err)
	}

	c.Attachment(service.ExportFileName(h.now()))
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	return c.Status(fiber.StatusOK).Send(buf.Bytes())
}
