package cron

import (
	use_cases "calendarback/internal/application/use-cases"
	"calendarback/pkg/config"
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const defaultReminderSpec = "@every 1m"

type Controller struct {
	scheduler *Scheduler
	logger    *zap.SugaredLogger
	onStart   []cron.EntryID
}

func NewController(ctx context.Context, logger *zap.SugaredLogger) *Controller {
	return &Controller{
		scheduler: NewScheduler(ctx, logger),
		logger:    logger,
	}
}

// reminderSpec: Schedule (cron-выражение) важнее Interval ("@every 1m").
func reminderSpec(conf config.Reminder) string {
	switch {
	case conf.Schedule != "":
		return conf.Schedule
	case conf.Interval != "":
		return conf.Interval
	default:
		return defaultReminderSpec
	}
}

func (c *Controller) RegisterReminderJob(usecase use_cases.UseCaser, conf config.Reminder) error {
	return c.register("рассылки напоминаний", reminderSpec(conf), conf.RunOnStart, NewReminderJob(usecase, c.logger))
}

func (c *Controller) register(name, spec string, runOnStart bool, job Job) error {
	entryID, err := c.scheduler.Add(spec, job)
	if err != nil {
		return fmt.Errorf("не удалось зарегистрировать задачу %s (%q): %w", name, spec, err)
	}
	if runOnStart {
		c.onStart = append(c.onStart, entryID)
	}

	c.logger.Infof("Задача %s зарегистрирована с ID: %d, расписание: %s", name, entryID, spec)
	return nil
}

// Start запускает планировщик и задачи, которые должны отработать сразу
func (c *Controller) Start() {
	c.logger.Info("Запуск планировщика cron задач")
	c.scheduler.Start()
	for _, id := range c.onStart {
		c.scheduler.RunNow(id)
	}
}

// Stop останавливает планировщик и ждёт текущий запуск
func (c *Controller) Stop() {
	c.logger.Info("Остановка планировщика cron задач")
	c.scheduler.Stop()
	c.logger.Info("Планировщик cron задач остановлен")
}
