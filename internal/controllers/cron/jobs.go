package cron

import (
	use_cases "calendarback/internal/application/use-cases"
	"context"

	"go.uber.org/zap"
)

// ReminderJob - один цикл рассылки напоминаний
type ReminderJob struct {
	usecase use_cases.UseCaser
	logger  *zap.SugaredLogger
}

func NewReminderJob(usecase use_cases.UseCaser, logger *zap.SugaredLogger) *ReminderJob {
	return &ReminderJob{
		usecase: usecase,
		logger:  logger,
	}
}

func (j *ReminderJob) Run(ctx context.Context) {
	j.logger.Debug("Запуск цикла рассылки напоминаний")
	j.usecase.DispatchReminders(ctx)
}
