package service

import (
	"calendarback/internal/application/entity"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// DispatchDueReminders - один цикл диспетчера: выбрать наступившие неотправленные
// напоминания, отправить каждое и сразу пометить отправленным.
// Первая же ошибка прерывает цикл; неотмеченные записи уйдут в следующем цикле.
func (s *ServiceImpl) DispatchDueReminders(ctx context.Context) (sent int, err error) {
	start := time.Now()
	defer func() { s.observeCycle(start, err) }()

	if err = ctx.Err(); err != nil {
		return 0, err
	}

	now := s.now()
	due, err := s.repo.DueEntries(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("select due reminders: %w", err)
	}
	if len(due) == 0 {
		s.logger.Debugf("no due reminders at %s", now.Format(time.RFC3339))
		return 0, nil
	}
	s.logger.Infof("found %d due reminders", len(due))

	for _, e := range due {
		if err = ctx.Err(); err != nil {
			return sent, err
		}

		n := entity.NewReminderNotification(e)
		if err = s.notifier.Notify(ctx, n); err != nil {
			s.logger.Errorf("[entry: %d] notify failed: %v", e.ID, err)
			return sent, fmt.Errorf("notify entry %d: %w", e.ID, err)
		}

		// уведомление уже ушло; если пометка не запишется - будет повторная отправка
		if err = s.repo.MarkNotificationSent(ctx, e.ID); err != nil {
			s.logger.Errorf("[entry: %d] mark sent failed: %v", e.ID, err)
			return sent, fmt.Errorf("mark entry %d sent: %w", e.ID, err)
		}

		sent++
		if s.m != nil {
			s.m.Reminder.NotificationsTotal.Inc()
		}
		s.logger.Infof("[entry: %d] reminder %q sent", e.ID, e.Title)
	}

	return sent, nil
}

func (s *ServiceImpl) observeCycle(start time.Time, err error) {
	if s.m == nil {
		return
	}
	result := "ok"
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		result = "canceled"
	case err != nil:
		result = "error"
	}
	s.m.Reminder.CyclesTotal.WithLabelValues(result).Inc()
	s.m.Reminder.CycleDurationSeconds.Observe(time.Since(start).Seconds())
}

// RelayNotification - сообщение из Kafka уходит клиентам локального хаба.
func (s *ServiceImpl) RelayNotification(ctx context.Context, payload []byte) error {
	var n entity.Notification
	if err := json.Unmarshal(payload, &n); err != nil {
		return fmt.Errorf("decode notification: %w", err)
	}
	s.logger.Debugf("[entry: %d] relay notification %q to hub", n.EntryID, n.Title)

	return s.hub.Notify(ctx, n)
}
