package service

import (
	"calendarback/internal/application/common"
	"calendarback/internal/application/entity"
	"context"
	"fmt"
	"time"
)

// demoEntries: 10 встреч каждые 3 дня с 1 февраля 2025 и 10 событий каждые 2 дня с 1 марта 2025.
func demoEntries(now time.Time) []entity.CalendarEntry {
	entries := make([]entity.CalendarEntry, 0, 20)

	baseDate := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		entries = append(entries, entity.CalendarEntry{
			Title:            fmt.Sprintf("Встреча %d", i+1),
			Description:      common.PtrString(fmt.Sprintf("Описание встречи %d", i+1)),
			ReminderDateTime: baseDate.AddDate(0, 0, i*3),
			CreatedAt:        now,
		})
	}

	baseDate = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		entries = append(entries, entity.CalendarEntry{
			Title:            fmt.Sprintf("Событие %d", i+1),
			Description:      common.PtrString(fmt.Sprintf("Описание события %d", i+1)),
			ReminderDateTime: baseDate.AddDate(0, 0, i*2),
			CreatedAt:        now,
		})
	}

	return entries
}

// SeedDemoEntries заполняет пустую таблицу демо-данными.
func (s *ServiceImpl) SeedDemoEntries(ctx context.Context) (int, error) {
	n, err := s.transactions.SeedIfEmpty(ctx, demoEntries(s.now()))
	if err != nil {
		return 0, fmt.Errorf("seed demo entries: %w", err)
	}
	if n > 0 {
		s.logger.Infof("seeded %d demo entries", n)
	}
	return n, nil
}
