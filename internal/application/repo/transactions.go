package repo

import (
	"calendarback/internal/application/entity"
	"context"
	"fmt"

	"go.uber.org/zap"
)

// lockEntries не даёт двум экземплярам одновременно засеять пустую таблицу
const lockEntries = `LOCK TABLE calendar_entries IN SHARE ROW EXCLUSIVE MODE`

type Transactions interface {
	SeedIfEmpty(ctx context.Context, entries []entity.CalendarEntry) (int, error)
}

type TransactionsImpl struct {
	repo   *RepoImpl
	logger *zap.SugaredLogger
}

func NewTransactions(repo *RepoImpl, logger *zap.SugaredLogger) *TransactionsImpl {
	return &TransactionsImpl{repo: repo, logger: logger}
}

// SeedIfEmpty вставляет записи одной транзакцией, только если таблица пуста.
// Возвращает количество вставленных записей.
func (t *TransactionsImpl) SeedIfEmpty(ctx context.Context, entries []entity.CalendarEntry) (int, error) {
	inserted := 0

	err := t.repo.db.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := t.repo.db.Exec(ctx, lockEntries); err != nil {
			return fmt.Errorf("lock calendar_entries: %w", err)
		}

		total, err := t.repo.CountEntries(ctx)
		if err != nil {
			return err
		}
		if total > 0 {
			t.logger.Infof("seed skipped: table already has %d entries", total)
			return nil
		}

		for i := range entries {
			e := entries[i]
			if err := t.repo.CreateEntry(ctx, &e); err != nil {
				t.logger.Errorf("[seed %d] insert entry failed: %v", i, err)
				return err
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return inserted, nil
}
