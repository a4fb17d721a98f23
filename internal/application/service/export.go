package service

import (
	"calendarback/internal/application/common"
	"calendarback/internal/application/entity"
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"
)

const exportTimeLayout = "2006-01-02T15:04:05Z"

// exportRow - строка CSV-выгрузки, порядок полей задаёт порядок колонок
type exportRow struct {
	ID               int64  `csv:"Id"`
	Title            string `csv:"Title"`
	Description      string `csv:"Description"`
	ReminderDateTime string `csv:"ReminderDateTime"`
	CreatedAt        string `csv:"CreatedAt"`
	UpdatedAt        string `csv:"UpdatedAt"`
	NotificationSent string `csv:"NotificationSent"`
}

func newExportRow(e entity.CalendarEntry) exportRow {
	row := exportRow{
		ID:               e.ID,
		Title:            e.Title,
		Description:      common.DerefString(e.Description),
		ReminderDateTime: e.ReminderDateTime.UTC().Format(exportTimeLayout),
		CreatedAt:        e.CreatedAt.UTC().Format(exportTimeLayout),
		NotificationSent: strconv.FormatBool(e.NotificationSent),
	}
	if e.UpdatedAt != nil {
		row.UpdatedAt = e.UpdatedAt.UTC().Format(exportTimeLayout)
	}
	return row
}

// ExportEntries пишет все записи в CSV (заголовок + строка на запись) по возрастанию ReminderDateTime.
func (s *ServiceImpl) ExportEntries(ctx context.Context, w io.Writer) (int, error) {
	s.logger.Debugf("ExportEntries started")

	entries, err := s.repo.ExportEntries(ctx)
	if err != nil {
		return 0, err
	}

	rows := make([]exportRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, newExportRow(e))
	}

	if err := gocsv.Marshal(&rows, w); err != nil {
		return 0, fmt.Errorf("export csv: %w", err)
	}

	s.logger.Infof("exported %d entries", len(rows))
	return len(rows), nil
}

// ExportFileName - имя файла выгрузки по дате в UTC
func ExportFileName(now time.Time) string {
	return fmt.Sprintf("calendar-export-%s.csv", now.UTC().Format("2006-01-02"))
}
