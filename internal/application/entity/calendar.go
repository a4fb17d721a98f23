package entity

import (
	"calendarback/pkg/odata"
	"time"
)

// CalendarEntry - запись календаря (таблица calendar_entries)
type CalendarEntry struct {
	ID               int64      `json:"Id"`
	Title            string     `json:"Title"`
	Description      *string    `json:"Description"`
	ReminderDateTime time.Time  `json:"ReminderDateTime"`
	CreatedAt        time.Time  `json:"CreatedAt"`
	UpdatedAt        *time.Time `json:"UpdatedAt"`
	NotificationSent bool       `json:"NotificationSent"`
}

// CalendarEntryRequest - тело POST/PUT. Id при создании игнорируется.
type CalendarEntryRequest struct {
	ID               int64   `json:"Id" example:"0"`
	Title            string  `json:"Title" validate:"required,notblank,max=200" example:"Планёрка"`
	Description      *string `json:"Description" validate:"omitempty,max=1000" example:"Переговорная 3"`
	ReminderDateTime string  `json:"ReminderDateTime" validate:"required,datetime_utc" example:"2025-02-23T10:00:00Z"`
}

// ToEntry переводит запрос в сущность, дата приводится к UTC.
func (r CalendarEntryRequest) ToEntry() (CalendarEntry, error) {
	when, err := odata.ParseDateTime(r.ReminderDateTime)
	if err != nil {
		return CalendarEntry{}, err
	}
	return CalendarEntry{
		ID:               r.ID,
		Title:            r.Title,
		Description:      r.Description,
		ReminderDateTime: when,
	}, nil
}

// Record - представление записи для $select: ключи совпадают с именами свойств OData.
func (e CalendarEntry) Record() map[string]any {
	return map[string]any{
		"Id":               e.ID,
		"Title":            e.Title,
		"Description":      e.Description,
		"ReminderDateTime": e.ReminderDateTime,
		"CreatedAt":        e.CreatedAt,
		"UpdatedAt":        e.UpdatedAt,
		"NotificationSent": e.NotificationSent,
	}
}

// EntryPage - результат выборки по OData-запросу
type EntryPage struct {
	Entries []CalendarEntry
	Count   *int64 // только при $count=true
}

// CalendarEntrySchema - белый список свойств, доступных в $filter/$orderby/$select
var CalendarEntrySchema = odata.NewSchema(
	odata.Field{Name: "Id", Column: "id", Kind: odata.KindInt},
	odata.Field{Name: "Title", Column: "title", Kind: odata.KindString},
	odata.Field{Name: "Description", Column: "description", Kind: odata.KindString, Nullable: true},
	odata.Field{Name: "ReminderDateTime", Column: "reminder_date_time", Kind: odata.KindDateTime},
	odata.Field{Name: "CreatedAt", Column: "created_at", Kind: odata.KindDateTime},
	odata.Field{Name: "UpdatedAt", Column: "updated_at", Kind: odata.KindDateTime, Nullable: true},
	odata.Field{Name: "NotificationSent", Column: "notification_sent", Kind: odata.KindBool},
)
