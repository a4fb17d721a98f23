package entity

import (
	"calendarback/internal/application/common"
	"time"
)

const (
	TargetReceiveNotification = "ReceiveNotification"
	TargetSendNotification    = "SendNotification"
)

// Notification - то, что уходит клиентам хаба (и в Kafka при включённом брокере)
type Notification struct {
	EntryID          int64     `json:"entryId,omitempty"`
	Title            string    `json:"title"`
	Message          string    `json:"message"`
	ReminderDateTime time.Time `json:"reminderDateTime"`
}

// NewReminderNotification: message = описание записи или пустая строка.
func NewReminderNotification(e CalendarEntry) Notification {
	return Notification{
		EntryID:          e.ID,
		Title:            e.Title,
		Message:          common.DerefString(e.Description),
		ReminderDateTime: e.ReminderDateTime,
	}
}
