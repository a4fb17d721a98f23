package repo

const entryColumns = `id, title, description, reminder_date_time, created_at, updated_at, notification_sent`

const createEntry = `INSERT INTO calendar_entries (title, description, reminder_date_time, created_at)
VALUES ($1, $2, $3, $4)
RETURNING ` + entryColumns

const getEntryByID = `SELECT ` + entryColumns + ` FROM calendar_entries WHERE id = $1`

const entryExists = `SELECT EXISTS (SELECT 1 FROM calendar_entries WHERE id = $1)`

// created_at не трогаем никогда
const updateEntry = `UPDATE calendar_entries
SET title = $2, description = $3, reminder_date_time = $4, updated_at = $5
WHERE id = $1
RETURNING ` + entryColumns

const deleteEntry = `DELETE FROM calendar_entries WHERE id = $1`

const exportEntries = `SELECT ` + entryColumns + ` FROM calendar_entries
ORDER BY reminder_date_time ASC, id ASC`

const countEntries = `SELECT count(*) FROM calendar_entries`

// REMINDERS
const selectDueEntries = `SELECT ` + entryColumns + ` FROM calendar_entries
WHERE notification_sent = false AND reminder_date_time <= $1
ORDER BY reminder_date_time ASC, id ASC`

const markNotificationSent = `UPDATE calendar_entries SET notification_sent = true WHERE id = $1`
