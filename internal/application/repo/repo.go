package repo

import (
	"calendarback/internal/appers"
	"calendarback/internal/application/entity"
	"calendarback/pkg/db"
	"calendarback/pkg/metrics"
	"calendarback/pkg/odata"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

type Repo interface {
	CreateEntry(ctx context.Context, e *entity.CalendarEntry) error
	GetEntry(ctx context.Context, id int64) (*entity.CalendarEntry, error)
	EntryExists(ctx context.Context, id int64) (bool, error)
	UpdateEntry(ctx context.Context, e *entity.CalendarEntry) error
	DeleteEntry(ctx context.Context, id int64) error
	ListEntries(ctx context.Context, opts *odata.Options) (entity.EntryPage, error)
	ExportEntries(ctx context.Context) ([]entity.CalendarEntry, error)
	CountEntries(ctx context.Context) (int64, error)

	DueEntries(ctx context.Context, now time.Time) ([]entity.CalendarEntry, error)
	MarkNotificationSent(ctx context.Context, id int64) error

	HealthCheck(ctx context.Context) error
}

type RepoImpl struct {
	db     db.DB
	logger *zap.SugaredLogger
	m      *metrics.Metrics
}

func NewRepo(db db.DB, logger *zap.SugaredLogger, m *metrics.Metrics) *RepoImpl {
	return &RepoImpl{db: db, logger: logger, m: m}
}

func (r *RepoImpl) HealthCheck(ctx context.Context) error {
	// Проверяем доступность БД через простой запрос
	var result int
	err := r.db.QueryRow(ctx, "SELECT 1").Scan(&result)
	if err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

func (r *RepoImpl) CreateEntry(ctx context.Context, e *entity.CalendarEntry) (err error) {
	defer r.track("insert", "create_entry")(&err)
	r.logger.Debugf("[entry: %q] start inserting into DB", e.Title)

	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	row := r.db.QueryRow(ctx, createEntry, e.Title, e.Description, e.ReminderDateTime.UTC(), e.CreatedAt.UTC())
	if err = scanEntry(row, e); err != nil {
		r.logger.Errorf("[entry: %q] error inserting into DB: %v", e.Title, err)
		return fmt.Errorf("error inserting into DB: %w", err)
	}

	r.logger.Debugf("[entry: %d] inserted into DB successfully", e.ID)
	return nil
}

func (r *RepoImpl) GetEntry(ctx context.Context, id int64) (_ *entity.CalendarEntry, err error) {
	defer r.track("select", "get_entry")(&err)

	var e entity.CalendarEntry
	err = scanEntry(r.db.QueryRow(ctx, getEntryByID, id), &e)
	switch {
	case err == nil:
		return &e, nil
	case errors.Is(err, pgx.ErrNoRows):
		return nil, appers.ErrEntryNotFound
	default:
		r.logger.Errorf("[entry: %d] error getting from DB: %v", id, err)
		return nil, fmt.Errorf("error getting from DB: %w", err)
	}
}

func (r *RepoImpl) EntryExists(ctx context.Context, id int64) (_ bool, err error) {
	defer r.track("select", "entry_exists")(&err)

	var exists bool
	if err = r.db.QueryRow(ctx, entryExists, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking entry existence: %w", err)
	}
	return exists, nil
}

// UpdateEntry перезаписывает Title/Description/ReminderDateTime и ставит UpdatedAt.
// Если UPDATE не затронул ни одной строки - ErrUpdateConflict, разбираться вызывающему.
func (r *RepoImpl) UpdateEntry(ctx context.Context, e *entity.CalendarEntry) (err error) {
	defer r.track("update", "update_entry")(&err)
	r.logger.Debugf("[entry: %d] start updating in DB", e.ID)

	updatedAt := time.Now().UTC()
	if e.UpdatedAt != nil {
		updatedAt = e.UpdatedAt.UTC()
	}

	row := r.db.QueryRow(ctx, updateEntry, e.ID, e.Title, e.Description, e.ReminderDateTime.UTC(), updatedAt)
	err = scanEntry(row, e)
	switch {
	case err == nil:
		r.logger.Debugf("[entry: %d] updated in DB successfully", e.ID)
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		r.logger.Warnf("[entry: %d] no rows updated", e.ID)
		return appers.ErrUpdateConflict
	default:
		r.logger.Errorf("[entry: %d] error updating in DB: %v", e.ID, err)
		return fmt.Errorf("error updating in DB: %w", err)
	}
}

func (r *RepoImpl) DeleteEntry(ctx context.Context, id int64) (err error) {
	defer r.track("delete", "delete_entry")(&err)
	r.logger.Debugf("[entry: %d] start deleting from DB", id)

	result, err := r.db.Exec(ctx, deleteEntry, id)
	if err != nil {
		r.logger.Errorf("[entry: %d] error deleting from DB: %v", id, err)
		return fmt.Errorf("error deleting from DB: %w", err)
	}
	if result.RowsAffected() == 0 {
		r.logger.Warnf("[entry: %d] no rows deleted", id)
		return appers.ErrEntryNotFound
	}
	r.logger.Debugf("[entry: %d] deleted from DB successfully", id)
	return nil
}

func (r *RepoImpl) ListEntries(ctx context.Context, opts *odata.Options) (_ entity.EntryPage, err error) {
	defer r.track("select", "list_entries")(&err)

	query, args := buildListQuery(opts)
	r.logger.Debugf("list entries: %s %v", query, args)

	var page entity.EntryPage
	if page.Entries, err = r.queryEntries(ctx, query, args...); err != nil {
		return page, err
	}

	if opts != nil && opts.Count {
		countQuery, countArgs := buildCountQuery(opts)
		var total int64
		if err = r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
			r.logger.Errorf("error counting entries: %v", err)
			return page, fmt.Errorf("error counting entries: %w", err)
		}
		page.Count = &total
	}

	return page, nil
}

func (r *RepoImpl) ExportEntries(ctx context.Context) (_ []entity.CalendarEntry, err error) {
	defer r.track("select", "export_entries")(&err)
	return r.queryEntries(ctx, exportEntries)
}

func (r *RepoImpl) CountEntries(ctx context.Context) (_ int64, err error) {
	defer r.track("select", "count_entries")(&err)

	var total int64
	if err = r.db.QueryRow(ctx, countEntries).Scan(&total); err != nil {
		return 0, fmt.Errorf("error counting entries: %w", err)
	}
	return total, nil
}

// DueEntries - неотправленные напоминания со сроком не позже now.
func (r *RepoImpl) DueEntries(ctx context.Context, now time.Time) (_ []entity.CalendarEntry, err error) {
	defer r.track("select", "due_entries")(&err)
	return r.queryEntries(ctx, selectDueEntries, now.UTC())
}

func (r *RepoImpl) MarkNotificationSent(ctx context.Context, id int64) (err error) {
	defer r.track("update", "mark_notification_sent")(&err)

	result, err := r.db.Exec(ctx, markNotificationSent, id)
	if err != nil {
		return fmt.Errorf("mark notification sent: %w", err)
	}
	// запись могли удалить после выборки - повторно отправлять некому
	if result.RowsAffected() == 0 {
		r.logger.Warnf("[entry: %d] mark sent: entry is gone", id)
	}
	return nil
}

func (r *RepoImpl) queryEntries(ctx context.Context, query string, args ...any) ([]entity.CalendarEntry, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Errorf("error getting entries from DB: %v", err)
		return nil, fmt.Errorf("error getting from DB: %w", err)
	}
	defer rows.Close()

	entries := make([]entity.CalendarEntry, 0)
	for rows.Next() {
		var e entity.CalendarEntry
		if err := scanEntry(rows, &e); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("entries rows err: %w", err)
	}
	return entries, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner, e *entity.CalendarEntry) error {
	if err := row.Scan(&e.ID, &e.Title, &e.Description, &e.ReminderDateTime,
		&e.CreatedAt, &e.UpdatedAt, &e.NotificationSent); err != nil {
		return err
	}
	// timestamp without time zone хранится в UTC
	e.ReminderDateTime = e.ReminderDateTime.UTC()
	e.CreatedAt = e.CreatedAt.UTC()
	if e.UpdatedAt != nil {
		u := e.UpdatedAt.UTC()
		e.UpdatedAt = &u
	}
	return nil
}

func buildListQuery(opts *odata.Options) (string, []any) {
	where, args := opts.Where(0)

	sb := strings.Builder{}
	sb.WriteString("SELECT ")
	sb.WriteString(entryColumns)
	sb.WriteString(" FROM calendar_entries")
	if where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(where)
	}
	sb.WriteString(" ORDER BY ")
	sb.WriteString(opts.OrderSQL("id"))

	if page, pageArgs := opts.Page(len(args)); page != "" {
		sb.WriteString(" ")
		sb.WriteString(page)
		args = append(args, pageArgs...)
	}

	return sb.String(), args
}

func buildCountQuery(opts *odata.Options) (string, []any) {
	where, args := opts.Where(0)
	if where == "" {
		return countEntries, nil
	}
	return countEntries + " WHERE " + where, args
}

// track пишет метрики запроса; вызывать как defer r.track(op, name)(&err)
func (r *RepoImpl) track(op, name string) func(*error) {
	if r.m == nil {
		return func(*error) {}
	}
	start := time.Now()
	r.m.Repo.InFlight.WithLabelValues(op, name).Inc()

	return func(errp *error) {
		r.m.Repo.InFlight.WithLabelValues(op, name).Dec()

		result, kind := "ok", ""
		if errp != nil && *errp != nil {
			result, kind = "error", errorKind(*errp)
		}
		r.m.Repo.RequestsTotal.WithLabelValues(op, name, result, kind).Inc()
		r.m.Repo.DurationSeconds.WithLabelValues(op, name, result).Observe(time.Since(start).Seconds())
	}
}

func errorKind(err error) string {
	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, appers.ErrEntryNotFound), errors.Is(err, pgx.ErrNoRows):
		return "not_found"
	case errors.Is(err, appers.ErrUpdateConflict):
		return "conflict"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.As(err, &pgErr):
		return "pg_" + pgErr.Code
	default:
		return "other"
	}
}
