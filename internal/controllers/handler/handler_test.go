package handler

import (
	"calendarback/internal/appers"
	"calendarback/internal/application/entity"
	use_cases "calendarback/internal/application/use-cases"
	"calendarback/internal/transport/hub"
	"calendarback/pkg/config"
	"calendarback/pkg/metrics"
	"calendarback/pkg/odata"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	remindAt  = time.Date(2025, 2, 23, 10, 0, 0, 0, time.UTC)
	createdAt = time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)
)

// fakeUseCase - хранилище в памяти с той же семантикой ошибок, что и сервис
type fakeUseCase struct {
	use_cases.UseCaser

	entries  map[int64]entity.CalendarEntry
	nextID   int64
	listOpts *odata.Options
	dbDown   bool
}

func newFakeUseCase(entries ...entity.CalendarEntry) *fakeUseCase {
	f := &fakeUseCase{entries: make(map[int64]entity.CalendarEntry)}
	for _, e := range entries {
		f.entries[e.ID] = e
		if e.ID > f.nextID {
			f.nextID = e.ID
		}
	}
	return f
}

func (f *fakeUseCase) ListEntries(_ context.Context, opts *odata.Options) (entity.EntryPage, error) {
	f.listOpts = opts
	page := entity.EntryPage{Entries: []entity.CalendarEntry{}}
	for id := int64(1); id <= f.nextID; id++ {
		if e, ok := f.entries[id]; ok {
			page.Entries = append(page.Entries, e)
		}
	}
	if opts.Count {
		n := int64(len(page.Entries))
		page.Count = &n
	}
	return page, nil
}

func (f *fakeUseCase) GetEntry(_ context.Context, id int64) (*entity.CalendarEntry, error) {
	e, ok := f.entries[id]
	if !ok {
		return nil, appers.ErrEntryNotFound
	}
	return &e, nil
}

func (f *fakeUseCase) CreateEntry(_ context.Context, e entity.CalendarEntry) (*entity.CalendarEntry, error) {
	f.nextID++
	e.ID = f.nextID
	e.CreatedAt = createdAt
	f.entries[e.ID] = e
	return &e, nil
}

func (f *fakeUseCase) UpdateEntry(_ context.Context, id int64, e entity.CalendarEntry) (*entity.CalendarEntry, error) {
	if e.ID != id {
		return nil, appers.ErrIDMismatch
	}
	existing, ok := f.entries[id]
	if !ok {
		return nil, appers.ErrEntryNotFound
	}
	existing.Title = e.Title
	existing.Description = e.Description
	existing.ReminderDateTime = e.ReminderDateTime
	f.entries[id] = existing
	return &existing, nil
}

func (f *fakeUseCase) DeleteEntry(_ context.Context, id int64) error {
	if _, ok := f.entries[id]; !ok {
		return appers.ErrEntryNotFound
	}
	delete(f.entries, id)
	return nil
}

func (f *fakeUseCase) ExportEntries(_ context.Context, w io.Writer) (int, error) {
	_, err := io.WriteString(w, "Id,Title\n1,A\n")
	return 1, err
}

func (f *fakeUseCase) HealthCheck(context.Context) (bool, bool, error) {
	if f.dbDown {
		return false, true, errors.New("db down")
	}
	return true, true, nil
}

func newTestApp(uc *fakeUseCase) *fiber.App {
	app := fiber.New()
	logger := zap.NewNop().Sugar()
	reg := prometheus.NewRegistry()
	h := NewCalendarHandler(uc, logger, false)
	h.now = func() time.Time { return time.Date(2025, 3, 4, 23, 30, 0, 0, time.UTC) }

	NewRouter(h, hub.NewHub(logger, metrics.New(reg)), app, reg, &config.Config{}, logger).RegisterRouter()
	return app
}

func do(t *testing.T, app *fiber.App, method, target, body string) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]any
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func seeded() *fakeUseCase {
	desc := "room 3"
	return newFakeUseCase(
		entity.CalendarEntry{ID: 1, Title: "Standup", Description: &desc, ReminderDateTime: remindAt, CreatedAt: createdAt},
		entity.CalendarEntry{ID: 2, Title: "Dentist", ReminderDateTime: remindAt.Add(time.Hour), CreatedAt: createdAt},
	)
}

func TestListEntries(t *testing.T) {
	app := newTestApp(seeded())

	resp, body := do(t, app, http.MethodGet, "/odata/Calendar", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "http://example.com/odata/$metadata#Calendar", body["@odata.context"])
	assert.NotContains(t, body, "@odata.count")
	value := body["value"].([]any)
	require.Len(t, value, 2)
	first := value[0].(map[string]any)
	assert.Equal(t, "Standup", first["Title"])
	assert.Len(t, first, 7)
}

func TestListEntries_SelectAndCount(t *testing.T) {
	uc := seeded()
	app := newTestApp(uc)

	resp, body := do(t, app, http.MethodGet, "/odata/Calendar?$select=Title,Id&$count=true&$orderby=ReminderDateTime%20desc", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, 2.0, body["@odata.count"])
	assert.Equal(t, "http://example.com/odata/$metadata#Calendar(Title,Id)", body["@odata.context"])
	for _, v := range body["value"].([]any) {
		assert.Len(t, v.(map[string]any), 2)
	}
	require.Len(t, uc.listOpts.OrderBy, 1)
	assert.True(t, uc.listOpts.OrderBy[0].Desc)
}

func TestListEntries_BadOptions(t *testing.T) {
	app := newTestApp(seeded())

	tests := []struct {
		name  string
		query string
	}{
		{"top over limit", "$top=101"},
		{"negative skip", "$skip=-1"},
		{"unknown field", "$filter=Color%20eq%20'red'"},
		{"unterminated string", "$filter=Title%20eq%20'x"},
		{"bad orderby", "$orderby=Title%20sideways"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, app, http.MethodGet, "/odata/Calendar?"+tt.query, "")
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.NotEmpty(t, body["message"])
		})
	}

	_, body := do(t, app, http.MethodGet, "/odata/Calendar?$top=101", "")
	assert.Equal(t, appers.ErrTopLimitExceeded.StatusDesc, body["message"])
}

func TestGetEntry(t *testing.T) {
	app := newTestApp(seeded())

	resp, body := do(t, app, http.MethodGet, "/odata/Calendar/1?$select=Description", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "room 3", body["Description"])
	assert.NotContains(t, body, "Title")
	assert.Equal(t, "http://example.com/odata/$metadata#Calendar(Description)/$entity", body["@odata.context"])

	resp, _ = do(t, app, http.MethodGet, "/odata/Calendar/42", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, app, http.MethodGet, "/odata/Calendar/abc", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateEntry(t *testing.T) {
	uc := seeded()
	app := newTestApp(uc)

	resp, body := do(t, app, http.MethodPost, "/odata/Calendar",
		`{"Id": 99, "Title": "Planning", "ReminderDateTime": "2025-02-24T09:00:00"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	assert.Equal(t, 3.0, body["Id"])
	assert.Equal(t, "Planning", body["Title"])
	assert.Nil(t, body["Description"])
	assert.Equal(t, "2025-02-24T09:00:00Z", body["ReminderDateTime"])
	assert.True(t, strings.HasSuffix(resp.Header.Get(fiber.HeaderLocation), "/odata/Calendar/3"))
	assert.NotContains(t, uc.entries, int64(99))
}

func TestCreateEntry_Invalid(t *testing.T) {
	uc := seeded()
	app := newTestApp(uc)

	tests := []struct {
		name string
		body string
	}{
		{"missing title", `{"ReminderDateTime": "2025-02-24T09:00:00Z"}`},
		{"blank title", `{"Title": "   ", "ReminderDateTime": "2025-02-24T09:00:00Z"}`},
		{"long title", `{"Title": "` + strings.Repeat("x", 201) + `", "ReminderDateTime": "2025-02-24T09:00:00Z"}`},
		{"long description", `{"Title": "x", "Description": "` + strings.Repeat("d", 1001) + `", "ReminderDateTime": "2025-02-24T09:00:00Z"}`},
		{"missing date", `{"Title": "x"}`},
		{"bad date", `{"Title": "x", "ReminderDateTime": "tomorrow"}`},
		{"malformed json", `{"Title": `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, app, http.MethodPost, "/odata/Calendar", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.NotEmpty(t, body["message"])
		})
	}
	assert.Len(t, uc.entries, 2)
}

func TestUpdateEntry(t *testing.T) {
	uc := seeded()
	app := newTestApp(uc)

	resp, body := do(t, app, http.MethodPut, "/odata/Calendar/2",
		`{"Id": 2, "Title": "Dentist (moved)", "Description": "bring card", "ReminderDateTime": "2025-02-25T10:00:00Z"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Dentist (moved)", body["Title"])
	assert.Equal(t, "bring card", body["Description"])
	assert.Equal(t, createdAt, uc.entries[2].CreatedAt)
}

func TestUpdateEntry_IDMismatch(t *testing.T) {
	uc := seeded()
	app := newTestApp(uc)

	uc.entries[5] = entity.CalendarEntry{ID: 5, Title: "five", ReminderDateTime: remindAt}
	uc.nextID = 5

	resp, body := do(t, app, http.MethodPut, "/odata/Calendar/5",
		`{"Id": 7, "Title": "changed", "ReminderDateTime": "2025-02-25T10:00:00Z"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, appers.ErrIDMismatch.StatusDesc, body["message"])
	assert.Equal(t, "five", uc.entries[5].Title)
}

func TestUpdateEntry_NotFound(t *testing.T) {
	app := newTestApp(seeded())

	resp, _ := do(t, app, http.MethodPut, "/odata/Calendar/42",
		`{"Id": 42, "Title": "ghost", "ReminderDateTime": "2025-02-25T10:00:00Z"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteEntry_Twice(t *testing.T) {
	uc := seeded()
	app := newTestApp(uc)

	resp, _ := do(t, app, http.MethodDelete, "/odata/Calendar/1", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.NotContains(t, uc.entries, int64(1))

	resp, _ = do(t, app, http.MethodDelete, "/odata/Calendar/1", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, app, http.MethodDelete, "/odata/Calendar/x1", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExportEntries(t *testing.T) {
	app := newTestApp(seeded())

	req := httptest.NewRequest(http.MethodGet, "/odata/Calendar/export", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.True(t, strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), "text/csv"))
	assert.Equal(t, `attachment; filename="calendar-export-2025-03-04.csv"`, resp.Header.Get(fiber.HeaderContentDisposition))

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Id,Title\n1,A\n", string(raw))
}

func TestHealthCheck(t *testing.T) {
	uc := seeded()
	app := newTestApp(uc)

	resp, body := do(t, app, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["status"])
	checks := body["checks"].(map[string]any)
	assert.Equal(t, "disabled", checks["kafka"].(map[string]any)["type"])

	uc.dbDown = true
	resp, body = do(t, app, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "Some services are unavailable", body["message"])
}

func TestNotificationHub_RequiresUpgrade(t *testing.T) {
	app := newTestApp(seeded())

	resp, _ := do(t, app, http.MethodGet, "/notificationHub", "")
	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(seeded())

	resp, _ := do(t, app, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
