package use_cases

import (
	"calendarback/internal/application/entity"
	"calendarback/internal/application/service"
	"calendarback/pkg/config"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeService struct {
	service.Service

	seeded   int
	created  *entity.CalendarEntry
	dispatch error
	relayed  []byte
	relayErr error
}

func (f *fakeService) SeedDemoEntries(context.Context) (int, error) {
	f.seeded++
	return 20, nil
}

func (f *fakeService) CreateEntry(_ context.Context, e *entity.CalendarEntry) error {
	e.ID = 12
	f.created = e
	return nil
}

func (f *fakeService) DispatchDueReminders(context.Context) (int, error) {
	if f.dispatch != nil {
		return 1, f.dispatch
	}
	return 2, nil
}

func (f *fakeService) RelayNotification(_ context.Context, payload []byte) error {
	f.relayed = payload
	return f.relayErr
}

func TestSeedDemoData_OnlyWhenEnabled(t *testing.T) {
	srv := &fakeService{}

	NewUseCase(srv, zap.NewNop().Sugar(), &config.Config{}).SeedDemoData(context.Background())
	assert.Zero(t, srv.seeded)

	conf := &config.Config{Seed: config.Seed{Enabled: true}}
	NewUseCase(srv, zap.NewNop().Sugar(), conf).SeedDemoData(context.Background())
	assert.Equal(t, 1, srv.seeded)
}

func TestCreateEntry_ReturnsAssignedID(t *testing.T) {
	srv := &fakeService{}
	uc := NewUseCase(srv, zap.NewNop().Sugar(), &config.Config{})

	got, err := uc.CreateEntry(context.Background(), entity.CalendarEntry{Title: "A", ReminderDateTime: time.Now()})
	require.NoError(t, err)
	assert.Equal(t, int64(12), got.ID)
}

func TestDispatchReminders_LogsFailure(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	srv := &fakeService{dispatch: errors.New("db gone")}
	uc := NewUseCase(srv, zap.New(core).Sugar(), &config.Config{})

	uc.DispatchReminders(context.Background())
	require.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())

	srv.dispatch = nil
	uc.DispatchReminders(context.Background())
	assert.Equal(t, 1, logs.FilterMessage("reminder cycle done, sent 2 notifications").Len())
}

func TestConsumerMessage(t *testing.T) {
	srv := &fakeService{relayErr: errors.New("decode")}
	uc := NewUseCase(srv, zap.NewNop().Sugar(), &config.Config{})

	err := uc.ConsumerMessage(context.Background(), []byte(`{"title":"A"}`), time.Now())
	assert.Error(t, err)
	assert.JSONEq(t, `{"title":"A"}`, string(srv.relayed))
}
