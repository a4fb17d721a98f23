package use_cases

import (
	"calendarback/internal/application/entity"
	"calendarback/internal/application/service"
	"calendarback/pkg/config"
	"calendarback/pkg/odata"
	"context"
	"io"
	"time"

	"go.uber.org/zap"
)

type UseCaser interface {
	ListEntries(ctx context.Context, opts *odata.Options) (entity.EntryPage, error)
	GetEntry(ctx context.Context, id int64) (*entity.CalendarEntry, error)
	CreateEntry(ctx context.Context, entry entity.CalendarEntry) (*entity.CalendarEntry, error)
	UpdateEntry(ctx context.Context, id int64, entry entity.CalendarEntry) (*entity.CalendarEntry, error)
	DeleteEntry(ctx context.Context, id int64) error
	ExportEntries(ctx context.Context, w io.Writer) (int, error)

	DispatchReminders(ctx context.Context)
	SeedDemoData(ctx context.Context)
	ConsumerMessage(ctx context.Context, msg []byte, msgTime time.Time) error

	HealthCheck(ctx context.Context) (dbHealthy bool, kafkaHealthy bool, err error)
}

type UseCase struct {
	service service.Service
	logger  *zap.SugaredLogger
	conf    *config.Config
}

func NewUseCase(service service.Service, logger *zap.SugaredLogger, conf *config.Config) *UseCase {
	return &UseCase{
		service: service,
		logger:  logger,
		conf:    conf,
	}
}

func (u *UseCase) HealthCheck(ctx context.Context) (dbHealthy bool, kafkaHealthy bool, err error) {
	return u.service.HealthCheck(ctx)
}

func (u *UseCase) ListEntries(ctx context.Context, opts *odata.Options) (entity.EntryPage, error) {
	u.logger.Debugf("ListEntries started")
	return u.service.ListEntries(ctx, opts)
}

func (u *UseCase) GetEntry(ctx context.Context, id int64) (*entity.CalendarEntry, error) {
	u.logger.Debugf("[entry: %d] GetEntry started", id)
	return u.service.GetEntry(ctx, id)
}

func (u *UseCase) CreateEntry(ctx context.Context, entry entity.CalendarEntry) (*entity.CalendarEntry, error) {
	u.logger.Debugf("[entry: %q] CreateEntry started", entry.Title)
	if err := u.service.CreateEntry(ctx, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (u *UseCase) UpdateEntry(ctx context.Context, id int64, entry entity.CalendarEntry) (*entity.CalendarEntry, error) {
	u.logger.Debugf("[entry: %d] UpdateEntry started", id)
	return u.service.UpdateEntry(ctx, id, &entry)
}

func (u *UseCase) DeleteEntry(ctx context.Context, id int64) error {
	u.logger.Debugf("[entry: %d] DeleteEntry started", id)
	return u.service.DeleteEntry(ctx, id)
}

func (u *UseCase) ExportEntries(ctx context.Context, w io.Writer) (int, error) {
	u.logger.Debugf("ExportEntries started")
	return u.service.ExportEntries(ctx, w)
}

// DispatchReminders - один цикл диспетчера; ошибка логируется, следующий тик повторит попытку.
func (u *UseCase) DispatchReminders(ctx context.Context) {
	sent, err := u.service.DispatchDueReminders(ctx)
	if err != nil {
		u.logger.Errorf("reminder cycle failed after %d notifications: %v", sent, err)
		return
	}
	if sent > 0 {
		u.logger.Infof("reminder cycle done, sent %d notifications", sent)
	}
}

// SeedDemoData заполняет пустую БД демо-записями, если это включено в конфиге.
func (u *UseCase) SeedDemoData(ctx context.Context) {
	if !u.conf.Seed.Enabled {
		return
	}
	if _, err := u.service.SeedDemoEntries(ctx); err != nil {
		u.logger.Errorf("seeding failed: %v", err)
	}
}

func (u *UseCase) ConsumerMessage(ctx context.Context, msg []byte, msgTime time.Time) error {
	u.logger.Debugf("consumer message: %s, time: %v", msg, msgTime)
	return u.service.RelayNotification(ctx, msg)
}
