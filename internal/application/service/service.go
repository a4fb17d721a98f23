package service

import (
	"calendarback/internal/appers"
	"calendarback/internal/application/entity"
	"calendarback/internal/application/repo"
	"calendarback/pkg/metrics"
	"calendarback/pkg/odata"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
)

type Service interface {
	ListEntries(ctx context.Context, opts *odata.Options) (entity.EntryPage, error)
	GetEntry(ctx context.Context, id int64) (*entity.CalendarEntry, error)
	CreateEntry(ctx context.Context, e *entity.CalendarEntry) error
	UpdateEntry(ctx context.Context, id int64, in *entity.CalendarEntry) (*entity.CalendarEntry, error)
	DeleteEntry(ctx context.Context, id int64) error
	ExportEntries(ctx context.Context, w io.Writer) (int, error)

	DispatchDueReminders(ctx context.Context) (int, error)
	RelayNotification(ctx context.Context, payload []byte) error
	SeedDemoEntries(ctx context.Context) (int, error)

	HealthCheck(ctx context.Context) (dbHealthy bool, kafkaHealthy bool, err error)
}

// Notifier доставляет уведомление подписчикам: локальный хаб или Kafka.
type Notifier interface {
	Notify(ctx context.Context, n entity.Notification) error
}

// HealthChecker - внешняя зависимость с проверкой доступности (Kafka).
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type ServiceImpl struct {
	repo         repo.Repo
	transactions repo.Transactions
	notifier     Notifier
	hub          Notifier
	kafka        HealthChecker
	logger       *zap.SugaredLogger
	m            *metrics.Metrics
	now          func() time.Time
}

// NewService: notifier - куда диспетчер отправляет напоминания, hub - локальные клиенты
// (в него ретранслируются сообщения из Kafka). kafka == nil значит брокер выключен.
func NewService(repo repo.Repo, transactions repo.Transactions, notifier, hub Notifier, kafka HealthChecker,
	logger *zap.SugaredLogger, m *metrics.Metrics) *ServiceImpl {
	return &ServiceImpl{
		repo:         repo,
		transactions: transactions,
		notifier:     notifier,
		hub:          hub,
		kafka:        kafka,
		logger:       logger,
		m:            m,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// HealthCheck проверяет доступность БД и Kafka. Выключенная Kafka считается здоровой.
func (s *ServiceImpl) HealthCheck(ctx context.Context) (dbHealthy bool, kafkaHealthy bool, err error) {
	// Проверка БД через repo
	dbErr := s.repo.HealthCheck(ctx)
	dbHealthy = dbErr == nil

	var kafkaErr error
	if s.kafka != nil {
		kafkaErr = s.kafka.HealthCheck(ctx)
	}
	kafkaHealthy = kafkaErr == nil

	if !dbHealthy || !kafkaHealthy {
		return dbHealthy, kafkaHealthy, errors.Join(dbErr, kafkaErr)
	}

	return dbHealthy, kafkaHealthy, nil
}

func (s *ServiceImpl) ListEntries(ctx context.Context, opts *odata.Options) (entity.EntryPage, error) {
	s.logger.Debugf("ListEntries started")

	return s.repo.ListEntries(ctx, opts)
}

func (s *ServiceImpl) GetEntry(ctx context.Context, id int64) (*entity.CalendarEntry, error) {
	s.logger.Debugf("[entry: %d] GetEntry started", id)

	return s.repo.GetEntry(ctx, id)
}

// CreateEntry: Id из запроса игнорируется, CreatedAt ставит сервер.
func (s *ServiceImpl) CreateEntry(ctx context.Context, e *entity.CalendarEntry) error {
	s.logger.Debugf("[entry: %q] CreateEntry started", e.Title)

	e.ID = 0
	e.CreatedAt = s.now()
	e.UpdatedAt = nil
	e.NotificationSent = false
	e.ReminderDateTime = e.ReminderDateTime.UTC()

	return s.repo.CreateEntry(ctx, e)
}

// UpdateEntry заменяет Title/Description/ReminderDateTime существующей записи.
func (s *ServiceImpl) UpdateEntry(ctx context.Context, id int64, in *entity.CalendarEntry) (*entity.CalendarEntry, error) {
	s.logger.Debugf("[entry: %d] UpdateEntry started", id)

	if in.ID != id {
		return nil, appers.ErrIDMismatch
	}

	existing, err := s.repo.GetEntry(ctx, id)
	if err != nil {
		return nil, err
	}

	updatedAt := s.now()
	existing.Title = in.Title
	existing.Description = in.Description
	existing.ReminderDateTime = in.ReminderDateTime.UTC()
	existing.UpdatedAt = &updatedAt

	err = s.repo.UpdateEntry(ctx, existing)
	if errors.Is(err, appers.ErrUpdateConflict) {
		// строка пропала между чтением и записью: если её больше нет - это 404
		exists, existsErr := s.repo.EntryExists(ctx, id)
		if existsErr != nil {
			return nil, fmt.Errorf("update conflict re-check: %w", existsErr)
		}
		if !exists {
			return nil, appers.ErrEntryNotFound
		}
		s.logger.Errorf("[entry: %d] update conflict", id)
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	return existing, nil
}

func (s *ServiceImpl) DeleteEntry(ctx context.Context, id int64) error {
	s.logger.Debugf("[entry: %d] DeleteEntry started", id)

	if _, err := s.repo.GetEntry(ctx, id); err != nil {
		return err
	}

	return s.repo.DeleteEntry(ctx, id)
}
