package cron

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// runTimeout - дедлайн одного запуска задачи
const runTimeout = 55 * time.Second

type Job interface {
	Run(ctx context.Context)
}

type Scheduler struct {
	c      *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduler(ctx context.Context, logger *zap.SugaredLogger) *Scheduler {
	ctx, cancel := context.WithCancel(ctx)
	l := cronLogger{logger.Named("cron")}

	// Поддерживаем cron формат с секундами и дескрипторы (@every, @daily, ...).
	// Запуски одной задачи не пересекаются, паника в задаче не роняет планировщик.
	c := cron.New(
		cron.WithParser(cron.NewParser(
			cron.SecondOptional|cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow|cron.Descriptor,
		)),
		cron.WithLogger(l),
		cron.WithChain(cron.SkipIfStillRunning(l), cron.Recover(l)),
	)
	return &Scheduler{c: c, ctx: ctx, cancel: cancel}
}

func (s *Scheduler) Add(spec string, job Job) (cron.EntryID, error) {
	return s.c.AddJob(spec, cron.FuncJob(func() {
		ctx, cancel := context.WithTimeout(s.ctx, runTimeout)
		defer cancel()
		job.Run(ctx)
	}))
}

// RunNow запускает задачу вне расписания через ту же цепочку обёрток:
// если задача уже выполняется, запуск пропускается.
func (s *Scheduler) RunNow(id cron.EntryID) {
	entry := s.c.Entry(id)
	if !entry.Valid() {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		entry.WrappedJob.Run()
	}()
}

func (s *Scheduler) Start() {
	s.c.Start()
}

// Stop отменяет контекст выполняющихся задач и ждёт их завершения.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.c.Stop().Done()
	s.wg.Wait()
}

// cronLogger - cron.Logger поверх zap
type cronLogger struct{ l *zap.SugaredLogger }

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
