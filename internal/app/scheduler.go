package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ReminderRunner один проход рассылки напоминаний
type ReminderRunner interface {
	RunOnce(ctx context.Context) (int, error)
}

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	cron      *cron.Cron
	spec      string
	reminders ReminderRunner
	logger    *zap.Logger
}

// NewScheduler создаёт новый планировщик; spec в стандартном формате cron из пяти полей
func NewScheduler(reminders ReminderRunner, spec string, loc *time.Location, logger *zap.Logger) (*Scheduler, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("parse reminder schedule %q: %w", spec, err)
	}
	if loc == nil {
		loc = time.Local
	}

	return &Scheduler{
		cron:      cron.New(cron.WithLocation(loc)),
		spec:      spec,
		reminders: reminders,
		logger:    logger,
	}, nil
}

// Start запускает фоновые задачи
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("Starting background scheduler", zap.String("reminder_cron", s.spec))

	if _, err := s.cron.AddFunc(s.spec, func() { s.sendReminders(ctx) }); err != nil {
		return fmt.Errorf("add reminder job: %w", err)
	}
	s.cron.Start()
	return nil
}

// Stop останавливает планировщик и ждёт завершения запущенных задач
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	<-s.cron.Stop().Done()
}

// sendReminders рассылает напоминания о ближайших дедлайнах
func (s *Scheduler) sendReminders(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	s.logger.Info("Starting deadline reminders")

	sent, err := s.reminders.RunOnce(ctx)
	if err != nil {
		s.logger.Error("Failed to send reminders", zap.Error(err))
		return
	}

	s.logger.Info("Deadline reminders completed", zap.Int("sent", sent))
}
