package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultSweepInterval период sweep по умолчанию
const DefaultSweepInterval = 60 * time.Second

// Sweeper закрывает просроченные занятия и возвращает их количество
type Sweeper interface {
	SweepExpired(ctx context.Context) int
}

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	sweeper  Sweeper
	interval time.Duration
	logger   *zap.Logger

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewScheduler создаёт новый планировщик
func NewScheduler(sweeper Sweeper, interval time.Duration, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Scheduler{
		sweeper:  sweeper,
		interval: interval,
		logger:   logger,
	}
}

// Start запускает фоновые задачи. Повторный вызов ничего не делает.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true
	s.stopChan = make(chan struct{})

	s.logger.Info("Starting background scheduler", zap.Duration("sweep_interval", s.interval))

	s.wg.Add(1)
	go s.runSweepTask(ctx, s.stopChan)
}

// Stop останавливает фоновые задачи и ждёт завершения текущей итерации
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopChan)
	s.mu.Unlock()

	s.logger.Info("Stopping background scheduler")
	s.wg.Wait()
}

// runSweepTask периодически закрывает просроченные занятия
func (s *Scheduler) runSweepTask(ctx context.Context, stop <-chan struct{}) {
	defer s.wg.Done()

	// Первый запуск сразу при старте
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-stop:
			s.logger.Info("Expiry sweep task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Expiry sweep task cancelled")
			return
		}
	}
}

func (s *Scheduler) sweep(ctx context.Context) {
	closed := s.sweeper.SweepExpired(ctx)
	if closed > 0 {
		s.logger.Info("Automatic session expiry completed", zap.Int("closed", closed))
	}
}
