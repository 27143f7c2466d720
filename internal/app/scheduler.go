package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/seminarhub/backend/internal/service"
)

const sweepInterval = time.Minute

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	deviceService *service.DeviceService
	logger        *zap.Logger
	stopChan      chan struct{}
}

// NewScheduler создаёт новый планировщик
func NewScheduler(deviceService *service.DeviceService, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		deviceService: deviceService,
		logger:        logger,
		stopChan:      make(chan struct{}),
	}
}

// Start запускает фоновые задачи
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler")

	go s.runDeviceSweepTask(ctx)
}

// Stop останавливает фоновые задачи
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	close(s.stopChan)
}

// runDeviceSweepTask периодически выметает просроченные сессии общих
// устройств и снимает просроченные запреты записи
func (s *Scheduler) runDeviceSweepTask(ctx context.Context) {
	// Первый запуск сразу при старте
	s.sweep(ctx)

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-s.stopChan:
			s.logger.Info("Device sweep task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Device sweep task cancelled")
			return
		}
	}
}

func (s *Scheduler) sweep(ctx context.Context) {
	if err := s.deviceService.SweepExpired(ctx); err != nil {
		s.logger.Error("Failed to sweep expired device state", zap.Error(err))
	}
}
