package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// staleAppointmentPurger è implementato dal repository degli appuntamenti.
type staleAppointmentPurger interface {
	PurgeStale(ctx context.Context, before time.Time) (int64, error)
}

// Scheduler gestisce i task in background
type Scheduler struct {
	appointments staleAppointmentPurger
	logger       *zap.Logger
	stopChan     chan struct{}
}

// NewScheduler crea un nuovo scheduler
func NewScheduler(appointments staleAppointmentPurger, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		appointments: appointments,
		logger:       logger,
		stopChan:     make(chan struct{}),
	}
}

// Start avvia i task in background
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler")

	go s.runPurgeTask(ctx)
}

// Stop ferma i task in background
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	close(s.stopChan)
}

// runPurgeTask rimuove periodicamente gli appuntamenti mai arrivati a
// conferma: proposte e rifiuti restano utili per qualche ora come audit del
// turno, poi sono solo rumore nella tabella.
func (s *Scheduler) runPurgeTask(ctx context.Context) {
	// Prima esecuzione subito all'avvio
	s.purgeStale(ctx)

	ticker := time.NewTicker(6 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.purgeStale(ctx)
		case <-s.stopChan:
			s.logger.Info("Stale appointment purge task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Stale appointment purge task cancelled")
			return
		}
	}
}

// purgeStale elimina gli appuntamenti non confermati più vecchi di 24 ore
func (s *Scheduler) purgeStale(ctx context.Context) {
	cutoff := time.Now().Add(-24 * time.Hour)

	purged, err := s.appointments.PurgeStale(ctx, cutoff)
	if err != nil {
		s.logger.Error("Failed to purge stale appointments", zap.Error(err))
		return
	}

	if purged > 0 {
		s.logger.Info("Purged stale appointments", zap.Int64("count", purged))
	}
}
