package calendar

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/lucagreco-dev/prenota_bot/internal/model"
)

const (
	maxRetries     = 3
	initialBackoff = 500 * time.Millisecond
)

// retryService decora un Service ritentando le sole operazioni fallite con
// errore transiente: backoff esponenziale, al massimo maxRetries tentativi
// aggiuntivi. La cancellazione del contesto interrompe subito i tentativi.
type retryService struct {
	inner  Service
	logger *zap.Logger
}

// WithRetry avvolge il servizio con la policy di retry.
func WithRetry(inner Service, logger *zap.Logger) Service {
	return &retryService{inner: inner, logger: logger}
}

func (s *retryService) CreateEvent(ctx context.Context, calendarID string, event Event) (string, error) {
	var eventID string
	err := s.retry(ctx, "create", func(ctx context.Context) error {
		var err error
		eventID, err = s.inner.CreateEvent(ctx, calendarID, event)
		return err
	})
	return eventID, err
}

func (s *retryService) ListBusy(ctx context.Context, calendarID string, window model.Window) ([]model.Window, error) {
	var busy []model.Window
	err := s.retry(ctx, "list", func(ctx context.Context) error {
		var err error
		busy, err = s.inner.ListBusy(ctx, calendarID, window)
		return err
	})
	return busy, err
}

func (s *retryService) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	return s.retry(ctx, "delete", func(ctx context.Context) error {
		return s.inner.DeleteEvent(ctx, calendarID, eventID)
	})
}

func (s *retryService) retry(ctx context.Context, op string, fn func(context.Context) error) error {
	backoff := retry.WithMaxRetries(maxRetries, retry.NewExponential(initialBackoff))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if IsTransient(err) {
			s.logger.Warn("Transient calendar error, retrying",
				zap.String("op", op),
				zap.Error(err),
			)
			return retry.RetryableError(err)
		}
		return err
	})
}
