package reminders

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/roomly/backend/pkg/queue"
)

// Sender consumes reminder jobs from the queue and delivers them.
type Sender struct {
	repo     *Repository
	notifier Notifier
	queue    *queue.Queue
	logger   *zap.Logger
}

// NewSender creates a reminder delivery worker.
func NewSender(repo *Repository, notifier Notifier, q *queue.Queue, logger *zap.Logger) *Sender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sender{repo: repo, notifier: notifier, queue: q, logger: logger}
}

// Process executes one reminder job.
func (s *Sender) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeReminder {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.ReminderPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	d, err := s.repo.GetDelivery(ctx, payload.BookingID)
	if err != nil {
		return fmt.Errorf("load booking: %w", err)
	}
	if d == nil {
		s.logger.Info("booking gone, dropping reminder",
			zap.String("booking_id", payload.BookingID.String()))
		return nil
	}

	text := FormatReminder(d)
	if err := s.notifier.Send(ctx, payload.TelegramID, text); err != nil {
		return fmt.Errorf("deliver reminder: %w", err)
	}

	s.logger.Info("reminder delivered",
		zap.String("booking_id", d.BookingID.String()),
		zap.Int64("telegram_id", payload.TelegramID))
	return nil
}

// Run starts the delivery loop: dequeue, process, retry on error.
func (s *Sender) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("reminder sender stopping")
			return
		default:
		}

		job, err := s.queue.Dequeue(ctx)
		if err != nil {
			s.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		s.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := s.Process(ctx, job); err != nil {
			s.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := s.queue.Retry(ctx, job); reErr != nil {
				s.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}

// FormatReminder builds the message text for a due booking.
func FormatReminder(d *DueBooking) string {
	return fmt.Sprintf("Reminder: your booking of %s starts at %s (until %s).",
		d.RoomName,
		d.StartAt.UTC().Format("15:04"),
		d.EndAt.UTC().Format("15:04"))
}
