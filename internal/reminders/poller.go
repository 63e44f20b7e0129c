package reminders

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/roomly/backend/pkg/queue"
)

// Poller periodically scans for bookings whose reminder is due and
// enqueues a delivery job for each. Delivery itself happens in Sender,
// so a slow Telegram API never stalls the scan loop.
type Poller struct {
	repo     *Repository
	queue    *queue.Queue
	lead     time.Duration
	interval time.Duration
	logger   *zap.Logger
}

// NewPoller creates a reminder poller.
func NewPoller(repo *Repository, q *queue.Queue, lead, interval time.Duration, logger *zap.Logger) *Poller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{repo: repo, queue: q, lead: lead, interval: interval, logger: logger}
}

// Run scans on every tick until ctx is done.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("reminder poller started",
		zap.Duration("lead", p.lead),
		zap.Duration("interval", p.interval))

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("reminder poller stopping")
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	due, err := p.repo.FindDue(ctx, time.Now().UTC(), p.lead)
	if err != nil {
		p.logger.Warn("due bookings scan failed", zap.Error(err))
		return
	}
	for _, d := range due {
		err := p.queue.EnqueueReminder(ctx, queue.ReminderPayload{
			BookingID:  d.BookingID,
			TelegramID: d.TelegramID,
		})
		if err != nil {
			p.logger.Error("enqueue reminder failed",
				zap.Error(err),
				zap.String("booking_id", d.BookingID.String()))
			continue
		}
		// Record up front so the next tick skips this booking even if
		// delivery is still in flight.
		if err := p.repo.RecordSent(ctx, d.BookingID); err != nil {
			p.logger.Error("record reminder failed",
				zap.Error(err),
				zap.String("booking_id", d.BookingID.String()))
		}
	}
	if len(due) > 0 {
		p.logger.Info("reminders enqueued", zap.Int("count", len(due)))
	}
}
