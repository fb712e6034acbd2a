// Package scheduler sends periodic feedback digests to chats.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"product_feedback/internal/bot"
	"product_feedback/internal/dashboard"
	"product_feedback/internal/query"
)

// Sender is the interface for sending Telegram messages.
type Sender interface {
	SendMessage(chatID int64, text string)
}

// Scheduler periodically sends an insights digest when new feedback arrived.
type Scheduler struct {
	svc     *dashboard.Service
	sender  Sender
	chatIDs []int64
	log     *slog.Logger
	tick    time.Duration

	// Total at the last digest; set by the first check.
	lastTotal int
	primed    bool
}

// New creates a Scheduler that sends digests to chatIDs every interval.
func New(svc *dashboard.Service, sender Sender, chatIDs []int64, interval time.Duration, log *slog.Logger) *Scheduler {
	return &Scheduler{
		svc:     svc,
		sender:  sender,
		chatIDs: chatIDs,
		log:     log,
		tick:    interval,
	}
}

// SetTickInterval overrides the digest interval.
func (s *Scheduler) SetTickInterval(d time.Duration) {
	s.tick = d
}

// Run starts the scheduler loop, blocking until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.checkAll(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.checkAll(ctx)
		}
	}
}

func (s *Scheduler) checkAll(ctx context.Context) {
	sum, err := s.svc.Summary(ctx, query.NoFilter, query.DefaultSort)
	if err != nil {
		s.log.Error("build digest summary", "error", err)
		return
	}

	if !s.primed {
		s.lastTotal = sum.Total
		s.primed = true
		s.log.Debug("digest baseline", "total", sum.Total)
		return
	}
	if sum.Total <= s.lastTotal {
		return
	}

	msg := bot.FormatDigest(sum, sum.Total-s.lastTotal)
	sent := 0
	for _, chatID := range s.chatIDs {
		if ctx.Err() != nil {
			return
		}
		s.sender.SendMessage(chatID, msg)
		sent++

		// Rate limit: ~20 messages/sec max for Telegram
		time.Sleep(50 * time.Millisecond)
	}

	s.log.Info("sent digest", "chats", sent, "new", sum.Total-s.lastTotal, "total", sum.Total)
	s.lastTotal = sum.Total
}
