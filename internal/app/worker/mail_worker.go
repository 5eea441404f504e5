package worker

import (
	"context"
	"errors"
	"log"
	"time"

	"alumni_connect/internal/common"
	"alumni_connect/internal/domain/model"
	"alumni_connect/internal/domain/repository"
	"alumni_connect/internal/platform/mail"
	"alumni_connect/internal/platform/metrics"
)

const pollTimeout = 5 * time.Second

// MailWorker drains the outbox one message at a time.
type MailWorker struct {
	mailRepo    repository.MailRepository
	sender      mail.Sender
	maxAttempts int
	retryDelay  time.Duration
}

// NewMailWorker backs off linearly: the n-th retry waits n*retryDelay.
func NewMailWorker(mailRepo repository.MailRepository, sender mail.Sender, maxAttempts int, retryDelay time.Duration) *MailWorker {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &MailWorker{mailRepo: mailRepo, sender: sender, maxAttempts: maxAttempts, retryDelay: retryDelay}
}

func (w *MailWorker) Start(ctx context.Context) {
	log.Println("Mail worker started")
	for {
		select {
		case <-ctx.Done():
			log.Println("Mail worker stopping...")
			return
		default:
		}

		if err := w.ProcessNext(ctx); err != nil {
			if errors.Is(err, common.ErrNotFound) {
				continue
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			log.Printf("ERROR: Failed to read mail queue: %v", err)
			select {
			case <-ctx.Done():
			case <-time.After(5 * time.Second): // Wait before retrying on other errors
			}
		}
	}
}

// ProcessNext handles at most one message. Delivery errors are handled here; only queue
// errors are returned.
func (w *MailWorker) ProcessNext(ctx context.Context) error {
	msg, err := w.mailRepo.Dequeue(ctx, pollTimeout)
	if err != nil {
		return err
	}
	log.Printf("Worker picked up mail %s (%s)", msg.ID, msg.Kind)
	w.deliver(ctx, msg)
	return nil
}

func (w *MailWorker) deliver(ctx context.Context, msg *model.MailMessage) {
	err := w.sender.Send(ctx, msg)
	if err == nil {
		metrics.MailDeliveries.WithLabelValues("sent").Inc()
		if cErr := w.mailRepo.Complete(ctx, msg.ID); cErr != nil {
			log.Printf("WARN: Mail %s sent but not cleaned up: %v", msg.ID, cErr)
		}
		log.Printf("INFO: Mail %s delivered to %s", msg.ID, msg.To)
		return
	}

	msg.Attempts++
	errMsg := err.Error()
	msg.LastError = &errMsg

	if msg.Attempts >= w.maxAttempts {
		metrics.MailDeliveries.WithLabelValues("dead").Inc()
		log.Printf("ERROR: Mail %s failed %d times, giving up: %v", msg.ID, msg.Attempts, err)
		if dErr := w.mailRepo.DeadLetter(ctx, msg); dErr != nil {
			log.Printf("ERROR: Failed to dead-letter mail %s: %v", msg.ID, dErr)
		}
		return
	}

	metrics.MailDeliveries.WithLabelValues("retry").Inc()
	delay := time.Duration(msg.Attempts) * w.retryDelay
	log.Printf("WARN: Mail %s attempt %d failed, retrying in %s: %v", msg.ID, msg.Attempts, delay, err)
	if rErr := w.mailRepo.Requeue(ctx, msg, delay); rErr != nil {
		log.Printf("ERROR: Failed to re-queue mail %s: %v", msg.ID, rErr)
	}
}
