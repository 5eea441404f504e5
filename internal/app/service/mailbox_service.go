package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"alumni_connect/internal/common"
	"alumni_connect/internal/domain/model"
	"alumni_connect/internal/domain/repository"

	"github.com/google/uuid"
)

// MailboxService writes to the outbox drained by the mail worker.
type MailboxService struct {
	mailRepo repository.MailRepository
}

func NewMailboxService(mailRepo repository.MailRepository) *MailboxService {
	return &MailboxService{mailRepo: mailRepo}
}

func (s *MailboxService) Enqueue(ctx context.Context, kind, to, subject, body string) (*model.MailMessage, error) {
	msg := &model.MailMessage{
		ID:        uuid.NewString(),
		Kind:      kind,
		To:        to,
		Subject:   subject,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.mailRepo.Enqueue(ctx, msg); err != nil {
		return nil, common.Errorf("failed to enqueue %s mail: %w", kind, err)
	}
	log.Printf("Mail %s (%s) enqueued successfully.", msg.ID, kind)
	return msg, nil
}

func (s *MailboxService) EnqueuePasswordReset(ctx context.Context, to, link string) (*model.MailMessage, error) {
	body := fmt.Sprintf("We received a request to reset your AlumniConnect password.\n\n"+
		"Follow this link to choose a new password:\n%s\n\n"+
		"If you did not ask for this, you can ignore this email.\n", link)
	return s.Enqueue(ctx, model.MailKindPasswordReset, to, "Reset your password", body)
}
