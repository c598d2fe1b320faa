// Package notify records in-app notifications for lifecycle events.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"sourcing/internal/metrics"
	"sourcing/internal/models"
	"sourcing/internal/store"
)

// Service creates notification records. Delivery is in-app only; records are
// stored unread and flipped to read on demand by the recipient.
type Service struct {
	store store.Store
	now   func() time.Time
}

func NewService(s store.Store) *Service {
	return &Service{store: s, now: time.Now}
}

// Notify stores one notification. The type must be a member of the closed
// notification-type set.
func (s *Service) Notify(ctx context.Context, recipient string, nt models.NotificationType, message string, data models.NotificationData) error {
	if !models.ValidNotificationType(nt) {
		return fmt.Errorf("notify.Service.Notify: %w: unknown notification type %q", models.ErrValidation, nt)
	}
	if recipient == "" {
		return fmt.Errorf("notify.Service.Notify: %w: recipient is required", models.ErrValidation)
	}

	n := models.Notification{
		Id:        uuid.NewString(),
		Recipient: recipient,
		Type:      nt,
		Title:     titleFor(nt),
		Message:   message,
		Data:      data,
		Status:    models.NotificationUnread,
		CreatedAt: s.now(),
	}
	if err := s.store.CreateNotification(ctx, n); err != nil {
		return fmt.Errorf("notify.Service.Notify: %w", err)
	}
	metrics.NotificationCreated(string(nt))
	return nil
}

// NotifyMultiple fans one message out to several recipients. Each recipient
// gets an independent record; a failure for one does not block the rest and
// the first error is returned.
func (s *Service) NotifyMultiple(ctx context.Context, recipients []string, nt models.NotificationType, message string, data models.NotificationData) error {
	var firstErr error
	for _, r := range recipients {
		if err := s.Notify(ctx, r, nt, message, data); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func titleFor(nt models.NotificationType) string {
	switch nt {
	case models.NotifyProjectInvitation:
		return "Project invitation"
	case models.NotifyProposalReceived:
		return "New proposal"
	case models.NotifyProposalAccepted:
		return "Proposal accepted"
	case models.NotifyProposalRejected:
		return "Proposal rejected"
	case models.NotifyProjectAwarded:
		return "Project awarded"
	case models.NotifyProjectCancelled:
		return "Project cancelled"
	case models.NotifyProjectExpiring:
		return "Project closing soon"
	case models.NotifyMessageReceived:
		return "New message"
	default:
		return ""
	}
}

// Message composition helpers. Text mirrors what recipients see in the feed.

func InvitationMessage(p models.Project) string {
	return fmt.Sprintf("You have been invited to submit a proposal for %q", p.Title)
}

func ProposalReceivedMessage(p models.Project) string {
	return fmt.Sprintf("A new proposal was submitted for %q", p.Title)
}

func ProposalAcceptedMessage(p models.Project) string {
	return fmt.Sprintf("Your proposal for %q was accepted", p.Title)
}

func ProposalRejectedMessage(p models.Project) string {
	return fmt.Sprintf("Your proposal for %q was not selected", p.Title)
}

func ProjectAwardedMessage(p models.Project) string {
	return fmt.Sprintf("Project %q has been awarded to you", p.Title)
}

func ProjectCancelledMessage(p models.Project) string {
	return fmt.Sprintf("Project %q was cancelled by the buyer", p.Title)
}

func ProjectExpiringMessage(p models.Project) string {
	return fmt.Sprintf("Project %q closes for proposals on %s", p.Title, p.Deadline.Format("2006-01-02"))
}

func MessageReceivedMessage(p models.Project) string {
	return fmt.Sprintf("New message on your proposal for %q", p.Title)
}
