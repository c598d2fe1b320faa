package service

import (
	"context"
	"fmt"

	"sourcing/internal/models"
)

// CreateUser registers an account. Vendor accounts are projected into the
// supplier search index.
func (s *Service) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	if u.Id == "" {
		return models.User{}, fmt.Errorf("service.CreateUser: %w: user id is required", models.ErrValidation)
	}
	if u.CompanyName == "" {
		return models.User{}, fmt.Errorf("service.CreateUser: %w: company name is required", models.ErrValidation)
	}
	if !models.ValidRole(u.Role) {
		return models.User{}, fmt.Errorf("service.CreateUser: %w: unknown role %q", models.ErrValidation, u.Role)
	}

	u.CreatedAt = s.now()
	if err := s.store.CreateUser(ctx, u); err != nil {
		return models.User{}, fmt.Errorf("service.CreateUser: %w", err)
	}

	s.syncer.VendorMutated(u)
	return u, nil
}

func (s *Service) GetUser(ctx context.Context, userId string) (models.User, error) {
	u, err := s.store.UserByID(ctx, userId)
	if err != nil {
		return models.User{}, fmt.Errorf("service.GetUser: %w", err)
	}
	return u, nil
}

// Notifications returns the acting user's feed, newest first.
func (s *Service) Notifications(ctx context.Context, id Identity, unreadOnly bool) ([]models.Notification, error) {
	ns, err := s.store.Notifications(ctx, id.UserId, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("service.Notifications: %w", err)
	}
	return ns, nil
}

// MarkNotificationRead flips one of the acting user's notifications to read.
func (s *Service) MarkNotificationRead(ctx context.Context, id Identity, notificationId string) error {
	if err := s.store.MarkNotificationRead(ctx, notificationId, id.UserId, s.now()); err != nil {
		return fmt.Errorf("service.MarkNotificationRead: %w", err)
	}
	return nil
}
