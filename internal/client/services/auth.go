package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/shiftbook/internal/client/client"
)

// AuthService wraps account operations against the shift service.
type AuthService struct {
	client client.Client
}

func NewAuthService(c client.Client) *AuthService {
	return &AuthService{client: c}
}

func (s *AuthService) Register(ctx context.Context, username, password string) error {
	if err := s.client.Register(ctx, username, password); err != nil {
		return fmt.Errorf("registration error: %w", err)
	}
	return nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) error {
	if err := s.client.Login(ctx, username, password); err != nil {
		return fmt.Errorf("login error: %w", err)
	}
	return nil
}

func (s *AuthService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}
