package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/shiftbook/internal/server/models"
)

// Repository describes refresh-token storage for the rotation flow.
type Repository interface {
	Create(ctx context.Context, userID string, token string, validity time.Duration) error
	Find(ctx context.Context, token string) (*models.RefreshToken, error)
	Delete(ctx context.Context, token string) error
}
