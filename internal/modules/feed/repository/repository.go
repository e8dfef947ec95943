package repository

import (
	"context"

	"github.com/4x4trailrunners/riggs-feed/internal/modules/feed/domain"
)

// Repository defines the interface for feed document persistence
type Repository interface {
	Load(ctx context.Context) (*domain.Feed, error)
	Save(ctx context.Context, feed *domain.Feed) error
	Path() string
}
