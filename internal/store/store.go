// Package store defines the storage interface and implementations.
package store

import (
	"context"

	"github.com/2014Akamanzi/kiul-app-sub001/internal/domain"
)

// Store defines the interface for data persistence.
//
// Get operations return (nil, nil) when the record does not exist.
type Store interface {
	// Publication operations
	CreatePublication(ctx context.Context, pub *domain.Publication) error
	GetPublication(ctx context.Context, id string) (*domain.Publication, error)
	ListPublications(ctx context.Context, category string) ([]domain.Publication, error)
	UpdatePublication(ctx context.Context, pub *domain.Publication) (bool, error)
	DeletePublication(ctx context.Context, id string) (bool, error)

	// Assistant relay events
	CreateEvent(ctx context.Context, event *domain.Event) error
	GetEvents(ctx context.Context, requestID string) ([]domain.Event, error)

	// Lifecycle
	Ping(ctx context.Context) error
	Close() error
}
