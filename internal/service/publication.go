package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/2014Akamanzi/kiul-app-sub001/internal/domain"
)

// CreatePublication stores a new publication record.
func (s *Service) CreatePublication(ctx context.Context, in *domain.PublicationInput) (*domain.Publication, error) {
	if err := s.validatePublication(in); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	pub := &domain.Publication{
		ID:          "pub_" + uuid.New().String()[:8],
		Title:       in.Title,
		Category:    in.Category,
		Path:        in.Path,
		Summary:     in.Summary,
		Authors:     in.Authors,
		PublishedAt: in.PublishedAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreatePublication(ctx, pub); err != nil {
		return nil, fmt.Errorf("failed to create publication: %w", err)
	}
	return pub, nil
}

// GetPublication returns one publication.
func (s *Service) GetPublication(ctx context.Context, id string) (*domain.Publication, error) {
	pub, err := s.store.GetPublication(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get publication: %w", err)
	}
	if pub == nil {
		return nil, domain.ErrNotFound
	}
	return pub, nil
}

// ListPublications returns publications, optionally for one category.
func (s *Service) ListPublications(ctx context.Context, category string) ([]domain.Publication, error) {
	pubs, err := s.store.ListPublications(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to list publications: %w", err)
	}
	if pubs == nil {
		pubs = []domain.Publication{}
	}
	return pubs, nil
}

// UpdatePublication replaces the writable fields of a publication.
func (s *Service) UpdatePublication(ctx context.Context, id string, in *domain.PublicationInput) (*domain.Publication, error) {
	if err := s.validatePublication(in); err != nil {
		return nil, err
	}

	pub, err := s.GetPublication(ctx, id)
	if err != nil {
		return nil, err
	}

	pub.Title = in.Title
	pub.Category = in.Category
	pub.Path = in.Path
	pub.Summary = in.Summary
	pub.Authors = in.Authors
	pub.PublishedAt = in.PublishedAt
	pub.UpdatedAt = time.Now().UTC()

	ok, err := s.store.UpdatePublication(ctx, pub)
	if err != nil {
		return nil, fmt.Errorf("failed to update publication: %w", err)
	}
	if !ok {
		return nil, domain.ErrNotFound
	}
	return pub, nil
}

// DeletePublication removes a publication.
func (s *Service) DeletePublication(ctx context.Context, id string) error {
	ok, err := s.store.DeletePublication(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete publication: %w", err)
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) validatePublication(in *domain.PublicationInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	for _, cat := range s.site.Categories {
		if cat.Slug == in.Category {
			return nil
		}
	}
	return fmt.Errorf("%w: unknown category %q", domain.ErrInvalidRequest, in.Category)
}
