package catalog

import (
	"context"

	"github.com/georgemunganga/framecraft-backend/internal/modules/pricing"
)

// Service defines catalog business logic.
type Service interface {
	ListFrames(ctx context.Context) ([]*Frame, error)
	ListSizes(ctx context.Context) ([]*Size, error)

	// Snapshot returns the active catalog for pricing a new order.
	Snapshot(ctx context.Context) (*Snapshot, error)

	// Quote prices a prospective cart without placing an order.
	Quote(ctx context.Context, items []pricing.Item) (*pricing.Quote, error)
}

type service struct {
	repo   Repository
	engine *pricing.Engine
}

func NewService(repo Repository, engine *pricing.Engine) Service {
	return &service{repo: repo, engine: engine}
}

func (s *service) ListFrames(ctx context.Context) ([]*Frame, error) {
	return s.repo.ListFrames(ctx)
}

func (s *service) ListSizes(ctx context.Context) ([]*Size, error) {
	return s.repo.ListSizes(ctx)
}

func (s *service) Snapshot(ctx context.Context) (*Snapshot, error) {
	frames, err := s.repo.ListFrames(ctx)
	if err != nil {
		return nil, err
	}
	sizes, err := s.repo.ListSizes(ctx)
	if err != nil {
		return nil, err
	}
	return NewSnapshot(frames, sizes), nil
}

func (s *service) Quote(ctx context.Context, items []pricing.Item) (*pricing.Quote, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.engine.ComputeTotal(snap, items)
}
