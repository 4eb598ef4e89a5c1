package catalog

import (
	"context"

	"github.com/shopspring/decimal"
)

// DefaultFrames is the storefront's launch frame collection.
func DefaultFrames() []*Frame {
	return []*Frame{
		{ID: "minimal-black", Name: "Minimal Black", BasePrice: 2499, IsActive: true,
			ImageURL: "https://images.unsplash.com/photo-1544985361-b899f7f3be93?auto=format&fit=crop&q=80&w=200"},
		{ID: "classic-wood", Name: "Classic Wood", BasePrice: 2999, IsActive: true,
			ImageURL: "https://images.unsplash.com/photo-1598899246709-c8273815f3ef?auto=format&fit=crop&q=80&w=200"},
		{ID: "modern-white", Name: "Modern White", BasePrice: 2799, IsActive: true,
			ImageURL: "https://images.unsplash.com/photo-1516975698824-dd508b262c3b?auto=format&fit=crop&q=80&w=200"},
		{ID: "ornate-gold", Name: "Ornate Gold", BasePrice: 3999, IsActive: true,
			ImageURL: "https://images.unsplash.com/photo-1516975698824-dd508b262c3b?auto=format&fit=crop&q=80&w=200"},
	}
}

// DefaultSizes is the storefront's launch size range.
func DefaultSizes() []*Size {
	return []*Size{
		{ID: "8x10", Name: `8" x 10"`, Dimensions: `8" x 10"`, PriceMultiplier: decimal.NewFromInt(1), IsActive: true},
		{ID: "11x14", Name: `11" x 14"`, Dimensions: `11" x 14"`, PriceMultiplier: decimal.RequireFromString("1.5"), IsActive: true},
		{ID: "16x20", Name: `16" x 20"`, Dimensions: `16" x 20"`, PriceMultiplier: decimal.NewFromInt(2), IsActive: true},
		{ID: "24x36", Name: `24" x 36"`, Dimensions: `24" x 36"`, PriceMultiplier: decimal.NewFromInt(3), IsActive: true},
	}
}

type staticRepo struct {
	frames []*Frame
	sizes  []*Size
}

// NewStaticRepository serves a fixed catalog held in memory.
func NewStaticRepository(frames []*Frame, sizes []*Size) Repository {
	return &staticRepo{frames: frames, sizes: sizes}
}

func (r *staticRepo) ListFrames(_ context.Context) ([]*Frame, error) {
	out := make([]*Frame, 0, len(r.frames))
	for _, f := range r.frames {
		cp := *f
		out = append(out, &cp)
	}
	return out, nil
}

func (r *staticRepo) ListSizes(_ context.Context) ([]*Size, error) {
	out := make([]*Size, 0, len(r.sizes))
	for _, s := range r.sizes {
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}
