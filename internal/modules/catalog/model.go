package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Frame is a frame style a customer can pick for a print. BasePrice is in minor currency units.
type Frame struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ImageURL  string    `json:"image_url,omitempty"`
	BasePrice int64     `json:"base_price"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Size is a print size. Its multiplier scales the frame base price.
type Size struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Dimensions      string          `json:"dimensions"`
	PriceMultiplier decimal.Decimal `json:"price_multiplier"`
	IsActive        bool            `json:"is_active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Snapshot is an immutable view of the active catalog used to price an order.
// It satisfies pricing.Catalog.
type Snapshot struct {
	frames map[string]*Frame
	sizes  map[string]*Size
}

// NewSnapshot indexes the active frames and sizes by id.
func NewSnapshot(frames []*Frame, sizes []*Size) *Snapshot {
	s := &Snapshot{
		frames: make(map[string]*Frame, len(frames)),
		sizes:  make(map[string]*Size, len(sizes)),
	}
	for _, f := range frames {
		if f.IsActive {
			cp := *f
			s.frames[f.ID] = &cp
		}
	}
	for _, sz := range sizes {
		if sz.IsActive {
			cp := *sz
			s.sizes[sz.ID] = &cp
		}
	}
	return s
}

func (s *Snapshot) Frame(id string) (*Frame, bool) {
	f, ok := s.frames[id]
	return f, ok
}

func (s *Snapshot) Size(id string) (*Size, bool) {
	sz, ok := s.sizes[id]
	return sz, ok
}

func (s *Snapshot) BasePrice(frameID string) (int64, bool) {
	f, ok := s.frames[frameID]
	if !ok {
		return 0, false
	}
	return f.BasePrice, true
}

func (s *Snapshot) PriceMultiplier(sizeID string) (decimal.Decimal, bool) {
	sz, ok := s.sizes[sizeID]
	if !ok {
		return decimal.Zero, false
	}
	return sz.PriceMultiplier, true
}
