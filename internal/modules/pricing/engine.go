// Package pricing turns frame and size selections into prices.
// All amounts are in minor currency units.
package pricing

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/georgemunganga/framecraft-backend/internal/apperror"
)

// DefaultShippingCents is the flat shipping surcharge added to every order.
const DefaultShippingCents int64 = 1500

// MaxQuantity is the largest quantity accepted on one line.
const MaxQuantity = 1000

var maxAmount = decimal.NewFromInt(math.MaxInt64)

// Catalog resolves the price inputs of a selection.
type Catalog interface {
	BasePrice(frameID string) (int64, bool)
	PriceMultiplier(sizeID string) (decimal.Decimal, bool)
}

// Item is one frame and size selection with a quantity.
type Item struct {
	FrameID  string `json:"frame_id"`
	SizeID   string `json:"size_id"`
	Quantity int    `json:"quantity"`
}

// Line is a priced Item.
type Line struct {
	FrameID   string `json:"frame_id"`
	SizeID    string `json:"size_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	LineTotal int64  `json:"line_total"`
}

// Quote is the result of pricing a list of items.
type Quote struct {
	Lines    []Line `json:"lines"`
	Subtotal int64  `json:"subtotal"`
	Shipping int64  `json:"shipping"`
	Total    int64  `json:"total"`
}

// Engine computes prices. It holds no mutable state.
type Engine struct {
	shipping int64
}

func NewEngine(shippingCents int64) *Engine {
	return &Engine{shipping: shippingCents}
}

// Shipping returns the surcharge added to every total.
func (e *Engine) Shipping() int64 { return e.shipping }

// UnitPrice is frame base price times size multiplier, rounded half-up to a whole minor unit.
func (e *Engine) UnitPrice(cat Catalog, frameID, sizeID string) (int64, error) {
	base, ok := cat.BasePrice(frameID)
	if !ok {
		return 0, &apperror.ValidationError{Field: "frame_id", Reason: fmt.Sprintf("unknown frame %q", frameID)}
	}
	mult, ok := cat.PriceMultiplier(sizeID)
	if !ok {
		return 0, &apperror.ValidationError{Field: "size_id", Reason: fmt.Sprintf("unknown size %q", sizeID)}
	}
	unit := decimal.NewFromInt(base).Mul(mult).Round(0)
	if unit.IsNegative() || unit.GreaterThan(maxAmount) {
		return 0, &apperror.ValidationError{Field: "unit_price", Reason: "is out of range"}
	}
	return unit.IntPart(), nil
}

// ComputeTotal prices every item and adds the shipping surcharge.
func (e *Engine) ComputeTotal(cat Catalog, items []Item) (*Quote, error) {
	if len(items) == 0 {
		return nil, &apperror.ValidationError{Field: "line_items", Reason: "at least one item is required"}
	}

	q := &Quote{Lines: make([]Line, 0, len(items)), Shipping: e.shipping}
	// Sums run in decimal so a total past int64 is rejected instead of wrapping.
	total := decimal.NewFromInt(e.shipping)
	for i, it := range items {
		if it.Quantity <= 0 || it.Quantity > MaxQuantity {
			return nil, &apperror.ValidationError{
				Field:  fmt.Sprintf("line_items[%d].quantity", i),
				Reason: fmt.Sprintf("must be between 1 and %d", MaxQuantity),
			}
		}
		unit, err := e.UnitPrice(cat, it.FrameID, it.SizeID)
		if err != nil {
			return nil, err
		}
		line := decimal.NewFromInt(unit).Mul(decimal.NewFromInt(int64(it.Quantity)))
		total = total.Add(line)
		if total.GreaterThan(maxAmount) {
			return nil, &apperror.ValidationError{
				Field:  fmt.Sprintf("line_items[%d]", i),
				Reason: "order total is out of range",
			}
		}
		q.Lines = append(q.Lines, Line{
			FrameID:   it.FrameID,
			SizeID:    it.SizeID,
			Quantity:  it.Quantity,
			UnitPrice: unit,
			LineTotal: line.IntPart(),
		})
	}
	q.Total = total.IntPart()
	q.Subtotal = q.Total - q.Shipping
	return q, nil
}
