package order

import (
	"context"
	"errors"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/georgemunganga/framecraft-backend/internal/apperror"
)

// Cache is an in-process projection of orders. It is never the source of truth:
// writers Put the record the repository confirmed, and Refresh re-reads it.
// Concurrent Put and Refresh on one id resolve last-write-wins.
type Cache struct {
	repo Repository

	mu     sync.RWMutex
	orders map[string]*Order

	group singleflight.Group
}

func NewCache(repo Repository) *Cache {
	return &Cache{repo: repo, orders: make(map[string]*Order)}
}

// Get returns a copy of the cached order.
func (c *Cache) Get(id string) (*Order, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	o, ok := c.orders[id]
	if !ok {
		return nil, false
	}
	return o.clone(), true
}

func (c *Cache) ListByCustomer(customerID string) []*Order {
	return c.list(func(o *Order) bool { return o.CustomerID == customerID })
}

func (c *Cache) ListAll() []*Order {
	return c.list(func(*Order) bool { return true })
}

// Put upserts o by id.
func (c *Cache) Put(o *Order) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.orders[o.ID.String()] = o.clone()
}

func (c *Cache) Invalidate(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.orders, id)
}

// Refresh re-reads one order from the repository. Concurrent refreshes of the same id
// share one read, which is not cancelled by any single caller; each caller stops waiting
// when its own ctx ends. An order the repository no longer knows is evicted.
func (c *Cache) Refresh(ctx context.Context, id string) (*Order, error) {
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(id, func() (interface{}, error) {
		rec, err := c.repo.GetByID(shared, id)
		if err != nil {
			var notFound *apperror.NotFoundError
			if errors.As(err, &notFound) {
				c.Invalidate(id)
			}
			return nil, err
		}
		o, err := fromRecord(rec)
		if err != nil {
			return nil, err
		}
		c.Put(o)
		return o, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Order).clone(), nil
	}
}

func (c *Cache) list(keep func(*Order) bool) []*Order {
	c.mu.RLock()
	out := make([]*Order, 0, len(c.orders))
	for _, o := range c.orders {
		if keep(o) {
			out = append(out, o.clone())
		}
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
