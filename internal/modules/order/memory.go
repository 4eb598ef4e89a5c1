package order

import (
	"context"
	"sort"
	"sync"

	"github.com/georgemunganga/framecraft-backend/internal/apperror"
)

const orderResource = "order"

// MemoryRepository keeps orders in process memory. Used with STORAGE=memory and in tests.
// The status precondition and the write happen under one lock.
type MemoryRepository struct {
	mu      sync.Mutex
	records map[string]Record
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[string]Record)}
}

func (r *MemoryRepository) Insert(_ context.Context, rec Record) (string, error) {
	if err := rec.Validate(); err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.records[rec.ID]; !exists {
		r.records[rec.ID] = rec.clone()
	}
	return rec.ID, nil
}

func (r *MemoryRepository) UpdateFields(_ context.Context, id string, pre Precondition, f Fields) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.records[id]
	if !ok {
		return Record{}, &apperror.NotFoundError{Resource: orderResource, Key: "id", Value: id}
	}
	if current.Status != pre.Status {
		return Record{}, &apperror.ConcurrentModificationError{Resource: orderResource, ID: id, Expected: string(pre.Status)}
	}

	next := current.clone()
	next.apply(f)
	if err := next.Validate(); err != nil {
		return Record{}, err
	}
	r.records[id] = next
	return next.clone(), nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return Record{}, &apperror.NotFoundError{Resource: orderResource, Key: "id", Value: id}
	}
	return rec.clone(), nil
}

func (r *MemoryRepository) ListWhere(_ context.Context, f Filter) ([]Record, error) {
	r.mu.Lock()
	out := make([]Record, 0)
	for _, rec := range r.records {
		if f.matches(&rec) {
			out = append(out, rec.clone())
		}
	}
	r.mu.Unlock()

	sortNewestFirst(out)
	return out, nil
}

func sortNewestFirst(recs []Record) {
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].ID < recs[j].ID
		}
		return recs[i].CreatedAt.After(recs[j].CreatedAt)
	})
}
