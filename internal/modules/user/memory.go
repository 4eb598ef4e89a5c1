package user

import (
	"context"
	"fmt"
	"sync"

	"github.com/georgemunganga/framecraft-backend/internal/apperror"
)

// MemoryRepository keeps users in process memory. Used with STORAGE=memory and in tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	byID  map[string]*User
	email map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[string]*User), email: make(map[string]string)}
}

func (r *MemoryRepository) CreateUser(_ context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.email[user.Email]; exists {
		return fmt.Errorf("insert user: email %s already registered", user.Email)
	}
	cp := *user
	r.byID[user.ID.String()] = &cp
	r.email[user.Email] = user.ID.String()
	return nil
}

func (r *MemoryRepository) GetUserByEmail(_ context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.email[email]
	if !ok {
		return nil, &apperror.NotFoundError{Resource: userResource, Key: "email", Value: email}
	}
	cp := *r.byID[id]
	return &cp, nil
}

func (r *MemoryRepository) GetUserByID(_ context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, &apperror.NotFoundError{Resource: userResource, Key: "id", Value: id}
	}
	cp := *u
	return &cp, nil
}

func (r *MemoryRepository) UpdateRole(_ context.Context, id string, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return &apperror.NotFoundError{Resource: userResource, Key: "id", Value: id}
	}
	u.Role = role
	return nil
}
