package repositories

import (
	"fmt"
	"sync"
	"time"

	"vastrahub/internal/models"

	"github.com/google/uuid"
)

// MockCartRepository is an in-memory implementation of CartRepository.
type MockCartRepository struct {
	lines map[string]models.CartLine // keyed by user|product|size
	mu    sync.RWMutex

	// FailUpsertFor makes Upsert fail for a specific size, so tests can
	// exercise partial reconciliation failure.
	FailUpsertFor string
}

// NewMockCartRepository creates a new instance of MockCartRepository.
func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{
		lines: make(map[string]models.CartLine),
	}
}

func cartKey(userID, productID, size string) string {
	return userID + "|" + productID + "|" + size
}

// GetByUser returns all cart lines for a user.
func (r *MockCartRepository) GetByUser(userID string) ([]models.CartLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.CartLine
	for _, line := range r.lines {
		if line.UserID == userID {
			out = append(out, line)
		}
	}
	return out, nil
}

// GetByUserAndProduct returns the cart lines a user holds for one product.
func (r *MockCartRepository) GetByUserAndProduct(userID, productID string) ([]models.CartLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.CartLine
	for _, line := range r.lines {
		if line.UserID == userID && line.ProductID == productID {
			out = append(out, line)
		}
	}
	return out, nil
}

// Upsert writes a cart line, replacing any existing line for the same
// (user, product, size).
func (r *MockCartRepository) Upsert(line *models.CartLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailUpsertFor != "" && line.Size == r.FailUpsertFor {
		return fmt.Errorf("simulated write failure for size %s", line.Size)
	}

	key := cartKey(line.UserID, line.ProductID, line.Size)
	if existing, ok := r.lines[key]; ok {
		line.ID = existing.ID
	} else if line.ID == "" {
		line.ID = uuid.New().String()
	}
	line.UpdatedAt = time.Now()
	r.lines[key] = *line
	return nil
}

// Delete removes the cart line for a (user, product, size).
func (r *MockCartRepository) Delete(userID, productID, size string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.lines, cartKey(userID, productID, size))
	return nil
}

// ClearUser removes all cart lines for a user.
func (r *MockCartRepository) ClearUser(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, line := range r.lines {
		if line.UserID == userID {
			delete(r.lines, key)
		}
	}
	return nil
}
