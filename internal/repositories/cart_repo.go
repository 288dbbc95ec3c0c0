package repositories

import "vastrahub/internal/models"

// CartRepository defines the interface for cart-line data access.
// At most one line exists per (user, product, size).
type CartRepository interface {
	GetByUser(userID string) ([]models.CartLine, error)
	GetByUserAndProduct(userID, productID string) ([]models.CartLine, error)
	Upsert(line *models.CartLine) error
	Delete(userID, productID, size string) error
	ClearUser(userID string) error
}
