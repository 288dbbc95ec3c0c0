package repositories

import "vastrahub/internal/models"

// OrderRepository defines the interface for order data access. Orders
// are created once and never deleted; only payment fields change.
type OrderRepository interface {
	Create(order *models.Order) error
	GetByID(id string) (*models.Order, error)
	GetByUser(userID string) ([]models.Order, error)
	UpdatePayment(id string, status models.OrderStatus, paymentDone bool, paymentResponse string) error
}
