package repositories

import (
	"fmt"
	"time"

	"vastrahub/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{
		db: db,
	}
}

// GetByUser retrieves all cart lines for a user.
func (r *GORMCartRepository) GetByUser(userID string) ([]models.CartLine, error) {
	var lines []models.CartLine
	if err := r.db.Find(&lines, "user_id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("failed to get cart lines for user %s: %w", userID, err)
	}
	return lines, nil
}

// GetByUserAndProduct retrieves the cart lines a user holds for one product.
func (r *GORMCartRepository) GetByUserAndProduct(userID, productID string) ([]models.CartLine, error) {
	var lines []models.CartLine
	if err := r.db.Find(&lines, "user_id = ? AND product_id = ?", userID, productID).Error; err != nil {
		return nil, fmt.Errorf("failed to get cart lines for user %s product %s: %w", userID, productID, err)
	}
	return lines, nil
}

// Upsert writes a cart line, replacing any existing line for the same
// (user, product, size) in a single statement.
func (r *GORMCartRepository) Upsert(line *models.CartLine) error {
	if line.ID == "" {
		line.ID = uuid.New().String()
	}
	line.UpdatedAt = time.Now()
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}, {Name: "size"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"product_title", "price_per_piece", "box_pieces", "quantity", "no_of_pieces", "updated_at",
		}),
	}).Create(line).Error
	if err != nil {
		return fmt.Errorf("failed to upsert cart line for user %s: %w", line.UserID, err)
	}
	return nil
}

// Delete removes the cart line for a (user, product, size).
func (r *GORMCartRepository) Delete(userID, productID, size string) error {
	res := r.db.Delete(&models.CartLine{}, "user_id = ? AND product_id = ? AND size = ?", userID, productID, size)
	if res.Error != nil {
		return fmt.Errorf("failed to delete cart line: %w", res.Error)
	}
	return nil
}

// ClearUser removes all cart lines for a user.
func (r *GORMCartRepository) ClearUser(userID string) error {
	if err := r.db.Delete(&models.CartLine{}, "user_id = ?", userID).Error; err != nil {
		return fmt.Errorf("failed to clear cart for user %s: %w", userID, err)
	}
	return nil
}
