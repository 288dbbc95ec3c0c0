package models

import "time"

// CartLine is one (user, product, size) selection in a buyer's cart.
// A line exists only while its quantity is positive; reconciliation
// deletes lines whose quantity drops to zero instead of storing zeros.
type CartLine struct {
	ID            string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID        string    `json:"user_id" gorm:"uniqueIndex:idx_cart_user_product_size;type:varchar(36)"`
	ProductID     string    `json:"product_id" gorm:"uniqueIndex:idx_cart_user_product_size;type:varchar(36)"`
	Size          string    `json:"size" gorm:"uniqueIndex:idx_cart_user_product_size;type:varchar(20)"`
	ProductTitle  string    `json:"product_title"`
	PricePerPiece float64   `json:"price_per_piece"` // GST-inclusive, snapshot at selection time
	BoxPieces     int       `json:"box_pieces"`
	Quantity      int       `json:"quantity"` // boxes selected, always >= 1 while persisted
	NoOfPieces    int       `json:"no_of_pieces"`
	UpdatedAt     time.Time `json:"updated_at"`
}
