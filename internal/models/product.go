package models

import "gorm.io/gorm"

// SizeOption is one purchasable size of a product. PiecesInStock is the
// sole source of truth for availability; BoxesInStock is derived from it
// and recomputed whenever stock changes.
type SizeOption struct {
	ID            uint    `json:"-" gorm:"primaryKey;autoIncrement"`
	ProductID     string  `json:"-" gorm:"index;type:varchar(36)"`
	InventoryID   string  `json:"inventory_id" gorm:"type:varchar(64)" validate:"required"`
	Size          string  `json:"size" validate:"required"`
	PricePerPiece float64 `json:"price_per_piece" validate:"gte=0"` // GST-inclusive
	BoxPieces     int     `json:"box_pieces" validate:"gt=0"`
	PiecesInStock int     `json:"pieces_in_stock" validate:"gte=0"`
	BoxesInStock  int     `json:"boxes_in_stock" validate:"gte=0"`
}

// Product represents a garment in the wholesale catalog.
type Product struct {
	ID             string       `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Title          string       `json:"title" validate:"required,min=3,max=200"`
	Description    string       `json:"description" validate:"omitempty,max=1000"`
	Category       string       `json:"category" validate:"omitempty,max=100"`
	GSTRatePercent float64      `json:"gst_rate_percent" validate:"gte=0,lte=100"`
	Sizes          []SizeOption `json:"sizes" gorm:"foreignKey:ProductID" validate:"required,min=1,dive"`
	gorm.Model                  // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// SizeOption returns the size option matching the given size label.
func (p *Product) SizeOption(size string) (*SizeOption, bool) {
	for i := range p.Sizes {
		if p.Sizes[i].Size == size {
			return &p.Sizes[i], true
		}
	}
	return nil, false
}
