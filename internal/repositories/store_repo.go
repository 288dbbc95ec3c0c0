package repositories

import "vastrahub/internal/models"

// BannerRepository defines the interface for storefront banners, the
// first of which carries the store-open flag consulted at settlement.
type BannerRepository interface {
	GetAll() ([]models.Banner, error)
	StoreOpen() (bool, error)
	Save(banner *models.Banner) error
}

// UnsyncedOrderRepository holds fulfillment payloads that could not be
// delivered to the external fulfillment system.
type UnsyncedOrderRepository interface {
	Create(record *models.UnsyncedOrder) error
	GetAll() ([]models.UnsyncedOrder, error)
}
