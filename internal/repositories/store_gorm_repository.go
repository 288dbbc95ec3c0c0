package repositories

import (
	"fmt"
	"time"

	"vastrahub/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMBannerRepository is a GORM implementation of BannerRepository.
type GORMBannerRepository struct {
	db *gorm.DB
}

// NewGORMBannerRepository creates a new instance of GORMBannerRepository.
func NewGORMBannerRepository(db *gorm.DB) *GORMBannerRepository {
	return &GORMBannerRepository{
		db: db,
	}
}

// GetAll retrieves all banners.
func (r *GORMBannerRepository) GetAll() ([]models.Banner, error) {
	var banners []models.Banner
	if err := r.db.Find(&banners).Error; err != nil {
		return nil, fmt.Errorf("failed to get banners: %w", err)
	}
	return banners, nil
}

// StoreOpen reads the store-open flag from the first banner document.
// A store with no banner rows is treated as closed.
func (r *GORMBannerRepository) StoreOpen() (bool, error) {
	var banner models.Banner
	if err := r.db.Order("id asc").First(&banner).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		return false, fmt.Errorf("failed to read store-open flag: %w", err)
	}
	return banner.StoreOpen, nil
}

// Save creates or updates a banner.
func (r *GORMBannerRepository) Save(banner *models.Banner) error {
	if err := r.db.Save(banner).Error; err != nil {
		return fmt.Errorf("failed to save banner: %w", err)
	}
	return nil
}

// GORMUnsyncedOrderRepository is a GORM implementation of
// UnsyncedOrderRepository.
type GORMUnsyncedOrderRepository struct {
	db *gorm.DB
}

// NewGORMUnsyncedOrderRepository creates a new instance of
// GORMUnsyncedOrderRepository.
func NewGORMUnsyncedOrderRepository(db *gorm.DB) *GORMUnsyncedOrderRepository {
	return &GORMUnsyncedOrderRepository{
		db: db,
	}
}

// Create records an undelivered fulfillment payload for manual handling.
func (r *GORMUnsyncedOrderRepository) Create(record *models.UnsyncedOrder) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	record.CreatedAt = time.Now()
	if err := r.db.Create(record).Error; err != nil {
		return fmt.Errorf("failed to create unsynced order record: %w", err)
	}
	return nil
}

// GetAll retrieves all unsynced order records.
func (r *GORMUnsyncedOrderRepository) GetAll() ([]models.UnsyncedOrder, error) {
	var records []models.UnsyncedOrder
	if err := r.db.Order("created_at asc").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to get unsynced orders: %w", err)
	}
	return records, nil
}
