package repositories

import (
	"sync"
	"time"

	"vastrahub/internal/models"

	"github.com/google/uuid"
)

// MockBannerRepository is an in-memory implementation of BannerRepository.
type MockBannerRepository struct {
	banners []models.Banner
	mu      sync.RWMutex
}

// NewMockBannerRepository creates a new instance of MockBannerRepository.
func NewMockBannerRepository() *MockBannerRepository {
	return &MockBannerRepository{}
}

// GetAll returns all banners.
func (r *MockBannerRepository) GetAll() ([]models.Banner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]models.Banner(nil), r.banners...), nil
}

// StoreOpen reads the store-open flag from the first banner. A store
// with no banners is treated as closed.
func (r *MockBannerRepository) StoreOpen() (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.banners) == 0 {
		return false, nil
	}
	return r.banners[0].StoreOpen, nil
}

// Save creates or updates a banner.
func (r *MockBannerRepository) Save(banner *models.Banner) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.banners {
		if r.banners[i].ID == banner.ID {
			r.banners[i] = *banner
			return nil
		}
	}
	if banner.ID == 0 {
		banner.ID = uint(len(r.banners) + 1)
	}
	r.banners = append(r.banners, *banner)
	return nil
}

// MockUnsyncedOrderRepository is an in-memory implementation of
// UnsyncedOrderRepository.
type MockUnsyncedOrderRepository struct {
	records []models.UnsyncedOrder
	mu      sync.RWMutex
}

// NewMockUnsyncedOrderRepository creates a new instance of
// MockUnsyncedOrderRepository.
func NewMockUnsyncedOrderRepository() *MockUnsyncedOrderRepository {
	return &MockUnsyncedOrderRepository{}
}

// Create records an undelivered fulfillment payload.
func (r *MockUnsyncedOrderRepository) Create(record *models.UnsyncedOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	record.CreatedAt = time.Now()
	r.records = append(r.records, *record)
	return nil
}

// GetAll returns all unsynced order records.
func (r *MockUnsyncedOrderRepository) GetAll() ([]models.UnsyncedOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]models.UnsyncedOrder(nil), r.records...), nil
}
