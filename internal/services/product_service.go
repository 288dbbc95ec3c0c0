package services

import (
	"vastrahub/internal/models"
	"vastrahub/internal/repositories"
	"vastrahub/internal/stock"
)

// ProductService handles catalog browsing and admin catalog maintenance.
type ProductService struct {
	repo       repositories.ProductRepository
	bannerRepo repositories.BannerRepository
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, bannerRepo repositories.BannerRepository) *ProductService {
	return &ProductService{
		repo:       repo,
		bannerRepo: bannerRepo,
	}
}

// GetAllProducts retrieves all products with current purchasable-box
// counts derived from piece stock.
func (s *ProductService) GetAllProducts() ([]models.Product, error) {
	products, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}
	for i := range products {
		refreshBoxes(&products[i])
	}
	return products, nil
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(id string) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	refreshBoxes(product)
	return product, nil
}

// CreateProduct creates a new product with derived box counts filled in.
func (s *ProductService) CreateProduct(product *models.Product) error {
	refreshBoxes(product)
	return s.repo.Create(product)
}

// UpdateProduct updates an existing product, recomputing box counts.
func (s *ProductService) UpdateProduct(product *models.Product) error {
	refreshBoxes(product)
	return s.repo.Update(product)
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(id string) error {
	return s.repo.Delete(id)
}

// GetBanners retrieves the storefront banners.
func (s *ProductService) GetBanners() ([]models.Banner, error) {
	return s.bannerRepo.GetAll()
}

// refreshBoxes recomputes the derived BoxesInStock of every size from
// its piece count.
func refreshBoxes(product *models.Product) {
	for i := range product.Sizes {
		opt := &product.Sizes[i]
		opt.BoxesInStock = stock.PurchasableBoxes(opt.PiecesInStock, opt.BoxPieces)
	}
}
