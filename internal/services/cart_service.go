package services

import (
	"errors"
	"fmt"

	"vastrahub/internal/models"
	"vastrahub/internal/repositories"
	"vastrahub/internal/stock"
)

// ErrMinimumSizes is returned when a cart confirmation selects fewer
// than two distinct sizes, the wholesale minimum.
var ErrMinimumSizes = errors.New("at least 2 distinct sizes with quantity > 0 are required")

// CartService reconciles a buyer's size/quantity selections for a
// product against the persisted cart lines, so that afterwards exactly
// one line exists per size with a positive quantity and none for zero.
type CartService struct {
	cartRepo    repositories.CartRepository
	productRepo repositories.ProductRepository
}

// NewCartService creates a new CartService.
func NewCartService(cartRepo repositories.CartRepository, productRepo repositories.ProductRepository) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// GetCart retrieves all cart lines for a user.
func (s *CartService) GetCart(userID string) ([]models.CartLine, error) {
	return s.cartRepo.GetByUser(userID)
}

// Reconcile applies a selection of box quantities per size for one
// product. Validation happens before any write: every size must exist
// on the product, every quantity must be purchasable against current
// stock, and at least two distinct sizes must carry a positive
// quantity. Writes are per line; the first failure aborts the loop and
// is surfaced without rollback.
func (s *CartService) Reconcile(userID, productID string, selection map[string]int) error {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return fmt.Errorf("failed to load product for reconciliation: %w", err)
	}

	// Validate the whole selection first so a bad size never leaves a
	// partially written cart behind.
	pieces := make(map[string]int, len(selection))
	nonZero := 0
	for size, quantity := range selection {
		opt, ok := product.SizeOption(size)
		if !ok {
			return fmt.Errorf("product %s has no size %q", productID, size)
		}
		n, err := stock.PiecesForSelectedBoxes(quantity, opt.BoxPieces, opt.PiecesInStock)
		if err != nil {
			return fmt.Errorf("invalid selection for size %q: %w", size, err)
		}
		pieces[size] = n
		if quantity > 0 {
			nonZero++
		}
	}
	if nonZero < 2 {
		return ErrMinimumSizes
	}

	existing, err := s.cartRepo.GetByUserAndProduct(userID, productID)
	if err != nil {
		return fmt.Errorf("failed to load cart lines for reconciliation: %w", err)
	}
	existingBySize := make(map[string]models.CartLine, len(existing))
	for _, line := range existing {
		existingBySize[line.Size] = line
	}

	for i := range product.Sizes {
		opt := &product.Sizes[i]
		desired := selection[opt.Size]
		current, has := existingBySize[opt.Size]

		switch {
		case desired > 0:
			if has && current.Quantity == desired &&
				current.NoOfPieces == pieces[opt.Size] &&
				current.PricePerPiece == opt.PricePerPiece {
				continue // unchanged line, no write
			}
			line := models.CartLine{
				ID:            current.ID,
				UserID:        userID,
				ProductID:     productID,
				Size:          opt.Size,
				ProductTitle:  product.Title,
				PricePerPiece: opt.PricePerPiece,
				BoxPieces:     opt.BoxPieces,
				Quantity:      desired,
				NoOfPieces:    pieces[opt.Size],
			}
			if err := s.cartRepo.Upsert(&line); err != nil {
				return fmt.Errorf("cart reconciliation partially applied: %w", err)
			}
		case has:
			// Quantity dropped to zero: the line is deleted, not stored
			// as zero.
			if err := s.cartRepo.Delete(userID, productID, opt.Size); err != nil {
				return fmt.Errorf("cart reconciliation partially applied: %w", err)
			}
		}
	}
	return nil
}
