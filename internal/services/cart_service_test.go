package services_test

import (
	"testing"

	"vastrahub/internal/models"
	"vastrahub/internal/repositories"
	"vastrahub/internal/services"

	"github.com/stretchr/testify/assert"
)

func kurtaProduct() *models.Product {
	return &models.Product{
		ID:             "prod-kurta",
		Title:          "Cotton Kurta",
		GSTRatePercent: 5,
		Sizes: []models.SizeOption{
			{InventoryID: "inv-s", Size: "S", PricePerPiece: 120, BoxPieces: 10, PiecesInStock: 25},
			{InventoryID: "inv-m", Size: "M", PricePerPiece: 130, BoxPieces: 10, PiecesInStock: 30},
			{InventoryID: "inv-l", Size: "L", PricePerPiece: 140, BoxPieces: 12, PiecesInStock: 24},
		},
	}
}

func newCartFixture(t *testing.T) (*services.CartService, *repositories.MockCartRepository) {
	t.Helper()
	productRepo := repositories.NewMockProductRepository()
	assert.NoError(t, productRepo.Create(kurtaProduct()))
	cartRepo := repositories.NewMockCartRepository()
	return services.NewCartService(cartRepo, productRepo), cartRepo
}

func TestCartReconcile_CreatesLines(t *testing.T) {
	svc, cartRepo := newCartFixture(t)

	err := svc.Reconcile("user-1", "prod-kurta", map[string]int{"S": 2, "M": 1})
	assert.NoError(t, err)

	lines, err := cartRepo.GetByUserAndProduct("user-1", "prod-kurta")
	assert.NoError(t, err)
	assert.Len(t, lines, 2)

	bySize := map[string]models.CartLine{}
	for _, l := range lines {
		bySize[l.Size] = l
	}
	assert.Equal(t, 2, bySize["S"].Quantity)
	assert.Equal(t, 20, bySize["S"].NoOfPieces)
	assert.Equal(t, 120.0, bySize["S"].PricePerPiece)
	assert.Equal(t, "Cotton Kurta", bySize["S"].ProductTitle)
	assert.Equal(t, 1, bySize["M"].Quantity)
	assert.Equal(t, 10, bySize["M"].NoOfPieces)
}

func TestCartReconcile_TrailingPartialBox(t *testing.T) {
	svc, cartRepo := newCartFixture(t)

	// 25 pieces in boxes of 10: the third box holds only 5 pieces.
	err := svc.Reconcile("user-1", "prod-kurta", map[string]int{"S": 3, "M": 1})
	assert.NoError(t, err)

	lines, _ := cartRepo.GetByUserAndProduct("user-1", "prod-kurta")
	for _, l := range lines {
		if l.Size == "S" {
			assert.Equal(t, 25, l.NoOfPieces)
		}
	}
}

func TestCartReconcile_Idempotent(t *testing.T) {
	svc, cartRepo := newCartFixture(t)
	selection := map[string]int{"S": 2, "M": 1, "L": 2}

	assert.NoError(t, svc.Reconcile("user-1", "prod-kurta", selection))
	first, _ := cartRepo.GetByUserAndProduct("user-1", "prod-kurta")

	assert.NoError(t, svc.Reconcile("user-1", "prod-kurta", selection))
	second, _ := cartRepo.GetByUserAndProduct("user-1", "prod-kurta")

	assert.Len(t, second, len(first))
	firstBySize := map[string]models.CartLine{}
	for _, l := range first {
		firstBySize[l.Size] = l
	}
	for _, l := range second {
		assert.Equal(t, firstBySize[l.Size].Quantity, l.Quantity)
		assert.Equal(t, firstBySize[l.Size].NoOfPieces, l.NoOfPieces)
		assert.Equal(t, firstBySize[l.Size].ID, l.ID)
	}
}

func TestCartReconcile_DeletesZeroQuantityLines(t *testing.T) {
	svc, cartRepo := newCartFixture(t)

	assert.NoError(t, svc.Reconcile("user-1", "prod-kurta", map[string]int{"S": 2, "M": 1, "L": 1}))
	assert.NoError(t, svc.Reconcile("user-1", "prod-kurta", map[string]int{"S": 2, "M": 1, "L": 0}))

	lines, _ := cartRepo.GetByUserAndProduct("user-1", "prod-kurta")
	assert.Len(t, lines, 2)
	for _, l := range lines {
		assert.NotEqual(t, "L", l.Size)
		assert.GreaterOrEqual(t, l.Quantity, 1)
	}
}

func TestCartReconcile_RejectsFewerThanTwoSizes(t *testing.T) {
	svc, cartRepo := newCartFixture(t)

	err := svc.Reconcile("user-1", "prod-kurta", map[string]int{"S": 3})
	assert.ErrorIs(t, err, services.ErrMinimumSizes)

	err = svc.Reconcile("user-1", "prod-kurta", map[string]int{"S": 3, "M": 0})
	assert.ErrorIs(t, err, services.ErrMinimumSizes)

	// Rejected before any write.
	lines, _ := cartRepo.GetByUserAndProduct("user-1", "prod-kurta")
	assert.Empty(t, lines)
}

func TestCartReconcile_RejectsOverPurchasableBeforeWrites(t *testing.T) {
	svc, cartRepo := newCartFixture(t)

	// S offers at most 3 boxes on 25 pieces of 10.
	err := svc.Reconcile("user-1", "prod-kurta", map[string]int{"S": 4, "M": 1})
	assert.Error(t, err)

	lines, _ := cartRepo.GetByUserAndProduct("user-1", "prod-kurta")
	assert.Empty(t, lines)
}

func TestCartReconcile_RejectsUnknownSize(t *testing.T) {
	svc, cartRepo := newCartFixture(t)

	err := svc.Reconcile("user-1", "prod-kurta", map[string]int{"S": 2, "XXL": 1})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no size")

	lines, _ := cartRepo.GetByUserAndProduct("user-1", "prod-kurta")
	assert.Empty(t, lines)
}

func TestCartReconcile_PartialFailureSurfaces(t *testing.T) {
	svc, cartRepo := newCartFixture(t)
	cartRepo.FailUpsertFor = "M"

	err := svc.Reconcile("user-1", "prod-kurta", map[string]int{"S": 2, "M": 1})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "partially applied")

	// No rollback: the size written before the failure stays.
	lines, _ := cartRepo.GetByUserAndProduct("user-1", "prod-kurta")
	assert.Len(t, lines, 1)
	assert.Equal(t, "S", lines[0].Size)
}
