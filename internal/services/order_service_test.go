package services_test

import (
	"testing"
	"time"

	"vastrahub/internal/models"
	"vastrahub/internal/payment"
	"vastrahub/internal/repositories"
	"vastrahub/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type checkoutFixture struct {
	svc         *services.OrderService
	orderRepo   *repositories.MockOrderRepository
	cartRepo    *repositories.MockCartRepository
	productRepo *repositories.MockProductRepository
	sync        *MockFulfillmentSync
	notifier    *MockNotifier
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()

	productRepo := repositories.NewMockProductRepository()
	assert.NoError(t, productRepo.Create(kurtaProduct()))

	cartRepo := repositories.NewMockCartRepository()
	orderRepo := repositories.NewMockOrderRepository()
	bannerRepo := repositories.NewMockBannerRepository()
	assert.NoError(t, bannerRepo.Save(&models.Banner{StoreOpen: true}))
	unsyncedRepo := repositories.NewMockUnsyncedOrderRepository()

	sync := new(MockFulfillmentSync)
	notifier := new(MockNotifier)
	gateway := &scriptedGateway{statuses: []*payment.Status{{State: payment.StatePending}}, errs: []error{nil}}

	settlement := services.NewSettlementService(
		orderRepo, productRepo, cartRepo, bannerRepo, unsyncedRepo,
		gateway, sync, notifier, nil, time.Millisecond, 8,
	)
	svc := services.NewOrderService(orderRepo, cartRepo, productRepo, settlement, nil)
	return &checkoutFixture{svc: svc, orderRepo: orderRepo, cartRepo: cartRepo, productRepo: productRepo, sync: sync, notifier: notifier}
}

func validCheckout() services.CheckoutRequest {
	return services.CheckoutRequest{
		Address:   "14 Gandhi Market, Surat",
		Transport: "Shree Roadways",
		Email:     "buyer@example.com",
		Phone:     "+919876543210",
		GstinPan:  "24ABCDE1234F1Z5",
	}
}

func seedCart(t *testing.T, cartRepo *repositories.MockCartRepository) {
	t.Helper()
	assert.NoError(t, cartRepo.Upsert(&models.CartLine{
		UserID: "user-1", ProductID: "prod-kurta", Size: "S",
		ProductTitle: "Cotton Kurta", PricePerPiece: 120, BoxPieces: 10, Quantity: 2, NoOfPieces: 20,
	}))
	assert.NoError(t, cartRepo.Upsert(&models.CartLine{
		UserID: "user-1", ProductID: "prod-kurta", Size: "M",
		ProductTitle: "Cotton Kurta", PricePerPiece: 130, BoxPieces: 10, Quantity: 1, NoOfPieces: 10,
	}))
}

func TestCheckout_CreatesOrderSnapshot(t *testing.T) {
	fx := newCheckoutFixture(t)
	seedCart(t, fx.cartRepo)

	order, txnID, err := fx.svc.Checkout("user-1", validCheckout())
	assert.NoError(t, err)
	assert.Equal(t, models.StatusPendingPayment, order.OrderStatus)
	assert.False(t, order.PaymentDone)
	assert.Len(t, order.OrderItems, 2)

	// Line amounts: GST-inclusive totals with 5% back-calculated.
	var grand float64
	for _, item := range order.OrderItems {
		assert.InDelta(t, item.PricePerPiece*float64(item.NoOfPieces), item.LineTotal, 0.005)
		assert.InDelta(t, item.LineTotal, item.LineWithoutTax+item.LineTax, 0.005)
		grand += item.LineTotal
	}
	assert.InDelta(t, grand, order.GrandTotal, 0.01)
	assert.InDelta(t, order.GrandTotal, order.Subtotal+order.GST, 0.01)

	// The transaction id is reversible back to the order id.
	recovered, err := payment.OrderIDFromTransaction(txnID)
	assert.NoError(t, err)
	assert.Equal(t, order.ID, recovered)

	persisted, err := fx.orderRepo.GetByID(order.ID)
	assert.NoError(t, err)
	assert.Equal(t, order.GrandTotal, persisted.GrandTotal)

	// Checkout itself does not clear the cart; settlement does.
	lines, _ := fx.cartRepo.GetByUser("user-1")
	assert.Len(t, lines, 2)
}

func TestCheckout_EmptyCartRejected(t *testing.T) {
	fx := newCheckoutFixture(t)

	_, _, err := fx.svc.Checkout("user-1", validCheckout())
	assert.ErrorIs(t, err, services.ErrEmptyCart)
}

func TestCheckout_InvalidRequestRejected(t *testing.T) {
	fx := newCheckoutFixture(t)
	seedCart(t, fx.cartRepo)

	req := validCheckout()
	req.Email = "not-an-email"
	_, _, err := fx.svc.Checkout("user-1", req)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid checkout request")
}

func TestCheckout_StockChangedRejected(t *testing.T) {
	fx := newCheckoutFixture(t)
	seedCart(t, fx.cartRepo)

	// Stock drops below the cart's selection between selection and checkout.
	product, err := fx.productRepo.GetByID("prod-kurta")
	assert.NoError(t, err)
	opt, _ := product.SizeOption("S")
	opt.PiecesInStock = 5
	assert.NoError(t, fx.productRepo.Update(product))

	_, _, err = fx.svc.Checkout("user-1", validCheckout())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "stock changed")
}

func TestCheckout_PartialBoxRecomputedAtCheckout(t *testing.T) {
	fx := newCheckoutFixture(t)
	// 3 boxes of S = all 25 pieces, the last box is partial.
	assert.NoError(t, fx.cartRepo.Upsert(&models.CartLine{
		UserID: "user-1", ProductID: "prod-kurta", Size: "S",
		ProductTitle: "Cotton Kurta", PricePerPiece: 120, BoxPieces: 10, Quantity: 3, NoOfPieces: 25,
	}))
	assert.NoError(t, fx.cartRepo.Upsert(&models.CartLine{
		UserID: "user-1", ProductID: "prod-kurta", Size: "M",
		ProductTitle: "Cotton Kurta", PricePerPiece: 130, BoxPieces: 10, Quantity: 1, NoOfPieces: 10,
	}))

	order, _, err := fx.svc.Checkout("user-1", validCheckout())
	assert.NoError(t, err)
	for _, item := range order.OrderItems {
		if item.Size == "S" {
			assert.Equal(t, 25, item.NoOfPieces)
		}
	}
}

func TestCheckout_PayLaterSettlesImmediately(t *testing.T) {
	fx := newCheckoutFixture(t)
	seedCart(t, fx.cartRepo)
	fx.sync.On("Submit", mock.Anything).Return(nil).Once()
	fx.notifier.On("Send", mock.Anything).Return(nil).Once()

	req := validCheckout()
	req.PayLater = true
	order, txnID, err := fx.svc.Checkout("user-1", req)
	assert.NoError(t, err)
	assert.Empty(t, txnID)

	persisted, _ := fx.orderRepo.GetByID(order.ID)
	assert.Equal(t, models.StatusOrdered, persisted.OrderStatus)
	assert.False(t, persisted.PaymentDone)

	lines, _ := fx.cartRepo.GetByUser("user-1")
	assert.Empty(t, lines)
	fx.sync.AssertExpectations(t)
}
