package services

import (
	"errors"
	"fmt"
	"time"

	"vastrahub/internal/metrics"
	"vastrahub/internal/models"
	"vastrahub/internal/payment"
	"vastrahub/internal/pricing"
	"vastrahub/internal/repositories"
	"vastrahub/internal/stock"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ErrEmptyCart is returned when checkout is attempted with no cart lines.
var ErrEmptyCart = errors.New("cart is empty")

// CheckoutRequest carries the shipping and billing details confirmed at
// checkout.
type CheckoutRequest struct {
	Address   string `json:"address" validate:"required,max=500"`
	Transport string `json:"transport" validate:"omitempty,max=200"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required"`
	GstinPan  string `json:"gstin_pan" validate:"omitempty,max=20"`
	PayLater  bool   `json:"pay_later"`
}

// OrderService turns a buyer's cart into a placed order: it snapshots
// the cart lines into immutable order lines with computed amounts and
// persists the order awaiting payment.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	cartRepo    repositories.CartRepository
	productRepo repositories.ProductRepository
	settlement  *SettlementService
	metrics     *metrics.Registry
	validate    *validator.Validate
}

// NewOrderService creates a new OrderService.
func NewOrderService(orderRepo repositories.OrderRepository, cartRepo repositories.CartRepository, productRepo repositories.ProductRepository, settlement *SettlementService, reg *metrics.Registry) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		settlement:  settlement,
		metrics:     reg,
		validate:    validator.New(),
	}
}

// GetOrders retrieves all orders placed by a user.
func (s *OrderService) GetOrders(userID string) ([]models.Order, error) {
	return s.orderRepo.GetByUser(userID)
}

// GetOrderByID retrieves a single order by its ID.
func (s *OrderService) GetOrderByID(id string) (*models.Order, error) {
	return s.orderRepo.GetByID(id)
}

// Checkout snapshots the user's cart into a new order and returns the
// order together with the gateway transaction id the buyer is
// redirected with. Quantities are re-checked against live stock as a
// best-effort guard; piece counts are recomputed so a trailing partial
// box reflects the stock at checkout, not at selection time. Pay-later
// orders skip the gateway and settle immediately.
func (s *OrderService) Checkout(userID string, req CheckoutRequest) (*models.Order, string, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, "", fmt.Errorf("invalid checkout request: %w", err)
	}

	lines, err := s.cartRepo.GetByUser(userID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load cart for checkout: %w", err)
	}
	if len(lines) == 0 {
		return nil, "", ErrEmptyCart
	}

	orderItems := make([]models.OrderLine, 0, len(lines))
	for _, line := range lines {
		product, err := s.productRepo.GetByID(line.ProductID)
		if err != nil {
			return nil, "", fmt.Errorf("cart references unavailable product %s: %w", line.ProductID, err)
		}
		opt, ok := product.SizeOption(line.Size)
		if !ok {
			return nil, "", fmt.Errorf("product %s no longer offers size %q", line.ProductID, line.Size)
		}
		pieces, err := stock.PiecesForSelectedBoxes(line.Quantity, opt.BoxPieces, opt.PiecesInStock)
		if err != nil {
			return nil, "", fmt.Errorf("stock changed for %s size %q: %w", product.Title, line.Size, err)
		}
		amounts := pricing.ComputeLineAmounts(line.PricePerPiece, pieces, product.GSTRatePercent)
		orderItems = append(orderItems, models.OrderLine{
			ProductID:      line.ProductID,
			ProductTitle:   line.ProductTitle,
			Size:           line.Size,
			Quantity:       line.Quantity,
			NoOfPieces:     pieces,
			BoxPieces:      line.BoxPieces,
			PricePerPiece:  line.PricePerPiece,
			LineTotal:      amounts.LineTotal,
			LineWithoutTax: amounts.LineWithoutTax,
			LineTax:        amounts.LineTax,
		})
	}

	totals := pricing.ComputeOrderTotals(orderItems)
	order := &models.Order{
		ID:          uuid.New().String(),
		UserID:      userID,
		OrderItems:  orderItems,
		Subtotal:    totals.Subtotal,
		GST:         totals.GST,
		GrandTotal:  totals.GrandTotal,
		Address:     req.Address,
		Transport:   req.Transport,
		Email:       req.Email,
		Phone:       req.Phone,
		GstinPan:    req.GstinPan,
		PayLater:    req.PayLater,
		OrderStatus: models.StatusPendingPayment,
		CreatedAt:   time.Now(),
	}
	if err := s.orderRepo.Create(order); err != nil {
		return nil, "", fmt.Errorf("failed to create order: %w", err)
	}
	if s.metrics != nil {
		s.metrics.OrdersPlaced.Inc()
	}

	if req.PayLater {
		if err := s.settlement.SettlePayLater(order.ID); err != nil {
			return nil, "", fmt.Errorf("failed to settle pay-later order %s: %w", order.ID, err)
		}
		return order, "", nil
	}
	return order, payment.TransactionID(order.ID), nil
}
