package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"vastrahub/internal/metrics"
	"vastrahub/internal/models"
	"vastrahub/internal/payment"
	"vastrahub/internal/repositories"
	"vastrahub/internal/stock"
)

// Outcome is the caller-facing result of a payment poll. Pending after
// exhausted retries is terminal for the automatic flow but leaves the
// order document untouched.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomePending Outcome = "pending"
	OutcomeFailed  Outcome = "failed"
	OutcomeError   Outcome = "error"
)

// SettlementService drives a placed order to a terminal state: it polls
// the payment gateway, finalizes the order on completion, hands the
// order to fulfillment (or queues it for manual handling and decrements
// stock itself), notifies the buyer and clears the cart.
type SettlementService struct {
	orderRepo    repositories.OrderRepository
	productRepo  repositories.ProductRepository
	cartRepo     repositories.CartRepository
	bannerRepo   repositories.BannerRepository
	unsyncedRepo repositories.UnsyncedOrderRepository
	gateway      payment.Gateway
	sync         FulfillmentSync
	notifier     Notifier
	metrics      *metrics.Registry

	pollInterval time.Duration
	maxAttempts  int
}

// NewSettlementService creates a new SettlementService. pollInterval
// and maxAttempts bound the payment poll loop.
func NewSettlementService(
	orderRepo repositories.OrderRepository,
	productRepo repositories.ProductRepository,
	cartRepo repositories.CartRepository,
	bannerRepo repositories.BannerRepository,
	unsyncedRepo repositories.UnsyncedOrderRepository,
	gateway payment.Gateway,
	sync FulfillmentSync,
	notifier Notifier,
	reg *metrics.Registry,
	pollInterval time.Duration,
	maxAttempts int,
) *SettlementService {
	if pollInterval <= 0 {
		pollInterval = 8 * time.Second
	}
	if maxAttempts <= 0 {
		maxAttempts = 8
	}
	return &SettlementService{
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		cartRepo:     cartRepo,
		bannerRepo:   bannerRepo,
		unsyncedRepo: unsyncedRepo,
		gateway:      gateway,
		sync:         sync,
		notifier:     notifier,
		metrics:      reg,
		pollInterval: pollInterval,
		maxAttempts:  maxAttempts,
	}
}

// PollPayment polls the gateway for the order's transaction at a fixed
// interval until a terminal status, the attempt budget, or ctx
// cancellation. A transport or parse error stops polling without
// touching the order: "we don't know" is never recorded as "it failed".
func (s *SettlementService) PollPayment(ctx context.Context, orderID string) (Outcome, error) {
	txnID := payment.TransactionID(orderID)

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if s.metrics != nil {
			s.metrics.PollAttempts.Inc()
		}
		status, err := s.gateway.GetStatus(txnID)
		if err != nil {
			s.countSettlement(OutcomeError)
			return OutcomeError, fmt.Errorf("payment status poll failed for order %s: %w", orderID, err)
		}

		switch status.State {
		case payment.StateCompleted:
			if err := s.Settle(orderID, status.Raw); err != nil {
				s.countSettlement(OutcomeError)
				return OutcomeError, err
			}
			s.countSettlement(OutcomeSuccess)
			return OutcomeSuccess, nil

		case payment.StatePending:
			if attempt == s.maxAttempts {
				// Retries exhausted: the order stays in its
				// pre-completion status for manual follow-up.
				s.countSettlement(OutcomePending)
				return OutcomePending, nil
			}
			select {
			case <-ctx.Done():
				s.countSettlement(OutcomeError)
				return OutcomeError, ctx.Err()
			case <-time.After(s.pollInterval):
			}

		default:
			if err := s.orderRepo.UpdatePayment(orderID, models.StatusFailed, false, status.Raw); err != nil {
				s.countSettlement(OutcomeError)
				return OutcomeError, fmt.Errorf("failed to record payment failure for order %s: %w", orderID, err)
			}
			s.countSettlement(OutcomeFailed)
			return OutcomeFailed, nil
		}
	}
	s.countSettlement(OutcomePending)
	return OutcomePending, nil
}

// Settle finalizes an order after the gateway reports completion. It is
// idempotent: an order already settled is left untouched so a duplicate
// completed observation never double-processes.
func (s *SettlementService) Settle(orderID, rawGatewayResponse string) error {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return fmt.Errorf("settlement aborted, order %s could not be loaded: %w", orderID, err)
	}
	if order.PaymentDone || order.OrderStatus == models.StatusOrdered {
		log.Printf("Order %s already settled, skipping", orderID)
		return nil
	}
	return s.finalize(order, true, rawGatewayResponse)
}

// SettlePayLater finalizes a pay-later order without a payment: the
// order is marked ordered with payment still outstanding.
func (s *SettlementService) SettlePayLater(orderID string) error {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return fmt.Errorf("settlement aborted, order %s could not be loaded: %w", orderID, err)
	}
	if order.OrderStatus == models.StatusOrdered {
		log.Printf("Order %s already settled, skipping", orderID)
		return nil
	}
	return s.finalize(order, false, "")
}

// finalize runs the settlement procedure: persist the ordered state,
// hand off to fulfillment with the manual-stock fallback, notify the
// buyer and clear the cart. The fulfillment handoff, notification and
// cart clear never fail the settlement.
func (s *SettlementService) finalize(order *models.Order, paymentDone bool, raw string) error {
	if err := s.orderRepo.UpdatePayment(order.ID, models.StatusOrdered, paymentDone, raw); err != nil {
		return fmt.Errorf("failed to persist settlement for order %s: %w", order.ID, err)
	}

	payload := s.buildFulfillmentPayload(order)

	var syncErr error
	open, err := s.bannerRepo.StoreOpen()
	switch {
	case err != nil:
		syncErr = fmt.Errorf("store-open check failed: %w", err)
	case !open:
		syncErr = errors.New("store is closed")
	default:
		syncErr = s.sync.Submit(payload)
	}
	if syncErr != nil {
		// The fulfillment system will not see this order, so stock must
		// be decremented here and the payload queued for manual handling.
		log.Printf("Fulfillment sync unavailable for order %s: %v", order.ID, syncErr)
		s.recordUnsynced(order, payload, syncErr)
		s.decrementStock(order)
	}

	if s.notifier != nil {
		notice := Notification{
			To:      order.Email,
			Subject: "VastraHub order confirmed",
			Body:    fmt.Sprintf("Your order %s for ₹%.2f has been confirmed.", order.ID, order.GrandTotal),
		}
		if err := s.notifier.Send(notice); err != nil {
			log.Printf("Warning: failed to send confirmation for order %s: %v", order.ID, err)
		}
	}

	if err := s.cartRepo.ClearUser(order.UserID); err != nil {
		log.Printf("Warning: failed to clear cart for user %s after order %s: %v", order.UserID, order.ID, err)
	}
	return nil
}

// buildFulfillmentPayload normalizes an order for the fulfillment system.
func (s *SettlementService) buildFulfillmentPayload(order *models.Order) FulfillmentPayload {
	lines := make([]FulfillmentLine, 0, len(order.OrderItems))
	for _, item := range order.OrderItems {
		lines = append(lines, FulfillmentLine{
			ProductID:      item.ProductID,
			ProductTitle:   item.ProductTitle,
			Size:           item.Size,
			Quantity:       item.Quantity,
			NoOfPieces:     item.NoOfPieces,
			PricePerPiece:  item.PricePerPiece,
			LineTotal:      item.LineTotal,
			LineWithoutTax: item.LineWithoutTax,
			LineTax:        item.LineTax,
		})
	}
	return FulfillmentPayload{
		OrderID:    order.ID,
		UserID:     order.UserID,
		Lines:      lines,
		Subtotal:   order.Subtotal,
		GST:        order.GST,
		GrandTotal: order.GrandTotal,
		Address:    order.Address,
		Transport:  order.Transport,
		Email:      order.Email,
		Phone:      order.Phone,
		GstinPan:   order.GstinPan,
		PayLater:   order.PayLater,
		PlacedAt:   order.CreatedAt,
	}
}

// recordUnsynced queues the payload for manual handling, including the
// sync error for the operator.
func (s *SettlementService) recordUnsynced(order *models.Order, payload FulfillmentPayload, syncErr error) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Warning: failed to marshal unsynced payload for order %s: %v", order.ID, err)
		body = []byte("{}")
	}
	record := &models.UnsyncedOrder{
		OrderID:   order.ID,
		Payload:   string(body),
		SyncError: syncErr.Error(),
	}
	if err := s.unsyncedRepo.Create(record); err != nil {
		log.Printf("Warning: failed to record unsynced order %s: %v", order.ID, err)
		return
	}
	if s.metrics != nil {
		s.metrics.UnsyncedOrders.Inc()
	}
}

// decrementStock applies the manual per-line stock decrement used when
// the fulfillment system could not take the order. Pieces are clamped
// at zero and boxes recomputed from the new piece count. Per-line
// failures are logged and the remaining lines still processed.
func (s *SettlementService) decrementStock(order *models.Order) {
	for _, item := range order.OrderItems {
		product, err := s.productRepo.GetByID(item.ProductID)
		if err != nil {
			log.Printf("Warning: stock decrement skipped for product %s: %v", item.ProductID, err)
			continue
		}
		opt, ok := product.SizeOption(item.Size)
		if !ok {
			log.Printf("Warning: stock decrement skipped, product %s has no size %q", item.ProductID, item.Size)
			continue
		}
		opt.PiecesInStock -= item.NoOfPieces
		if opt.PiecesInStock < 0 {
			opt.PiecesInStock = 0
		}
		opt.BoxesInStock = stock.PurchasableBoxes(opt.PiecesInStock, opt.BoxPieces)
		if err := s.productRepo.Update(product); err != nil {
			log.Printf("Warning: failed to persist stock decrement for product %s: %v", item.ProductID, err)
			continue
		}
	}
	if s.metrics != nil {
		s.metrics.StockFallbacks.Inc()
	}
}

func (s *SettlementService) countSettlement(outcome Outcome) {
	if s.metrics != nil {
		s.metrics.Settlements.WithLabelValues(string(outcome)).Inc()
	}
}
