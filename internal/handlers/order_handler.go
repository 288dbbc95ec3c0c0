package handlers

import (
	"errors"
	"log"
	"strings"

	"vastrahub/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for checkout, order history and
// payment-status polling.
type OrderHandler struct {
	orderService *services.OrderService
	settlement   *services.SettlementService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderService *services.OrderService, settlement *services.SettlementService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		settlement:   settlement,
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Post("/", h.HandleCheckout)
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Get("/:id/payment", h.HandlePaymentStatus)
}

// HandleCheckout turns the buyer's cart into an order and returns the
// transaction id for the payment redirect.
func (h *OrderHandler) HandleCheckout(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var req services.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing checkout body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	order, txnID, err := h.orderService.Checkout(userID, req)
	if err != nil {
		log.Printf("Checkout failed for user %s: %v", userID, err)
		if errors.Is(err, services.ErrEmptyCart) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Your cart is empty",
			})
		}
		if strings.Contains(err.Error(), "invalid checkout request") ||
			strings.Contains(err.Error(), "stock changed") {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Checkout could not be completed",
				"error":   err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not place order",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"order":          order,
		"transaction_id": txnID,
	})
}

// HandleGetOrders retrieves the authenticated buyer's orders.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	orders, err := h.orderService.GetOrders(userID)
	if err != nil {
		log.Printf("Error getting orders for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve orders",
			"error":   err.Error(),
		})
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order of the authenticated buyer.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	orderID := c.Params("id")
	order, err := h.orderService.GetOrderByID(orderID)
	if err != nil {
		log.Printf("Error getting order %s: %v", orderID, err)
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Order not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve order",
			"error":   err.Error(),
		})
	}
	if order.UserID != userID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Order not found",
		})
	}
	return c.JSON(order)
}

// HandlePaymentStatus runs the payment poll loop for an order. The
// four outcomes get distinct copy; pending after exhausted retries is
// never presented as success or failure.
func (h *OrderHandler) HandlePaymentStatus(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	orderID := c.Params("id")

	order, err := h.orderService.GetOrderByID(orderID)
	if err != nil || order.UserID != userID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Order not found",
		})
	}

	outcome, pollErr := h.settlement.PollPayment(c.Context(), orderID)
	switch outcome {
	case services.OutcomeSuccess:
		return c.JSON(fiber.Map{
			"status":  string(outcome),
			"message": "Payment received, your order is confirmed",
		})
	case services.OutcomePending:
		return c.JSON(fiber.Map{
			"status":  string(outcome),
			"message": "Payment is still pending, check again later",
		})
	case services.OutcomeFailed:
		return c.JSON(fiber.Map{
			"status":  string(outcome),
			"message": "Payment failed, the order was not confirmed",
		})
	default:
		log.Printf("Payment polling error for order %s: %v", orderID, pollErr)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"status":  string(services.OutcomeError),
			"message": "Payment status could not be determined, your order is unchanged",
		})
	}
}
