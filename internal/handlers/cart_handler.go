package handlers

import (
	"errors"
	"log"

	"vastrahub/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// CartHandler handles HTTP requests for the buyer's cart.
type CartHandler struct {
	service *services.CartService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{
		service: service,
	}
}

// RegisterRoutes registers the cart routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Put("/:productId", h.HandleReconcile)
}

// HandleGetCart retrieves the authenticated buyer's cart lines.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	lines, err := h.service.GetCart(userID)
	if err != nil {
		log.Printf("Error getting cart for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve cart",
			"error":   err.Error(),
		})
	}
	return c.JSON(lines)
}

// ReconcileRequest maps each size label to the number of boxes wanted;
// zero means the size is not wanted.
type ReconcileRequest struct {
	Selections map[string]int `json:"selections"`
}

// HandleReconcile applies a size/quantity selection for one product to
// the buyer's cart.
func (h *CartHandler) HandleReconcile(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	// Route params point into fasthttp's reusable request buffer; the
	// service persists this string, so it must be copied out.
	productID := utils.CopyString(c.Params("productId"))

	var req ReconcileRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing reconcile request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if len(req.Selections) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "At least one size selection is required",
		})
	}

	if err := h.service.Reconcile(userID, productID, req.Selections); err != nil {
		log.Printf("Cart reconciliation failed for user %s product %s: %v", userID, productID, err)
		if errors.Is(err, services.ErrMinimumSizes) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Select at least 2 different sizes to add this product",
				"error":   err.Error(),
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Could not update cart",
			"error":   err.Error(),
		})
	}

	lines, err := h.service.GetCart(userID)
	if err != nil {
		log.Printf("Error reloading cart for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Cart updated but could not be reloaded",
			"error":   err.Error(),
		})
	}
	return c.JSON(lines)
}
