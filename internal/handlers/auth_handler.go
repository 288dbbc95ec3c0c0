package handlers

import (
	"fmt"
	"log"

	"vastrahub/internal/middleware"
	"vastrahub/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for phone-OTP authentication and
// account registration.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the authentication routes with the Fiber
// app. adminOnly guards the account-approval route.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, adminOnly fiber.Handler) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/request-otp", h.HandleRequestOTP)
	authRoutes.Post("/verify-otp", h.HandleVerifyOTP)
	authRoutes.Post("/register", middleware.AuthRequired(h.authService), h.HandleRegister)

	router.Patch("/users/:id/approve", middleware.AuthRequired(h.authService), adminOnly, h.HandleApprove)
}

// OTPRequest is the request body for requesting a one-time code.
type OTPRequest struct {
	Phone string `json:"phone" validate:"required,e164"`
}

// HandleRequestOTP sends a one-time login code to a phone number.
func (h *AuthHandler) HandleRequestOTP(c *fiber.Ctx) error {
	var req OTPRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing OTP request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	if err := h.authService.RequestOTP(req.Phone); err != nil {
		log.Printf("Error issuing OTP for %s: %v", req.Phone, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not send verification code",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message": "Verification code sent",
	})
}

// VerifyRequest is the request body for verifying a one-time code.
type VerifyRequest struct {
	Phone string `json:"phone" validate:"required,e164"`
	Code  string `json:"code" validate:"required,len=6"`
}

// HandleVerifyOTP verifies a one-time code and issues a session token.
func (h *AuthHandler) HandleVerifyOTP(c *fiber.Ctx) error {
	var req VerifyRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing verify request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	token, err := h.authService.VerifyOTP(req.Phone, req.Code)
	if err != nil {
		log.Printf("OTP verification failed for %s: %v", req.Phone, err)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Verification failed",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message": "Phone verified",
		"token":   token,
	})
}

// HandleRegister completes the business profile of the authenticated
// account; the account remains pending approval.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Session does not identify a user",
		})
	}

	var req services.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing register request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	user, err := h.authService.Register(userID, req)
	if err != nil {
		log.Printf("Error registering user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not register user",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Registration submitted, pending approval",
		"user":    user,
	})
}

// HandleApprove marks an account as approved for ordering.
func (h *AuthHandler) HandleApprove(c *fiber.Ctx) error {
	userID := c.Params("id")
	if err := h.authService.Approve(userID); err != nil {
		log.Printf("Error approving user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not approve user",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message": "Account approved",
	})
}

// validationError renders validator failures as a field→reason map.
func validationError(c *fiber.Ctx, err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}
