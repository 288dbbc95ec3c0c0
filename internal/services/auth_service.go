package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"vastrahub/internal/models"
	"vastrahub/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// ErrOTPExpired is returned when the one-time code is no longer valid.
var ErrOTPExpired = errors.New("one-time code has expired, request a new one")

// RegisterRequest carries the business profile completed after the
// phone is verified. The account stays unapproved until an
// administrator approves it.
type RegisterRequest struct {
	BusinessName string `json:"business_name" validate:"required,min=3,max=200"`
	Email        string `json:"email" validate:"required,email"`
	Address      string `json:"address" validate:"required,max=500"`
	GstinPan     string `json:"gstin_pan" validate:"omitempty,max=20"`
}

// AuthService handles phone-OTP authentication and the buyer
// registration/approval workflow.
type AuthService struct {
	userRepo   repositories.UserRepository
	notifier   Notifier
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which JWT is valid
	otpTTL     time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, notifier Notifier, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		notifier:   notifier,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: 24 * time.Hour, // Token valid for 24 hours
		otpTTL:     5 * time.Minute,
	}
}

// RequestOTP issues a one-time code to a phone number. The code itself
// is never stored; only its bcrypt hash lands on the user record. A
// first-time phone gets a bare, unapproved account.
func (s *AuthService) RequestOTP(phone string) error {
	user, err := s.userRepo.GetByPhone(phone)
	if err != nil {
		user = &models.User{Phone: phone}
		if err := s.userRepo.Create(user); err != nil {
			return fmt.Errorf("failed to create account for %s: %w", phone, err)
		}
	}

	code, err := generateOTP()
	if err != nil {
		return fmt.Errorf("failed to generate one-time code: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash one-time code: %w", err)
	}
	user.OTPHash = string(hash)
	user.OTPExpiresAt = time.Now().Add(s.otpTTL)
	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to store one-time code: %w", err)
	}

	// Delivery is the whole point of this call, so a send failure is a
	// hard failure, unlike the best-effort notices elsewhere.
	notice := Notification{
		To:      phone,
		Subject: "VastraHub login code",
		Body:    fmt.Sprintf("Your VastraHub verification code is %s", code),
	}
	if err := s.notifier.Send(notice); err != nil {
		return fmt.Errorf("failed to deliver one-time code: %w", err)
	}
	return nil
}

// VerifyOTP checks a one-time code and issues a session token carrying
// the verified phone identity.
func (s *AuthService) VerifyOTP(phone, code string) (string, error) {
	user, err := s.userRepo.GetByPhone(phone)
	if err != nil {
		// Do not reveal whether the phone is known.
		return "", fmt.Errorf("invalid code")
	}
	if user.OTPHash == "" || time.Now().After(user.OTPExpiresAt) {
		return "", ErrOTPExpired
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.OTPHash), []byte(code)); err != nil {
		return "", fmt.Errorf("invalid code")
	}

	// A code is single-use.
	user.OTPHash = ""
	user.OTPExpiresAt = time.Time{}
	if err := s.userRepo.Update(user); err != nil {
		return "", fmt.Errorf("failed to consume one-time code: %w", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"phone":    user.Phone,
		"approved": user.Approved,
		"exp":      time.Now().Add(s.tokenDurat).Unix(), // Token expiration time
		"iat":      time.Now().Unix(),                   // Issued at time
	})
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// Register completes the business profile of a verified account. The
// account remains unapproved until Approve is called.
func (s *AuthService) Register(userID string, req RegisterRequest) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	user.BusinessName = req.BusinessName
	user.Email = req.Email
	user.Address = req.Address
	user.GstinPan = req.GstinPan
	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	return user, nil
}

// Approve marks a registered account as approved for ordering.
func (s *AuthService) Approve(userID string) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return fmt.Errorf("failed to load account for approval: %w", err)
	}
	if user.Approved {
		return nil
	}
	user.Approved = true
	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to approve user %s: %w", userID, err)
	}
	return nil
}

// ValidateToken parses and validates a session token, returning the
// claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the alg is what we expect:
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}

// generateOTP returns a 6-digit numeric code from crypto/rand.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
