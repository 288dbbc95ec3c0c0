package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"vastrahub/internal/models"
	"vastrahub/internal/payment"
	"vastrahub/internal/repositories"
	"vastrahub/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

// captureNotifier records notifications so the test can read OTP codes.
type captureNotifier struct {
	mu   sync.Mutex
	sent []services.Notification
}

func (n *captureNotifier) Send(notice services.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notice)
	return nil
}

func (n *captureNotifier) lastCode() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	body := n.sent[len(n.sent)-1].Body
	fields := strings.Fields(body)
	return fields[len(fields)-1]
}

// recordingSync records submitted fulfillment payloads.
type recordingSync struct {
	mu       sync.Mutex
	payloads []services.FulfillmentPayload
}

func (s *recordingSync) Submit(payload services.FulfillmentPayload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads = append(s.payloads, payload)
	return nil
}

// scriptedGateway replays a fixed sequence of gateway answers.
type scriptedGateway struct {
	mu       sync.Mutex
	statuses []*payment.Status
	calls    int
}

func (g *scriptedGateway) GetStatus(transactionID string) (*payment.Status, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := g.calls
	if i >= len(g.statuses) {
		i = len(g.statuses) - 1
	}
	g.calls++
	return g.statuses[i], nil
}

const testAdminPhone = "+911112223334"

type testEnv struct {
	app      *fiber.App
	notifier *captureNotifier
	sync     *recordingSync
	gateway  *scriptedGateway
	cartRepo *repositories.MockCartRepository
	product  *models.Product
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	productRepo := repositories.NewMockProductRepository()
	product := &models.Product{
		ID:             "prod-kurta",
		Title:          "Cotton Kurta",
		GSTRatePercent: 5,
		Sizes: []models.SizeOption{
			{InventoryID: "KUR-S", Size: "S", PricePerPiece: 120, BoxPieces: 10, PiecesInStock: 25},
			{InventoryID: "KUR-M", Size: "M", PricePerPiece: 130, BoxPieces: 10, PiecesInStock: 30},
		},
	}
	assert.NoError(t, productRepo.Create(product))

	bannerRepo := repositories.NewMockBannerRepository()
	assert.NoError(t, bannerRepo.Save(&models.Banner{Title: "Test", StoreOpen: true}))

	notifier := &captureNotifier{}
	syncClient := &recordingSync{}
	gateway := &scriptedGateway{statuses: []*payment.Status{
		{State: payment.StatePending},
		{State: payment.StateCompleted, Raw: `{"utr":"123"}`},
	}}
	cartRepo := repositories.NewMockCartRepository()

	app := newApp(appDeps{
		productRepo:  productRepo,
		userRepo:     repositories.NewMockUserRepository(),
		cartRepo:     cartRepo,
		orderRepo:    repositories.NewMockOrderRepository(),
		bannerRepo:   bannerRepo,
		unsyncedRepo: repositories.NewMockUnsyncedOrderRepository(),
		gateway:      gateway,
		sync:         syncClient,
		notifier:     notifier,
		jwtSecret:    "test_jwt_secret",
		adminPhone:   testAdminPhone,
		pollInterval: time.Millisecond,
		pollAttempts: 8,
	})
	return &testEnv{app: app, notifier: notifier, sync: syncClient, gateway: gateway, cartRepo: cartRepo, product: product}
}

func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, path, reader)
	assert.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, 5000)
	assert.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	resp.Body.Close()
	var decoded map[string]interface{}
	_ = json.Unmarshal(raw, &decoded)
	return resp, decoded
}

// login drives the OTP flow and returns a session token.
func (e *testEnv) login(t *testing.T, phone string) string {
	t.Helper()
	resp, _ := e.request(t, http.MethodPost, "/api/v1/auth/request-otp", "", fiber.Map{"phone": phone})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := e.request(t, http.MethodPost, "/api/v1/auth/verify-otp", "", fiber.Map{
		"phone": phone,
		"code":  e.notifier.lastCode(),
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := body["token"].(string)
	assert.NotEmpty(t, token)
	return token
}

// approvedLogin registers a fresh account, has the administrator
// approve it, then logs the buyer in again so the session claim
// reflects the approval.
func (e *testEnv) approvedLogin(t *testing.T, phone string) (string, string) {
	t.Helper()
	token := e.login(t, phone)

	resp, body := e.request(t, http.MethodPost, "/api/v1/auth/register", token, fiber.Map{
		"business_name": "Shree Textiles",
		"email":         "owner@shreetextiles.example",
		"address":       "14 Gandhi Market, Surat",
		"gstin_pan":     "24ABCDE1234F1Z5",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	user, _ := body["user"].(map[string]interface{})
	userID, _ := user["id"].(string)
	assert.NotEmpty(t, userID)

	adminToken := e.login(t, testAdminPhone)
	resp, _ = e.request(t, http.MethodPatch, "/api/v1/users/"+userID+"/approve", adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	return e.login(t, phone), userID
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)
	resp, body := env.request(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
}

func TestUnauthenticatedAccessRejected(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.request(t, http.MethodGet, "/api/v1/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = env.request(t, http.MethodGet, "/api/v1/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Banners are public.
	resp, _ = env.request(t, http.MethodGet, "/api/v1/banners", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUnapprovedAccountCannotOrder(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "+919876543210")

	// Browsing works with a verified phone.
	resp, _ := env.request(t, http.MethodGet, "/api/v1/products", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Ordering requires approval.
	resp, _ = env.request(t, http.MethodGet, "/api/v1/cart", token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestEndToEndOrderFlow(t *testing.T) {
	env := newTestEnv(t)
	phone := "+919876543210"
	token, userID := env.approvedLogin(t, phone)

	// Two sizes are required for a wholesale selection.
	resp, _ := env.request(t, http.MethodPut, "/api/v1/cart/prod-kurta", token, fiber.Map{
		"selections": map[string]int{"S": 2},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.request(t, http.MethodPut, "/api/v1/cart/prod-kurta", token, fiber.Map{
		"selections": map[string]int{"S": 2, "M": 1},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Checkout snapshots the cart and hands back a transaction id.
	resp, body := env.request(t, http.MethodPost, "/api/v1/orders", token, fiber.Map{
		"address":   "14 Gandhi Market, Surat",
		"transport": "Shree Roadways",
		"email":     "owner@shreetextiles.example",
		"phone":     phone,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	txnID, _ := body["transaction_id"].(string)
	order, _ := body["order"].(map[string]interface{})
	orderID, _ := order["id"].(string)
	assert.Equal(t, payment.TransactionID(orderID), txnID)

	// Poll the payment: pending then completed settles the order.
	resp, body = env.request(t, http.MethodGet, "/api/v1/orders/"+orderID+"/payment", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "success", body["status"])

	// Fulfillment got exactly one payload and the cart is empty.
	assert.Len(t, env.sync.payloads, 1)
	assert.Equal(t, orderID, env.sync.payloads[0].OrderID)
	lines, _ := env.cartRepo.GetByUser(userID)
	assert.Empty(t, lines)

	resp, body = env.request(t, http.MethodGet, "/api/v1/orders/"+orderID, token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, string(models.StatusOrdered), body["order_status"])
	assert.Equal(t, true, body["payment_done"])
}

func TestSelfApprovalRejected(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "+919876543210")

	resp, body := env.request(t, http.MethodPost, "/api/v1/auth/register", token, fiber.Map{
		"business_name": "Shree Textiles",
		"email":         "owner@shreetextiles.example",
		"address":       "14 Gandhi Market, Surat",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	user, _ := body["user"].(map[string]interface{})
	userID, _ := user["id"].(string)

	// A buyer cannot approve accounts, not even their own.
	resp, _ = env.request(t, http.MethodPatch, "/api/v1/users/"+userID+"/approve", token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Approval stays with the administrator.
	adminToken := env.login(t, testAdminPhone)
	resp, _ = env.request(t, http.MethodPatch, "/api/v1/users/"+userID+"/approve", adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCartLinesSurviveLaterRequests(t *testing.T) {
	env := newTestEnv(t)
	token, userID := env.approvedLogin(t, "+919876543210")

	resp, _ := env.request(t, http.MethodPut, "/api/v1/cart/prod-kurta", token, fiber.Map{
		"selections": map[string]int{"S": 2, "M": 1},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Later requests reuse fasthttp's request buffer; the persisted
	// lines must not alias it.
	for i := 0; i < 3; i++ {
		resp, _ = env.request(t, http.MethodGet, "/health", "", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}

	lines, err := env.cartRepo.GetByUser(userID)
	assert.NoError(t, err)
	assert.Len(t, lines, 2)
	for _, line := range lines {
		assert.Equal(t, "prod-kurta", line.ProductID)
	}
}

func TestPaymentStatusUnknownOrder(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.approvedLogin(t, "+919876543210")

	resp, _ := env.request(t, http.MethodGet, "/api/v1/orders/nope/payment", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
