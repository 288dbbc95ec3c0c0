package services

import "time"

// Notification is a best-effort message to a buyer or administrator,
// delivered by an external channel (email or SMS).
type Notification struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Notifier delivers notifications. Send failures never roll back the
// operation that triggered them.
type Notifier interface {
	Send(n Notification) error
}

// FulfillmentLine is one order line in the normalized fulfillment payload.
type FulfillmentLine struct {
	ProductID      string  `json:"product_id"`
	ProductTitle   string  `json:"product_title"`
	Size           string  `json:"size"`
	Quantity       int     `json:"quantity"` // boxes
	NoOfPieces     int     `json:"no_of_pieces"`
	PricePerPiece  float64 `json:"price_per_piece"`
	LineTotal      float64 `json:"line_total"`
	LineWithoutTax float64 `json:"line_without_tax"`
	LineTax        float64 `json:"line_tax"`
}

// FulfillmentPayload is the normalized order handed to the external
// fulfillment/ERP system.
type FulfillmentPayload struct {
	OrderID    string            `json:"order_id"`
	UserID     string            `json:"user_id"`
	Lines      []FulfillmentLine `json:"lines"`
	Subtotal   float64           `json:"subtotal"`
	GST        float64           `json:"gst"`
	GrandTotal float64           `json:"grand_total"`
	Address    string            `json:"address"`
	Transport  string            `json:"transport"`
	Email      string            `json:"email"`
	Phone      string            `json:"phone"`
	GstinPan   string            `json:"gstin_pan"`
	PayLater   bool              `json:"pay_later"`
	PlacedAt   time.Time         `json:"placed_at"`
}

// FulfillmentSync submits a normalized order to the external
// fulfillment system. The system is expected to decrement stock itself
// when submission succeeds.
type FulfillmentSync interface {
	Submit(payload FulfillmentPayload) error
}
