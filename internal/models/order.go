package models

import "time"

// OrderStatus is the persisted lifecycle state of an order.
type OrderStatus string

const (
	// StatusPendingPayment is set at creation, before the gateway confirms.
	StatusPendingPayment OrderStatus = "PENDING_PAYMENT"
	// StatusOrdered is set exactly once, when settlement runs.
	StatusOrdered OrderStatus = "ORDERED"
	// StatusFailed is set when the gateway reports a non-pending,
	// non-completed status.
	StatusFailed OrderStatus = "FAILED"
)

// OrderLine is a frozen copy of a cart line plus its computed amounts.
// Immutable once the order is created.
type OrderLine struct {
	ID             uint    `json:"-" gorm:"primaryKey;autoIncrement"`
	OrderID        string  `json:"-" gorm:"index;type:varchar(36)"`
	ProductID      string  `json:"product_id" gorm:"type:varchar(36)"`
	ProductTitle   string  `json:"product_title"`
	Size           string  `json:"size"`
	Quantity       int     `json:"quantity"` // boxes
	NoOfPieces     int     `json:"no_of_pieces"`
	BoxPieces      int     `json:"box_pieces"`
	PricePerPiece  float64 `json:"price_per_piece"`
	LineTotal      float64 `json:"line_total"`       // GST-inclusive
	LineWithoutTax float64 `json:"line_without_tax"` // back-calculated
	LineTax        float64 `json:"line_tax"`
}

// Order is a placed order. Created once; only the settlement machine
// mutates it afterwards (status, payment fields), and it is never deleted.
type Order struct {
	ID              string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID          string      `json:"user_id" gorm:"index;type:varchar(36)"`
	OrderItems      []OrderLine `json:"order_items" gorm:"foreignKey:OrderID"`
	Subtotal        float64     `json:"subtotal"` // tax-exclusive
	GST             float64     `json:"gst"`
	GrandTotal      float64     `json:"grand_total"`
	Address         string      `json:"address"`
	Transport       string      `json:"transport"`
	Email           string      `json:"email"`
	Phone           string      `json:"phone"`
	GstinPan        string      `json:"gstin_pan"`
	PayLater        bool        `json:"pay_later"`
	OrderStatus     OrderStatus `json:"order_status" gorm:"type:varchar(20)"`
	PaymentDone     bool        `json:"payment_done"`
	PaymentResponse string      `json:"payment_response,omitempty"` // raw gateway payload
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// UnsyncedOrder is a fulfillment payload that could not be delivered to
// the external fulfillment system and awaits manual handling.
type UnsyncedOrder struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID   string    `json:"order_id" gorm:"index;type:varchar(36)"`
	Payload   string    `json:"payload"` // normalized fulfillment payload, JSON
	SyncError string    `json:"sync_error"`
	CreatedAt time.Time `json:"created_at"`
}

// Banner is a storefront banner document; the first banner also carries
// the store-open flag consulted during settlement.
type Banner struct {
	ID        uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	Title     string `json:"title"`
	ImageURL  string `json:"image_url"`
	StoreOpen bool   `json:"store_open"`
}
