package domain

import "time"

type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentProcessing PaymentStatus = "processing"
	PaymentCompleted  PaymentStatus = "completed"
	PaymentFailed     PaymentStatus = "failed"
	PaymentRefunded   PaymentStatus = "refunded"
)

// Payment is a single gateway transaction attempt against a booking.
// Status moves forward only (pending -> processing -> completed/failed),
// with refunded as the one exit from completed.
type Payment struct {
	ID                int64         `gorm:"primaryKey" json:"id"`
	BookingID         int64         `gorm:"index;not null" json:"booking_id"`
	Amount            int64         `gorm:"not null" json:"amount"`
	Currency          string        `gorm:"size:8;not null;default:'KES'" json:"currency"`
	Method            string        `gorm:"size:20;not null;default:'mpesa'" json:"method"`
	Phone             string        `gorm:"size:20" json:"phone"`
	Status            PaymentStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	MerchantRequestID string        `gorm:"size:64" json:"merchant_request_id,omitempty"`
	CheckoutRequestID string        `gorm:"size:64;index" json:"checkout_request_id,omitempty"`
	MpesaReceipt      string        `gorm:"size:32" json:"mpesa_receipt,omitempty"`
	TransactionDate   *time.Time    `json:"transaction_date,omitempty"`
	FailureReason     string        `gorm:"type:text" json:"failure_reason,omitempty"`
	RefundReason      string        `gorm:"type:text" json:"refund_reason,omitempty"`
	RefundedAt        *time.Time    `json:"refunded_at,omitempty"`
	PaidAt            *time.Time    `json:"paid_at,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

func (Payment) TableName() string { return "payments" }
