package payment

import (
	"context"
	"time"

	"resortbooking/internal/domain"
	"resortbooking/internal/mpesa"
	"resortbooking/internal/notify"
)

type PaymentRepository interface {
	Create(ctx context.Context, p *domain.Payment) error
	GetByID(ctx context.Context, id int64) (*domain.Payment, error)
	GetByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*domain.Payment, error)
	Update(ctx context.Context, p *domain.Payment) error
	MarkCompletedIfProcessing(ctx context.Context, paymentID int64, receipt string, txnDate *time.Time) (bool, error)
	MarkFailedIfProcessing(ctx context.Context, paymentID int64, reason string) (bool, error)
	BackfillReceiptIfMissing(ctx context.Context, paymentID int64, receipt string, txnDate *time.Time) (bool, error)
	MarkRefundedIfCompleted(ctx context.Context, paymentID int64, reason string) (bool, error)
}

type BookingStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	MarkConfirmedPaid(ctx context.Context, bookingID int64) error
	MarkRefundCancelled(ctx context.Context, bookingID int64, reason string) error
}

// Gateway is the Daraja surface the reconciliation needs; tests substitute a
// fake instead of the HTTP client.
type Gateway interface {
	STKPush(ctx context.Context, req mpesa.STKPushRequest) (*mpesa.STKPushResponse, error)
	STKQuery(ctx context.Context, checkoutRequestID string) (*mpesa.STKQueryResponse, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, ev notify.Event) error
}
