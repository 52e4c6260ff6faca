package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"resortbooking/internal/domain"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	var p domain.Payment
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) GetByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*domain.Payment, error) {
	// rows that never reached the gateway carry an empty id; never match those
	if checkoutRequestID == "" {
		return nil, gorm.ErrRecordNotFound
	}

	var p domain.Payment
	err := r.db.WithContext(ctx).
		Where("checkout_request_id = ?", checkoutRequestID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) Update(ctx context.Context, p *domain.Payment) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// MarkCompletedIfProcessing is the idempotency guard for payment resolution:
// the conditional UPDATE succeeds at most once per payment, so a replayed
// callback (or a poll racing the callback) becomes a no-op. Returns whether
// this call was the one that resolved the payment.
func (r *PaymentRepository) MarkCompletedIfProcessing(ctx context.Context, paymentID int64, receipt string, txnDate *time.Time) (bool, error) {
	now := time.Now().UTC()
	tx := r.db.WithContext(ctx).
		Model(&domain.Payment{}).
		Where("id = ? AND status = ?", paymentID, domain.PaymentProcessing).
		Updates(map[string]any{
			"status":           domain.PaymentCompleted,
			"mpesa_receipt":    receipt,
			"transaction_date": txnDate,
			"paid_at":          &now,
			"updated_at":       now,
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// MarkFailedIfProcessing carries the same guard for the failure path.
func (r *PaymentRepository) MarkFailedIfProcessing(ctx context.Context, paymentID int64, reason string) (bool, error) {
	tx := r.db.WithContext(ctx).
		Model(&domain.Payment{}).
		Where("id = ? AND status = ?", paymentID, domain.PaymentProcessing).
		Updates(map[string]any{
			"status":         domain.PaymentFailed,
			"failure_reason": reason,
			"updated_at":     time.Now().UTC(),
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// BackfillReceiptIfMissing fills in the receipt on a payment the status poll
// already completed. The query endpoint never returns the receipt, so a
// callback that loses the race still carries data worth keeping.
func (r *PaymentRepository) BackfillReceiptIfMissing(ctx context.Context, paymentID int64, receipt string, txnDate *time.Time) (bool, error) {
	tx := r.db.WithContext(ctx).
		Model(&domain.Payment{}).
		Where("id = ? AND status = ? AND mpesa_receipt = ''", paymentID, domain.PaymentCompleted).
		Updates(map[string]any{
			"mpesa_receipt":    receipt,
			"transaction_date": txnDate,
			"updated_at":       time.Now().UTC(),
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// MarkRefundedIfCompleted allows exactly one refund per completed payment.
func (r *PaymentRepository) MarkRefundedIfCompleted(ctx context.Context, paymentID int64, reason string) (bool, error) {
	now := time.Now().UTC()
	tx := r.db.WithContext(ctx).
		Model(&domain.Payment{}).
		Where("id = ? AND status = ?", paymentID, domain.PaymentCompleted).
		Updates(map[string]any{
			"status":        domain.PaymentRefunded,
			"refund_reason": reason,
			"refunded_at":   &now,
			"updated_at":    now,
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}
