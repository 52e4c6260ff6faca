package payment

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"resortbooking/internal/domain"
	"resortbooking/internal/metrics"
	"resortbooking/internal/mpesa"
	"resortbooking/internal/notify"
)

type Service struct {
	payments PaymentRepository
	bookings BookingStore
	gateway  Gateway
	events   EventPublisher
	logger   *zap.Logger
}

func NewService(
	payments PaymentRepository,
	bookings BookingStore,
	gateway Gateway,
	events EventPublisher,
	logger *zap.Logger,
) *Service {
	return &Service{
		payments: payments,
		bookings: bookings,
		gateway:  gateway,
		events:   events,
		logger:   logger,
	}
}

// Initiate creates a pending Payment for the caller's booking and asks the
// gateway to push the prompt. Gateway rejections are surfaced to the caller
// with the gateway's own message; the Payment records the failure.
func (s *Service) Initiate(ctx context.Context, actor domain.Actor, req InitiatePaymentRequest) (*domain.Payment, error) {
	b, err := s.bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if b.UserID != actor.ID {
		return nil, ErrForbidden
	}
	if b.Status == domain.BookingCancelled {
		return nil, ErrBookingNotPayable
	}
	if b.PaymentStatus == domain.BookingPaid {
		return nil, ErrAlreadyPaid
	}

	phone, err := normalizePhone(req.Phone)
	if err != nil {
		return nil, err
	}

	p := &domain.Payment{
		BookingID: b.ID,
		Amount:    b.TotalAmount,
		Currency:  "KES",
		Method:    "mpesa",
		Phone:     phone,
		Status:    domain.PaymentPending,
	}
	if err := s.payments.Create(ctx, p); err != nil {
		return nil, err
	}

	metrics.PaymentsInitiatedTotal.Inc()

	resp, err := s.gateway.STKPush(ctx, mpesa.STKPushRequest{
		Phone:            phone,
		Amount:           p.Amount,
		AccountReference: b.Reference,
		Description:      "Resort booking " + b.Reference,
	})
	if err != nil {
		p.Status = domain.PaymentFailed
		p.FailureReason = err.Error()
		if uerr := s.payments.Update(ctx, p); uerr != nil {
			s.logger.Error("failed to record gateway rejection",
				zap.Int64("payment_id", p.ID), zap.Error(uerr))
		}
		metrics.PaymentsFailedTotal.WithLabelValues("initiate").Inc()

		var gwErr *mpesa.GatewayError
		if errors.As(err, &gwErr) {
			return nil, gwErr
		}
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnreachable, err)
	}

	p.MerchantRequestID = resp.MerchantRequestID
	p.CheckoutRequestID = resp.CheckoutRequestID
	p.Status = domain.PaymentProcessing
	if err := s.payments.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// HandleCallback processes the gateway webhook. Every return path must be
// acknowledged by the HTTP handler; an unknown correlation id is logged and
// swallowed so the gateway stops redelivering.
func (s *Service) HandleCallback(ctx context.Context, cb mpesa.STKCallback) error {
	p, err := s.payments.GetByCheckoutRequestID(ctx, cb.CheckoutRequestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("callback for unknown checkout request",
				zap.String("checkout_request_id", cb.CheckoutRequestID),
				zap.Int("result_code", cb.ResultCode))
			return nil
		}
		return err
	}

	if cb.ResultCode == 0 {
		return s.resolve(ctx, p, outcome{
			success: true,
			receipt: cb.CallbackMetadata.ReceiptNumber(),
			txnDate: cb.CallbackMetadata.TransactionDate(),
			desc:    cb.ResultDesc,
		})
	}
	return s.resolve(ctx, p, outcome{success: false, desc: cb.ResultDesc})
}

// Status returns the payment, actively re-querying the gateway while it is
// still processing. Webhook delivery is not guaranteed; this poll is the
// fallback consistency mechanism and converges through the same resolver.
func (s *Service) Status(ctx context.Context, actor domain.Actor, paymentID int64) (*domain.Payment, error) {
	p, err := s.getAuthorized(ctx, actor, paymentID)
	if err != nil {
		return nil, err
	}
	if p.Status != domain.PaymentProcessing {
		return p, nil
	}

	resp, err := s.gateway.STKQuery(ctx, p.CheckoutRequestID)
	if err != nil {
		if errors.Is(err, mpesa.ErrTransactionInProgress) {
			return p, nil
		}
		// transient gateway trouble: report the last known state, the
		// caller will poll again
		s.logger.Warn("stk query failed",
			zap.Int64("payment_id", p.ID), zap.Error(err))
		return p, nil
	}

	if resp.ResultCode == "0" {
		// the query endpoint does not return the receipt; a callback
		// arriving after the poll backfills it through resolve
		err = s.resolve(ctx, p, outcome{success: true, desc: resp.ResultDesc})
	} else {
		err = s.resolve(ctx, p, outcome{success: false, desc: resp.ResultDesc})
	}
	if err != nil {
		return nil, err
	}

	return s.payments.GetByID(ctx, paymentID)
}

// Refund reverses a completed payment exactly once and cascades the owning
// booking to cancelled/refunded.
func (s *Service) Refund(ctx context.Context, actor domain.Actor, paymentID int64, reason string) (*domain.Payment, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if strings.TrimSpace(reason) == "" {
		return nil, ErrReasonRequired
	}

	p, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if p.Status != domain.PaymentCompleted {
		return nil, ErrNotRefundable
	}

	changed, err := s.payments.MarkRefundedIfCompleted(ctx, p.ID, reason)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, ErrNotRefundable
	}

	metrics.PaymentsRefundedTotal.Inc()

	if err := s.bookings.MarkRefundCancelled(ctx, p.BookingID, "payment refunded: "+reason); err != nil {
		s.logger.Error("refund cascade failed",
			zap.Int64("booking_id", p.BookingID), zap.Error(err))
		return nil, err
	}

	if b, err := s.bookings.GetByID(ctx, p.BookingID); err == nil {
		ev := notify.NewEvent(notify.KindBookingCancelled, b.GuestEmail, b.ID)
		ev.GuestName = b.GuestName
		ev.Reference = b.Reference
		ev.Reason = "payment refunded: " + reason
		s.publish(ctx, ev)
	}

	return s.payments.GetByID(ctx, paymentID)
}

type outcome struct {
	success bool
	receipt string
	txnDate *time.Time
	desc    string
}

// resolve is the single terminal-mutation routine shared by the webhook and
// the poll. The conditional repository updates make it idempotent: whichever
// trigger arrives second finds the payment already resolved and does nothing.
func (s *Service) resolve(ctx context.Context, p *domain.Payment, o outcome) error {
	if !o.success {
		changed, err := s.payments.MarkFailedIfProcessing(ctx, p.ID, o.desc)
		if err != nil {
			return err
		}
		if changed {
			metrics.PaymentsFailedTotal.WithLabelValues("gateway").Inc()
			s.logger.Info("payment failed",
				zap.Int64("payment_id", p.ID),
				zap.String("reason", o.desc))
		}
		return nil
	}

	changed, err := s.payments.MarkCompletedIfProcessing(ctx, p.ID, o.receipt, o.txnDate)
	if err != nil {
		return err
	}
	if !changed {
		// when the poll resolved the payment first, it completed without a
		// receipt; take it from the callback instead of dropping it
		if o.receipt != "" {
			filled, berr := s.payments.BackfillReceiptIfMissing(ctx, p.ID, o.receipt, o.txnDate)
			if berr != nil {
				return berr
			}
			if filled {
				s.logger.Info("receipt backfilled after poll resolution",
					zap.Int64("payment_id", p.ID),
					zap.String("receipt", o.receipt))
				return nil
			}
		}
		metrics.CallbackReplaysTotal.Inc()
		s.logger.Info("payment already resolved, ignoring",
			zap.Int64("payment_id", p.ID))
		return nil
	}

	metrics.PaymentsCompletedTotal.Inc()

	if err := s.bookings.MarkConfirmedPaid(ctx, p.BookingID); err != nil {
		s.logger.Error("failed to confirm booking after payment",
			zap.Int64("booking_id", p.BookingID), zap.Error(err))
		return err
	}

	b, err := s.bookings.GetByID(ctx, p.BookingID)
	if err != nil {
		s.logger.Warn("cannot load booking for notifications",
			zap.Int64("booking_id", p.BookingID), zap.Error(err))
		return nil
	}

	confirmed := notify.NewEvent(notify.KindBookingConfirmed, b.GuestEmail, b.ID)
	confirmed.GuestName = b.GuestName
	confirmed.Reference = b.Reference
	confirmed.CheckIn = b.CheckIn
	confirmed.CheckOut = b.CheckOut
	s.publish(ctx, confirmed)

	receipt := notify.NewEvent(notify.KindPaymentReceipt, b.GuestEmail, b.ID)
	receipt.GuestName = b.GuestName
	receipt.Reference = b.Reference
	receipt.Amount = p.Amount
	receipt.Receipt = o.receipt
	s.publish(ctx, receipt)

	return nil
}

func (s *Service) getAuthorized(ctx context.Context, actor domain.Actor, paymentID int64) (*domain.Payment, error) {
	p, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	b, err := s.bookings.GetByID(ctx, p.BookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != actor.ID && !actor.IsStaff() {
		return nil, ErrForbidden
	}
	return p, nil
}

func (s *Service) publish(ctx context.Context, ev notify.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.logger.Warn("failed to publish notification event",
			zap.String("kind", string(ev.Kind)), zap.Error(err))
	}
}

var phonePattern = regexp.MustCompile(`^254(7|1)\d{8}$`)

// normalizePhone accepts 07XX..., +2547XX... and 2547XX... and returns the
// 2547XXXXXXXX form the gateway requires.
func normalizePhone(raw string) (string, error) {
	p := strings.TrimSpace(raw)
	p = strings.TrimPrefix(p, "+")
	if strings.HasPrefix(p, "0") {
		p = "254" + p[1:]
	}
	if !phonePattern.MatchString(p) {
		return "", ErrInvalidPhone
	}
	return p, nil
}
