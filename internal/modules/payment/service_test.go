package payment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"resortbooking/internal/domain"
	"resortbooking/internal/mpesa"
)

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	args := m.Called(ctx, p)
	if args.Error(0) == nil && p != nil {
		p.ID = 321 // simulate DB insert
	}
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) GetByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*domain.Payment, error) {
	args := m.Called(ctx, checkoutRequestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) Update(ctx context.Context, p *domain.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPaymentRepository) MarkCompletedIfProcessing(ctx context.Context, paymentID int64, receipt string, txnDate *time.Time) (bool, error) {
	args := m.Called(ctx, paymentID, receipt, txnDate)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentRepository) MarkFailedIfProcessing(ctx context.Context, paymentID int64, reason string) (bool, error) {
	args := m.Called(ctx, paymentID, reason)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentRepository) BackfillReceiptIfMissing(ctx context.Context, paymentID int64, receipt string, txnDate *time.Time) (bool, error) {
	args := m.Called(ctx, paymentID, receipt, txnDate)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentRepository) MarkRefundedIfCompleted(ctx context.Context, paymentID int64, reason string) (bool, error) {
	args := m.Called(ctx, paymentID, reason)
	return args.Bool(0), args.Error(1)
}

type MockBookingStore struct {
	mock.Mock
}

func (m *MockBookingStore) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingStore) MarkConfirmedPaid(ctx context.Context, bookingID int64) error {
	args := m.Called(ctx, bookingID)
	return args.Error(0)
}

func (m *MockBookingStore) MarkRefundCancelled(ctx context.Context, bookingID int64, reason string) error {
	args := m.Called(ctx, bookingID, reason)
	return args.Error(0)
}

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) STKPush(ctx context.Context, req mpesa.STKPushRequest) (*mpesa.STKPushResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mpesa.STKPushResponse), args.Error(1)
}

func (m *MockGateway) STKQuery(ctx context.Context, checkoutRequestID string) (*mpesa.STKQueryResponse, error) {
	args := m.Called(ctx, checkoutRequestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mpesa.STKQueryResponse), args.Error(1)
}

func newTestService(payments *MockPaymentRepository, bookings *MockBookingStore, gateway *MockGateway) *Service {
	return NewService(payments, bookings, gateway, nil, zap.NewNop())
}

func payableBooking() *domain.Booking {
	return &domain.Booking{
		ID:            55,
		UserID:        7,
		Reference:     "RB-ABC123-XY9Z",
		TotalAmount:   25500,
		Status:        domain.BookingPending,
		PaymentStatus: domain.BookingUnpaid,
		GuestName:     "Wanjiku Kamau",
		GuestEmail:    "wanjiku@gmail.com",
	}
}

func guest() domain.Actor {
	return domain.Actor{ID: 7, Role: domain.RoleGuest}
}

func TestService_Initiate_Success(t *testing.T) {
	payments := new(MockPaymentRepository)
	bookings := new(MockBookingStore)
	gateway := new(MockGateway)

	bookings.On("GetByID", mock.Anything, int64(55)).Return(payableBooking(), nil)
	payments.On("Create", mock.Anything, mock.Anything).Return(nil)
	gateway.On("STKPush", mock.Anything, mock.MatchedBy(func(req mpesa.STKPushRequest) bool {
		return req.Phone == "254712345678" && req.Amount == 25500
	})).Return(&mpesa.STKPushResponse{
		MerchantRequestID: "mr-1",
		CheckoutRequestID: "ws_CO_191220191020363925",
		ResponseCode:      "0",
	}, nil)
	payments.On("Update", mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(payments, bookings, gateway)

	p, err := svc.Initiate(context.Background(), guest(), InitiatePaymentRequest{
		BookingID: 55,
		Phone:     "0712345678",
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.PaymentProcessing, p.Status)
	assert.Equal(t, "ws_CO_191220191020363925", p.CheckoutRequestID)
	assert.Equal(t, int64(25500), p.Amount)
	assert.Equal(t, "254712345678", p.Phone)
	gateway.AssertExpectations(t)
}

func TestService_Initiate_GatewayRejection(t *testing.T) {
	payments := new(MockPaymentRepository)
	bookings := new(MockBookingStore)
	gateway := new(MockGateway)

	bookings.On("GetByID", mock.Anything, int64(55)).Return(payableBooking(), nil)
	payments.On("Create", mock.Anything, mock.Anything).Return(nil)
	gateway.On("STKPush", mock.Anything, mock.Anything).Return(nil, &mpesa.GatewayError{
		Code:    "400.002.02",
		Message: "Bad Request - Invalid Amount",
	})
	payments.On("Update", mock.Anything, mock.MatchedBy(func(p *domain.Payment) bool {
		return p.Status == domain.PaymentFailed && p.FailureReason != ""
	})).Return(nil)

	svc := newTestService(payments, bookings, gateway)

	_, err := svc.Initiate(context.Background(), guest(), InitiatePaymentRequest{
		BookingID: 55,
		Phone:     "0712345678",
	})

	var gwErr *mpesa.GatewayError
	assert.ErrorAs(t, err, &gwErr)
	payments.AssertExpectations(t)
}

func TestService_Initiate_ForbiddenForOtherGuest(t *testing.T) {
	bookings := new(MockBookingStore)
	bookings.On("GetByID", mock.Anything, int64(55)).Return(payableBooking(), nil)

	svc := newTestService(new(MockPaymentRepository), bookings, new(MockGateway))

	other := domain.Actor{ID: 99, Role: domain.RoleGuest}
	_, err := svc.Initiate(context.Background(), other, InitiatePaymentRequest{
		BookingID: 55, Phone: "0712345678",
	})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestService_Initiate_AlreadyPaid(t *testing.T) {
	b := payableBooking()
	b.PaymentStatus = domain.BookingPaid
	bookings := new(MockBookingStore)
	bookings.On("GetByID", mock.Anything, int64(55)).Return(b, nil)

	svc := newTestService(new(MockPaymentRepository), bookings, new(MockGateway))

	_, err := svc.Initiate(context.Background(), guest(), InitiatePaymentRequest{
		BookingID: 55, Phone: "0712345678",
	})
	assert.ErrorIs(t, err, ErrAlreadyPaid)
}

func TestService_Initiate_CancelledBookingNotPayable(t *testing.T) {
	b := payableBooking()
	b.Status = domain.BookingCancelled
	bookings := new(MockBookingStore)
	bookings.On("GetByID", mock.Anything, int64(55)).Return(b, nil)

	svc := newTestService(new(MockPaymentRepository), bookings, new(MockGateway))

	_, err := svc.Initiate(context.Background(), guest(), InitiatePaymentRequest{
		BookingID: 55, Phone: "0712345678",
	})
	assert.ErrorIs(t, err, ErrBookingNotPayable)
}

func TestService_Initiate_InvalidPhone(t *testing.T) {
	bookings := new(MockBookingStore)
	bookings.On("GetByID", mock.Anything, int64(55)).Return(payableBooking(), nil)

	svc := newTestService(new(MockPaymentRepository), bookings, new(MockGateway))

	_, err := svc.Initiate(context.Background(), guest(), InitiatePaymentRequest{
		BookingID: 55, Phone: "12345",
	})
	assert.ErrorIs(t, err, ErrInvalidPhone)
}

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"0712345678", "254712345678", true},
		{"+254712345678", "254712345678", true},
		{"254712345678", "254712345678", true},
		{"0110345678", "254110345678", true},
		{"0812345678", "", false},
		{"25471234567", "", false},
		{"hello", "", false},
	}
	for _, tc := range cases {
		got, err := normalizePhone(tc.in)
		if tc.ok {
			assert.NoError(t, err, tc.in)
			assert.Equal(t, tc.want, got)
		} else {
			assert.ErrorIs(t, err, ErrInvalidPhone, tc.in)
		}
	}
}

func TestService_HandleCallback_Success(t *testing.T) {
	payments := new(MockPaymentRepository)
	bookings := new(MockBookingStore)

	p := &domain.Payment{ID: 321, BookingID: 55, Amount: 25500, Status: domain.PaymentProcessing, CheckoutRequestID: "ws_CO_1"}
	payments.On("GetByCheckoutRequestID", mock.Anything, "ws_CO_1").Return(p, nil)
	payments.On("MarkCompletedIfProcessing", mock.Anything, int64(321), "NLJ7RT61SV", mock.Anything).Return(true, nil)
	bookings.On("MarkConfirmedPaid", mock.Anything, int64(55)).Return(nil)
	bookings.On("GetByID", mock.Anything, int64(55)).Return(payableBooking(), nil)

	svc := newTestService(payments, bookings, new(MockGateway))

	cb := mpesa.STKCallback{
		CheckoutRequestID: "ws_CO_1",
		ResultCode:        0,
		ResultDesc:        "The service request is processed successfully.",
		CallbackMetadata: &mpesa.CallbackMetadata{
			Item: []mpesa.CallbackItem{
				{Name: "MpesaReceiptNumber", Value: []byte(`"NLJ7RT61SV"`)},
				{Name: "TransactionDate", Value: []byte(`20250829121530`)},
			},
		},
	}

	err := svc.HandleCallback(context.Background(), cb)
	assert.NoError(t, err)
	payments.AssertExpectations(t)
	bookings.AssertExpectations(t)
}

func TestService_HandleCallback_Failure(t *testing.T) {
	payments := new(MockPaymentRepository)

	p := &domain.Payment{ID: 321, BookingID: 55, Status: domain.PaymentProcessing, CheckoutRequestID: "ws_CO_1"}
	payments.On("GetByCheckoutRequestID", mock.Anything, "ws_CO_1").Return(p, nil)
	payments.On("MarkFailedIfProcessing", mock.Anything, int64(321), "Request cancelled by user").Return(true, nil)

	svc := newTestService(payments, new(MockBookingStore), new(MockGateway))

	err := svc.HandleCallback(context.Background(), mpesa.STKCallback{
		CheckoutRequestID: "ws_CO_1",
		ResultCode:        1032,
		ResultDesc:        "Request cancelled by user",
	})
	assert.NoError(t, err)
	payments.AssertExpectations(t)
}

func TestService_HandleCallback_ReplayIgnored(t *testing.T) {
	payments := new(MockPaymentRepository)
	bookings := new(MockBookingStore)

	p := &domain.Payment{ID: 321, BookingID: 55, Status: domain.PaymentCompleted, CheckoutRequestID: "ws_CO_1"}
	payments.On("GetByCheckoutRequestID", mock.Anything, "ws_CO_1").Return(p, nil)
	payments.On("MarkCompletedIfProcessing", mock.Anything, int64(321), mock.Anything, mock.Anything).Return(false, nil)

	svc := newTestService(payments, bookings, new(MockGateway))

	err := svc.HandleCallback(context.Background(), mpesa.STKCallback{
		CheckoutRequestID: "ws_CO_1",
		ResultCode:        0,
	})
	assert.NoError(t, err)
	// the booking must not be touched again on a replay
	bookings.AssertNotCalled(t, "MarkConfirmedPaid", mock.Anything, mock.Anything)
}

func TestService_HandleCallback_BackfillsReceiptAfterPoll(t *testing.T) {
	payments := new(MockPaymentRepository)
	bookings := new(MockBookingStore)

	// the status poll resolved this payment already, so it is completed but
	// has no receipt; the late callback must fill it in
	p := &domain.Payment{ID: 321, BookingID: 55, Status: domain.PaymentCompleted, CheckoutRequestID: "ws_CO_1"}
	payments.On("GetByCheckoutRequestID", mock.Anything, "ws_CO_1").Return(p, nil)
	payments.On("MarkCompletedIfProcessing", mock.Anything, int64(321), "NLJ7RT61SV", mock.Anything).Return(false, nil)
	payments.On("BackfillReceiptIfMissing", mock.Anything, int64(321), "NLJ7RT61SV", mock.Anything).Return(true, nil)

	svc := newTestService(payments, bookings, new(MockGateway))

	err := svc.HandleCallback(context.Background(), mpesa.STKCallback{
		CheckoutRequestID: "ws_CO_1",
		ResultCode:        0,
		ResultDesc:        "The service request is processed successfully.",
		CallbackMetadata: &mpesa.CallbackMetadata{
			Item: []mpesa.CallbackItem{
				{Name: "MpesaReceiptNumber", Value: []byte(`"NLJ7RT61SV"`)},
				{Name: "TransactionDate", Value: []byte(`20250829121530`)},
			},
		},
	})
	assert.NoError(t, err)
	payments.AssertExpectations(t)
	// the booking was confirmed when the poll completed the payment
	bookings.AssertNotCalled(t, "MarkConfirmedPaid", mock.Anything, mock.Anything)
}

func TestService_HandleCallback_UnknownCheckoutIDSwallowed(t *testing.T) {
	payments := new(MockPaymentRepository)
	payments.On("GetByCheckoutRequestID", mock.Anything, "ws_CO_unknown").Return(nil, gorm.ErrRecordNotFound)

	svc := newTestService(payments, new(MockBookingStore), new(MockGateway))

	err := svc.HandleCallback(context.Background(), mpesa.STKCallback{
		CheckoutRequestID: "ws_CO_unknown",
		ResultCode:        0,
	})
	assert.NoError(t, err)
}

func TestService_Status_QueriesWhileProcessing(t *testing.T) {
	payments := new(MockPaymentRepository)
	bookings := new(MockBookingStore)
	gateway := new(MockGateway)

	p := &domain.Payment{ID: 321, BookingID: 55, Status: domain.PaymentProcessing, CheckoutRequestID: "ws_CO_1"}
	resolved := &domain.Payment{ID: 321, BookingID: 55, Status: domain.PaymentCompleted, CheckoutRequestID: "ws_CO_1"}

	payments.On("GetByID", mock.Anything, int64(321)).Return(p, nil).Once()
	bookings.On("GetByID", mock.Anything, int64(55)).Return(payableBooking(), nil)
	gateway.On("STKQuery", mock.Anything, "ws_CO_1").Return(&mpesa.STKQueryResponse{
		ResultCode: "0",
		ResultDesc: "The service request is processed successfully.",
	}, nil)
	payments.On("MarkCompletedIfProcessing", mock.Anything, int64(321), "", mock.Anything).Return(true, nil)
	bookings.On("MarkConfirmedPaid", mock.Anything, int64(55)).Return(nil)
	payments.On("GetByID", mock.Anything, int64(321)).Return(resolved, nil).Once()

	svc := newTestService(payments, bookings, gateway)

	got, err := svc.Status(context.Background(), guest(), 321)
	assert.NoError(t, err)
	assert.Equal(t, domain.PaymentCompleted, got.Status)
}

func TestService_Status_InProgressReturnsAsIs(t *testing.T) {
	payments := new(MockPaymentRepository)
	bookings := new(MockBookingStore)
	gateway := new(MockGateway)

	p := &domain.Payment{ID: 321, BookingID: 55, Status: domain.PaymentProcessing, CheckoutRequestID: "ws_CO_1"}
	payments.On("GetByID", mock.Anything, int64(321)).Return(p, nil)
	bookings.On("GetByID", mock.Anything, int64(55)).Return(payableBooking(), nil)
	gateway.On("STKQuery", mock.Anything, "ws_CO_1").Return(nil, mpesa.ErrTransactionInProgress)

	svc := newTestService(payments, bookings, gateway)

	got, err := svc.Status(context.Background(), guest(), 321)
	assert.NoError(t, err)
	assert.Equal(t, domain.PaymentProcessing, got.Status)
}

func TestService_Status_CompletedSkipsGateway(t *testing.T) {
	payments := new(MockPaymentRepository)
	bookings := new(MockBookingStore)
	gateway := new(MockGateway)

	p := &domain.Payment{ID: 321, BookingID: 55, Status: domain.PaymentCompleted}
	payments.On("GetByID", mock.Anything, int64(321)).Return(p, nil)
	bookings.On("GetByID", mock.Anything, int64(55)).Return(payableBooking(), nil)

	svc := newTestService(payments, bookings, gateway)

	got, err := svc.Status(context.Background(), guest(), 321)
	assert.NoError(t, err)
	assert.Equal(t, domain.PaymentCompleted, got.Status)
	gateway.AssertNotCalled(t, "STKQuery", mock.Anything, mock.Anything)
}

func TestService_Refund_Success(t *testing.T) {
	payments := new(MockPaymentRepository)
	bookings := new(MockBookingStore)

	p := &domain.Payment{ID: 321, BookingID: 55, Status: domain.PaymentCompleted}
	refunded := &domain.Payment{ID: 321, BookingID: 55, Status: domain.PaymentRefunded}

	payments.On("GetByID", mock.Anything, int64(321)).Return(p, nil).Once()
	payments.On("MarkRefundedIfCompleted", mock.Anything, int64(321), "double charge").Return(true, nil)
	bookings.On("MarkRefundCancelled", mock.Anything, int64(55), "payment refunded: double charge").Return(nil)
	bookings.On("GetByID", mock.Anything, int64(55)).Return(payableBooking(), nil)
	payments.On("GetByID", mock.Anything, int64(321)).Return(refunded, nil).Once()

	svc := newTestService(payments, bookings, new(MockGateway))

	admin := domain.Actor{ID: 1, Role: domain.RoleAdmin}
	got, err := svc.Refund(context.Background(), admin, 321, "double charge")

	assert.NoError(t, err)
	assert.Equal(t, domain.PaymentRefunded, got.Status)
	bookings.AssertExpectations(t)
}

func TestService_Refund_AdminOnly(t *testing.T) {
	svc := newTestService(new(MockPaymentRepository), new(MockBookingStore), new(MockGateway))

	staff := domain.Actor{ID: 2, Role: domain.RoleStaff}
	_, err := svc.Refund(context.Background(), staff, 321, "reason")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestService_Refund_OnlyCompleted(t *testing.T) {
	payments := new(MockPaymentRepository)
	payments.On("GetByID", mock.Anything, int64(321)).Return(&domain.Payment{
		ID: 321, Status: domain.PaymentProcessing,
	}, nil)

	svc := newTestService(payments, new(MockBookingStore), new(MockGateway))

	admin := domain.Actor{ID: 1, Role: domain.RoleAdmin}
	_, err := svc.Refund(context.Background(), admin, 321, "reason")
	assert.ErrorIs(t, err, ErrNotRefundable)
}

func TestService_Refund_SecondAttemptFails(t *testing.T) {
	payments := new(MockPaymentRepository)
	payments.On("GetByID", mock.Anything, int64(321)).Return(&domain.Payment{
		ID: 321, BookingID: 55, Status: domain.PaymentCompleted,
	}, nil)
	// someone refunded between the read and the conditional update
	payments.On("MarkRefundedIfCompleted", mock.Anything, int64(321), "reason").Return(false, nil)

	svc := newTestService(payments, new(MockBookingStore), new(MockGateway))

	admin := domain.Actor{ID: 1, Role: domain.RoleAdmin}
	_, err := svc.Refund(context.Background(), admin, 321, "reason")
	assert.ErrorIs(t, err, ErrNotRefundable)
}
