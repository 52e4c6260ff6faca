package payment

type InitiatePaymentRequest struct {
	BookingID int64  `json:"booking_id" binding:"required"`
	Phone     string `json:"phone" binding:"required"`
}

type RefundRequest struct {
	Reason string `json:"reason" binding:"required"`
}
