package domain

import "time"

type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingCheckedIn  BookingStatus = "checked_in"
	BookingCheckedOut BookingStatus = "checked_out"
	BookingCancelled  BookingStatus = "cancelled"
)

type BookingPaymentStatus string

const (
	BookingUnpaid   BookingPaymentStatus = "pending"
	BookingPartial  BookingPaymentStatus = "partial"
	BookingPaid     BookingPaymentStatus = "paid"
	BookingRefunded BookingPaymentStatus = "refunded"
)

// Booking occupies the half-open interval [CheckIn, CheckOut) on a room.
// Guest contact fields are a snapshot taken at creation time and are not
// updated when the user later edits their profile.
type Booking struct {
	ID                 int64                `gorm:"primaryKey" json:"id"`
	Reference          string               `gorm:"size:24;uniqueIndex;not null" json:"reference"`
	RoomID             int64                `gorm:"index;not null" json:"room_id"`
	UserID             int64                `gorm:"index;not null" json:"user_id"`
	CheckIn            time.Time            `gorm:"index;not null" json:"check_in"`
	CheckOut           time.Time            `gorm:"not null" json:"check_out"`
	Adults             int                  `gorm:"not null" json:"adults"`
	Children           int                  `gorm:"not null;default:0" json:"children"`
	Nights             int                  `gorm:"not null" json:"nights"`
	TotalAmount        int64                `gorm:"not null" json:"total_amount"`
	Status             BookingStatus        `gorm:"size:20;not null;default:'pending';index" json:"status"`
	PaymentStatus      BookingPaymentStatus `gorm:"size:20;not null;default:'pending'" json:"payment_status"`
	GuestName          string               `gorm:"size:120" json:"guest_name"`
	GuestEmail         string               `gorm:"size:255" json:"guest_email"`
	GuestPhone         string               `gorm:"size:20" json:"guest_phone"`
	CancellationReason string               `gorm:"type:text" json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time           `json:"cancelled_at,omitempty"`
	CheckInTime        *time.Time           `json:"check_in_time,omitempty"`
	CheckOutTime       *time.Time           `json:"check_out_time,omitempty"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
}

func (Booking) TableName() string { return "bookings" }

// CanCancel reports whether the booking may still be cancelled. Guests who
// have physically checked in (or already left) cannot be un-booked.
func (b *Booking) CanCancel() bool {
	return b.Status == BookingPending || b.Status == BookingConfirmed
}
