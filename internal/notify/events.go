// Package notify carries best-effort guest notifications out of the request
// path: lifecycle and reconciliation emit events onto a Kafka topic, and the
// worker process turns them into emails. A publish or send failure never
// affects the state transition that triggered it.
package notify

import (
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindBookingCreated   Kind = "booking_created"
	KindBookingConfirmed Kind = "booking_confirmed"
	KindBookingCancelled Kind = "booking_cancelled"
	KindPaymentReceipt   Kind = "payment_receipt"
)

type Event struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	Recipient  string    `json:"recipient"`
	GuestName  string    `json:"guest_name,omitempty"`
	BookingID  int64     `json:"booking_id"`
	Reference  string    `json:"reference,omitempty"`
	RoomName   string    `json:"room_name,omitempty"`
	// always on the wire; kinds without a stay window carry the zero time
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
	Amount     int64     `json:"amount,omitempty"`
	Receipt    string    `json:"receipt,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewEvent(kind Kind, recipient string, bookingID int64) Event {
	return Event{
		ID:         uuid.NewString(),
		Kind:       kind,
		Recipient:  recipient,
		BookingID:  bookingID,
		OccurredAt: time.Now().UTC(),
	}
}
