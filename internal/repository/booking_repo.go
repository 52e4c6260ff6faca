package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"resortbooking/internal/domain"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// CountOverlapping counts non-cancelled bookings on the room whose
// [check_in, check_out) interval intersects the requested one. Half-open
// semantics: checkout day equal to the next check-in day does not conflict.
// excludeID lets an in-place edit re-check the window without seeing itself.
func (r *BookingRepository) CountOverlapping(ctx context.Context, roomID int64, checkIn, checkOut time.Time, excludeID int64) (int64, error) {
	var cnt int64
	q := r.db.WithContext(ctx).
		Model(&domain.Booking{}).
		Where("room_id = ?", roomID).
		Where("status <> ?", domain.BookingCancelled).
		Where("check_in < ? AND check_out > ?", checkOut, checkIn)
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&cnt).Error; err != nil {
		return 0, err
	}
	return cnt, nil
}

// CreateWithAvailability performs the overlap check and the insert inside one
// transaction, locking the room row so two concurrent requests for the same
// room serialize instead of both passing the check. The exclusion constraint
// on PostgreSQL backstops the same invariant at the storage layer.
func (r *BookingRepository) CreateWithAvailability(ctx context.Context, b *domain.Booking) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var room domain.Room
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&room, b.RoomID).Error; err != nil {
			return err
		}

		var cnt int64
		if err := tx.Model(&domain.Booking{}).
			Where("room_id = ?", b.RoomID).
			Where("status <> ?", domain.BookingCancelled).
			Where("check_in < ? AND check_out > ?", b.CheckOut, b.CheckIn).
			Count(&cnt).Error; err != nil {
			return err
		}
		if cnt > 0 {
			return ErrOverlap
		}

		return tx.Create(b).Error
	})
	return translateBookingConflict(err)
}

// UpdateWithAvailability re-validates the (possibly changed) window excluding
// the booking itself, then saves. Same transaction shape as create.
func (r *BookingRepository) UpdateWithAvailability(ctx context.Context, b *domain.Booking) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var room domain.Room
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&room, b.RoomID).Error; err != nil {
			return err
		}

		var cnt int64
		if err := tx.Model(&domain.Booking{}).
			Where("room_id = ?", b.RoomID).
			Where("status <> ?", domain.BookingCancelled).
			Where("check_in < ? AND check_out > ?", b.CheckOut, b.CheckIn).
			Where("id <> ?", b.ID).
			Count(&cnt).Error; err != nil {
			return err
		}
		if cnt > 0 {
			return ErrOverlap
		}

		return tx.Save(b).Error
	})
	return translateBookingConflict(err)
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var b domain.Booking
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Booking, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var rows []domain.Booking
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	return rows, err
}

type ListFilters struct {
	Status string
	RoomID int64
	Limit  int
	Offset int
}

func (r *BookingRepository) List(ctx context.Context, f ListFilters) ([]domain.Booking, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	q := r.db.WithContext(ctx).Model(&domain.Booking{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.RoomID > 0 {
		q = q.Where("room_id = ?", f.RoomID)
	}

	var rows []domain.Booking
	err := q.Order("created_at DESC").Limit(f.Limit).Offset(f.Offset).Find(&rows).Error
	return rows, err
}

func (r *BookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	return r.db.WithContext(ctx).Save(b).Error
}

// MarkConfirmedPaid flips a pending booking to confirmed/paid. Called only by
// payment resolution; the status guard keeps a replayed callback from touching
// a booking that has already moved on.
func (r *BookingRepository) MarkConfirmedPaid(ctx context.Context, bookingID int64) error {
	return r.db.WithContext(ctx).
		Model(&domain.Booking{}).
		Where("id = ? AND status = ?", bookingID, domain.BookingPending).
		Updates(map[string]any{
			"status":         domain.BookingConfirmed,
			"payment_status": domain.BookingPaid,
			"updated_at":     time.Now().UTC(),
		}).Error
}

// MarkRefundCancelled cascades a payment refund onto the owning booking.
func (r *BookingRepository) MarkRefundCancelled(ctx context.Context, bookingID int64, reason string) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&domain.Booking{}).
		Where("id = ?", bookingID).
		Updates(map[string]any{
			"status":              domain.BookingCancelled,
			"payment_status":      domain.BookingRefunded,
			"cancellation_reason": reason,
			"cancelled_at":        &now,
			"updated_at":          now,
		}).Error
}
