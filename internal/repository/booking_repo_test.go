package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"resortbooking/internal/database"
	"resortbooking/internal/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Connect(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	db.Logger = logger.Default.LogMode(logger.Silent)
	require.NoError(t, database.Migrate(db))

	room := &domain.Room{
		Name:           "Standard Garden Room",
		PricePerNight:  8500,
		CapacityAdults: 2,
		Status:         domain.RoomAvailable,
		Active:         true,
	}
	require.NoError(t, db.Create(room).Error)
	return db
}

func day(d int) time.Time {
	return time.Date(2026, 9, d, 0, 0, 0, 0, time.UTC)
}

func makeBooking(ref string, roomID int64, checkIn, checkOut time.Time) *domain.Booking {
	return &domain.Booking{
		Reference:   ref,
		RoomID:      roomID,
		UserID:      1,
		CheckIn:     checkIn,
		CheckOut:    checkOut,
		Adults:      2,
		Nights:      int(checkOut.Sub(checkIn).Hours() / 24),
		TotalAmount: 8500,
		Status:      domain.BookingPending,
	}
}

func TestBookingRepository_CreateWithAvailability_RejectsOverlap(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookingRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.CreateWithAvailability(ctx, makeBooking("RB-A-0001", 1, day(10), day(13))))

	err := repo.CreateWithAvailability(ctx, makeBooking("RB-A-0002", 1, day(12), day(14)))
	assert.ErrorIs(t, err, ErrOverlap)

	// fully contained window conflicts too
	err = repo.CreateWithAvailability(ctx, makeBooking("RB-A-0003", 1, day(11), day(12)))
	assert.ErrorIs(t, err, ErrOverlap)
}

func TestBookingRepository_CreateWithAvailability_AdjacentStaysAllowed(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookingRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.CreateWithAvailability(ctx, makeBooking("RB-B-0001", 1, day(10), day(13))))

	// half-open interval: checkout day equals next check-in day
	assert.NoError(t, repo.CreateWithAvailability(ctx, makeBooking("RB-B-0002", 1, day(13), day(15))))
	assert.NoError(t, repo.CreateWithAvailability(ctx, makeBooking("RB-B-0003", 1, day(8), day(10))))
}

func TestBookingRepository_CreateWithAvailability_CancelledDoesNotBlock(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookingRepository(db)
	ctx := context.Background()

	b := makeBooking("RB-C-0001", 1, day(10), day(13))
	b.Status = domain.BookingCancelled
	require.NoError(t, repo.CreateWithAvailability(ctx, b))

	assert.NoError(t, repo.CreateWithAvailability(ctx, makeBooking("RB-C-0002", 1, day(10), day(13))))
}

func TestBookingRepository_CreateWithAvailability_DuplicateReference(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookingRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.CreateWithAvailability(ctx, makeBooking("RB-D-0001", 1, day(10), day(12))))

	err := repo.CreateWithAvailability(ctx, makeBooking("RB-D-0001", 1, day(20), day(22)))
	assert.ErrorIs(t, err, ErrDuplicateReference)
}

func TestBookingRepository_UpdateWithAvailability_ExcludesSelf(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookingRepository(db)
	ctx := context.Background()

	b := makeBooking("RB-E-0001", 1, day(10), day(13))
	require.NoError(t, repo.CreateWithAvailability(ctx, b))

	// shifting its own window by a day must not conflict with itself
	b.CheckIn = day(11)
	b.CheckOut = day(14)
	assert.NoError(t, repo.UpdateWithAvailability(ctx, b))

	// but it still conflicts with someone else
	other := makeBooking("RB-E-0002", 1, day(20), day(23))
	require.NoError(t, repo.CreateWithAvailability(ctx, other))

	b.CheckIn = day(21)
	b.CheckOut = day(24)
	assert.ErrorIs(t, repo.UpdateWithAvailability(ctx, b), ErrOverlap)
}

func TestBookingRepository_CountOverlapping(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookingRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.CreateWithAvailability(ctx, makeBooking("RB-F-0001", 1, day(10), day(13))))

	cnt, err := repo.CountOverlapping(ctx, 1, day(12), day(15), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cnt)

	cnt, err = repo.CountOverlapping(ctx, 1, day(13), day(15), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), cnt)

	// other rooms are unaffected
	cnt, err = repo.CountOverlapping(ctx, 2, day(10), day(13), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), cnt)
}

func TestBookingRepository_MarkConfirmedPaid_PendingOnly(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookingRepository(db)
	ctx := context.Background()

	b := makeBooking("RB-G-0001", 1, day(10), day(12))
	require.NoError(t, repo.CreateWithAvailability(ctx, b))

	require.NoError(t, repo.MarkConfirmedPaid(ctx, b.ID))

	got, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, got.Status)
	assert.Equal(t, domain.BookingPaid, got.PaymentStatus)

	// a second application is a no-op, the booking is no longer pending
	got.Status = domain.BookingCheckedIn
	require.NoError(t, repo.Update(ctx, got))
	require.NoError(t, repo.MarkConfirmedPaid(ctx, b.ID))

	got, err = repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCheckedIn, got.Status)
}

func TestBookingRepository_MarkRefundCancelled(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookingRepository(db)
	ctx := context.Background()

	b := makeBooking("RB-H-0001", 1, day(10), day(12))
	require.NoError(t, repo.CreateWithAvailability(ctx, b))
	require.NoError(t, repo.MarkConfirmedPaid(ctx, b.ID))

	require.NoError(t, repo.MarkRefundCancelled(ctx, b.ID, "payment refunded: double charge"))

	got, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, got.Status)
	assert.Equal(t, domain.BookingRefunded, got.PaymentStatus)
	assert.Equal(t, "payment refunded: double charge", got.CancellationReason)
	assert.NotNil(t, got.CancelledAt)
}
