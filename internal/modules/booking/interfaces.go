package booking

import (
	"context"
	"time"

	"resortbooking/internal/domain"
	"resortbooking/internal/notify"
	"resortbooking/internal/repository"
)

type BookingRepository interface {
	CreateWithAvailability(ctx context.Context, b *domain.Booking) error
	UpdateWithAvailability(ctx context.Context, b *domain.Booking) error
	CountOverlapping(ctx context.Context, roomID int64, checkIn, checkOut time.Time, excludeID int64) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Booking, error)
	List(ctx context.Context, f repository.ListFilters) ([]domain.Booking, error)
	Update(ctx context.Context, b *domain.Booking) error
}

type RoomRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Room, error)
	UpdateStatus(ctx context.Context, roomID int64, status domain.RoomStatus) error
}

type UserReader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// RoomLocker serializes concurrent create attempts for one room and stay
// window; the zero value behaviour (always acquire) is provided by a nil
// *cache.RoomLocker.
type RoomLocker interface {
	Acquire(ctx context.Context, roomID int64, checkIn, checkOut time.Time, ttl time.Duration) (bool, error)
	Release(ctx context.Context, roomID int64, checkIn, checkOut time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, ev notify.Event) error
}
