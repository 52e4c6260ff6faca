package rooms

import (
	"context"
	"time"

	"resortbooking/internal/domain"
)

type RoomRepository interface {
	Create(ctx context.Context, room *domain.Room) error
	GetByID(ctx context.Context, id int64) (*domain.Room, error)
	ListActive(ctx context.Context) ([]domain.Room, error)
	Update(ctx context.Context, room *domain.Room) error
}

type AvailabilityChecker interface {
	IsAvailable(ctx context.Context, roomID int64, checkIn, checkOut time.Time, excludeID int64) (bool, error)
}
