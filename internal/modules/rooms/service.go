package rooms

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"resortbooking/internal/domain"
)

const dateLayout = "2006-01-02"

type Service struct {
	rooms        RoomRepository
	availability AvailabilityChecker
}

func NewService(rooms RoomRepository, availability AvailabilityChecker) *Service {
	return &Service{rooms: rooms, availability: availability}
}

func (s *Service) Create(ctx context.Context, req CreateRoomRequest) (*domain.Room, error) {
	if req.PricePerNight < 0 || req.CapacityAdults < 1 || req.CapacityChildren < 0 {
		return nil, ErrValidation
	}

	room := &domain.Room{
		Name:             req.Name,
		Description:      req.Description,
		PricePerNight:    req.PricePerNight,
		CapacityAdults:   req.CapacityAdults,
		CapacityChildren: req.CapacityChildren,
		Status:           domain.RoomAvailable,
		Active:           true,
	}
	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

func (s *Service) Update(ctx context.Context, roomID int64, req UpdateRoomRequest) (*domain.Room, error) {
	room, err := s.get(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		room.Name = *req.Name
	}
	if req.Description != nil {
		room.Description = *req.Description
	}
	if req.PricePerNight != nil {
		if *req.PricePerNight < 0 {
			return nil, ErrValidation
		}
		room.PricePerNight = *req.PricePerNight
	}
	if req.CapacityAdults != nil {
		if *req.CapacityAdults < 1 {
			return nil, ErrValidation
		}
		room.CapacityAdults = *req.CapacityAdults
	}
	if req.CapacityChildren != nil {
		if *req.CapacityChildren < 0 {
			return nil, ErrValidation
		}
		room.CapacityChildren = *req.CapacityChildren
	}
	if req.Active != nil {
		room.Active = *req.Active
	}

	if err := s.rooms.Update(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Room, error) {
	return s.rooms.ListActive(ctx)
}

func (s *Service) GetByID(ctx context.Context, roomID int64) (*domain.Room, error) {
	return s.get(ctx, roomID)
}

// Availability answers whether the room is free for [checkIn, checkOut).
func (s *Service) Availability(ctx context.Context, roomID int64, checkInStr, checkOutStr string) (*AvailabilityResponse, error) {
	checkIn, err := time.Parse(dateLayout, checkInStr)
	if err != nil {
		return nil, ErrValidation
	}
	checkOut, err := time.Parse(dateLayout, checkOutStr)
	if err != nil {
		return nil, ErrValidation
	}
	if !checkOut.After(checkIn) {
		return nil, ErrValidation
	}

	if _, err := s.get(ctx, roomID); err != nil {
		return nil, err
	}

	free, err := s.availability.IsAvailable(ctx, roomID, checkIn, checkOut, 0)
	if err != nil {
		return nil, err
	}

	return &AvailabilityResponse{
		RoomID:    roomID,
		CheckIn:   checkInStr,
		CheckOut:  checkOutStr,
		Available: free,
	}, nil
}

func (s *Service) get(ctx context.Context, id int64) (*domain.Room, error) {
	room, err := s.rooms.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return room, nil
}
