package booking

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"resortbooking/internal/domain"
	"resortbooking/internal/metrics"
	"resortbooking/internal/notify"
	"resortbooking/internal/pkg/reference"
	"resortbooking/internal/repository"
)

const (
	dateLayout = "2006-01-02"

	// how many fresh references to try before giving up on a duplicate-key
	// conflict; collisions need the same millisecond plus the same suffix,
	// so a second attempt practically always succeeds
	maxReferenceAttempts = 3
)

type Service struct {
	bookings BookingRepository
	rooms    RoomRepository
	users    UserReader
	locker   RoomLocker
	events   EventPublisher
	logger   *zap.Logger
	holdTTL  time.Duration
}

func NewService(
	bookings BookingRepository,
	rooms RoomRepository,
	users UserReader,
	locker RoomLocker,
	events EventPublisher,
	logger *zap.Logger,
	holdTTL time.Duration,
) *Service {
	if holdTTL <= 0 {
		holdTTL = 30 * time.Second
	}
	return &Service{
		bookings: bookings,
		rooms:    rooms,
		users:    users,
		locker:   locker,
		events:   events,
		logger:   logger,
		holdTTL:  holdTTL,
	}
}

// IsAvailable reports whether the room is free for the half-open window
// [checkIn, checkOut). excludeID lets an edit re-check without seeing itself.
func (s *Service) IsAvailable(ctx context.Context, roomID int64, checkIn, checkOut time.Time, excludeID int64) (bool, error) {
	cnt, err := s.bookings.CountOverlapping(ctx, roomID, checkIn, checkOut, excludeID)
	if err != nil {
		return false, err
	}
	return cnt == 0, nil
}

func (s *Service) Create(ctx context.Context, actor domain.Actor, req CreateBookingRequest) (*domain.Booking, error) {
	checkIn, checkOut, err := parseWindow(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}

	room, err := s.rooms.GetByID(ctx, req.RoomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	if !room.Active {
		return nil, ErrRoomInactive
	}

	if req.Adults < 1 {
		return nil, ErrValidation
	}
	if req.Adults > room.CapacityAdults || req.Children > room.CapacityChildren {
		return nil, ErrCapacityExceeded
	}

	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	nights := int(checkOut.Sub(checkIn).Hours() / 24)
	b := &domain.Booking{
		RoomID:        room.ID,
		UserID:        actor.ID,
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		Adults:        req.Adults,
		Children:      req.Children,
		Nights:        nights,
		TotalAmount:   int64(nights) * room.PricePerNight,
		Status:        domain.BookingPending,
		PaymentStatus: domain.BookingUnpaid,
		GuestName:     user.Name,
		GuestEmail:    user.Email,
		GuestPhone:    user.Phone,
	}

	if s.locker != nil {
		ok, err := s.locker.Acquire(ctx, room.ID, checkIn, checkOut, s.holdTTL)
		if err != nil {
			s.logger.Warn("room lock unavailable, relying on db constraint", zap.Error(err))
		} else if !ok {
			metrics.BookingConflictsTotal.Inc()
			return nil, ErrRoomUnavailable
		} else {
			defer func() { _ = s.locker.Release(ctx, room.ID, checkIn, checkOut) }()
		}
	}

	for attempt := 0; ; attempt++ {
		b.Reference = reference.New()
		err = s.bookings.CreateWithAvailability(ctx, b)
		if errors.Is(err, repository.ErrDuplicateReference) && attempt < maxReferenceAttempts-1 {
			continue
		}
		break
	}
	if err != nil {
		if errors.Is(err, repository.ErrOverlap) {
			metrics.BookingConflictsTotal.Inc()
			return nil, ErrRoomUnavailable
		}
		return nil, err
	}

	metrics.BookingsCreatedTotal.Inc()
	s.emit(ctx, notify.KindBookingCreated, b, room.Name, "")
	return b, nil
}

// Update changes dates or guest counts on a booking that has not yet been
// paid for. The whole validation sequence reruns against the new window.
func (s *Service) Update(ctx context.Context, actor domain.Actor, bookingID int64, req UpdateBookingRequest) (*domain.Booking, error) {
	b, err := s.get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != actor.ID && !actor.IsStaff() {
		return nil, ErrForbidden
	}
	if b.Status != domain.BookingPending {
		return nil, ErrNotPending
	}

	checkIn, checkOut, err := parseWindow(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}

	room, err := s.rooms.GetByID(ctx, b.RoomID)
	if err != nil {
		return nil, err
	}
	if req.Adults < 1 {
		return nil, ErrValidation
	}
	if req.Adults > room.CapacityAdults || req.Children > room.CapacityChildren {
		return nil, ErrCapacityExceeded
	}

	nights := int(checkOut.Sub(checkIn).Hours() / 24)
	b.CheckIn = checkIn
	b.CheckOut = checkOut
	b.Adults = req.Adults
	b.Children = req.Children
	b.Nights = nights
	b.TotalAmount = int64(nights) * room.PricePerNight

	if err := s.bookings.UpdateWithAvailability(ctx, b); err != nil {
		if errors.Is(err, repository.ErrOverlap) {
			metrics.BookingConflictsTotal.Inc()
			return nil, ErrRoomUnavailable
		}
		return nil, err
	}
	return b, nil
}

func (s *Service) Cancel(ctx context.Context, actor domain.Actor, bookingID int64, reason string) (*domain.Booking, error) {
	if reason == "" {
		return nil, ErrReasonRequired
	}

	b, err := s.get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != actor.ID && !actor.IsStaff() {
		return nil, ErrForbidden
	}
	if !b.CanCancel() {
		return nil, ErrInvalidTransition
	}

	now := time.Now().UTC()
	b.Status = domain.BookingCancelled
	b.CancellationReason = reason
	b.CancelledAt = &now
	if err := s.bookings.Update(ctx, b); err != nil {
		return nil, err
	}

	metrics.BookingsCancelledTotal.Inc()
	s.emit(ctx, notify.KindBookingCancelled, b, "", reason)
	return b, nil
}

// CheckIn is a staff action: the guest has arrived. Requires the booking to
// be exactly confirmed (paid for), and marks the room occupied.
func (s *Service) CheckIn(ctx context.Context, actor domain.Actor, bookingID int64) (*domain.Booking, error) {
	if !actor.IsStaff() {
		return nil, ErrForbidden
	}

	b, err := s.get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != domain.BookingConfirmed {
		return nil, ErrInvalidTransition
	}

	now := time.Now().UTC()
	b.Status = domain.BookingCheckedIn
	b.CheckInTime = &now
	if err := s.bookings.Update(ctx, b); err != nil {
		return nil, err
	}
	if err := s.rooms.UpdateStatus(ctx, b.RoomID, domain.RoomBooked); err != nil {
		s.logger.Error("failed to mark room booked",
			zap.Int64("room_id", b.RoomID), zap.Error(err))
	}
	return b, nil
}

func (s *Service) CheckOut(ctx context.Context, actor domain.Actor, bookingID int64) (*domain.Booking, error) {
	if !actor.IsStaff() {
		return nil, ErrForbidden
	}

	b, err := s.get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != domain.BookingCheckedIn {
		return nil, ErrInvalidTransition
	}

	now := time.Now().UTC()
	b.Status = domain.BookingCheckedOut
	b.CheckOutTime = &now
	if err := s.bookings.Update(ctx, b); err != nil {
		return nil, err
	}
	if err := s.rooms.UpdateStatus(ctx, b.RoomID, domain.RoomAvailable); err != nil {
		s.logger.Error("failed to mark room available",
			zap.Int64("room_id", b.RoomID), zap.Error(err))
	}
	return b, nil
}

func (s *Service) GetByID(ctx context.Context, actor domain.Actor, bookingID int64) (*domain.Booking, error) {
	b, err := s.get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != actor.ID && !actor.IsStaff() {
		return nil, ErrForbidden
	}
	return b, nil
}

func (s *Service) ListMine(ctx context.Context, actor domain.Actor, limit, offset int) ([]domain.Booking, error) {
	return s.bookings.ListByUser(ctx, actor.ID, limit, offset)
}

func (s *Service) List(ctx context.Context, actor domain.Actor, f repository.ListFilters) ([]domain.Booking, error) {
	if !actor.IsStaff() {
		return nil, ErrForbidden
	}
	return s.bookings.List(ctx, f)
}

func (s *Service) get(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (s *Service) emit(ctx context.Context, kind notify.Kind, b *domain.Booking, roomName, reason string) {
	if s.events == nil {
		return
	}
	ev := notify.NewEvent(kind, b.GuestEmail, b.ID)
	ev.GuestName = b.GuestName
	ev.Reference = b.Reference
	ev.RoomName = roomName
	ev.CheckIn = b.CheckIn
	ev.CheckOut = b.CheckOut
	ev.Amount = b.TotalAmount
	ev.Reason = reason
	if err := s.events.Publish(ctx, ev); err != nil {
		s.logger.Warn("failed to publish notification event",
			zap.String("kind", string(kind)),
			zap.Int64("booking_id", b.ID),
			zap.Error(err))
	}
}

// parseWindow normalizes the requested dates to UTC midnight and enforces the
// ordering invariants. Day granularity throughout.
func parseWindow(checkInStr, checkOutStr string) (time.Time, time.Time, error) {
	checkIn, err := time.Parse(dateLayout, checkInStr)
	if err != nil {
		return time.Time{}, time.Time{}, ErrValidation
	}
	checkOut, err := time.Parse(dateLayout, checkOutStr)
	if err != nil {
		return time.Time{}, time.Time{}, ErrValidation
	}

	if !checkOut.After(checkIn) {
		return time.Time{}, time.Time{}, ErrInvalidDateRange
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	if checkIn.Before(today) {
		return time.Time{}, time.Time{}, ErrCheckInPast
	}

	return checkIn, checkOut, nil
}
