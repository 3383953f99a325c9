package bookings

import (
	"errors"
	"fmt"

	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/storage"
	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/timerange"
)

var (
	ErrInvalidRange     = timerange.ErrInvalidRange
	ErrRoomInactive     = errors.New("room is inactive")
	ErrBookingConflict  = errors.New("booking conflicts with an existing booking")
	ErrNotFound         = storage.ErrNotFound
	ErrForbidden        = errors.New("forbidden")
	ErrBookingCancelled = errors.New("booking is cancelled")
	ErrValidation       = errors.New("validation failed")
)

// ConflictError identifies the booking that blocked a write. BookingID is empty when
// the clash was caught by the store rather than the advisory check.
type ConflictError struct {
	BookingID string
}

func (e *ConflictError) Error() string {
	if e.BookingID == "" {
		return ErrBookingConflict.Error()
	}
	return fmt.Sprintf("%s (%s)", ErrBookingConflict.Error(), e.BookingID)
}

func (e *ConflictError) Unwrap() error {
	return ErrBookingConflict
}

// storeError maps storage sentinels onto the service's error vocabulary.
func storeError(err error) error {
	if errors.Is(err, storage.ErrOverlap) {
		return &ConflictError{}
	}
	return err
}

func validation(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}
