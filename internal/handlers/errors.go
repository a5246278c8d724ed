package handlers

import (
	"errors"
	"net/http"

	"github.com/Akilshaik/bus-booking/internal/services"
	"github.com/gin-gonic/gin"
)

// handleServiceError translates the engine's typed outcomes into HTTP
// responses. Anything unrecognized is a server fault.
func handleServiceError(c *gin.Context, err error) {
	var conflict *services.SeatConflictError
	if errors.As(err, &conflict) {
		c.JSON(http.StatusConflict, gin.H{
			"error":    "seat_conflict",
			"message":  "Some seats were just locked or booked by someone else. Please select again.",
			"seat_ids": conflict.SeatIDs,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrTripNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "trip_not_found", "message": "Trip not found"})
	case errors.Is(err, services.ErrSeatNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "seat_not_found", "message": "One or more seats do not exist on this trip"})
	case errors.Is(err, services.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "booking_not_found", "message": "Booking not found"})
	case errors.Is(err, services.ErrLockExpired):
		c.JSON(http.StatusConflict, gin.H{"error": "lock_expired", "message": "Your seat lock expired. Please select seats again."})
	case errors.Is(err, services.ErrSeatAlreadySold):
		c.JSON(http.StatusConflict, gin.H{"error": "seat_already_sold", "message": "Some seats were booked before confirmation. Please select again."})
	case errors.Is(err, services.ErrTooManySeats):
		c.JSON(http.StatusBadRequest, gin.H{"error": "too_many_seats", "message": "Too many seats selected for one booking"})
	case errors.Is(err, services.ErrIncompletePassengerData):
		c.JSON(http.StatusBadRequest, gin.H{"error": "incomplete_passenger_data", "message": "Please provide complete passenger details for every seat"})
	case errors.Is(err, services.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden", "message": "You do not own this booking"})
	case errors.Is(err, services.ErrInvalidStateTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "invalid_state", "message": "Only confirmed bookings can be cancelled"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "Something went wrong"})
	}
}
