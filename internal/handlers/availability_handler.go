package handlers

import (
	"net/http"

	"github.com/Akilshaik/bus-booking/internal/services"
	"github.com/gin-gonic/gin"
)

// AvailabilityHandler serves the seat availability read path
type AvailabilityHandler struct {
	availabilityService *services.AvailabilityService
}

// NewAvailabilityHandler creates a new AvailabilityHandler
func NewAvailabilityHandler(availabilityService *services.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availabilityService: availabilityService}
}

// GetUnavailableSeats returns the seat ids of a trip that cannot be
// locked right now. Advisory only; the lock endpoint is the real gate.
func (h *AvailabilityHandler) GetUnavailableSeats(c *gin.Context) {
	tripID := c.Param("trip_id")

	seatIDs, err := h.availabilityService.UnavailableSeats(tripID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"trip_id":              tripID,
		"unavailable_seat_ids": seatIDs,
	})
}
