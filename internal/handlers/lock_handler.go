package handlers

import (
	"net/http"
	"time"

	"github.com/Akilshaik/bus-booking/internal/middleware"
	"github.com/Akilshaik/bus-booking/internal/models"
	"github.com/Akilshaik/bus-booking/internal/services"
	"github.com/gin-gonic/gin"
)

// LockHandler serves the seat lock operations
type LockHandler struct {
	lockService *services.LockService
}

// NewLockHandler creates a new LockHandler
func NewLockHandler(lockService *services.LockService) *LockHandler {
	return &LockHandler{lockService: lockService}
}

// AcquireLocks locks a seat selection for the authenticated user
func (h *LockHandler) AcquireLocks(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	tripID := c.Param("trip_id")

	var req models.AcquireLocksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}

	var ttl time.Duration
	if req.TTLSeconds != nil {
		ttl = time.Duration(*req.TTLSeconds) * time.Second
	}

	grant, err := h.lockService.Acquire(tripID, req.SeatIDs, userCtx.UserID.String(), ttl)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, grant)
}

// ReleaseLocks releases the authenticated user's locks for a trip.
// Idempotent; releasing nothing is still a success.
func (h *LockHandler) ReleaseLocks(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	tripID := c.Param("trip_id")

	if err := h.lockService.Release(tripID, userCtx.UserID.String()); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Seat locks released"})
}
