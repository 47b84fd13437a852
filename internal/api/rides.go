package api

import (
	"net/http" // HTTP status codes

	"github.com/techadnank9/alien-miniapp-uber/internal/ride" // Ride lifecycle service

	"github.com/gin-gonic/gin" // Gin web framework
)

// RideRequest creates a new ride
type RideRequest struct {
	RiderID   string   `json:"riderId" binding:"required"`   // Rider reference
	PickupLat *float64 `json:"pickupLat" binding:"required"` // Pickup coordinates
	PickupLng *float64 `json:"pickupLng" binding:"required"` //
	DropLat   *float64 `json:"dropLat" binding:"required"`   // Dropoff coordinates
	DropLng   *float64 `json:"dropLng" binding:"required"`   //
	FareCents *int64   `json:"fareCents"`                    // Optional fare, defaults to 0
}

// RideAcceptRequest assigns a driver to a ride
type RideAcceptRequest struct {
	DriverID string `json:"driverId" binding:"required"` // Accepting driver
}

// RequestRideHandler creates a ride in MATCHING
func RequestRideHandler(svc *ride.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RideRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		fare := int64(0) // Fare defaults to 0 when omitted
		if req.FareCents != nil {
			fare = *req.FareCents
		}
		r, err := svc.Request(c.Request.Context(), req.RiderID, *req.PickupLat, *req.PickupLng, *req.DropLat, *req.DropLng, fare)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ride": r}) // Return new ride record
	}
}

// AcceptRideHandler moves MATCHING -> ASSIGNED
func AcceptRideHandler(svc *ride.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RideAcceptRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		r, err := svc.Accept(c.Request.Context(), c.Param("id"), req.DriverID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ride": r}) // Return updated ride
	}
}

// StartRideHandler moves ASSIGNED -> STARTED
func StartRideHandler(svc *ride.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		r, err := svc.Start(c.Request.Context(), c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ride": r}) // Return updated ride
	}
}

// CompleteRideHandler moves STARTED -> COMPLETED and triggers invoicing
func CompleteRideHandler(svc *ride.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		r, err := svc.Complete(c.Request.Context(), c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ride": r}) // Return updated ride
	}
}

// CancelRideHandler cancels a not-yet-started ride
func CancelRideHandler(svc *ride.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		r, err := svc.Cancel(c.Request.Context(), c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ride": r}) // Return updated ride
	}
}

// OpenRidesHandler lists rides still waiting for a driver
func OpenRidesHandler(svc *ride.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		rides, err := svc.Open(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"rides": rides}) // Return matching rides
	}
}

// GetRideHandler returns one ride by id
func GetRideHandler(svc *ride.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		r, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ride": r}) // Return ride record
	}
}
