package ride

import (
	"context" // Request-scoped cancellation
	"errors"  // Error matching
	"fmt"     // Error formatting

	"github.com/techadnank9/alien-miniapp-uber/internal/domain" // Importing domain models
	"github.com/techadnank9/alien-miniapp-uber/internal/utils"  // Sentinel errors

	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// Broadcaster receives the full ride record after every successful transition.
type Broadcaster interface {
	BroadcastRideUpdate(ride *domain.Ride)
}

// Settler mints an invoice for a completed ride. Implemented by payments.Settlement.
type Settler interface {
	CreateForRide(ctx context.Context, ride *domain.Ride) error
}

// Service moves rides through their lifecycle exactly once per transition and
// fans every new state out to connected observers.
type Service struct {
	db      *gorm.DB    // Database handle
	hub     Broadcaster // Realtime fan-out
	settler Settler     // Invoice trigger on completion (optional)
}

// NewService creates a ride Service. settler may be nil when settlement is disabled.
func NewService(db *gorm.DB, hub Broadcaster, settler Settler) *Service {
	return &Service{db: db, hub: hub, settler: settler}
}

// Request creates a ride in MATCHING. Fare defaults to 0 when omitted.
func (s *Service) Request(ctx context.Context, riderID string, pickupLat, pickupLng, dropLat, dropLng float64, fareCents int64) (*domain.Ride, error) {
	if riderID == "" {
		return nil, fmt.Errorf("riderId required: %w", utils.ErrValidation)
	}
	if fareCents < 0 {
		return nil, fmt.Errorf("fareCents must not be negative: %w", utils.ErrValidation)
	}
	ride := domain.Ride{
		RiderID:   riderID,                  // Rider reference
		PickupLat: pickupLat,                // Pickup coordinates
		PickupLng: pickupLng,                //
		DropLat:   dropLat,                  // Dropoff coordinates
		DropLng:   dropLng,                  //
		FareCents: fareCents,                // Fare in cents
		Status:    domain.RideStatusMatching, // Rides always start matching
	}
	if err := s.db.WithContext(ctx).Create(&ride).Error; err != nil {
		return nil, err
	}
	s.logTransition(&ride, "", domain.RideStatusMatching)
	s.hub.BroadcastRideUpdate(&ride) // Fan out the new ride
	return &ride, nil
}

// Accept assigns a driver and moves MATCHING -> ASSIGNED.
func (s *Service) Accept(ctx context.Context, rideID, driverID string) (*domain.Ride, error) {
	if driverID == "" {
		return nil, fmt.Errorf("driverId required: %w", utils.ErrValidation)
	}
	return s.transition(ctx, rideID, domain.RideStatusAssigned, map[string]any{"driver_id": driverID})
}

// Start moves ASSIGNED -> STARTED.
func (s *Service) Start(ctx context.Context, rideID string) (*domain.Ride, error) {
	return s.transition(ctx, rideID, domain.RideStatusStarted, nil)
}

// Complete moves STARTED -> COMPLETED and asks the settler to mint an invoice
// for the fare. The completion stands even if invoicing fails; settlement is
// retried out of band, never by replaying the transition.
func (s *Service) Complete(ctx context.Context, rideID string) (*domain.Ride, error) {
	ride, err := s.transition(ctx, rideID, domain.RideStatusCompleted, nil)
	if err != nil {
		return nil, err
	}
	if s.settler != nil && ride.FareCents > 0 {
		if err := s.settler.CreateForRide(ctx, ride); err != nil {
			logrus.WithFields(logrus.Fields{
				"ride_id": ride.ID,     // Completed ride
				"error":   err.Error(), // Settlement failure
			}).Error("Invoice creation failed")
		}
	}
	return ride, nil
}

// Cancel moves a not-yet-started ride to CANCELLED.
func (s *Service) Cancel(ctx context.Context, rideID string) (*domain.Ride, error) {
	return s.transition(ctx, rideID, domain.RideStatusCancelled, nil)
}

// Get returns a ride by id.
func (s *Service) Get(ctx context.Context, rideID string) (*domain.Ride, error) {
	var ride domain.Ride
	err := s.db.WithContext(ctx).Where("id = ?", rideID).First(&ride).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("ride %s: %w", rideID, utils.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &ride, nil
}

// Open lists rides still waiting for a driver.
func (s *Service) Open(ctx context.Context) ([]domain.Ride, error) {
	var rides []domain.Ride
	err := s.db.WithContext(ctx).
		Where("status = ?", domain.RideStatusMatching).
		Order("created_at asc").Find(&rides).Error
	if err != nil {
		return nil, err
	}
	return rides, nil
}

// transition applies a guarded status change. The UPDATE is conditional on the
// current status being a legal predecessor, so concurrent callers (including
// other process instances) can never both win the same transition.
func (s *Service) transition(ctx context.Context, rideID string, to domain.RideStatus, extra map[string]any) (*domain.Ride, error) {
	current, err := s.Get(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if err := CheckTransition(current.Status, to); err != nil {
		return nil, err
	}
	updates := map[string]any{"status": to}
	for k, v := range extra {
		updates[k] = v
	}
	res := s.db.WithContext(ctx).Model(&domain.Ride{}).
		Where("id = ? AND status IN ?", rideID, Predecessors(to)).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// Lost the race: someone else moved the ride first
		return nil, fmt.Errorf("ride %s no longer in a legal predecessor of %s: %w", rideID, to, utils.ErrInvalidTransition)
	}
	ride, err := s.Get(ctx, rideID)
	if err != nil {
		return nil, err
	}
	s.logTransition(ride, current.Status, to)
	s.hub.BroadcastRideUpdate(ride) // Emit the full updated record
	return ride, nil
}

// logTransition records a successful lifecycle change
func (s *Service) logTransition(ride *domain.Ride, from, to domain.RideStatus) {
	logrus.WithFields(logrus.Fields{
		"ride_id":  ride.ID,      // Ride identity
		"rider_id": ride.RiderID, // Rider reference
		"from":     string(from), // Previous status (empty on create)
		"to":       string(to),   // New status
	}).Info("Ride transition")
}
