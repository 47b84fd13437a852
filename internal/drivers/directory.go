package drivers

import (
	"context" // Request-scoped cancellation
	"errors"  // Error matching
	"fmt"     // Error formatting

	"github.com/techadnank9/alien-miniapp-uber/internal/domain" // Importing domain models
	"github.com/techadnank9/alien-miniapp-uber/internal/utils"  // Sentinel errors

	"github.com/redis/go-redis/v9" // Redis client (GEO index)
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// geoKey is the redis GEO set holding last known driver positions.
const geoKey = "drivers:geo"

// nearbyRadiusKm bounds the GEO search around the requested coordinate.
const nearbyRadiusKm = 5

// NearbyDriver is the public shape of a candidate driver.
type NearbyDriver struct {
	ID      string  `json:"id"`      // Driver id
	Name    string  `json:"name"`    // Owning user's display name
	IsAi    bool    `json:"isAi"`    // AI-controlled flag
	Vehicle string  `json:"vehicle"` // Vehicle descriptor
	Lat     float64 `json:"lat"`     // Last known latitude
	Lng     float64 `json:"lng"`     // Last known longitude
}

// Directory manages driver registration, location updates and nearby lookup.
type Directory struct {
	db  *gorm.DB      // Database handle
	rdb *redis.Client // GEO index; nil disables it
}

// NewDirectory creates a Directory. rdb may be nil; nearby then always falls
// back to the unfiltered active-driver listing.
func NewDirectory(db *gorm.DB, rdb *redis.Client) *Directory {
	return &Directory{db: db, rdb: rdb}
}

// Register upserts the driver profile keyed by its owning user. On update the
// vehicle and isAi fields are overwritten; activity flag and position persist.
func (d *Directory) Register(ctx context.Context, userID, vehicle string, isAi bool) (*domain.Driver, error) {
	if userID == "" || vehicle == "" {
		return nil, fmt.Errorf("userId and vehicle required: %w", utils.ErrValidation)
	}
	var driver domain.Driver
	err := d.db.WithContext(ctx).Where("user_id = ?", userID).First(&driver).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Create branch: fresh profile with defaults
		driver = domain.Driver{
			UserID:   userID,  // Owning user
			Vehicle:  vehicle, // Vehicle descriptor
			IsAi:     isAi,    // AI-controlled flag
			IsActive: true,    // New drivers start active
		}
		if err := d.db.WithContext(ctx).Create(&driver).Error; err != nil {
			return nil, err
		}
		return &driver, nil
	}
	if err != nil {
		return nil, err
	}
	// Update branch: only the registration fields are overwritten
	if err := d.db.WithContext(ctx).Model(&driver).
		Updates(map[string]any{"vehicle": vehicle, "is_ai": isAi}).Error; err != nil {
		return nil, err
	}
	return &driver, nil
}

// UpdateLocation stores the driver's position and refreshes the GEO index.
func (d *Directory) UpdateLocation(ctx context.Context, driverID string, lat, lng float64) (*domain.Driver, error) {
	var driver domain.Driver
	err := d.db.WithContext(ctx).Where("id = ?", driverID).First(&driver).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("driver %s: %w", driverID, utils.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if err := d.db.WithContext(ctx).Model(&driver).
		Updates(map[string]any{"lat": lat, "lng": lng}).Error; err != nil {
		return nil, err
	}
	driver.Lat, driver.Lng = lat, lng
	// The GEO index is best-effort; the row holds the durable position
	if d.rdb != nil {
		if err := d.rdb.GeoAdd(ctx, geoKey, &redis.GeoLocation{
			Name:      driver.ID, // Member keyed by driver id
			Latitude:  lat,       // Position
			Longitude: lng,       //
		}).Err(); err != nil {
			logrus.WithFields(logrus.Fields{
				"driver_id": driver.ID,   // Affected driver
				"error":     err.Error(), // Redis failure
			}).Warn("GEO index update failed")
		}
	}
	return &driver, nil
}

// Nearby returns candidate drivers around a coordinate. It searches the GEO
// index first and falls back to all active drivers when the index yields
// nothing, which preserves behavior for fresh deployments without positions.
func (d *Directory) Nearby(ctx context.Context, lat, lng float64) ([]NearbyDriver, error) {
	if d.rdb != nil {
		ids := d.searchGeo(ctx, lat, lng)
		if len(ids) > 0 {
			return d.resolve(ctx, ids)
		}
	}
	return d.allActive(ctx)
}

// searchGeo queries the redis GEO set for members within the search radius.
func (d *Directory) searchGeo(ctx context.Context, lat, lng float64) []string {
	ids, err := d.rdb.GeoSearch(ctx, geoKey, &redis.GeoSearchQuery{
		Latitude:   lat,            // Search center
		Longitude:  lng,            //
		Radius:     nearbyRadiusKm, // Search radius
		RadiusUnit: "km",           // Kilometers
		Sort:       "ASC",          // Closest first
	}).Result()
	if err != nil {
		logrus.WithField("error", err.Error()).Warn("GEO search failed, falling back to active drivers")
		return nil
	}
	return ids
}

// resolve loads the given driver ids, keeping only active ones, index order preserved.
func (d *Directory) resolve(ctx context.Context, ids []string) ([]NearbyDriver, error) {
	var rows []domain.Driver
	if err := d.db.WithContext(ctx).
		Where("id IN ? AND is_active = ?", ids, true).Find(&rows).Error; err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Driver, len(rows))
	for _, r := range rows {
		byID[r.ID] = r
	}
	out := make([]NearbyDriver, 0, len(rows))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			out = append(out, d.describe(ctx, r))
		}
	}
	return out, nil
}

// allActive lists every active driver, the original stub behavior.
func (d *Directory) allActive(ctx context.Context) ([]NearbyDriver, error) {
	var rows []domain.Driver
	if err := d.db.WithContext(ctx).Where("is_active = ?", true).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]NearbyDriver, 0, len(rows))
	for _, r := range rows {
		out = append(out, d.describe(ctx, r))
	}
	return out, nil
}

// describe joins the driver row with its owning user's display name.
func (d *Directory) describe(ctx context.Context, driver domain.Driver) NearbyDriver {
	var user domain.User
	name := ""
	if err := d.db.WithContext(ctx).Where("id = ?", driver.UserID).First(&user).Error; err == nil {
		name = user.Name
	}
	return NearbyDriver{
		ID:      driver.ID,      // Driver id
		Name:    name,           // Display name
		IsAi:    driver.IsAi,    // AI-controlled flag
		Vehicle: driver.Vehicle, // Vehicle descriptor
		Lat:     driver.Lat,     // Last known position
		Lng:     driver.Lng,     //
	}
}
