package rides

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Oghenemaro93/QGlide/pkg/common"
	"github.com/Oghenemaro93/QGlide/pkg/logger"
	"github.com/Oghenemaro93/QGlide/pkg/models"
)

// RideFinder is the read surface guards evaluate against.
type RideFinder interface {
	OpenRidesByRider(ctx context.Context, riderID uuid.UUID, statuses ...models.RideStatus) ([]*models.Ride, error)
	OpenRidesByDriver(ctx context.Context, driverID uuid.UUID, statuses ...models.RideStatus) ([]*models.Ride, error)
}

// GuardPolicy gates every ride transition on the acting user's open rides.
// Each check requires exactly one eligible ride: zero is a permission
// failure, and more than one means the at-most-one-open-ride invariant has
// been broken and the request must not pick a winner arbitrarily.
type GuardPolicy struct {
	finder RideFinder
}

// NewGuardPolicy creates a new guard policy.
func NewGuardPolicy(finder RideFinder) *GuardPolicy {
	return &GuardPolicy{finder: finder}
}

// RiderOpenRide returns the rider's single open ride in one of the given
// statuses.
func (g *GuardPolicy) RiderOpenRide(ctx context.Context, riderID uuid.UUID, statuses ...models.RideStatus) (*models.Ride, error) {
	open, err := g.finder.OpenRidesByRider(ctx, riderID, statuses...)
	if err != nil {
		return nil, err
	}
	return g.requireExactlyOne(ctx, open, "rider", riderID)
}

// DriverOpenRide returns the driver's single open ride in one of the given
// statuses.
func (g *GuardPolicy) DriverOpenRide(ctx context.Context, driverID uuid.UUID, statuses ...models.RideStatus) (*models.Ride, error) {
	open, err := g.finder.OpenRidesByDriver(ctx, driverID, statuses...)
	if err != nil {
		return nil, err
	}
	return g.requireExactlyOne(ctx, open, "driver", driverID)
}

// EnsureRiderHasNoOpenRide blocks a rider who already has a ride in flight
// from opening another.
func (g *GuardPolicy) EnsureRiderHasNoOpenRide(ctx context.Context, riderID uuid.UUID) error {
	open, err := g.finder.OpenRidesByRider(ctx, riderID)
	if err != nil {
		return err
	}
	if len(open) > 0 {
		return common.NewGuardViolationError("rider already has an open ride")
	}
	return nil
}

// EnsureDriverHasNoOpenRide blocks a driver with a ride in flight from
// accepting another.
func (g *GuardPolicy) EnsureDriverHasNoOpenRide(ctx context.Context, driverID uuid.UUID) error {
	open, err := g.finder.OpenRidesByDriver(ctx, driverID)
	if err != nil {
		return err
	}
	if len(open) > 0 {
		return common.NewGuardViolationError("driver already has an open ride")
	}
	return nil
}

func (g *GuardPolicy) requireExactlyOne(ctx context.Context, open []*models.Ride, role string, userID uuid.UUID) (*models.Ride, error) {
	switch len(open) {
	case 1:
		return open[0], nil
	case 0:
		return nil, common.NewGuardViolationError("no eligible ride for this action")
	default:
		// The at-most-one-open-ride invariant is broken. Refuse the request
		// rather than mutate an arbitrary ride.
		logger.ErrorContext(ctx, "multiple open rides for one user",
			zap.String("role", role),
			zap.String("user_id", userID.String()),
			zap.Int("open_rides", len(open)),
		)
		return nil, common.NewInternalServerError(fmt.Sprintf("%s has multiple open rides", role))
	}
}
