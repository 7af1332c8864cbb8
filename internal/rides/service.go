package rides

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Oghenemaro93/QGlide/internal/pricing"
	"github.com/Oghenemaro93/QGlide/pkg/common"
	"github.com/Oghenemaro93/QGlide/pkg/geo"
	"github.com/Oghenemaro93/QGlide/pkg/models"
)

var rideTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ride_transitions_total",
	Help: "Total number of successful ride state transitions",
}, []string{"event"})

// RideStore is the persistence surface the ride lifecycle runs against.
type RideStore interface {
	RideFinder
	CreateRide(ctx context.Context, ride *models.Ride) error
	GetRideByID(ctx context.Context, id uuid.UUID) (*models.Ride, error)
	AtomicAcceptRide(ctx context.Context, rideID, driverID uuid.UUID) (bool, error)
	CancelRide(ctx context.Context, rideID uuid.UUID, fromStatuses []models.RideStatus, cancelledBy models.CancelledBy, reason string) (bool, error)
	MarkWaiting(ctx context.Context, rideID uuid.UUID, lat, lon float64, address string) (bool, error)
	MarkStarted(ctx context.Context, rideID uuid.UUID, lat, lon float64, address string) (bool, error)
	FinishRide(ctx context.Context, rideID uuid.UUID, settlement RideSettlement) (bool, error)
	MarkPaid(ctx context.Context, rideID uuid.UUID) (bool, error)
	UpdateRating(ctx context.Context, rideID uuid.UUID, rating int, feedback *string) error
}

// FareService resolves regional rates, evaluates peak windows and computes
// fares.
type FareService interface {
	SnapshotPeak(ctx context.Context, countryCode string, now time.Time) (bool, error)
	Quote(ctx context.Context, countryCode string, input pricing.FareInput) (pricing.FareBreakdown, error)
}

// Service owns the ride state machine. Every transition is guard-checked
// for the acting user, then applied with a status-guarded write so a lost
// race surfaces as a conflict instead of a double transition.
type Service struct {
	store  RideStore
	guards *GuardPolicy
	fares  FareService
	now    func() time.Time
}

// NewService creates a new rides service.
func NewService(store RideStore, fares FareService) *Service {
	return &Service{
		store:  store,
		guards: NewGuardPolicy(store),
		fares:  fares,
		now:    time.Now,
	}
}

// CreateRide opens a new PENDING ride for the rider. Distance is the
// great-circle distance between the requested pickup and drop-off, and the
// peak-hour flag is frozen at booking time.
func (s *Service) CreateRide(ctx context.Context, actor models.Actor, req *models.CreateRideRequest) (*models.Ride, error) {
	if err := s.guards.EnsureRiderHasNoOpenRide(ctx, actor.ID); err != nil {
		return nil, err
	}

	isPeak, err := s.fares.SnapshotPeak(ctx, actor.CountryCode, s.now())
	if err != nil {
		return nil, err
	}

	distance := geo.Haversine(
		req.RiderPickupLatitude, req.RiderPickupLongitude,
		req.RiderDropoffLatitude, req.RiderDropoffLongitude,
	)

	now := s.now()
	ride := &models.Ride{
		ID:               uuid.New(),
		RiderID:          actor.ID,
		RiderCountryCode: actor.CountryCode,

		RiderLocationLatitude:  req.RiderLocationLatitude,
		RiderLocationLongitude: req.RiderLocationLongitude,
		RiderLocationAddress:   req.RiderLocationAddress,
		RiderPickupLatitude:    req.RiderPickupLatitude,
		RiderPickupLongitude:   req.RiderPickupLongitude,
		RiderPickupAddress:     req.RiderPickupAddress,
		RiderDropoffLatitude:   req.RiderDropoffLatitude,
		RiderDropoffLongitude:  req.RiderDropoffLongitude,
		RiderDropoffAddress:    req.RiderDropoffAddress,

		RideType:     req.RideType,
		VehicleType:  req.VehicleType,
		Distance:     distance,
		DistanceUnit: models.UnitKilometers,
		Status:       models.RideStatusPending,
		RequestedAt:  now,
		Price:        req.Price,
		IsPeakHours:  isPeak,
		CancelledBy:  models.CancelledByNone,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateRide(ctx, ride); err != nil {
		if errors.Is(err, ErrRiderHasOpenRide) {
			return nil, common.NewGuardViolationError("rider already has an open ride")
		}
		return nil, err
	}

	rideTransitionsTotal.WithLabelValues("create").Inc()
	return ride, nil
}

// GetOpenRide returns the acting user's current open ride.
func (s *Service) GetOpenRide(ctx context.Context, actor models.Actor) (*models.Ride, error) {
	if actor.Role == models.RoleDriver {
		return s.guards.DriverOpenRide(ctx, actor.ID)
	}
	return s.guards.RiderOpenRide(ctx, actor.ID)
}

// RiderLocation is the pickup point a driver navigates to.
type RiderLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
}

// FetchRiderLocation returns the requested pickup location of the rider's
// open ride, for the driver heading there.
func (s *Service) FetchRiderLocation(ctx context.Context, riderID uuid.UUID) (*RiderLocation, error) {
	open, err := s.store.OpenRidesByRider(ctx, riderID)
	if err != nil {
		return nil, err
	}
	if len(open) == 0 {
		return nil, common.NewGuardViolationError("rider has no open ride")
	}

	ride := open[0]
	return &RiderLocation{
		Latitude:  ride.RiderPickupLatitude,
		Longitude: ride.RiderPickupLongitude,
		Address:   ride.RiderPickupAddress,
	}, nil
}

// AcceptRide binds the driver to a PENDING ride. Concurrent accepts resolve
// with exactly one winner; losers get a conflict, not a generic failure.
func (s *Service) AcceptRide(ctx context.Context, actor models.Actor, req *models.AcceptRideRequest) (*models.Ride, error) {
	if err := s.guards.EnsureDriverHasNoOpenRide(ctx, actor.ID); err != nil {
		return nil, err
	}

	accepted, err := s.store.AtomicAcceptRide(ctx, req.RideID, actor.ID)
	if err != nil {
		if errors.Is(err, ErrDriverHasOpenRide) {
			return nil, common.NewGuardViolationError("driver already has an open ride")
		}
		return nil, err
	}
	if !accepted {
		return nil, common.NewStateConflictError("ride is no longer available")
	}

	rideTransitionsTotal.WithLabelValues("accept").Inc()
	return s.store.GetRideByID(ctx, req.RideID)
}

// CancelRide cancels the acting user's open ride. Riders may cancel from
// PENDING, ACCEPTED or WAITING; drivers from ACCEPTED or WAITING (a driver
// is never bound to a PENDING ride).
func (s *Service) CancelRide(ctx context.Context, actor models.Actor, req *models.CancelRideRequest) error {
	var (
		ride        *models.Ride
		from        []models.RideStatus
		cancelledBy models.CancelledBy
		err         error
	)

	if actor.Role == models.RoleDriver {
		from = []models.RideStatus{models.RideStatusAccepted, models.RideStatusWaiting}
		cancelledBy = models.CancelledByDriver
		ride, err = s.guards.DriverOpenRide(ctx, actor.ID, from...)
	} else {
		from = []models.RideStatus{models.RideStatusPending, models.RideStatusAccepted, models.RideStatusWaiting}
		cancelledBy = models.CancelledByRider
		ride, err = s.guards.RiderOpenRide(ctx, actor.ID, from...)
	}
	if err != nil {
		return err
	}

	cancelled, err := s.store.CancelRide(ctx, ride.ID, from, cancelledBy, req.Reason)
	if err != nil {
		return err
	}
	if !cancelled {
		return common.NewStateConflictError("ride can no longer be cancelled")
	}

	rideTransitionsTotal.WithLabelValues("cancel").Inc()
	return nil
}

// WaitRide marks the driver as waiting at the pickup point.
func (s *Service) WaitRide(ctx context.Context, actor models.Actor, req *models.WaitingRideRequest) error {
	ride, err := s.guards.DriverOpenRide(ctx, actor.ID, models.RideStatusAccepted)
	if err != nil {
		return err
	}

	updated, err := s.store.MarkWaiting(ctx, ride.ID, req.Latitude, req.Longitude, req.Address)
	if err != nil {
		return err
	}
	if !updated {
		return common.NewStateConflictError("ride is not awaiting pickup")
	}

	rideTransitionsTotal.WithLabelValues("wait").Inc()
	return nil
}

// StartRide begins the trip from the driver's actual pickup location.
func (s *Service) StartRide(ctx context.Context, actor models.Actor, req *models.StartRideRequest) error {
	ride, err := s.guards.DriverOpenRide(ctx, actor.ID, models.RideStatusWaiting)
	if err != nil {
		return err
	}

	updated, err := s.store.MarkStarted(ctx, ride.ID, req.Latitude, req.Longitude, req.Address)
	if err != nil {
		return err
	}
	if !updated {
		return common.NewStateConflictError("ride cannot be started")
	}

	rideTransitionsTotal.WithLabelValues("start").Inc()
	return nil
}

// EndRide completes the trip and freezes the fare: distance is recomputed
// from the driver's actual pickup to the drop-off, duration is end minus
// start, and the payable amount is written exactly once. The peak flag
// stored at booking is reused so delaying completion cannot move the ride
// into or out of a peak window.
func (s *Service) EndRide(ctx context.Context, actor models.Actor, req *models.EndRideRequest) (*models.Ride, error) {
	ride, err := s.guards.DriverOpenRide(ctx, actor.ID, models.RideStatusRideStart)
	if err != nil {
		return nil, err
	}

	if ride.RideStartTime == nil {
		return nil, common.NewStateConflictError("ride has no start time")
	}
	if ride.DriverPickupLatitude == nil || ride.DriverPickupLongitude == nil {
		return nil, common.NewStateConflictError("ride has no pickup location")
	}

	endTime := s.now()
	distance := geo.Haversine(
		*ride.DriverPickupLatitude, *ride.DriverPickupLongitude,
		req.Latitude, req.Longitude,
	)
	durationSeconds := int64(endTime.Sub(*ride.RideStartTime).Seconds())

	breakdown, err := s.fares.Quote(ctx, ride.RiderCountryCode, pricing.FareInput{
		RideType:        ride.RideType,
		DistanceKm:      distance,
		DurationSeconds: durationSeconds,
		IsPeakHour:      ride.IsPeakHours,
	})
	if err != nil {
		return nil, err
	}

	finished, err := s.store.FinishRide(ctx, ride.ID, RideSettlement{
		DropoffLatitude:  req.Latitude,
		DropoffLongitude: req.Longitude,
		DropoffAddress:   req.Address,
		EndTime:          endTime,
		DistanceKm:       distance,
		DurationSeconds:  durationSeconds,
		PayableAmount:    breakdown.TotalFare,
		DiscountAmount:   breakdown.PointDiscount,
	})
	if err != nil {
		return nil, err
	}
	if !finished {
		return nil, common.NewStateConflictError("ride cannot be ended")
	}

	rideTransitionsTotal.WithLabelValues("end").Inc()
	return s.store.GetRideByID(ctx, ride.ID)
}

// SettleCash settles an ended ride as paid in cash. The request must
// affirm payment was received.
func (s *Service) SettleCash(ctx context.Context, actor models.Actor, req *models.CashPaymentRequest) error {
	if req.IsPaid == nil || !*req.IsPaid {
		return common.NewValidationError("payment incomplete")
	}

	ride, err := s.guards.DriverOpenRide(ctx, actor.ID, models.RideStatusRideEnd)
	if err != nil {
		return err
	}

	paid, err := s.store.MarkPaid(ctx, ride.ID)
	if err != nil {
		return err
	}
	if !paid {
		return common.NewStateConflictError("ride cannot be settled")
	}

	rideTransitionsTotal.WithLabelValues("cash_settle").Inc()
	return nil
}

// RateRide records the rider's rating and feedback on a completed ride.
// This is the only write permitted after a ride reaches a terminal state.
func (s *Service) RateRide(ctx context.Context, actor models.Actor, req *models.RateRideRequest) error {
	ride, err := s.store.GetRideByID(ctx, req.RideID)
	if err != nil {
		return err
	}
	if ride == nil {
		return common.NewNotFoundError("ride not found", nil)
	}
	if ride.RiderID != actor.ID {
		return common.NewGuardViolationError("ride does not belong to this rider")
	}
	if !ride.Status.IsTerminal() {
		return common.NewStateConflictError("ride is not finished yet")
	}

	var feedback *string
	if req.Feedback != "" {
		feedback = &req.Feedback
	}
	return s.store.UpdateRating(ctx, ride.ID, req.Rating, feedback)
}
