package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Oghenemaro93/QGlide/pkg/geo"
)

// RideStatus represents the status of a ride. It is the single source of
// truth for which operations are currently legal on the ride.
type RideStatus string

const (
	RideStatusPending   RideStatus = "PENDING"
	RideStatusAccepted  RideStatus = "ACCEPTED"
	RideStatusWaiting   RideStatus = "WAITING"
	RideStatusRideStart RideStatus = "RIDE_START"
	RideStatusRideEnd   RideStatus = "RIDE_END"
	RideStatusPaid      RideStatus = "PAID"
	RideStatusCompleted RideStatus = "COMPLETED"
	RideStatusCancelled RideStatus = "CANCELLED"
)

// IsTerminal reports whether no further transition is permitted from s.
func (s RideStatus) IsTerminal() bool {
	return s == RideStatusPaid || s == RideStatusCompleted || s == RideStatusCancelled
}

// RideType represents the service tier of a ride
type RideType string

const (
	RideTypeEconomy RideType = "ECONOMY"
	RideTypeSUV     RideType = "SUV"
	RideTypeLuxury  RideType = "LUXURY"
)

// VehicleType distinguishes passenger rides from package delivery
type VehicleType string

const (
	VehicleTypeRides    VehicleType = "RIDES"
	VehicleTypeDelivery VehicleType = "PACKAGE_DELIVERY"
)

// DistanceUnit represents the unit a ride distance is stored in.
// Kilometers are canonical; miles and meters are convertible.
type DistanceUnit string

const (
	UnitKilometers DistanceUnit = "KILOMETERS"
	UnitMiles      DistanceUnit = "MILES"
	UnitMeters     DistanceUnit = "METERS"
)

// CancelledBy records which party cancelled a ride
type CancelledBy string

const (
	CancelledByRider  CancelledBy = "RIDER"
	CancelledByDriver CancelledBy = "DRIVER"
	CancelledByNone   CancelledBy = "NONE"
)

// PaymentMethod for settled rides. Only cash settlement is handled here;
// gateway payments are settled by an external collaborator.
type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "CASH"
)

// Ride represents one trip request from creation to terminal settlement or
// cancellation. Pickup and drop-off are tracked separately from the rider's
// and the driver's perspective: the rider's requested pickup and the driver's
// actual pickup location may differ.
type Ride struct {
	ID       uuid.UUID  `json:"id" db:"id"`
	RiderID  uuid.UUID  `json:"rider_id" db:"rider_id"`
	DriverID *uuid.UUID `json:"driver_id,omitempty" db:"driver_id"`

	// RiderCountryCode is snapshotted at booking; settlement resolves the
	// rate config against the rider's country, not the driver's.
	RiderCountryCode string `json:"rider_country_code" db:"rider_country_code"`

	// Where the rider initiated the booking
	RiderLocationLatitude  float64 `json:"rider_location_latitude" db:"rider_location_latitude"`
	RiderLocationLongitude float64 `json:"rider_location_longitude" db:"rider_location_longitude"`
	RiderLocationAddress   string  `json:"rider_location_address" db:"rider_location_address"`

	// Where the rider asked to be picked up
	RiderPickupLatitude  float64 `json:"rider_pickup_latitude" db:"rider_pickup_latitude"`
	RiderPickupLongitude float64 `json:"rider_pickup_longitude" db:"rider_pickup_longitude"`
	RiderPickupAddress   string  `json:"rider_pickup_address" db:"rider_pickup_address"`

	// Where the rider asked to be dropped off
	RiderDropoffLatitude  float64 `json:"rider_dropoff_latitude" db:"rider_dropoff_latitude"`
	RiderDropoffLongitude float64 `json:"rider_dropoff_longitude" db:"rider_dropoff_longitude"`
	RiderDropoffAddress   string  `json:"rider_dropoff_address" db:"rider_dropoff_address"`

	// Where the driver reported waiting for the rider
	DriverWaitingLatitude  *float64 `json:"driver_waiting_latitude,omitempty" db:"driver_waiting_latitude"`
	DriverWaitingLongitude *float64 `json:"driver_waiting_longitude,omitempty" db:"driver_waiting_longitude"`
	DriverWaitingAddress   *string  `json:"driver_waiting_address,omitempty" db:"driver_waiting_address"`

	// Where the driver actually picked the rider up
	DriverPickupLatitude  *float64 `json:"driver_pickup_latitude,omitempty" db:"driver_pickup_latitude"`
	DriverPickupLongitude *float64 `json:"driver_pickup_longitude,omitempty" db:"driver_pickup_longitude"`
	DriverPickupAddress   *string  `json:"driver_pickup_address,omitempty" db:"driver_pickup_address"`

	// Where the driver ended the ride
	DriverDropoffLatitude  *float64 `json:"driver_dropoff_latitude,omitempty" db:"driver_dropoff_latitude"`
	DriverDropoffLongitude *float64 `json:"driver_dropoff_longitude,omitempty" db:"driver_dropoff_longitude"`
	DriverDropoffAddress   *string  `json:"driver_dropoff_address,omitempty" db:"driver_dropoff_address"`

	RideType    RideType    `json:"ride_type" db:"ride_type"`
	VehicleType VehicleType `json:"vehicle_type" db:"vehicle_type"`

	Distance     float64      `json:"distance" db:"distance"`
	DistanceUnit DistanceUnit `json:"distance_unit" db:"distance_unit"`

	Status RideStatus `json:"status" db:"status"`

	RequestedAt     time.Time  `json:"requested_at" db:"requested_at"`
	WaitingAt       *time.Time `json:"waiting_at,omitempty" db:"waiting_at"`
	RideStartTime   *time.Time `json:"ride_start_time,omitempty" db:"ride_start_time"`
	RideEndTime     *time.Time `json:"ride_end_time,omitempty" db:"ride_end_time"`
	RideDurationSec *int64     `json:"ride_duration_seconds,omitempty" db:"ride_duration_seconds"`

	Price              float64 `json:"price" db:"price"`
	DiscountAmount     float64 `json:"discount_amount" db:"discount_amount"`
	PayableAmount      float64 `json:"payable_amount" db:"payable_amount"`
	CancellationAmount float64 `json:"cancellation_amount" db:"cancellation_amount"`

	IsPeakHours bool `json:"is_peak_hours" db:"is_peak_hours"`

	CancelledBy     CancelledBy `json:"cancelled_by" db:"cancelled_by"`
	CancelledAt     *time.Time  `json:"cancelled_at,omitempty" db:"cancelled_at"`
	CancelledReason *string     `json:"cancelled_reason,omitempty" db:"cancelled_reason"`

	PaymentMethod *PaymentMethod `json:"payment_method,omitempty" db:"payment_method"`
	PaidAt        *time.Time     `json:"paid_at,omitempty" db:"paid_at"`

	Rating   int     `json:"rating" db:"rating"` // 1-5, 0 = not rated
	Feedback *string `json:"feedback,omitempty" db:"feedback"`

	IsPaid      bool `json:"is_paid" db:"is_paid"`
	IsCompleted bool `json:"is_completed" db:"is_completed"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ConvertDistance rewrites Distance in the requested unit for display.
// Stored distances are canonical kilometers; an unknown unit, or a ride
// already converted, is left unchanged.
func (r *Ride) ConvertDistance(unit DistanceUnit) {
	if r.DistanceUnit != UnitKilometers {
		return
	}
	switch unit {
	case UnitMiles:
		r.Distance = geo.KilometersToMiles(r.Distance)
		r.DistanceUnit = UnitMiles
	case UnitMeters:
		r.Distance = geo.KilometersToMeters(r.Distance)
		r.DistanceUnit = UnitMeters
	}
}

// CreateRideRequest is the payload for a rider opening a new ride.
type CreateRideRequest struct {
	RiderLocationLatitude  float64 `json:"rider_location_latitude" binding:"required,latitude"`
	RiderLocationLongitude float64 `json:"rider_location_longitude" binding:"required,longitude"`
	RiderLocationAddress   string  `json:"rider_location_address" binding:"required,max=255"`

	RiderPickupLatitude  float64 `json:"rider_pickup_latitude" binding:"required,latitude"`
	RiderPickupLongitude float64 `json:"rider_pickup_longitude" binding:"required,longitude"`
	RiderPickupAddress   string  `json:"rider_pickup_address" binding:"required,max=255"`

	RiderDropoffLatitude  float64 `json:"rider_dropoff_latitude" binding:"required,latitude"`
	RiderDropoffLongitude float64 `json:"rider_dropoff_longitude" binding:"required,longitude"`
	RiderDropoffAddress   string  `json:"rider_dropoff_address" binding:"required,max=255"`

	RideType    RideType    `json:"ride_type" binding:"required,oneof=ECONOMY SUV LUXURY"`
	VehicleType VehicleType `json:"vehicle_type" binding:"required,oneof=RIDES PACKAGE_DELIVERY"`

	Price float64 `json:"price" binding:"omitempty,gte=0"`
}

// AcceptRideRequest is the payload for a driver claiming a pending ride.
type AcceptRideRequest struct {
	RideID uuid.UUID `json:"ride_id" binding:"required"`
}

// CancelRideRequest is the payload for either party cancelling an open ride.
type CancelRideRequest struct {
	Reason string `json:"reason" binding:"required,max=255"`
}

// WaitingRideRequest is the payload for a driver reporting arrival at pickup.
type WaitingRideRequest struct {
	Latitude  float64 `json:"latitude" binding:"required,latitude"`
	Longitude float64 `json:"longitude" binding:"required,longitude"`
	Address   string  `json:"address" binding:"required,max=255"`
}

// StartRideRequest is the payload for a driver starting the ride; it carries
// the driver's actual pickup location.
type StartRideRequest struct {
	Latitude  float64 `json:"latitude" binding:"required,latitude"`
	Longitude float64 `json:"longitude" binding:"required,longitude"`
	Address   string  `json:"address" binding:"required,max=255"`
}

// EndRideRequest is the payload for a driver ending the ride; it carries the
// driver's actual drop-off location.
type EndRideRequest struct {
	Latitude  float64 `json:"latitude" binding:"required,latitude"`
	Longitude float64 `json:"longitude" binding:"required,longitude"`
	Address   string  `json:"address" binding:"required,max=255"`
}

// CashPaymentRequest is the payload for a driver confirming cash settlement.
// IsPaid must be true; an unpaid settlement attempt is rejected.
type CashPaymentRequest struct {
	IsPaid *bool `json:"is_paid" binding:"required"`
}

// RateRideRequest is the payload for a rider rating a finished ride. Rating
// and feedback are the only writes permitted on a terminal ride.
type RateRideRequest struct {
	RideID   uuid.UUID `json:"ride_id" binding:"required"`
	Rating   int       `json:"rating" binding:"required,gte=1,lte=5"`
	Feedback string    `json:"feedback" binding:"omitempty,max=1000"`
}
