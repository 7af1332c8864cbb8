package rides

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Oghenemaro93/QGlide/pkg/database"
	"github.com/Oghenemaro93/QGlide/pkg/models"
)

const rideColumns = `
	id, rider_id, driver_id, rider_country_code,
	rider_location_latitude, rider_location_longitude, rider_location_address,
	rider_pickup_latitude, rider_pickup_longitude, rider_pickup_address,
	rider_dropoff_latitude, rider_dropoff_longitude, rider_dropoff_address,
	driver_waiting_latitude, driver_waiting_longitude, driver_waiting_address,
	driver_pickup_latitude, driver_pickup_longitude, driver_pickup_address,
	driver_dropoff_latitude, driver_dropoff_longitude, driver_dropoff_address,
	ride_type, vehicle_type, distance, distance_unit, status,
	requested_at, waiting_at, ride_start_time, ride_end_time, ride_duration_seconds,
	price, discount_amount, payable_amount, cancellation_amount,
	is_peak_hours, cancelled_by, cancelled_at, cancelled_reason,
	payment_method, paid_at, rating, feedback, is_paid, is_completed,
	created_at, updated_at`

// Repository handles database operations for rides. Every status-changing
// UPDATE carries a WHERE guard on the current status so concurrent writers
// cannot both succeed on the same transition.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new rides repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func scanRide(row pgx.Row) (*models.Ride, error) {
	ride := &models.Ride{}
	err := row.Scan(
		&ride.ID, &ride.RiderID, &ride.DriverID, &ride.RiderCountryCode,
		&ride.RiderLocationLatitude, &ride.RiderLocationLongitude, &ride.RiderLocationAddress,
		&ride.RiderPickupLatitude, &ride.RiderPickupLongitude, &ride.RiderPickupAddress,
		&ride.RiderDropoffLatitude, &ride.RiderDropoffLongitude, &ride.RiderDropoffAddress,
		&ride.DriverWaitingLatitude, &ride.DriverWaitingLongitude, &ride.DriverWaitingAddress,
		&ride.DriverPickupLatitude, &ride.DriverPickupLongitude, &ride.DriverPickupAddress,
		&ride.DriverDropoffLatitude, &ride.DriverDropoffLongitude, &ride.DriverDropoffAddress,
		&ride.RideType, &ride.VehicleType, &ride.Distance, &ride.DistanceUnit, &ride.Status,
		&ride.RequestedAt, &ride.WaitingAt, &ride.RideStartTime, &ride.RideEndTime, &ride.RideDurationSec,
		&ride.Price, &ride.DiscountAmount, &ride.PayableAmount, &ride.CancellationAmount,
		&ride.IsPeakHours, &ride.CancelledBy, &ride.CancelledAt, &ride.CancelledReason,
		&ride.PaymentMethod, &ride.PaidAt, &ride.Rating, &ride.Feedback, &ride.IsPaid, &ride.IsCompleted,
		&ride.CreatedAt, &ride.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return ride, nil
}

func scanRides(rows pgx.Rows) ([]*models.Ride, error) {
	defer rows.Close()

	rides := make([]*models.Ride, 0)
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ride: %w", err)
		}
		rides = append(rides, ride)
	}
	return rides, rows.Err()
}

// CreateRide inserts a new PENDING ride. The transactional recheck locks
// the rider's existing open rows; two creates that both see zero rows are
// serialized by the unique partial index on (rider_id) WHERE NOT
// is_completed, so only one insert commits.
func (r *Repository) CreateRide(ctx context.Context, ride *models.Ride) error {
	return database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx,
			`SELECT id FROM rides WHERE rider_id = $1 AND is_completed = false FOR UPDATE`,
			ride.RiderID,
		)
		if err != nil {
			return fmt.Errorf("failed to check open rides: %w", err)
		}
		openCount := 0
		for rows.Next() {
			openCount++
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("failed to check open rides: %w", err)
		}
		if openCount > 0 {
			return ErrRiderHasOpenRide
		}

		query := `
			INSERT INTO rides (
				id, rider_id, rider_country_code,
				rider_location_latitude, rider_location_longitude, rider_location_address,
				rider_pickup_latitude, rider_pickup_longitude, rider_pickup_address,
				rider_dropoff_latitude, rider_dropoff_longitude, rider_dropoff_address,
				ride_type, vehicle_type, distance, distance_unit, status,
				requested_at, price, is_peak_hours, cancelled_by,
				created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
				$13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23
			)
		`
		_, err = tx.Exec(ctx, query,
			ride.ID, ride.RiderID, ride.RiderCountryCode,
			ride.RiderLocationLatitude, ride.RiderLocationLongitude, ride.RiderLocationAddress,
			ride.RiderPickupLatitude, ride.RiderPickupLongitude, ride.RiderPickupAddress,
			ride.RiderDropoffLatitude, ride.RiderDropoffLongitude, ride.RiderDropoffAddress,
			ride.RideType, ride.VehicleType, ride.Distance, ride.DistanceUnit, ride.Status,
			ride.RequestedAt, ride.Price, ride.IsPeakHours, ride.CancelledBy,
			ride.CreatedAt, ride.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrRiderHasOpenRide
			}
			return fmt.Errorf("failed to create ride: %w", err)
		}
		return nil
	})
}

// ErrRiderHasOpenRide is returned when a create races another open ride.
var ErrRiderHasOpenRide = errors.New("rider already has an open ride")

// ErrDriverHasOpenRide is returned when an accept would give the driver a
// second open ride.
var ErrDriverHasOpenRide = errors.New("driver already has an open ride")

// isUniqueViolation detects the unique partial indexes on open rides firing.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// GetRideByID returns a ride by its ID, or nil when it does not exist.
func (r *Repository) GetRideByID(ctx context.Context, id uuid.UUID) (*models.Ride, error) {
	query := fmt.Sprintf(`SELECT %s FROM rides WHERE id = $1`, rideColumns)

	ride, err := scanRide(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get ride: %w", err)
	}
	return ride, nil
}

// OpenRidesByRider returns the rider's non-completed rides, optionally
// narrowed to a status set.
func (r *Repository) OpenRidesByRider(ctx context.Context, riderID uuid.UUID, statuses ...models.RideStatus) ([]*models.Ride, error) {
	return r.openRidesBy(ctx, "rider_id", riderID, statuses)
}

// OpenRidesByDriver returns the driver's non-completed rides, optionally
// narrowed to a status set.
func (r *Repository) OpenRidesByDriver(ctx context.Context, driverID uuid.UUID, statuses ...models.RideStatus) ([]*models.Ride, error) {
	return r.openRidesBy(ctx, "driver_id", driverID, statuses)
}

func (r *Repository) openRidesBy(ctx context.Context, column string, userID uuid.UUID, statuses []models.RideStatus) ([]*models.Ride, error) {
	query := fmt.Sprintf(`SELECT %s FROM rides WHERE %s = $1 AND is_completed = false`, rideColumns, column)
	args := []interface{}{userID}

	if len(statuses) > 0 {
		query += ` AND status = ANY($2)`
		statusStrings := make([]string, len(statuses))
		for i, s := range statuses {
			statusStrings[i] = string(s)
		}
		args = append(args, statusStrings)
	}

	query += ` ORDER BY requested_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query open rides: %w", err)
	}
	return scanRides(rows)
}

// AtomicAcceptRide binds the driver and moves the ride PENDING -> ACCEPTED in
// a single status-guarded UPDATE. Returns false when another driver won the
// race or the ride left PENDING; ErrDriverHasOpenRide when the driver's
// other open ride trips the one-open-ride index (the guard read raced a
// concurrent accept).
func (r *Repository) AtomicAcceptRide(ctx context.Context, rideID, driverID uuid.UUID) (bool, error) {
	now := time.Now()
	query := `
		UPDATE rides
		SET status = $1, driver_id = $2, updated_at = $3
		WHERE id = $4 AND status = $5 AND is_completed = false
	`
	tag, err := r.db.Exec(ctx, query,
		models.RideStatusAccepted, driverID, now, rideID, models.RideStatusPending,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return false, ErrDriverHasOpenRide
		}
		return false, fmt.Errorf("failed to accept ride: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// CancelRide marks the ride cancelled. fromStatuses limits which states the
// cancellation may fire from; false means the ride moved on first.
func (r *Repository) CancelRide(ctx context.Context, rideID uuid.UUID, fromStatuses []models.RideStatus, cancelledBy models.CancelledBy, reason string) (bool, error) {
	now := time.Now()
	statusStrings := make([]string, len(fromStatuses))
	for i, s := range fromStatuses {
		statusStrings[i] = string(s)
	}

	query := `
		UPDATE rides
		SET status = $1, cancelled_by = $2, cancelled_at = $3, cancelled_reason = $4,
		    is_completed = true, updated_at = $3
		WHERE id = $5 AND status = ANY($6) AND is_completed = false
	`
	tag, err := r.db.Exec(ctx, query,
		models.RideStatusCancelled, cancelledBy, now, reason, rideID, statusStrings,
	)
	if err != nil {
		return false, fmt.Errorf("failed to cancel ride: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// MarkWaiting moves the ride ACCEPTED -> WAITING and records where the
// driver reported waiting.
func (r *Repository) MarkWaiting(ctx context.Context, rideID uuid.UUID, lat, lon float64, address string) (bool, error) {
	now := time.Now()
	query := `
		UPDATE rides
		SET status = $1, driver_waiting_latitude = $2, driver_waiting_longitude = $3,
		    driver_waiting_address = $4, waiting_at = $5, updated_at = $5
		WHERE id = $6 AND status = $7 AND is_completed = false
	`
	tag, err := r.db.Exec(ctx, query,
		models.RideStatusWaiting, lat, lon, address, now, rideID, models.RideStatusAccepted,
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark ride waiting: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// MarkStarted moves the ride WAITING -> RIDE_START and records the driver's
// actual pickup location and the start time.
func (r *Repository) MarkStarted(ctx context.Context, rideID uuid.UUID, lat, lon float64, address string) (bool, error) {
	now := time.Now()
	query := `
		UPDATE rides
		SET status = $1, driver_pickup_latitude = $2, driver_pickup_longitude = $3,
		    driver_pickup_address = $4, ride_start_time = $5, updated_at = $5
		WHERE id = $6 AND status = $7 AND is_completed = false
	`
	tag, err := r.db.Exec(ctx, query,
		models.RideStatusRideStart, lat, lon, address, now, rideID, models.RideStatusWaiting,
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark ride started: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// RideSettlement is the frozen outcome written at RIDE_END. The fare is
// computed exactly once here and never recomputed afterward.
type RideSettlement struct {
	DropoffLatitude  float64
	DropoffLongitude float64
	DropoffAddress   string
	EndTime          time.Time
	DistanceKm       float64
	DurationSeconds  int64
	PayableAmount    float64
	DiscountAmount   float64
}

// FinishRide moves the ride RIDE_START -> RIDE_END and freezes the fare.
func (r *Repository) FinishRide(ctx context.Context, rideID uuid.UUID, settlement RideSettlement) (bool, error) {
	query := `
		UPDATE rides
		SET status = $1,
		    driver_dropoff_latitude = $2, driver_dropoff_longitude = $3, driver_dropoff_address = $4,
		    ride_end_time = $5, ride_duration_seconds = $6,
		    distance = $7, distance_unit = $8,
		    payable_amount = $9, discount_amount = $10,
		    updated_at = $5
		WHERE id = $11 AND status = $12 AND is_completed = false
	`
	tag, err := r.db.Exec(ctx, query,
		models.RideStatusRideEnd,
		settlement.DropoffLatitude, settlement.DropoffLongitude, settlement.DropoffAddress,
		settlement.EndTime, settlement.DurationSeconds,
		settlement.DistanceKm, models.UnitKilometers,
		settlement.PayableAmount, settlement.DiscountAmount,
		rideID, models.RideStatusRideStart,
	)
	if err != nil {
		return false, fmt.Errorf("failed to finish ride: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// MarkPaid settles the ride RIDE_END -> PAID for a cash payment.
func (r *Repository) MarkPaid(ctx context.Context, rideID uuid.UUID) (bool, error) {
	now := time.Now()
	query := `
		UPDATE rides
		SET status = $1, payment_method = $2, paid_at = $3,
		    is_paid = true, is_completed = true, updated_at = $3
		WHERE id = $4 AND status = $5 AND is_completed = false
	`
	tag, err := r.db.Exec(ctx, query,
		models.RideStatusPaid, models.PaymentMethodCash, now, rideID, models.RideStatusRideEnd,
	)
	if err != nil {
		return false, fmt.Errorf("failed to settle ride: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// UpdateRating writes rating and feedback. Rating is the only write allowed
// on a terminal ride, so no status guard applies here.
func (r *Repository) UpdateRating(ctx context.Context, rideID uuid.UUID, rating int, feedback *string) error {
	query := `
		UPDATE rides
		SET rating = $1, feedback = $2, updated_at = $3
		WHERE id = $4
	`
	_, err := r.db.Exec(ctx, query, rating, feedback, time.Now(), rideID)
	if err != nil {
		return fmt.Errorf("failed to update ride rating: %w", err)
	}
	return nil
}
