package rides

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Oghenemaro93/QGlide/internal/pricing"
	"github.com/Oghenemaro93/QGlide/pkg/common"
	"github.com/Oghenemaro93/QGlide/pkg/models"
)

type MockRideStore struct {
	mock.Mock
}

func (m *MockRideStore) OpenRidesByRider(ctx context.Context, riderID uuid.UUID, statuses ...models.RideStatus) ([]*models.Ride, error) {
	args := m.Called(ctx, riderID, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Ride), args.Error(1)
}

func (m *MockRideStore) OpenRidesByDriver(ctx context.Context, driverID uuid.UUID, statuses ...models.RideStatus) ([]*models.Ride, error) {
	args := m.Called(ctx, driverID, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Ride), args.Error(1)
}

func (m *MockRideStore) CreateRide(ctx context.Context, ride *models.Ride) error {
	args := m.Called(ctx, ride)
	return args.Error(0)
}

func (m *MockRideStore) GetRideByID(ctx context.Context, id uuid.UUID) (*models.Ride, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ride), args.Error(1)
}

func (m *MockRideStore) AtomicAcceptRide(ctx context.Context, rideID, driverID uuid.UUID) (bool, error) {
	args := m.Called(ctx, rideID, driverID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRideStore) CancelRide(ctx context.Context, rideID uuid.UUID, fromStatuses []models.RideStatus, cancelledBy models.CancelledBy, reason string) (bool, error) {
	args := m.Called(ctx, rideID, fromStatuses, cancelledBy, reason)
	return args.Bool(0), args.Error(1)
}

func (m *MockRideStore) MarkWaiting(ctx context.Context, rideID uuid.UUID, lat, lon float64, address string) (bool, error) {
	args := m.Called(ctx, rideID, lat, lon, address)
	return args.Bool(0), args.Error(1)
}

func (m *MockRideStore) MarkStarted(ctx context.Context, rideID uuid.UUID, lat, lon float64, address string) (bool, error) {
	args := m.Called(ctx, rideID, lat, lon, address)
	return args.Bool(0), args.Error(1)
}

func (m *MockRideStore) FinishRide(ctx context.Context, rideID uuid.UUID, settlement RideSettlement) (bool, error) {
	args := m.Called(ctx, rideID, settlement)
	return args.Bool(0), args.Error(1)
}

func (m *MockRideStore) MarkPaid(ctx context.Context, rideID uuid.UUID) (bool, error) {
	args := m.Called(ctx, rideID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRideStore) UpdateRating(ctx context.Context, rideID uuid.UUID, rating int, feedback *string) error {
	args := m.Called(ctx, rideID, rating, feedback)
	return args.Error(0)
}

type MockFareService struct {
	mock.Mock
}

func (m *MockFareService) SnapshotPeak(ctx context.Context, countryCode string, now time.Time) (bool, error) {
	args := m.Called(ctx, countryCode, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockFareService) Quote(ctx context.Context, countryCode string, input pricing.FareInput) (pricing.FareBreakdown, error) {
	args := m.Called(ctx, countryCode, input)
	return args.Get(0).(pricing.FareBreakdown), args.Error(1)
}

func newTestService(store RideStore, fares FareService) *Service {
	svc := NewService(store, fares)
	svc.now = func() time.Time { return time.Date(2024, 3, 14, 18, 0, 0, 0, time.UTC) }
	return svc
}

func riderActor() models.Actor {
	return models.Actor{ID: uuid.New(), Role: models.RoleRider, CountryCode: "US"}
}

func driverActor() models.Actor {
	return models.Actor{ID: uuid.New(), Role: models.RoleDriver, CountryCode: "US"}
}

func createRequest() *models.CreateRideRequest {
	return &models.CreateRideRequest{
		RiderLocationLatitude:  6.5244,
		RiderLocationLongitude: 3.3792,
		RiderLocationAddress:   "Ikeja",
		RiderPickupLatitude:    6.5244,
		RiderPickupLongitude:   3.3792,
		RiderPickupAddress:     "Ikeja",
		RiderDropoffLatitude:   6.4281,
		RiderDropoffLongitude:  3.4219,
		RiderDropoffAddress:    "Victoria Island",
		RideType:               models.RideTypeEconomy,
		VehicleType:            models.VehicleTypeRides,
	}
}

func TestCreateRide(t *testing.T) {
	actor := riderActor()

	store := new(MockRideStore)
	store.On("OpenRidesByRider", mock.Anything, actor.ID, []models.RideStatus(nil)).
		Return([]*models.Ride{}, nil)
	store.On("CreateRide", mock.Anything, mock.AnythingOfType("*models.Ride")).Return(nil)

	fares := new(MockFareService)
	fares.On("SnapshotPeak", mock.Anything, "US", mock.AnythingOfType("time.Time")).Return(true, nil)

	svc := newTestService(store, fares)

	ride, err := svc.CreateRide(context.Background(), actor, createRequest())
	assert.NoError(t, err)
	assert.Equal(t, models.RideStatusPending, ride.Status)
	assert.Equal(t, actor.ID, ride.RiderID)
	assert.Equal(t, "US", ride.RiderCountryCode)
	assert.Nil(t, ride.DriverID)
	assert.True(t, ride.IsPeakHours)
	assert.Equal(t, models.UnitKilometers, ride.DistanceUnit)
	assert.Greater(t, ride.Distance, 0.0)
	assert.False(t, ride.IsCompleted)

	store.AssertExpectations(t)
	fares.AssertExpectations(t)
}

func TestCreateRide_BlockedByOpenRide(t *testing.T) {
	actor := riderActor()
	open := []*models.Ride{{ID: uuid.New(), Status: models.RideStatusAccepted}}

	store := new(MockRideStore)
	store.On("OpenRidesByRider", mock.Anything, actor.ID, []models.RideStatus(nil)).
		Return(open, nil)

	svc := newTestService(store, new(MockFareService))

	_, err := svc.CreateRide(context.Background(), actor, createRequest())
	assertGuardViolation(t, err)
	store.AssertNotCalled(t, "CreateRide", mock.Anything, mock.Anything)
}

func TestCreateRide_ConfigMissingAborts(t *testing.T) {
	actor := riderActor()

	store := new(MockRideStore)
	store.On("OpenRidesByRider", mock.Anything, actor.ID, []models.RideStatus(nil)).
		Return([]*models.Ride{}, nil)

	fares := new(MockFareService)
	fares.On("SnapshotPeak", mock.Anything, "US", mock.AnythingOfType("time.Time")).
		Return(false, common.NewConfigMissingError("no active rate config for country US"))

	svc := newTestService(store, fares)

	_, err := svc.CreateRide(context.Background(), actor, createRequest())
	assert.Error(t, err)
	store.AssertNotCalled(t, "CreateRide", mock.Anything, mock.Anything)
}

func TestCreateRide_InsertRaceBlocked(t *testing.T) {
	actor := riderActor()

	store := new(MockRideStore)
	store.On("OpenRidesByRider", mock.Anything, actor.ID, []models.RideStatus(nil)).
		Return([]*models.Ride{}, nil)
	store.On("CreateRide", mock.Anything, mock.AnythingOfType("*models.Ride")).
		Return(ErrRiderHasOpenRide)

	fares := new(MockFareService)
	fares.On("SnapshotPeak", mock.Anything, "US", mock.AnythingOfType("time.Time")).Return(false, nil)

	svc := newTestService(store, fares)

	_, err := svc.CreateRide(context.Background(), actor, createRequest())
	assertGuardViolation(t, err)
}

func TestAcceptRide(t *testing.T) {
	actor := driverActor()
	rideID := uuid.New()
	accepted := &models.Ride{ID: rideID, Status: models.RideStatusAccepted, DriverID: &actor.ID}

	store := new(MockRideStore)
	store.On("OpenRidesByDriver", mock.Anything, actor.ID, []models.RideStatus(nil)).
		Return([]*models.Ride{}, nil)
	store.On("AtomicAcceptRide", mock.Anything, rideID, actor.ID).Return(true, nil)
	store.On("GetRideByID", mock.Anything, rideID).Return(accepted, nil)

	svc := newTestService(store, new(MockFareService))

	ride, err := svc.AcceptRide(context.Background(), actor, &models.AcceptRideRequest{RideID: rideID})
	assert.NoError(t, err)
	assert.Equal(t, models.RideStatusAccepted, ride.Status)
	store.AssertExpectations(t)
}

func TestAcceptRide_DriverBusy(t *testing.T) {
	actor := driverActor()
	open := []*models.Ride{{ID: uuid.New(), Status: models.RideStatusRideStart}}

	store := new(MockRideStore)
	store.On("OpenRidesByDriver", mock.Anything, actor.ID, []models.RideStatus(nil)).
		Return(open, nil)

	svc := newTestService(store, new(MockFareService))

	_, err := svc.AcceptRide(context.Background(), actor, &models.AcceptRideRequest{RideID: uuid.New()})
	assertGuardViolation(t, err)
	store.AssertNotCalled(t, "AtomicAcceptRide", mock.Anything, mock.Anything, mock.Anything)
}

func TestAcceptRide_LostRace(t *testing.T) {
	actor := driverActor()
	rideID := uuid.New()

	store := new(MockRideStore)
	store.On("OpenRidesByDriver", mock.Anything, actor.ID, []models.RideStatus(nil)).
		Return([]*models.Ride{}, nil)
	store.On("AtomicAcceptRide", mock.Anything, rideID, actor.ID).Return(false, nil)

	svc := newTestService(store, new(MockFareService))

	_, err := svc.AcceptRide(context.Background(), actor, &models.AcceptRideRequest{RideID: rideID})
	var appErr *common.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, common.CodeStateConflict, appErr.ErrorCode)
}

func TestAcceptRide_OpenRideIndexBlocked(t *testing.T) {
	actor := driverActor()
	rideID := uuid.New()

	store := new(MockRideStore)
	store.On("OpenRidesByDriver", mock.Anything, actor.ID, []models.RideStatus(nil)).
		Return([]*models.Ride{}, nil)
	store.On("AtomicAcceptRide", mock.Anything, rideID, actor.ID).
		Return(false, ErrDriverHasOpenRide)

	svc := newTestService(store, new(MockFareService))

	_, err := svc.AcceptRide(context.Background(), actor, &models.AcceptRideRequest{RideID: rideID})
	assertGuardViolation(t, err)
	store.AssertNotCalled(t, "GetRideByID", mock.Anything, mock.Anything)
}

// casAcceptStore resolves concurrent accepts with a mutex-guarded
// compare-and-swap on status, the in-memory equivalent of the
// status-guarded UPDATE.
type casAcceptStore struct {
	MockRideStore

	mu   sync.Mutex
	ride *models.Ride
}

func (s *casAcceptStore) OpenRidesByDriver(ctx context.Context, driverID uuid.UUID, statuses ...models.RideStatus) ([]*models.Ride, error) {
	return []*models.Ride{}, nil
}

func (s *casAcceptStore) AtomicAcceptRide(ctx context.Context, rideID, driverID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ride.ID != rideID || s.ride.Status != models.RideStatusPending {
		return false, nil
	}
	s.ride.Status = models.RideStatusAccepted
	s.ride.DriverID = &driverID
	return true, nil
}

func (s *casAcceptStore) GetRideByID(ctx context.Context, id uuid.UUID) (*models.Ride, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *s.ride
	return &copied, nil
}

func TestAcceptRide_ConcurrentDriversOneWinner(t *testing.T) {
	rideID := uuid.New()
	store := &casAcceptStore{ride: &models.Ride{ID: rideID, Status: models.RideStatusPending}}
	svc := newTestService(store, new(MockFareService))

	const drivers = 16
	var wg sync.WaitGroup
	results := make(chan error, drivers)

	for i := 0; i < drivers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AcceptRide(context.Background(), driverActor(), &models.AcceptRideRequest{RideID: rideID})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	winners := 0
	losers := 0
	for err := range results {
		if err == nil {
			winners++
			continue
		}
		losers++
		var appErr *common.AppError
		assert.ErrorAs(t, err, &appErr)
		assert.Equal(t, common.CodeStateConflict, appErr.ErrorCode)
	}

	assert.Equal(t, 1, winners)
	assert.Equal(t, drivers-1, losers)
	assert.Equal(t, models.RideStatusAccepted, store.ride.Status)
}

// driverIndexStore answers guard reads from a stale snapshot (the racing
// accept is never visible) while the accept itself enforces the one-open-ride
// index under lock, the way the partial unique index does in Postgres.
type driverIndexStore struct {
	MockRideStore

	mu    sync.Mutex
	rides map[uuid.UUID]*models.Ride
}

func (s *driverIndexStore) OpenRidesByDriver(ctx context.Context, driverID uuid.UUID, statuses ...models.RideStatus) ([]*models.Ride, error) {
	return []*models.Ride{}, nil
}

func (s *driverIndexStore) AtomicAcceptRide(ctx context.Context, rideID, driverID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.rides {
		if r.DriverID != nil && *r.DriverID == driverID && !r.IsCompleted {
			return false, ErrDriverHasOpenRide
		}
	}
	ride, ok := s.rides[rideID]
	if !ok || ride.Status != models.RideStatusPending {
		return false, nil
	}
	ride.Status = models.RideStatusAccepted
	ride.DriverID = &driverID
	return true, nil
}

func (s *driverIndexStore) GetRideByID(ctx context.Context, id uuid.UUID) (*models.Ride, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *s.rides[id]
	return &copied, nil
}

func TestAcceptRide_ConcurrentRidesSameDriverOneWinner(t *testing.T) {
	actor := driverActor()
	rideA, rideB := uuid.New(), uuid.New()
	store := &driverIndexStore{rides: map[uuid.UUID]*models.Ride{
		rideA: {ID: rideA, Status: models.RideStatusPending},
		rideB: {ID: rideB, Status: models.RideStatusPending},
	}}
	svc := newTestService(store, new(MockFareService))

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for _, id := range []uuid.UUID{rideA, rideB} {
		wg.Add(1)
		go func(rideID uuid.UUID) {
			defer wg.Done()
			_, err := svc.AcceptRide(context.Background(), actor, &models.AcceptRideRequest{RideID: rideID})
			results <- err
		}(id)
	}
	wg.Wait()
	close(results)

	winners, losers := 0, 0
	for err := range results {
		if err == nil {
			winners++
			continue
		}
		losers++
		assertGuardViolation(t, err)
	}
	assert.Equal(t, 1, winners)
	assert.Equal(t, 1, losers)

	open := 0
	for _, r := range store.rides {
		if r.DriverID != nil && !r.IsCompleted {
			open++
		}
	}
	assert.Equal(t, 1, open)
}

func TestCancelRide_ByRider(t *testing.T) {
	actor := riderActor()
	from := []models.RideStatus{models.RideStatusPending, models.RideStatusAccepted, models.RideStatusWaiting}
	ride := &models.Ride{ID: uuid.New(), RiderID: actor.ID, Status: models.RideStatusAccepted}

	store := new(MockRideStore)
	store.On("OpenRidesByRider", mock.Anything, actor.ID, from).
		Return([]*models.Ride{ride}, nil)
	store.On("CancelRide", mock.Anything, ride.ID, from, models.CancelledByRider, "changed my mind").
		Return(true, nil)

	svc := newTestService(store, new(MockFareService))

	err := svc.CancelRide(context.Background(), actor, &models.CancelRideRequest{Reason: "changed my mind"})
	assert.NoError(t, err)
	store.AssertExpectations(t)
}

func TestCancelRide_ByDriver(t *testing.T) {
	actor := driverActor()
	from := []models.RideStatus{models.RideStatusAccepted, models.RideStatusWaiting}
	ride := &models.Ride{ID: uuid.New(), Status: models.RideStatusWaiting, DriverID: &actor.ID}

	store := new(MockRideStore)
	store.On("OpenRidesByDriver", mock.Anything, actor.ID, from).
		Return([]*models.Ride{ride}, nil)
	store.On("CancelRide", mock.Anything, ride.ID, from, models.CancelledByDriver, "rider no-show").
		Return(true, nil)

	svc := newTestService(store, new(MockFareService))

	err := svc.CancelRide(context.Background(), actor, &models.CancelRideRequest{Reason: "rider no-show"})
	assert.NoError(t, err)
	store.AssertExpectations(t)
}

func TestCancelRide_NoEligibleRide(t *testing.T) {
	actor := driverActor()
	from := []models.RideStatus{models.RideStatusAccepted, models.RideStatusWaiting}

	store := new(MockRideStore)
	store.On("OpenRidesByDriver", mock.Anything, actor.ID, from).
		Return([]*models.Ride{}, nil)

	svc := newTestService(store, new(MockFareService))

	err := svc.CancelRide(context.Background(), actor, &models.CancelRideRequest{Reason: "too far"})
	assertGuardViolation(t, err)
	store.AssertNotCalled(t, "CancelRide", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestWaitRide(t *testing.T) {
	actor := driverActor()
	ride := &models.Ride{ID: uuid.New(), Status: models.RideStatusAccepted, DriverID: &actor.ID}

	store := new(MockRideStore)
	store.On("OpenRidesByDriver", mock.Anything, actor.ID, []models.RideStatus{models.RideStatusAccepted}).
		Return([]*models.Ride{ride}, nil)
	store.On("MarkWaiting", mock.Anything, ride.ID, 6.5, 3.3, "pickup point").Return(true, nil)

	svc := newTestService(store, new(MockFareService))

	err := svc.WaitRide(context.Background(), actor, &models.WaitingRideRequest{Latitude: 6.5, Longitude: 3.3, Address: "pickup point"})
	assert.NoError(t, err)
	store.AssertExpectations(t)
}

func TestStartRide_WrongState(t *testing.T) {
	actor := driverActor()

	store := new(MockRideStore)
	store.On("OpenRidesByDriver", mock.Anything, actor.ID, []models.RideStatus{models.RideStatusWaiting}).
		Return([]*models.Ride{}, nil)

	svc := newTestService(store, new(MockFareService))

	err := svc.StartRide(context.Background(), actor, &models.StartRideRequest{Latitude: 6.5, Longitude: 3.3, Address: "pickup"})
	assertGuardViolation(t, err)
	store.AssertNotCalled(t, "MarkStarted", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEndRide_FreezesFare(t *testing.T) {
	actor := driverActor()
	start := time.Date(2024, 3, 14, 17, 40, 0, 0, time.UTC)
	pickupLat, pickupLon := 6.5244, 3.3792
	ride := &models.Ride{
		ID:                    uuid.New(),
		RiderCountryCode:      "US",
		Status:                models.RideStatusRideStart,
		RideType:              models.RideTypeEconomy,
		IsPeakHours:           true,
		RideStartTime:         &start,
		DriverPickupLatitude:  &pickupLat,
		DriverPickupLongitude: &pickupLon,
		DriverID:              &actor.ID,
	}
	ended := &models.Ride{ID: ride.ID, Status: models.RideStatusRideEnd, PayableAmount: 42.5}

	store := new(MockRideStore)
	store.On("OpenRidesByDriver", mock.Anything, actor.ID, []models.RideStatus{models.RideStatusRideStart}).
		Return([]*models.Ride{ride}, nil)

	var captured RideSettlement
	store.On("FinishRide", mock.Anything, ride.ID, mock.AnythingOfType("rides.RideSettlement")).
		Run(func(args mock.Arguments) {
			captured = args.Get(2).(RideSettlement)
		}).
		Return(true, nil)
	store.On("GetRideByID", mock.Anything, ride.ID).Return(ended, nil)

	fares := new(MockFareService)
	fares.On("Quote", mock.Anything, "US", mock.MatchedBy(func(input pricing.FareInput) bool {
		// Fare input reuses the peak flag frozen at booking and the
		// duration between start and end.
		return input.IsPeakHour && input.DurationSeconds == 1200 && input.RideType == models.RideTypeEconomy
	})).Return(pricing.FareBreakdown{TotalFare: 42.5, PointDiscount: 42.5}, nil)

	svc := newTestService(store, fares)

	result, err := svc.EndRide(context.Background(), actor, &models.EndRideRequest{
		Latitude: 6.4281, Longitude: 3.4219, Address: "Victoria Island",
	})
	assert.NoError(t, err)
	assert.Equal(t, 42.5, result.PayableAmount)
	assert.Equal(t, 42.5, captured.PayableAmount)
	assert.Equal(t, int64(1200), captured.DurationSeconds)
	assert.Greater(t, captured.DistanceKm, 0.0)

	store.AssertExpectations(t)
	fares.AssertExpectations(t)
}

func TestEndRide_ConfigMissingLeavesRideUntouched(t *testing.T) {
	actor := driverActor()
	start := time.Date(2024, 3, 14, 17, 40, 0, 0, time.UTC)
	pickupLat, pickupLon := 6.5244, 3.3792
	ride := &models.Ride{
		ID:                    uuid.New(),
		RiderCountryCode:      "ZZ",
		Status:                models.RideStatusRideStart,
		RideType:              models.RideTypeEconomy,
		RideStartTime:         &start,
		DriverPickupLatitude:  &pickupLat,
		DriverPickupLongitude: &pickupLon,
	}

	store := new(MockRideStore)
	store.On("OpenRidesByDriver", mock.Anything, actor.ID, []models.RideStatus{models.RideStatusRideStart}).
		Return([]*models.Ride{ride}, nil)

	fares := new(MockFareService)
	fares.On("Quote", mock.Anything, "ZZ", mock.AnythingOfType("pricing.FareInput")).
		Return(pricing.FareBreakdown{}, common.NewConfigMissingError("no active rate config for country ZZ"))

	svc := newTestService(store, fares)

	_, err := svc.EndRide(context.Background(), actor, &models.EndRideRequest{
		Latitude: 6.4281, Longitude: 3.4219, Address: "Victoria Island",
	})
	assert.Error(t, err)

	var appErr *common.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, common.CodeConfigMissing, appErr.ErrorCode)
	store.AssertNotCalled(t, "FinishRide", mock.Anything, mock.Anything, mock.Anything)
}

func TestSettleCash(t *testing.T) {
	actor := driverActor()
	ride := &models.Ride{ID: uuid.New(), Status: models.RideStatusRideEnd, DriverID: &actor.ID}
	isPaid := true

	store := new(MockRideStore)
	store.On("OpenRidesByDriver", mock.Anything, actor.ID, []models.RideStatus{models.RideStatusRideEnd}).
		Return([]*models.Ride{ride}, nil)
	store.On("MarkPaid", mock.Anything, ride.ID).Return(true, nil)

	svc := newTestService(store, new(MockFareService))

	err := svc.SettleCash(context.Background(), actor, &models.CashPaymentRequest{IsPaid: &isPaid})
	assert.NoError(t, err)
	store.AssertExpectations(t)
}

func TestSettleCash_PaymentIncomplete(t *testing.T) {
	actor := driverActor()
	isPaid := false

	store := new(MockRideStore)
	svc := newTestService(store, new(MockFareService))

	err := svc.SettleCash(context.Background(), actor, &models.CashPaymentRequest{IsPaid: &isPaid})
	var appErr *common.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, common.CodeValidation, appErr.ErrorCode)
	store.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything)
}

func TestRateRide(t *testing.T) {
	actor := riderActor()
	ride := &models.Ride{ID: uuid.New(), RiderID: actor.ID, Status: models.RideStatusPaid, IsCompleted: true}

	store := new(MockRideStore)
	store.On("GetRideByID", mock.Anything, ride.ID).Return(ride, nil)
	store.On("UpdateRating", mock.Anything, ride.ID, 5, mock.AnythingOfType("*string")).Return(nil)

	svc := newTestService(store, new(MockFareService))

	err := svc.RateRide(context.Background(), actor, &models.RateRideRequest{
		RideID: ride.ID, Rating: 5, Feedback: "smooth trip",
	})
	assert.NoError(t, err)
	store.AssertExpectations(t)
}

func TestRateRide_NotTerminal(t *testing.T) {
	actor := riderActor()
	ride := &models.Ride{ID: uuid.New(), RiderID: actor.ID, Status: models.RideStatusRideStart}

	store := new(MockRideStore)
	store.On("GetRideByID", mock.Anything, ride.ID).Return(ride, nil)

	svc := newTestService(store, new(MockFareService))

	err := svc.RateRide(context.Background(), actor, &models.RateRideRequest{RideID: ride.ID, Rating: 4})
	var appErr *common.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, common.CodeStateConflict, appErr.ErrorCode)
	store.AssertNotCalled(t, "UpdateRating", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRateRide_WrongRider(t *testing.T) {
	actor := riderActor()
	ride := &models.Ride{ID: uuid.New(), RiderID: uuid.New(), Status: models.RideStatusPaid}

	store := new(MockRideStore)
	store.On("GetRideByID", mock.Anything, ride.ID).Return(ride, nil)

	svc := newTestService(store, new(MockFareService))

	err := svc.RateRide(context.Background(), actor, &models.RateRideRequest{RideID: ride.ID, Rating: 4})
	assertGuardViolation(t, err)
}
