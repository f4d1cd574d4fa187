package tests

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/MahoudAyman/tuktuk/internal/domain"
	"github.com/MahoudAyman/tuktuk/internal/feed"
	"github.com/MahoudAyman/tuktuk/internal/geo"
	"github.com/MahoudAyman/tuktuk/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK RIDE REPOSITORY
// ──────────────────────────────────────────────

// MockRideRepository is an in-memory RideRepository. Claim, AdvanceStatus
// and UpdateDestination hold the mutex across their check-and-commit, so the
// mock gives the same exactly-one-winner guarantee as the real store and
// race tests against it are meaningful.
type MockRideRepository struct {
	mu    sync.RWMutex
	rides map[string]*domain.Ride

	// Counters for verification
	CreateCallCount  int32
	ClaimCallCount   int32
	AdvanceCallCount int32

	// Error injection
	CreateError  error
	ClaimError   error
	AdvanceError error
}

// NewMockRideRepository creates a new mock ride repository.
func NewMockRideRepository() *MockRideRepository {
	return &MockRideRepository{
		rides: make(map[string]*domain.Ride),
	}
}

// AddRide adds a ride to the mock repository.
func (m *MockRideRepository) AddRide(ride *domain.Ride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[ride.ID] = ride
}

func (m *MockRideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *ride
	m.rides[ride.ID] = &copy
	return nil
}

func (m *MockRideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ride, ok := m.rides[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *ride
	return &copy, nil
}

func (m *MockRideRepository) ActiveByPassenger(ctx context.Context, passengerID string) (*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.rides {
		if r.PassengerID == passengerID && r.Status != domain.RideStatusFinished {
			copy := *r
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockRideRepository) ActiveByDriver(ctx context.Context, driverID string) (*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	// Pending is excluded on the driver side, as in the SQL query: an
	// advisory assignment is not the driver's ride until claimed.
	for _, r := range m.rides {
		if r.DriverID == driverID && r.Status != domain.RideStatusFinished && r.Status != domain.RideStatusPending {
			copy := *r
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockRideRepository) ListPendingUnassigned(ctx context.Context) ([]*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Ride, 0)
	for _, r := range m.rides {
		if r.Status == domain.RideStatusPending && r.DriverID == "" {
			copy := *r
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (m *MockRideRepository) Claim(ctx context.Context, rideID, driverID string) error {
	atomic.AddInt32(&m.ClaimCallCount, 1)
	if m.ClaimError != nil {
		return m.ClaimError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[rideID]
	if !ok {
		return repository.ErrNotFound
	}
	if ride.Status != domain.RideStatusPending {
		return repository.ErrConflict
	}
	if ride.DriverID != "" && ride.DriverID != driverID {
		return repository.ErrConflict
	}
	ride.DriverID = driverID
	ride.Status = domain.RideStatusAccepted
	return nil
}

func (m *MockRideRepository) AdvanceStatus(ctx context.Context, rideID, driverID string, from, to domain.RideStatus) error {
	atomic.AddInt32(&m.AdvanceCallCount, 1)
	if m.AdvanceError != nil {
		return m.AdvanceError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[rideID]
	if !ok {
		return repository.ErrNotFound
	}
	if ride.Status != from || ride.DriverID != driverID {
		return repository.ErrConflict
	}
	ride.Status = to
	return nil
}

func (m *MockRideRepository) UpdateDestination(ctx context.Context, rideID string, dest domain.Location) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[rideID]
	if !ok {
		return repository.ErrNotFound
	}
	if ride.Status != domain.RideStatusPending {
		return repository.ErrConflict
	}
	ride.Destination = dest
	return nil
}

// GetRide returns the ride by ID (for test assertions).
func (m *MockRideRepository) GetRide(id string) *domain.Ride {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rides[id]
}

// CountRides returns the number of rides.
func (m *MockRideRepository) CountRides() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rides)
}

// ──────────────────────────────────────────────
// MOCK DRIVER REPOSITORY
// ──────────────────────────────────────────────

// MockDriverRepository is an in-memory DriverRepository.
type MockDriverRepository struct {
	mu      sync.RWMutex
	drivers map[string]*domain.Driver

	// Counters for verification
	CreateCallCount              int32
	UpdateStatusCallCount        int32
	RecordCompletedRideCallCount int32

	// Error injection
	CreateError       error
	UpdateStatusError error
}

// NewMockDriverRepository creates a new mock driver repository.
func NewMockDriverRepository() *MockDriverRepository {
	return &MockDriverRepository{
		drivers: make(map[string]*domain.Driver),
	}
}

// AddDriver adds a driver to the mock repository.
func (m *MockDriverRepository) AddDriver(driver *domain.Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
}

func (m *MockDriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *driver
	m.drivers[driver.ID] = &copy
	return nil
}

func (m *MockDriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	driver, ok := m.drivers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *driver
	return &copy, nil
}

func (m *MockDriverRepository) GetAvailable(ctx context.Context) ([]*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Driver, 0)
	for _, d := range m.drivers {
		if d.Status == domain.DriverStatusAvailable {
			copy := *d
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (m *MockDriverRepository) UpdateStatus(ctx context.Context, id string, status domain.DriverStatus) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	if m.UpdateStatusError != nil {
		return m.UpdateStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	driver.Status = status
	return nil
}

func (m *MockDriverRepository) UpdateLocation(ctx context.Context, id string, loc domain.Location) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	driver.Location = loc
	return nil
}

func (m *MockDriverRepository) RecordCompletedRide(ctx context.Context, id string) error {
	atomic.AddInt32(&m.RecordCompletedRideCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	driver.TotalRides++
	driver.Status = domain.DriverStatusAvailable
	return nil
}

// GetDriver returns driver for test assertions.
func (m *MockDriverRepository) GetDriver(id string) *domain.Driver {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.drivers[id]
}

// ──────────────────────────────────────────────
// MOCK PASSENGER REPOSITORY
// ──────────────────────────────────────────────

// MockPassengerRepository is an in-memory PassengerRepository.
type MockPassengerRepository struct {
	mu         sync.RWMutex
	passengers map[string]*domain.Passenger

	// Error injection
	CreateError error
}

// NewMockPassengerRepository creates a new mock passenger repository.
func NewMockPassengerRepository() *MockPassengerRepository {
	return &MockPassengerRepository{
		passengers: make(map[string]*domain.Passenger),
	}
}

// AddPassenger adds a passenger to the mock repository.
func (m *MockPassengerRepository) AddPassenger(p *domain.Passenger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.passengers[p.ID] = p
}

func (m *MockPassengerRepository) Create(ctx context.Context, p *domain.Passenger) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *p
	m.passengers[p.ID] = &copy
	return nil
}

func (m *MockPassengerRepository) GetByID(ctx context.Context, id string) (*domain.Passenger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.passengers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *p
	return &copy, nil
}

func (m *MockPassengerRepository) UpdateLocation(ctx context.Context, id string, loc domain.Location) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.passengers[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Location = loc
	return nil
}

// ──────────────────────────────────────────────
// MOCK LOCATION STORE
// ──────────────────────────────────────────────

// MockLocationStore is an in-memory driver geo index. Unlike the Redis one
// it filters with the haversine distance directly.
type MockLocationStore struct {
	mu        sync.RWMutex
	locations map[string]domain.Location

	// Counters
	UpdateLocationCallCount int32

	// Error injection
	UpdateLocationError    error
	FindNearbyDriversError error
}

// NewMockLocationStore creates a new mock location store.
func NewMockLocationStore() *MockLocationStore {
	return &MockLocationStore{
		locations: make(map[string]domain.Location),
	}
}

func (m *MockLocationStore) UpdateLocation(ctx context.Context, driverID string, loc domain.Location) error {
	atomic.AddInt32(&m.UpdateLocationCallCount, 1)
	if m.UpdateLocationError != nil {
		return m.UpdateLocationError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locations[driverID] = loc
	return nil
}

func (m *MockLocationStore) FindNearbyDrivers(ctx context.Context, center domain.Location, radiusKm float64) ([]string, error) {
	if m.FindNearbyDriversError != nil {
		return nil, m.FindNearbyDriversError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	type entry struct {
		id   string
		dist float64
	}
	matched := make([]entry, 0, len(m.locations))
	for id, loc := range m.locations {
		d := geo.Distance(center, loc)
		if d <= radiusKm {
			matched = append(matched, entry{id: id, dist: d})
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].dist < matched[j].dist
	})

	ids := make([]string, 0, len(matched))
	for _, e := range matched {
		ids = append(ids, e.id)
	}
	return ids, nil
}

func (m *MockLocationStore) RemoveLocation(ctx context.Context, driverID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locations, driverID)
	return nil
}

// HasLocation checks if a driver location exists.
func (m *MockLocationStore) HasLocation(driverID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.locations[driverID]
	return ok
}

// ──────────────────────────────────────────────
// MOCK MATCHING
// ──────────────────────────────────────────────

// MockMatching is a canned matching implementation.
type MockMatching struct {
	Driver *domain.Driver
	Err    error

	MatchCallCount int32
}

// NewMockMatching creates a mock matcher returning the given driver.
func NewMockMatching(driver *domain.Driver, err error) *MockMatching {
	return &MockMatching{Driver: driver, Err: err}
}

func (m *MockMatching) Match(ctx context.Context, pickup domain.Location) (*domain.Driver, error) {
	atomic.AddInt32(&m.MatchCallCount, 1)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Driver, nil
}

// ──────────────────────────────────────────────
// CAPTURE PUBLISHER
// ──────────────────────────────────────────────

// CapturePublisher records published feed events for assertions.
type CapturePublisher struct {
	mu           sync.Mutex
	rideEvents   []feed.RideEvent
	driverEvents []feed.DriverSetEvent
}

// NewCapturePublisher creates a new CapturePublisher.
func NewCapturePublisher() *CapturePublisher {
	return &CapturePublisher{}
}

func (p *CapturePublisher) PublishRide(ev feed.RideEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rideEvents = append(p.rideEvents, ev)
}

func (p *CapturePublisher) PublishDrivers(ev feed.DriverSetEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.driverEvents = append(p.driverEvents, ev)
}

// RideEvents returns a copy of the recorded ride events.
func (p *CapturePublisher) RideEvents() []feed.RideEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]feed.RideEvent, len(p.rideEvents))
	copy(out, p.rideEvents)
	return out
}

// LastRideEvent returns the most recent ride event, or a zero event.
func (p *CapturePublisher) LastRideEvent() feed.RideEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.rideEvents) == 0 {
		return feed.RideEvent{}
	}
	return p.rideEvents[len(p.rideEvents)-1]
}

// DriverEventCount returns the number of driver-set snapshots published.
func (p *CapturePublisher) DriverEventCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.driverEvents)
}

// ──────────────────────────────────────────────
// HELPER ERRORS
// ──────────────────────────────────────────────

var (
	ErrMockDBConstraint = errors.New("mock: unique constraint violation")
	ErrMockTimeout      = errors.New("mock: operation timeout")
)
