package feed

import (
	"sync"

	"github.com/MahoudAyman/tuktuk/internal/domain"
)

// RideEvent is a before/after snapshot of a committed ride mutation.
// Old is nil for ride creation.
type RideEvent struct {
	Old *domain.Ride
	New *domain.Ride
}

// DriverSetEvent is a snapshot of the currently available drivers.
type DriverSetEvent struct {
	Drivers []*domain.Driver
}

// Publisher is the write side of the change feed. Services publish exactly
// one event per committed mutation, in commit order.
type Publisher interface {
	PublishRide(ev RideEvent)
	PublishDrivers(ev DriverSetEvent)
}

// PoolFilter decides which pool events a driver listener sees. A nil filter
// means every pending ride; deployments plug in proximity policies here.
type PoolFilter func(*domain.Ride) bool

const subscriberBuffer = 16

// Bus is an in-process change feed. Subscribers receive events over buffered
// channels; delivery per ride follows publish order. A subscriber that falls
// more than a buffer behind misses events and must re-read the record store,
// the same recovery as after a re-subscribe.
type Bus struct {
	mu         sync.Mutex
	nextID     int
	rideSubs   map[string]map[int]chan RideEvent
	poolSubs   map[int]poolSub
	driverSubs map[int]chan DriverSetEvent
}

type poolSub struct {
	ch     chan RideEvent
	filter PoolFilter
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{
		rideSubs:   make(map[string]map[int]chan RideEvent),
		poolSubs:   make(map[int]poolSub),
		driverSubs: make(map[int]chan DriverSetEvent),
	}
}

// SubscribeRide returns a channel of change events for one ride and a cancel
// function. The stream is infinite until cancelled; callers re-subscribe to
// restart it.
func (b *Bus) SubscribeRide(rideID string) (<-chan RideEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++

	ch := make(chan RideEvent, subscriberBuffer)
	if b.rideSubs[rideID] == nil {
		b.rideSubs[rideID] = make(map[int]chan RideEvent)
	}
	b.rideSubs[rideID][id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if subs, ok := b.rideSubs[rideID]; ok {
			delete(subs, id)
			if len(subs) == 0 {
				delete(b.rideSubs, rideID)
			}
		}
	}
	return ch, cancel
}

// SubscribePool returns a channel of events for the pending pool: rides
// entering it (creation, still unassigned) and leaving it (claimed). Driver
// sessions use this to show and retract incoming-ride prompts.
func (b *Bus) SubscribePool(filter PoolFilter) (<-chan RideEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++

	ch := make(chan RideEvent, subscriberBuffer)
	b.poolSubs[id] = poolSub{ch: ch, filter: filter}

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.poolSubs, id)
	}
	return ch, cancel
}

// SubscribeDrivers returns a channel of available-driver-set snapshots.
func (b *Bus) SubscribeDrivers() (<-chan DriverSetEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++

	ch := make(chan DriverSetEvent, subscriberBuffer)
	b.driverSubs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.driverSubs, id)
	}
	return ch, cancel
}

// PublishRide fans a committed ride mutation out to the ride's subscribers
// and, when the event touches the pending pool, to pool subscribers.
func (b *Bus) PublishRide(ev RideEvent) {
	if ev.New == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.rideSubs[ev.New.ID] {
		send(ch, ev)
	}

	if !poolRelevant(ev) {
		return
	}
	for _, sub := range b.poolSubs {
		if sub.filter != nil && !sub.filter(ev.New) {
			continue
		}
		send(sub.ch, ev)
	}
}

// PublishDrivers fans an available-driver snapshot out to driver-set
// subscribers.
func (b *Bus) PublishDrivers(ev DriverSetEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.driverSubs {
		send(ch, ev)
	}
}

// poolRelevant reports whether the event concerns the pending pool: the ride
// is in it now, or just left it.
func poolRelevant(ev RideEvent) bool {
	if ev.New.Status == domain.RideStatusPending {
		return true
	}
	return ev.Old != nil && ev.Old.Status == domain.RideStatusPending
}

func send[T any](ch chan T, ev T) {
	select {
	case ch <- ev:
	default:
		// Subscriber is not keeping up; it must re-read on reconnect.
	}
}

var _ Publisher = (*Bus)(nil)
