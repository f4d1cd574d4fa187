package feed

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/MahoudAyman/tuktuk/internal/domain"
)

const (
	rideChannel   = "feed:rides"
	driverChannel = "feed:drivers"
)

// Relay bridges the in-process Bus across instances through Redis Pub/Sub.
// Locally published events are mirrored to Redis; events published by other
// instances are re-injected into the local Bus. Each relay tags outgoing
// messages with its own origin ID and drops its echoes.
type Relay struct {
	bus    *Bus
	client *redis.Client
	origin string
}

// NewRelay creates a Relay around the given bus.
func NewRelay(bus *Bus, client *redis.Client) *Relay {
	return &Relay{
		bus:    bus,
		client: client,
		origin: uuid.New().String(),
	}
}

// PublishRide publishes locally and mirrors the event to Redis.
func (r *Relay) PublishRide(ev RideEvent) {
	r.bus.PublishRide(ev)

	msg := wireRideEvent{
		Origin: r.origin,
		Old:    toWireRide(ev.Old),
		New:    toWireRide(ev.New),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := r.client.Publish(context.Background(), rideChannel, data).Err(); err != nil {
		log.Printf("feed relay: publish ride event: %v", err)
	}
}

// PublishDrivers publishes locally and mirrors the snapshot to Redis.
func (r *Relay) PublishDrivers(ev DriverSetEvent) {
	r.bus.PublishDrivers(ev)

	msg := wireDriverEvent{Origin: r.origin}
	for _, d := range ev.Drivers {
		msg.Drivers = append(msg.Drivers, toWireDriver(d))
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := r.client.Publish(context.Background(), driverChannel, data).Err(); err != nil {
		log.Printf("feed relay: publish driver snapshot: %v", err)
	}
}

// Run consumes remote events until ctx is cancelled. It re-subscribes after
// connection loss; subscribers recover missed events by re-reading the store.
func (r *Relay) Run(ctx context.Context) {
	sub := r.client.Subscribe(ctx, rideChannel, driverChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			r.dispatch(msg)
		}
	}
}

func (r *Relay) dispatch(msg *redis.Message) {
	switch msg.Channel {
	case rideChannel:
		var ev wireRideEvent
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			log.Printf("feed relay: bad ride payload: %v", err)
			return
		}
		if ev.Origin == r.origin {
			return
		}
		r.bus.PublishRide(RideEvent{Old: fromWireRide(ev.Old), New: fromWireRide(ev.New)})

	case driverChannel:
		var ev wireDriverEvent
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			log.Printf("feed relay: bad driver payload: %v", err)
			return
		}
		if ev.Origin == r.origin {
			return
		}
		out := DriverSetEvent{}
		for _, d := range ev.Drivers {
			out.Drivers = append(out.Drivers, fromWireDriver(d))
		}
		r.bus.PublishDrivers(out)
	}
}

var _ Publisher = (*Relay)(nil)

// Wire formats for cross-instance transport. The domain structs stay free of
// serialization tags; conversion happens at this boundary.

type wireRideEvent struct {
	Origin string    `json:"origin"`
	Old    *wireRide `json:"old,omitempty"`
	New    *wireRide `json:"new,omitempty"`
}

type wireRide struct {
	ID          string    `json:"id"`
	PassengerID string    `json:"passenger_id"`
	DriverID    string    `json:"driver_id,omitempty"`
	PickupLat   float64   `json:"pickup_lat"`
	PickupLng   float64   `json:"pickup_lng"`
	DestLat     float64   `json:"destination_lat"`
	DestLng     float64   `json:"destination_lng"`
	Status      string    `json:"status"`
	Price       int       `json:"price"`
	DistanceKm  float64   `json:"distance_km"`
	CreatedAt   time.Time `json:"created_at"`
}

type wireDriverEvent struct {
	Origin  string        `json:"origin"`
	Drivers []*wireDriver `json:"drivers"`
}

type wireDriver struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	TukTukNumber string  `json:"tuktuk_number"`
	Status       string  `json:"status"`
	Rating       float64 `json:"rating"`
	TotalRides   int     `json:"total_rides"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
}

func toWireRide(r *domain.Ride) *wireRide {
	if r == nil {
		return nil
	}
	return &wireRide{
		ID:          r.ID,
		PassengerID: r.PassengerID,
		DriverID:    r.DriverID,
		PickupLat:   r.Pickup.Lat,
		PickupLng:   r.Pickup.Lng,
		DestLat:     r.Destination.Lat,
		DestLng:     r.Destination.Lng,
		Status:      string(r.Status),
		Price:       r.Price,
		DistanceKm:  r.DistanceKm,
		CreatedAt:   r.CreatedAt,
	}
}

func fromWireRide(w *wireRide) *domain.Ride {
	if w == nil {
		return nil
	}
	return &domain.Ride{
		ID:          w.ID,
		PassengerID: w.PassengerID,
		DriverID:    w.DriverID,
		Pickup:      domain.Location{Lat: w.PickupLat, Lng: w.PickupLng},
		Destination: domain.Location{Lat: w.DestLat, Lng: w.DestLng},
		Status:      domain.RideStatus(w.Status),
		Price:       w.Price,
		DistanceKm:  w.DistanceKm,
		CreatedAt:   w.CreatedAt,
	}
}

func toWireDriver(d *domain.Driver) *wireDriver {
	return &wireDriver{
		ID:           d.ID,
		Name:         d.Name,
		TukTukNumber: d.TukTukNumber,
		Status:       string(d.Status),
		Rating:       d.Rating,
		TotalRides:   d.TotalRides,
		Lat:          d.Location.Lat,
		Lng:          d.Location.Lng,
	}
}

func fromWireDriver(w *wireDriver) *domain.Driver {
	return &domain.Driver{
		ID:           w.ID,
		Name:         w.Name,
		TukTukNumber: w.TukTukNumber,
		Status:       domain.DriverStatus(w.Status),
		Rating:       w.Rating,
		TotalRides:   w.TotalRides,
		Location:     domain.Location{Lat: w.Lat, Lng: w.Lng},
	}
}
