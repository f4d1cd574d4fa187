package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/MahoudAyman/tuktuk/internal/feed"
	"github.com/MahoudAyman/tuktuk/internal/session"
)

// StreamHandler exposes the change feed over WebSocket. Clients hold a
// cached snapshot and fold incoming events into it; the streams here are
// infinite and restart by reconnecting.
type StreamHandler struct {
	bus *feed.Bus
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(bus *feed.Bus) *StreamHandler {
	return &StreamHandler{bus: bus}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// PoolMessage is one driver-side pool notification. An "offer" surfaces an
// incoming-ride prompt; a "retract" removes it, which is all a driver sees
// when someone else wins the claim.
type PoolMessage struct {
	Type string       `json:"type"`
	Ride RideResponse `json:"ride"`
}

// RideEvents handles GET /v1/rides/:id/events
//
// Streams one ride snapshot per committed change, in commit order.
func (h *StreamHandler) RideEvents(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	events, cancel := h.bus.SubscribeRide(c.Param("id"))
	defer cancel()

	done := readUntilClosed(conn)
	for {
		select {
		case <-done:
			return
		case ev := <-events:
			if ev.New == nil {
				continue
			}
			if err := conn.WriteJSON(toRideResponse(ev.New)); err != nil {
				return
			}
		}
	}
}

// PoolEvents handles GET /v1/rides/pool/events?driver_id=...
func (h *StreamHandler) PoolEvents(c *gin.Context) {
	driverID := c.Query("driver_id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	events, cancel := h.bus.SubscribePool(nil)
	defer cancel()

	done := readUntilClosed(conn)
	for {
		select {
		case <-done:
			return
		case ev := <-events:
			if ev.New == nil {
				continue
			}
			var msg PoolMessage
			switch {
			case session.RelevantToDriver(ev, driverID):
				msg = PoolMessage{Type: "offer", Ride: toRideResponse(ev.New)}
			case session.WasRelevantToDriver(ev, driverID):
				msg = PoolMessage{Type: "retract", Ride: toRideResponse(ev.New)}
			default:
				// Never shown to this driver, nothing to withdraw.
				continue
			}
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		}
	}
}

// DriverEvents handles GET /v1/drivers/events
//
// Streams available-driver-set snapshots for the passenger map.
func (h *StreamHandler) DriverEvents(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	events, cancel := h.bus.SubscribeDrivers()
	defer cancel()

	done := readUntilClosed(conn)
	for {
		select {
		case <-done:
			return
		case ev := <-events:
			snapshot := make([]DriverResponse, 0, len(ev.Drivers))
			for _, d := range ev.Drivers {
				snapshot = append(snapshot, toDriverResponse(d))
			}
			if err := conn.WriteJSON(snapshot); err != nil {
				return
			}
		}
	}
}

// readUntilClosed drains client frames so pings are answered and returns a
// channel that closes when the connection drops.
func readUntilClosed(conn *websocket.Conn) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("stream: read: %v", err)
				}
				return
			}
		}
	}()
	return done
}
