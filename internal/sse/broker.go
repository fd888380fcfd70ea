// Package sse implements a Server-Sent Events broker for catalog reload notifications.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Event types published by the broker.
const (
	EventCatalogReloaded     = "catalog.reloaded"
	EventCatalogReloadFailed = "catalog.reload_failed"
)

// clientBuffer is the number of frames a slow client may fall behind by
// before frames are dropped for it.
const clientBuffer = 64

// Event represents an SSE event to broadcast.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ReloadInfo is the payload of a catalog.reloaded event.
type ReloadInfo struct {
	Checksum string `json:"checksum"`
	Records  int    `json:"records"`
}

// Stats is a point-in-time view of the broker.
type Stats struct {
	Clients int
	Dropped uint64
}

// state is owned by the event loop goroutine.
type state struct {
	clients      map[chan []byte]struct{}
	lastChecksum string
	dropped      uint64
}

func (s *state) broadcast(event Event) {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return
	}
	frame := []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, payload))
	for ch := range s.clients {
		select {
		case ch <- frame:
		default:
			s.dropped++
		}
	}
}

// Broker fans events out to SSE clients. All mutable state lives in one
// goroutine; callers submit operations to it over ops.
type Broker struct {
	keepAlive time.Duration

	ops     chan func(*state)
	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a broker. Connected handlers write a comment line every
// keepAlive so idle proxies do not drop the stream.
func NewBroker(keepAlive time.Duration) *Broker {
	if keepAlive <= 0 {
		keepAlive = 15 * time.Second
	}
	b := &Broker{
		keepAlive: keepAlive,
		ops:       make(chan func(*state)),
		stopCh:    make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	go b.loop()
	return b
}

func (b *Broker) loop() {
	defer close(b.stopped)

	st := &state{clients: make(map[chan []byte]struct{})}
	for {
		select {
		case <-b.stopCh:
			for ch := range st.clients {
				close(ch)
			}
			return
		case op := <-b.ops:
			op(st)
		}
	}
}

// do runs op on the loop goroutine. It reports false once the broker is closed.
func (b *Broker) do(op func(*state)) bool {
	if b.closed.Load() {
		return false
	}
	select {
	case b.ops <- op:
		return true
	case <-b.stopped:
		return false
	}
}

// Close stops the loop and closes every client channel. It is idempotent.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe registers a client. The channel is closed by Unsubscribe or Close.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, clientBuffer)
	if !b.do(func(s *state) { s.clients[ch] = struct{}{} }) {
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	b.do(func(s *state) {
		if _, ok := s.clients[ch]; ok {
			delete(s.clients, ch)
			close(ch)
		}
	})
}

// Stats reports the client count and how many frames were dropped for
// slow clients. A closed broker reports zero clients.
func (b *Broker) Stats() Stats {
	resp := make(chan Stats, 1)
	if !b.do(func(s *state) { resp <- Stats{Clients: len(s.clients), Dropped: s.dropped} }) {
		return Stats{}
	}
	return <-resp
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	return b.Stats().Clients
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	b.do(func(s *state) { s.broadcast(event) })
}

// PublishReloaded announces a new catalog. Repeats of the last announced
// checksum are dropped.
func (b *Broker) PublishReloaded(checksum string, records int) {
	b.do(func(s *state) {
		if checksum == s.lastChecksum {
			return
		}
		s.lastChecksum = checksum
		s.broadcast(Event{Type: EventCatalogReloaded, Data: ReloadInfo{Checksum: checksum, Records: records}})
	})
}

// PublishReloadFailed announces a rejected catalog. The previous catalog
// stays active.
func (b *Broker) PublishReloadFailed(err error) {
	b.Publish(Event{Type: EventCatalogReloadFailed, Data: map[string]string{"error": err.Error()}})
}

// ServeHTTP is the SSE endpoint handler (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ping := time.NewTicker(b.keepAlive)
	defer ping.Stop()

	for {
		var frame []byte
		select {
		case <-r.Context().Done():
			return
		case <-ping.C:
			frame = []byte(": ping\n\n")
		case msg, open := <-ch:
			if !open {
				return
			}
			frame = msg
		}
		if _, err := w.Write(frame); err != nil {
			return
		}
		flusher.Flush()
	}
}
