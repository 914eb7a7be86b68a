// Package sse implements a Server-Sent Events broker that tells open pages
// when posts change.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"
)

// Event types emitted by the broker.
const (
	TypePostCreated = "post.created"
	TypePostUpdated = "post.updated"
	TypePostDeleted = "post.deleted"
	TypeSiteUpdated = "site.updated"
)

const (
	clientBuffer = 64
	replaySize   = 32
	retryMillis  = 3000
)

var postEventTypes = map[string]string{
	"created": TypePostCreated,
	"updated": TypePostUpdated,
	"deleted": TypePostDeleted,
}

// Event represents an SSE event to broadcast.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// outgoing is an event queued for the loop. touchesSite marks post changes,
// which are followed by a throttled site.updated.
type outgoing struct {
	event       Event
	touchesSite bool
}

// membership is a join or leave request; done is closed once the loop has
// applied it.
type membership struct {
	c    *Client
	done chan struct{}
}

type message struct {
	id   uint64
	wire []byte
}

// Client is one subscriber. Messages arrive on C until the client is
// unsubscribed or the broker closes.
type Client struct {
	C      <-chan []byte
	ch     chan []byte
	lastID uint64
}

// Broker fans events out to SSE clients.
//
// A single loop goroutine owns the client set, the sequence counter, the
// replay buffer and the site.updated throttle.
type Broker struct {
	siteMin   time.Duration
	heartbeat time.Duration

	join  chan membership
	leave chan membership
	queue chan outgoing

	clients atomic.Int64
	closed  atomic.Bool
	stopCh  chan struct{}
	stopped chan struct{}
}

// NewBroker creates a new SSE broker. site.updated is emitted at most once
// per siteThrottle.
func NewBroker(siteThrottle time.Duration) *Broker {
	if siteThrottle <= 0 {
		siteThrottle = 2 * time.Second
	}
	b := &Broker{
		siteMin:   siteThrottle,
		heartbeat: 15 * time.Second,
		join:      make(chan membership),
		leave:     make(chan membership),
		queue:     make(chan outgoing, 256),
		stopCh:    make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	go b.loop()
	return b
}

func (b *Broker) loop() {
	defer close(b.stopped)

	var (
		clients  = make(map[*Client]struct{})
		replay   = make([]message, 0, replaySize)
		seq      uint64
		lastSite time.Time
	)

	send := func(c *Client, wire []byte) {
		select {
		case c.ch <- wire:
		default:
			// Slow client; it catches up on the next site.updated.
		}
	}

	emit := func(ev Event) {
		payload, err := json.Marshal(ev.Data)
		if err != nil {
			return
		}
		seq++
		m := message{id: seq, wire: []byte(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", seq, ev.Type, payload))}
		if len(replay) == replaySize {
			replay = append(replay[:0], replay[1:]...)
		}
		replay = append(replay, m)
		for c := range clients {
			send(c, m.wire)
		}
	}

	for {
		select {
		case <-b.stopCh:
			for c := range clients {
				close(c.ch)
			}
			b.clients.Store(0)
			return

		case req := <-b.join:
			c := req.c
			clients[c] = struct{}{}
			b.clients.Store(int64(len(clients)))
			if c.lastID > 0 {
				for _, m := range replay {
					if m.id > c.lastID {
						send(c, m.wire)
					}
				}
			}
			close(req.done)

		case req := <-b.leave:
			if _, ok := clients[req.c]; ok {
				delete(clients, req.c)
				b.clients.Store(int64(len(clients)))
				close(req.c.ch)
			}
			close(req.done)

		case out := <-b.queue:
			emit(out.event)
			if out.touchesSite {
				if now := time.Now(); now.Sub(lastSite) >= b.siteMin {
					lastSite = now
					emit(Event{Type: TypeSiteUpdated, Data: map[string]string{}})
				}
			}
		}
	}
}

// Close stops the loop and closes every client channel. It is safe to call
// more than once.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe registers a client. Buffered events newer than lastID are
// replayed to it; lastID 0 means no replay.
func (b *Broker) Subscribe(lastID uint64) *Client {
	ch := make(chan []byte, clientBuffer)
	c := &Client{C: ch, ch: ch, lastID: lastID}
	if b.closed.Load() {
		close(ch)
		return c
	}
	if !b.apply(b.join, c) {
		close(ch)
	}
	return c
}

// Unsubscribe removes c and closes its channel.
func (b *Broker) Unsubscribe(c *Client) {
	if b.closed.Load() {
		return
	}
	b.apply(b.leave, c)
}

// apply hands a membership change to the loop and waits until it is done.
// It reports false if the broker stopped first.
func (b *Broker) apply(to chan membership, c *Client) bool {
	req := membership{c: c, done: make(chan struct{})}
	select {
	case to <- req:
	case <-b.stopped:
		return false
	}
	<-req.done
	return true
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	return int(b.clients.Load())
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	b.enqueue(outgoing{event: event})
}

// PublishPostEvent publishes a post change (kind is created, updated or
// deleted) followed by a throttled site.updated event. Unknown kinds are
// dropped.
func (b *Broker) PublishPostEvent(kind, path string) {
	typ, ok := postEventTypes[kind]
	if !ok {
		return
	}
	b.enqueue(outgoing{
		event:       Event{Type: typ, Data: map[string]string{"path": path}},
		touchesSite: true,
	})
}

func (b *Broker) enqueue(out outgoing) {
	if b.closed.Load() {
		return
	}
	select {
	case b.queue <- out:
	case <-b.stopped:
	}
}

// ServeHTTP is the SSE endpoint handler (GET /api/events). A reconnecting
// browser's Last-Event-ID header resumes the stream from the replay buffer.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	lastID, _ := strconv.ParseUint(r.Header.Get("Last-Event-ID"), 10, 64)

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "retry: %d\n\n", retryMillis)
	flusher.Flush()

	c := b.Subscribe(lastID)
	defer b.Unsubscribe(c)

	ping := time.NewTicker(b.heartbeat)
	defer ping.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ping.C:
			_, _ = w.Write([]byte(": ping\n\n"))
			flusher.Flush()
		case msg, ok := <-c.C:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
