// Package sse streams note change notifications to browsers as Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"
)

// Change kinds accepted by PublishNoteEvent.
const (
	KindCreated = "created"
	KindUpdated = "updated"
	KindDeleted = "deleted"
)

// EventNotesChanged tells clients their cached list is stale. At most one is
// sent per throttle interval.
const EventNotesChanged = "notes.changed"

const (
	clientBuffer   = 64
	queueSize      = 256
	historySize    = 128
	keepAliveEvery = 30 * time.Second
	retryMillis    = 3000
)

// Event is one SSE message before framing.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type frame struct {
	id  uint64
	raw []byte
}

type subscription struct {
	ch    chan []byte
	after uint64 // replay frames with id > after; 0 means none
}

type change struct {
	kind string
	name string
}

// Broker fans framed events out to subscribers and keeps a short history so
// reconnecting clients can resume from Last-Event-ID.
//
// All state lives in run; the exported methods only send on channels.
type Broker struct {
	throttle time.Duration

	subs    chan subscription
	unsubs  chan chan []byte
	events  chan Event
	changes chan change
	counts  chan chan int

	quit   chan struct{}
	done   chan struct{}
	closed atomic.Bool
}

// NewBroker starts a broker. A non-positive throttle defaults to two seconds.
func NewBroker(throttle time.Duration) *Broker {
	if throttle <= 0 {
		throttle = 2 * time.Second
	}
	b := &Broker{
		throttle: throttle,
		subs:     make(chan subscription),
		unsubs:   make(chan chan []byte),
		events:   make(chan Event, queueSize),
		changes:  make(chan change, queueSize),
		counts:   make(chan chan int),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.done)

	var (
		clients   = make(map[chan []byte]struct{})
		history   = make([]frame, 0, historySize)
		lastID    uint64
		lastNotes time.Time
	)

	send := func(ch chan []byte, raw []byte) {
		select {
		case ch <- raw:
		default: // subscriber is behind; it misses this frame
		}
	}

	emit := func(ev Event) {
		payload, err := json.Marshal(ev.Data)
		if err != nil {
			return
		}
		lastID++
		f := frame{id: lastID, raw: fmt.Appendf(nil, "id: %d\nevent: %s\ndata: %s\n\n", lastID, ev.Type, payload)}
		if len(history) == historySize {
			history = append(history[:0], history[1:]...)
		}
		history = append(history, f)
		for ch := range clients {
			send(ch, f.raw)
		}
	}

	for {
		select {
		case <-b.quit:
			for ch := range clients {
				close(ch)
			}
			return

		case s := <-b.subs:
			clients[s.ch] = struct{}{}
			if s.after == 0 {
				continue
			}
			for _, f := range history {
				if f.id > s.after {
					send(s.ch, f.raw)
				}
			}

		case ch := <-b.unsubs:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case ev := <-b.events:
			emit(ev)

		case c := <-b.changes:
			if c.kind != KindCreated && c.kind != KindUpdated && c.kind != KindDeleted {
				continue
			}
			emit(Event{Type: "note." + c.kind, Data: map[string]string{"name": c.name}})
			if now := time.Now(); now.Sub(lastNotes) >= b.throttle {
				lastNotes = now
				emit(Event{Type: EventNotesChanged, Data: map[string]string{}})
			}

		case reply := <-b.counts:
			reply <- len(clients)
		}
	}
}

// Close stops the broker and closes every subscriber channel. It is safe to
// call more than once.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.quit)
	}
	<-b.done
}

// Subscribe registers a client. Frames with an id greater than after that
// are still in the history are queued first.
func (b *Broker) Subscribe(after uint64) chan []byte {
	ch := make(chan []byte, clientBuffer)
	if b.closed.Load() {
		close(ch)
		return ch
	}
	select {
	case b.subs <- subscription{ch: ch, after: after}:
	case <-b.done:
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubs <- ch:
	case <-b.done:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}
	reply := make(chan int, 1)
	select {
	case b.counts <- reply:
	case <-b.done:
		return 0
	}
	select {
	case n := <-reply:
		return n
	case <-b.done:
		return 0
	}
}

// Publish sends an arbitrary event to all clients.
func (b *Broker) Publish(ev Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.events <- ev:
	case <-b.done:
	}
}

// PublishNoteEvent emits note.<kind> for name, followed by notes.changed when
// the throttle allows. Unknown kinds are dropped.
func (b *Broker) PublishNoteEvent(kind, name string) {
	if b.closed.Load() {
		return
	}
	select {
	case b.changes <- change{kind: kind, name: name}:
	case <-b.done:
	}
}

// ServeHTTP handles GET /events. A Last-Event-ID header resumes from the
// history when the requested frames are still held.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	after, _ := strconv.ParseUint(r.Header.Get("Last-Event-ID"), 10, 64)

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "retry: %d\n\n", retryMillis)
	flusher.Flush()

	ch := b.Subscribe(after)
	defer b.Unsubscribe(ch)

	ping := time.NewTicker(keepAliveEvery)
	defer ping.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ping.C:
			_, _ = w.Write([]byte(": ping\n\n"))
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
