// Package status tracks the one-line status indicator of a vault session and
// streams its changes to websocket subscribers.
package status

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Phase classifies a status message.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseFetching Phase = "fetching"
	PhaseIndexing Phase = "indexing"
	PhaseReady    Phase = "ready"
	PhaseLoading  Phase = "loading"
	PhaseLoaded   Phase = "loaded"
	PhaseError    Phase = "error"
)

// Status lines shown to the user.
const (
	FetchingVault     = "Fetching vault…"
	IndexingNotes     = "Indexing notes…"
	ErrorLoadingVault = "Error loading vault"
	Loading           = "Loading…"
	Loaded            = "Loaded"
	ErrorLoadingNote  = "Error loading note"
)

// Ready is the status line once n notes are indexed.
func Ready(n int) string {
	return fmt.Sprintf("Ready · %d notes indexed", n)
}

// Event is one status change.
type Event struct {
	Phase   Phase     `json:"phase"`
	Message string    `json:"message"`
	Current int       `json:"current,omitempty"`
	Total   int       `json:"total,omitempty"`
	Time    time.Time `json:"time"`
}

const subscriberBuffer = 16

// Hub holds the latest event and fans changes out to subscribers. A
// subscriber that falls behind misses events rather than blocking the hub.
type Hub struct {
	mu      sync.RWMutex
	current Event
	subs    map[string]chan Event
	logger  *slog.Logger
}

// NewHub returns a hub in the idle phase.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		current: Event{Phase: PhaseIdle, Time: time.Now()},
		subs:    make(map[string]chan Event),
		logger:  logger,
	}
}

// Set records a new status and broadcasts it.
func (h *Hub) Set(phase Phase, message string) {
	h.publish(Event{Phase: phase, Message: message, Time: time.Now()})
}

// Progress updates the counters of the current phase.
func (h *Hub) Progress(current, total int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ev := h.current
	ev.Current, ev.Total, ev.Time = current, total, time.Now()
	h.publishLocked(ev)
}

func (h *Hub) publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.publishLocked(ev)
}

func (h *Hub) publishLocked(ev Event) {
	h.current = ev
	h.logger.Debug("status", "phase", ev.Phase, "message", ev.Message, "current", ev.Current, "total", ev.Total)
	for id, ch := range h.subs {
		select {
		case ch <- ev:
		default:
			h.logger.Debug("status subscriber lagging, dropping event", "subscriber", id)
		}
	}
}

// Current returns the latest event.
func (h *Hub) Current() Event {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Subscribe registers a subscriber. The channel first receives the current
// event. Call cancel to unsubscribe; the channel is closed afterwards.
func (h *Hub) Subscribe() (id string, events <-chan Event, cancel func()) {
	ch := make(chan Event, subscriberBuffer)
	id = uuid.NewString()

	h.mu.Lock()
	ch <- h.current
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	cancel = func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(ch)
		})
	}
	return id, ch, cancel
}

// Subscribers returns the number of active subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Reporter adapts the hub to progress.Reporter, publishing counters within
// the current phase.
func (h *Hub) Reporter() *Reporter {
	return &Reporter{hub: h}
}

// Reporter forwards progress into a Hub.
type Reporter struct {
	hub   *Hub
	total int
}

func (r *Reporter) Start(total int) {
	r.total = total
	r.hub.Progress(0, total)
}

func (r *Reporter) Update(current int, _ string) {
	r.hub.Progress(current, r.total)
}

func (r *Reporter) Finish() {}
