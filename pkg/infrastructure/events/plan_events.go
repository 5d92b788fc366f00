package events

import (
	"sync"
	"time"
)

const (
	WindowSolvedEvent       = "window.solved"
	ShortageIdentifiedEvent = "shortage.identified"
	PlanStitchedEvent       = "plan.stitched"
	PlanArchivedEvent       = "plan.archived"
)

// Event is one planning lifecycle occurrence
type Event struct {
	Type string
	Time time.Time
	Data interface{}
}

// WindowSolved reports one rolling-horizon window solve
type WindowSolved struct {
	Index          int     `json:"index"`
	Range          string  `json:"range"`
	CommitThrough  string  `json:"commit_through"`
	Status         string  `json:"status"`
	Objective      float64 `json:"objective"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

// ShortageIdentified reports unmet demand found in a solved window
type ShortageIdentified struct {
	Destination string  `json:"destination"`
	Product     string  `json:"product"`
	Date        string  `json:"date"`
	Units       float64 `json:"units"`
}

// PlanStitched reports the completed stitched plan
type PlanStitched struct {
	HorizonStart string `json:"horizon_start"`
	HorizonEnd   string `json:"horizon_end"`
	Windows      int    `json:"windows"`
	TotalCost    string `json:"total_cost"`
}

// PlanArchived reports a plan persisted to the archive
type PlanArchived struct {
	RunID int64  `json:"run_id"`
	Path  string `json:"path"`
}

// Handler receives published events
type Handler func(Event)

// Bus is a synchronous in-process event bus. Handlers run on the
// publisher's goroutine in subscription order, so solve progress events
// arrive in the order the orchestrator emits them.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	log      []Event
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{handlers: make(map[string][]Handler)}
}

// Subscribe registers a handler for one event type
func (b *Bus) Subscribe(eventType string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], h)
}

// Publish records the event and delivers it to subscribers
func (b *Bus) Publish(eventType string, data interface{}) {
	event := Event{Type: eventType, Time: time.Now(), Data: data}

	b.mu.Lock()
	b.log = append(b.log, event)
	handlers := append([]Handler(nil), b.handlers[eventType]...)
	b.mu.Unlock()

	for _, h := range handlers {
		h(event)
	}
}

// Events returns a copy of every published event in order
func (b *Bus) Events() []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Event(nil), b.log...)
}
