package events

import (
	"github.com/bakeplan/bakeplan/pkg/application/services/rolling"
)

// Publisher bridges the rolling orchestrator to the event bus, emitting
// one WindowSolved event per window plus a ShortageIdentified event for
// every shortage row in the window plan.
type Publisher struct {
	bus *Bus
}

// NewPublisher creates a publisher over the given bus
func NewPublisher(bus *Bus) *Publisher {
	return &Publisher{bus: bus}
}

// Verify interface compliance
var _ rolling.Observer = (*Publisher)(nil)

// ObserveWindow publishes the window outcome
func (p *Publisher) ObserveWindow(result rolling.WindowResult) {
	p.bus.Publish(WindowSolvedEvent, WindowSolved{
		Index:          result.Window.Index,
		Range:          result.Window.Range.String(),
		CommitThrough:  result.Window.CommitThrough.String(),
		Status:         result.Status.String(),
		Objective:      result.Objective,
		ElapsedSeconds: result.Elapsed.Seconds(),
	})
	if result.Plan == nil {
		return
	}
	for _, s := range result.Plan.Shortages {
		p.bus.Publish(ShortageIdentifiedEvent, ShortageIdentified{
			Destination: string(s.Destination),
			Product:     string(s.Product),
			Date:        s.Date.String(),
			Units:       s.Units,
		})
	}
}
