package rolling

import (
	"fmt"

	"github.com/bakeplan/bakeplan/pkg/domain/entities"
)

// Window is one slice of the rolling horizon. The committed region is the
// prefix [Range.Start, CommitThrough]; the remainder of the window exists
// so the solve can see downstream demand, and is re-planned by the next
// window.
type Window struct {
	Index         int
	Range         entities.DateRange
	CommitThrough entities.Date
}

func (w Window) String() string {
	return fmt.Sprintf("window %d %s commit-through %s", w.Index, w.Range, w.CommitThrough)
}

// Committed is the window's committed date range
func (w Window) Committed() entities.DateRange {
	return entities.DateRange{Start: w.Range.Start, End: w.CommitThrough}
}

// Partition slices the horizon into overlapping windows of windowDays
// length stepping by windowDays-overlapDays. The committed regions tile
// the horizon exactly: every date is committed by exactly one window, and
// the final window commits through the horizon end.
func Partition(horizon entities.DateRange, windowDays, overlapDays int) ([]Window, error) {
	if windowDays < 1 {
		return nil, fmt.Errorf("window length must be at least 1 day, got %d", windowDays)
	}
	if overlapDays < 0 || overlapDays >= windowDays {
		return nil, fmt.Errorf("overlap must be in [0, %d), got %d", windowDays, overlapDays)
	}
	step := windowDays - overlapDays

	var windows []Window
	for start := horizon.Start; start <= horizon.End; start = start.Add(step) {
		end := start.Add(windowDays - 1)
		if end > horizon.End {
			end = horizon.End
		}
		commit := start.Add(step - 1)
		if commit > horizon.End {
			commit = horizon.End
		}
		if end == horizon.End {
			commit = end
		}
		windows = append(windows, Window{
			Index:         len(windows),
			Range:         entities.DateRange{Start: start, End: end},
			CommitThrough: commit,
		})
		if end == horizon.End {
			break
		}
	}
	return windows, nil
}
