package output

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bakeplan/bakeplan/pkg/domain/entities"
)

// RenderTimeline draws a day-grid text chart of the plan: one row per
// product showing produced units, plus a truck row marking departures.
// Wide horizons render one column per day, so the chart is meant for
// window-sized plans rather than multi-month output.
func RenderTimeline(plan *entities.Plan) string {
	days := plan.Horizon.Dates()
	if len(days) == 0 {
		return ""
	}

	const cellWidth = 7

	producedBy := make(map[entities.ProductID]map[entities.Date]entities.Quantity)
	for _, b := range plan.Batches {
		if producedBy[b.Product] == nil {
			producedBy[b.Product] = make(map[entities.Date]entities.Quantity)
		}
		producedBy[b.Product][b.Date] += b.Units
	}
	products := make([]entities.ProductID, 0, len(producedBy))
	for p := range producedBy {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i] < products[j] })

	trucksBy := make(map[entities.Date][]string)
	for _, tl := range plan.TruckLoads {
		trucksBy[tl.DepartDate] = append(trucksBy[tl.DepartDate], string(tl.Truck))
	}

	var sb strings.Builder
	sb.WriteString("📅 Production Timeline:\n")

	labelWidth := len("production")
	for _, p := range products {
		if len(p) > labelWidth {
			labelWidth = len(p)
		}
	}

	// Header row: month-day per column
	sb.WriteString(fmt.Sprintf("%-*s", labelWidth+1, ""))
	for _, d := range days {
		sb.WriteString(fmt.Sprintf("%*s", cellWidth, d.Time().Format("01-02")))
	}
	sb.WriteByte('\n')

	for _, p := range products {
		sb.WriteString(fmt.Sprintf("%-*s", labelWidth+1, p))
		for _, d := range days {
			if units := producedBy[p][d]; units > 0 {
				sb.WriteString(fmt.Sprintf("%*d", cellWidth, units))
			} else {
				sb.WriteString(fmt.Sprintf("%*s", cellWidth, "."))
			}
		}
		sb.WriteByte('\n')
	}

	if len(trucksBy) > 0 {
		sb.WriteString(fmt.Sprintf("%-*s", labelWidth+1, "trucks"))
		for _, d := range days {
			if len(trucksBy[d]) == 0 {
				sb.WriteString(fmt.Sprintf("%*s", cellWidth, "."))
				continue
			}
			sort.Strings(trucksBy[d])
			trucks := dedupe(trucksBy[d])
			mark := strings.Join(trucks, ",")
			if len(mark) > cellWidth-1 {
				mark = fmt.Sprintf("x%d", len(trucks))
			}
			sb.WriteString(fmt.Sprintf("%*s", cellWidth, mark))
		}
		sb.WriteByte('\n')
	}

	sb.WriteByte('\n')
	return sb.String()
}

func dedupe(sorted []string) []string {
	out := sorted[:0]
	for i, s := range sorted {
		if i == 0 || sorted[i-1] != s {
			out = append(out, s)
		}
	}
	return out
}
