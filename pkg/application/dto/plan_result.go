package dto

import (
	"fmt"

	"github.com/bakeplan/bakeplan/pkg/domain/entities"
)

// PlanResult is the serializable form of a solved plan. Dates are ISO 8601
// strings and cohort inventory is flattened to rows, so the result can be
// archived as JSON and rendered without the domain types.
type PlanResult struct {
	HorizonStart string `json:"horizon_start"`
	HorizonEnd   string `json:"horizon_end"`

	Batches       []BatchRow     `json:"batches,omitempty"`
	Shipments     []ShipmentRow  `json:"shipments,omitempty"`
	Fills         []FillRow      `json:"fills,omitempty"`
	Shortages     []ShortageRow  `json:"shortages,omitempty"`
	Disposals     []DisposalRow  `json:"disposals,omitempty"`
	TruckLoads    []TruckLoadRow `json:"truck_loads,omitempty"`
	EndingCohorts []CohortRow    `json:"ending_cohorts,omitempty"`

	Costs CostRow `json:"costs"`
}

// BatchRow is one day's production of a product
type BatchRow struct {
	Product string  `json:"product"`
	Date    string  `json:"date"`
	Units   int64   `json:"units"`
	Hours   float64 `json:"hours"`
}

// ShipmentRow is one cohort's movement over a leg
type ShipmentRow struct {
	From        string  `json:"from"`
	To          string  `json:"to"`
	Product     string  `json:"product"`
	ProduceDate string  `json:"produce_date"`
	DepartDate  string  `json:"depart_date"`
	DeliverDate string  `json:"deliver_date"`
	DepartState string  `json:"depart_state"`
	ArriveState string  `json:"arrive_state"`
	Units       float64 `json:"units"`
	Truck       string  `json:"truck,omitempty"`
}

// FillRow records demand satisfied from a cohort
type FillRow struct {
	Destination string  `json:"destination"`
	Product     string  `json:"product"`
	Date        string  `json:"date"`
	ProduceDate string  `json:"produce_date"`
	Units       float64 `json:"units"`
}

// ShortageRow records unmet demand
type ShortageRow struct {
	Destination string  `json:"destination"`
	Product     string  `json:"product"`
	Date        string  `json:"date"`
	Units       float64 `json:"units"`
}

// DisposalRow records an expired cohort removed as waste
type DisposalRow struct {
	Location    string  `json:"location"`
	Product     string  `json:"product"`
	ProduceDate string  `json:"produce_date"`
	Date        string  `json:"date"`
	State       string  `json:"state"`
	Units       float64 `json:"units"`
}

// TruckLoadRow records solved load on one truck departure
type TruckLoadRow struct {
	Truck      string  `json:"truck"`
	DepartDate string  `json:"depart_date"`
	Product    string  `json:"product"`
	Units      float64 `json:"units"`
	Pallets    int64   `json:"pallets"`
}

// CohortRow is one cohort inventory quantity in flattened form
type CohortRow struct {
	Location    string  `json:"location"`
	Product     string  `json:"product"`
	ProduceDate string  `json:"produce_date"`
	CurrentDate string  `json:"current_date"`
	State       string  `json:"state"`
	Units       float64 `json:"units"`
}

// CostRow is the plan cost by category, decimal-exact as strings
type CostRow struct {
	Labor      string `json:"labor"`
	Production string `json:"production"`
	Transport  string `json:"transport"`
	Holding    string `json:"holding"`
	Waste      string `json:"waste"`
	Shortage   string `json:"shortage"`
	Total      string `json:"total"`
}

// FromPlan converts a solved plan into its serializable form
func FromPlan(plan *entities.Plan) PlanResult {
	out := PlanResult{
		HorizonStart: plan.Horizon.Start.String(),
		HorizonEnd:   plan.Horizon.End.String(),
		Costs: CostRow{
			Labor:      plan.Costs.Labor.String(),
			Production: plan.Costs.Production.String(),
			Transport:  plan.Costs.Transport.String(),
			Holding:    plan.Costs.Holding.String(),
			Waste:      plan.Costs.Waste.String(),
			Shortage:   plan.Costs.Shortage.String(),
			Total:      plan.Costs.Total().String(),
		},
	}

	for _, b := range plan.Batches {
		out.Batches = append(out.Batches, BatchRow{
			Product: string(b.Product),
			Date:    b.Date.String(),
			Units:   int64(b.Units),
			Hours:   b.Hours,
		})
	}
	for _, s := range plan.Shipments {
		out.Shipments = append(out.Shipments, ShipmentRow{
			From:        string(s.From),
			To:          string(s.To),
			Product:     string(s.Product),
			ProduceDate: s.ProduceDate.String(),
			DepartDate:  s.DepartDate.String(),
			DeliverDate: s.DeliverDate.String(),
			DepartState: s.DepartState.String(),
			ArriveState: s.ArriveState.String(),
			Units:       s.Units,
			Truck:       string(s.Truck),
		})
	}
	for _, f := range plan.Fills {
		out.Fills = append(out.Fills, FillRow{
			Destination: string(f.Destination),
			Product:     string(f.Product),
			Date:        f.Date.String(),
			ProduceDate: f.ProduceDate.String(),
			Units:       f.Units,
		})
	}
	for _, s := range plan.Shortages {
		out.Shortages = append(out.Shortages, ShortageRow{
			Destination: string(s.Destination),
			Product:     string(s.Product),
			Date:        s.Date.String(),
			Units:       s.Units,
		})
	}
	for _, d := range plan.Disposals {
		out.Disposals = append(out.Disposals, DisposalRow{
			Location:    string(d.Location),
			Product:     string(d.Product),
			ProduceDate: d.ProduceDate.String(),
			Date:        d.Date.String(),
			State:       d.State.String(),
			Units:       d.Units,
		})
	}
	for _, tl := range plan.TruckLoads {
		out.TruckLoads = append(out.TruckLoads, TruckLoadRow{
			Truck:      string(tl.Truck),
			DepartDate: tl.DepartDate.String(),
			Product:    string(tl.Product),
			Units:      tl.Units,
			Pallets:    int64(tl.Pallets),
		})
	}
	for _, key := range plan.EndingCohorts.Keys() {
		out.EndingCohorts = append(out.EndingCohorts, CohortRow{
			Location:    string(key.Location),
			Product:     string(key.Product),
			ProduceDate: key.ProduceDate.String(),
			CurrentDate: key.CurrentDate.String(),
			State:       key.State.String(),
			Units:       plan.EndingCohorts[key],
		})
	}

	return out
}

// ToCohortInventory rebuilds cohort inventory from flattened rows
func ToCohortInventory(rows []CohortRow) (entities.CohortInventory, error) {
	inv := entities.CohortInventory{}
	for _, row := range rows {
		produceDate, err := entities.ParseDate(row.ProduceDate)
		if err != nil {
			return nil, err
		}
		currentDate, err := entities.ParseDate(row.CurrentDate)
		if err != nil {
			return nil, err
		}
		state, err := parseState(row.State)
		if err != nil {
			return nil, err
		}
		inv.Add(entities.CohortKey{
			Location:    entities.LocationID(row.Location),
			Product:     entities.ProductID(row.Product),
			ProduceDate: produceDate,
			CurrentDate: currentDate,
			State:       state,
		}, row.Units)
	}
	return inv, nil
}

func parseState(s string) (entities.StorageState, error) {
	switch s {
	case entities.Ambient.String():
		return entities.Ambient, nil
	case entities.Frozen.String():
		return entities.Frozen, nil
	default:
		return entities.Ambient, fmt.Errorf("unknown storage state %q", s)
	}
}
