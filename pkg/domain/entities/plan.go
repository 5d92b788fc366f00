package entities

// ProductionBatch is one day's case-aligned production of a product
type ProductionBatch struct {
	Product ProductID
	Date    Date
	Units   Quantity
	Hours   float64
}

// Shipment is solved flow of one cohort over one leg, with provenance
// back to the production date for traceability.
type Shipment struct {
	From        LocationID
	To          LocationID
	Product     ProductID
	ProduceDate Date
	DepartDate  Date
	DeliverDate Date
	DepartState StorageState
	ArriveState StorageState
	Units       float64
	// Truck is set for plant departures attributed to a scheduled truck
	Truck TruckID
}

// InventoryLevel is on-hand inventory aggregated across cohorts for one
// location/product/date/state, for reporting.
type InventoryLevel struct {
	Location LocationID
	Product  ProductID
	Date     Date
	State    StorageState
	Units    float64
}

// DemandFill records how one demand cell was satisfied from a cohort
type DemandFill struct {
	Destination LocationID
	Product     ProductID
	Date        Date
	ProduceDate Date
	Units       float64
}

// Shortage is demand left unmet, permitted only when the run allows it
type Shortage struct {
	Destination LocationID
	Product     ProductID
	Date        Date
	Units       float64
}

// Disposal is an expired cohort removed from inventory as waste
type Disposal struct {
	Location    LocationID
	Product     ProductID
	ProduceDate Date
	Date        Date
	State       StorageState
	Units       float64
}

// TruckLoad is solved load on one scheduled truck departure
type TruckLoad struct {
	Truck      TruckID
	DepartDate Date
	Product    ProductID
	Units      float64
	Pallets    Quantity
}

// Plan is the extracted output of one solve: production, movement,
// inventory trajectory and cost, plus the ending cohort detail the
// rolling horizon needs for handoff.
type Plan struct {
	Horizon       DateRange
	Batches       []ProductionBatch
	Shipments     []Shipment
	Inventory     []InventoryLevel
	Fills         []DemandFill
	Shortages     []Shortage
	Disposals     []Disposal
	TruckLoads    []TruckLoad
	EndingCohorts CohortInventory
	Costs         CostBreakdown
}

// TotalProduction sums produced units across batches
func (p *Plan) TotalProduction() Quantity {
	var total Quantity
	for _, b := range p.Batches {
		total += b.Units
	}
	return total
}

// TotalShortage sums unmet demand units
func (p *Plan) TotalShortage() float64 {
	total := 0.0
	for _, s := range p.Shortages {
		total += s.Units
	}
	return total
}
