package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bakeplan/bakeplan/pkg/application/services/model"
	"github.com/bakeplan/bakeplan/pkg/application/services/rolling"
	"github.com/bakeplan/bakeplan/pkg/application/services/routing"
	"github.com/bakeplan/bakeplan/pkg/domain/entities"
	"github.com/bakeplan/bakeplan/pkg/solver"
)

func main() {
	ctx := context.Background()

	// Build a small plant -> breadroom scenario in code
	input, err := setupBakeryScenario()
	if err != nil {
		fmt.Printf("❌ Scenario setup failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("🥖 Planning a one-week bakery horizon...")
	fmt.Printf("Horizon: %s to %s\n", input.Horizon.Start, input.Horizon.End)
	fmt.Printf("Demand cells: %d\n", len(input.Demand.Keys()))
	fmt.Println()

	// Any CBC-compatible MIP solver binary on PATH works here
	binary := os.Getenv("BAKEPLAN_SOLVER_BINARY")
	if binary == "" {
		binary = "cbc"
	}

	config := rolling.Config{
		WindowDays:   4,
		OverlapDays:  1,
		Model:        model.DefaultConfig(),
		SolveOptions: solver.Options{TimeLimit: time.Minute},
	}

	orchestrator, err := rolling.NewOrchestrator(config, solver.NewExecSolver(binary, solver.CBC), nil)
	if err != nil {
		fmt.Printf("❌ Orchestrator setup failed: %v\n", err)
		os.Exit(1)
	}

	plan, windows, err := orchestrator.Plan(ctx, input)
	if err != nil {
		fmt.Printf("❌ Planning failed: %v\n", err)
		os.Exit(1)
	}

	// Display results
	fmt.Println("📊 Plan Results:")
	fmt.Printf("  Windows Solved: %d\n", len(windows))
	fmt.Printf("  Production Batches: %d\n", len(plan.Batches))
	fmt.Printf("  Shipments: %d\n", len(plan.Shipments))
	fmt.Printf("  Shortages: %d\n", len(plan.Shortages))
	fmt.Println()

	if len(plan.Batches) > 0 {
		fmt.Println("🏭 Production Batches:")
		for _, batch := range plan.Batches {
			fmt.Printf("  %s: %d units on %s (%.1f hours)\n",
				batch.Product, batch.Units, batch.Date, batch.Hours)
		}
		fmt.Println()
	}

	if len(plan.Shipments) > 0 {
		fmt.Println("🚚 Shipments:")
		for _, shipment := range plan.Shipments {
			fmt.Printf("  %s -> %s: %.0f units of %s depart %s, deliver %s\n",
				shipment.From, shipment.To, shipment.Units,
				shipment.Product, shipment.DepartDate, shipment.DeliverDate)
		}
		fmt.Println()
	}

	if len(plan.Shortages) > 0 {
		fmt.Println("🚨 Shortages:")
		for _, shortage := range plan.Shortages {
			fmt.Printf("  %s at %s: %.0f units short on %s\n",
				shortage.Product, shortage.Destination, shortage.Units, shortage.Date)
		}
		fmt.Println()
	}

	fmt.Printf("💰 Total Cost: %s\n", plan.Costs.Total().StringFixed(2))
	fmt.Println("✅ Planning complete!")
}

func setupBakeryScenario() (model.Input, error) {
	plant, err := entities.NewLocation("PLANT", "Main Bakery", entities.Manufacturing, entities.AmbientAndFrozen, 0)
	if err != nil {
		return model.Input{}, err
	}
	breadroom, err := entities.NewLocation("BR1", "Downtown Breadroom", entities.Breadroom, entities.AmbientOnly, 0)
	if err != nil {
		return model.Input{}, err
	}

	leg, err := entities.NewLeg("PLANT", "BR1", entities.Ambient, entities.Ambient, 1, decimal.NewFromFloat(0.10))
	if err != nil {
		return model.Input{}, err
	}

	network, err := entities.NewNetwork(
		[]*entities.Location{plant, breadroom},
		[]*entities.Leg{leg},
	)
	if err != nil {
		return model.Input{}, err
	}

	white, err := entities.NewProduct("GF-WHITE", "Gluten Free White", 10, 5)
	if err != nil {
		return model.Input{}, err
	}

	horizon, err := entities.NewDateRange(
		entities.NewDate(2025, time.June, 2),
		entities.NewDate(2025, time.June, 8),
	)
	if err != nil {
		return model.Input{}, err
	}

	var forecast []entities.ForecastEntry
	for day := 4; day <= 8; day++ {
		forecast = append(forecast, entities.ForecastEntry{
			Destination: "BR1",
			Product:     "GF-WHITE",
			Date:        entities.NewDate(2025, time.June, day),
			Units:       100,
		})
	}
	demand, err := entities.NewDemandSet(forecast)
	if err != nil {
		return model.Input{}, err
	}

	var laborDays []*entities.LaborDay
	for day := 2; day <= 8; day++ {
		date := entities.NewDate(2025, time.June, day)
		labor, err := entities.NewFixedLaborDay(date, 8, 4, decimal.NewFromInt(25), decimal.NewFromInt(40))
		if err != nil {
			return model.Input{}, err
		}
		laborDays = append(laborDays, labor)
	}
	calendar, err := entities.NewLaborCalendar(laborDays)
	if err != nil {
		return model.Input{}, err
	}

	// Production, frozen/ambient storage, waste multiplier, shortage
	// penalty, units per labor hour
	costs, err := entities.NewCostStructure(
		decimal.NewFromInt(1),
		decimal.NewFromFloat(0.05),
		decimal.NewFromFloat(0.01),
		decimal.NewFromFloat(1.5),
		decimal.NewFromInt(10),
		100,
	)
	if err != nil {
		return model.Input{}, err
	}
	costs.DefaultChangeoverHours = 0.5

	shelfLife := entities.DefaultShelfLife()

	enumerator, err := routing.NewRouteEnumerator(network, shelfLife, routing.DefaultConfig())
	if err != nil {
		return model.Input{}, err
	}
	routes, err := enumerator.EnumerateAll()
	if err != nil {
		return model.Input{}, err
	}

	input := model.Input{
		Horizon:   horizon,
		Network:   network,
		Products:  map[entities.ProductID]*entities.Product{white.ID: white},
		Demand:    demand,
		Labor:     calendar,
		Routes:    routes,
		Initial:   entities.CohortInventory{},
		Costs:     costs,
		ShelfLife: shelfLife,
	}
	return input, input.Validate()
}
