package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bakeplan/bakeplan/pkg/domain/entities"
)

// Loader handles loading planner scenario data from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadProducts loads the product master from a CSV file
func (l *Loader) LoadProducts(filename string) ([]*entities.Product, error) {
	records, err := readAll(filename, "products")
	if err != nil {
		return nil, err
	}

	expectedHeader := []string{"product_id", "name", "units_per_case", "cases_per_pallet"}
	if !validateHeader(records[0], expectedHeader) {
		return nil, fmt.Errorf("products CSV header mismatch. Expected: %v, Got: %v", expectedHeader, records[0])
	}

	var products []*entities.Product
	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("products CSV row %d: expected %d columns, got %d", i+2, len(expectedHeader), len(record))
		}

		unitsPerCase, err := parseQuantity(record[2], "units_per_case")
		if err != nil {
			return nil, fmt.Errorf("products CSV row %d: %w", i+2, err)
		}
		casesPerPallet, err := parseQuantity(record[3], "cases_per_pallet")
		if err != nil {
			return nil, fmt.Errorf("products CSV row %d: %w", i+2, err)
		}

		product, err := entities.NewProduct(entities.ProductID(record[0]), record[1], unitsPerCase, casesPerPallet)
		if err != nil {
			return nil, fmt.Errorf("products CSV row %d: %w", i+2, err)
		}
		products = append(products, product)
	}

	return products, nil
}

// LoadLocations loads network locations from a CSV file
func (l *Loader) LoadLocations(filename string) ([]*entities.Location, error) {
	records, err := readAll(filename, "locations")
	if err != nil {
		return nil, err
	}

	expectedHeader := []string{"location_id", "name", "type", "capability", "capacity_units"}
	if !validateHeader(records[0], expectedHeader) {
		return nil, fmt.Errorf("locations CSV header mismatch. Expected: %v, Got: %v", expectedHeader, records[0])
	}

	var locations []*entities.Location
	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("locations CSV row %d: expected %d columns, got %d", i+2, len(expectedHeader), len(record))
		}

		locType, err := parseLocationType(record[2])
		if err != nil {
			return nil, fmt.Errorf("locations CSV row %d: %w", i+2, err)
		}
		capability, err := parseCapability(record[3])
		if err != nil {
			return nil, fmt.Errorf("locations CSV row %d: %w", i+2, err)
		}
		capacity, err := parseQuantity(record[4], "capacity_units")
		if err != nil {
			return nil, fmt.Errorf("locations CSV row %d: %w", i+2, err)
		}

		loc, err := entities.NewLocation(entities.LocationID(record[0]), record[1], locType, capability, capacity)
		if err != nil {
			return nil, fmt.Errorf("locations CSV row %d: %w", i+2, err)
		}
		locations = append(locations, loc)
	}

	return locations, nil
}

// LoadLegs loads transport legs from a CSV file
func (l *Loader) LoadLegs(filename string) ([]*entities.Leg, error) {
	records, err := readAll(filename, "legs")
	if err != nil {
		return nil, err
	}

	expectedHeader := []string{"from", "to", "depart_state", "arrive_state", "transit_days", "cost_per_unit"}
	if !validateHeader(records[0], expectedHeader) {
		return nil, fmt.Errorf("legs CSV header mismatch. Expected: %v, Got: %v", expectedHeader, records[0])
	}

	var legs []*entities.Leg
	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("legs CSV row %d: expected %d columns, got %d", i+2, len(expectedHeader), len(record))
		}

		departState, err := parseState(record[2])
		if err != nil {
			return nil, fmt.Errorf("legs CSV row %d: %w", i+2, err)
		}
		arriveState, err := parseState(record[3])
		if err != nil {
			return nil, fmt.Errorf("legs CSV row %d: %w", i+2, err)
		}
		transitDays, err := strconv.ParseFloat(record[4], 64)
		if err != nil {
			return nil, fmt.Errorf("legs CSV row %d: invalid transit_days: %s", i+2, record[4])
		}
		costPerUnit, err := decimal.NewFromString(record[5])
		if err != nil {
			return nil, fmt.Errorf("legs CSV row %d: invalid cost_per_unit: %s", i+2, record[5])
		}

		leg, err := entities.NewLeg(entities.LocationID(record[0]), entities.LocationID(record[1]), departState, arriveState, transitDays, costPerUnit)
		if err != nil {
			return nil, fmt.Errorf("legs CSV row %d: %w", i+2, err)
		}
		legs = append(legs, leg)
	}

	return legs, nil
}

// LoadForecast loads demand forecast entries from a CSV file
func (l *Loader) LoadForecast(filename string) ([]entities.ForecastEntry, error) {
	records, err := readAll(filename, "forecast")
	if err != nil {
		return nil, err
	}

	expectedHeader := []string{"destination", "product_id", "date", "units"}
	if !validateHeader(records[0], expectedHeader) {
		return nil, fmt.Errorf("forecast CSV header mismatch. Expected: %v, Got: %v", expectedHeader, records[0])
	}

	var entries []entities.ForecastEntry
	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("forecast CSV row %d: expected %d columns, got %d", i+2, len(expectedHeader), len(record))
		}

		date, err := entities.ParseDate(record[2])
		if err != nil {
			return nil, fmt.Errorf("forecast CSV row %d: %w", i+2, err)
		}
		units, err := parseQuantity(record[3], "units")
		if err != nil {
			return nil, fmt.Errorf("forecast CSV row %d: %w", i+2, err)
		}

		entries = append(entries, entities.ForecastEntry{
			Destination: entities.LocationID(record[0]),
			Product:     entities.ProductID(record[1]),
			Date:        date,
			Units:       units,
		})
	}

	return entries, nil
}

// LoadLabor loads the labor calendar from a CSV file. Fixed days use the
// fixed_hours/overtime_hours/regular_rate/overtime_rate columns; non-fixed
// days use nonfixed_rate/minimum_hours/max_hours. Unused columns may be
// left empty.
func (l *Loader) LoadLabor(filename string) ([]*entities.LaborDay, error) {
	records, err := readAll(filename, "labor")
	if err != nil {
		return nil, err
	}

	expectedHeader := []string{"date", "type", "fixed_hours", "overtime_hours", "regular_rate", "overtime_rate", "nonfixed_rate", "minimum_hours", "max_hours"}
	if !validateHeader(records[0], expectedHeader) {
		return nil, fmt.Errorf("labor CSV header mismatch. Expected: %v, Got: %v", expectedHeader, records[0])
	}

	var days []*entities.LaborDay
	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("labor CSV row %d: expected %d columns, got %d", i+2, len(expectedHeader), len(record))
		}

		date, err := entities.ParseDate(record[0])
		if err != nil {
			return nil, fmt.Errorf("labor CSV row %d: %w", i+2, err)
		}

		var day *entities.LaborDay
		switch strings.ToLower(strings.TrimSpace(record[1])) {
		case "fixed":
			fixedHours, err := parseHours(record[2], "fixed_hours")
			if err != nil {
				return nil, fmt.Errorf("labor CSV row %d: %w", i+2, err)
			}
			overtimeHours, err := parseHours(record[3], "overtime_hours")
			if err != nil {
				return nil, fmt.Errorf("labor CSV row %d: %w", i+2, err)
			}
			regularRate, err := parseRate(record[4], "regular_rate")
			if err != nil {
				return nil, fmt.Errorf("labor CSV row %d: %w", i+2, err)
			}
			overtimeRate, err := parseRate(record[5], "overtime_rate")
			if err != nil {
				return nil, fmt.Errorf("labor CSV row %d: %w", i+2, err)
			}
			day, err = entities.NewFixedLaborDay(date, fixedHours, overtimeHours, regularRate, overtimeRate)
			if err != nil {
				return nil, fmt.Errorf("labor CSV row %d: %w", i+2, err)
			}

		case "nonfixed":
			nonFixedRate, err := parseRate(record[6], "nonfixed_rate")
			if err != nil {
				return nil, fmt.Errorf("labor CSV row %d: %w", i+2, err)
			}
			minimumHours, err := parseHours(record[7], "minimum_hours")
			if err != nil {
				return nil, fmt.Errorf("labor CSV row %d: %w", i+2, err)
			}
			maxHours, err := parseHours(record[8], "max_hours")
			if err != nil {
				return nil, fmt.Errorf("labor CSV row %d: %w", i+2, err)
			}
			day, err = entities.NewNonFixedLaborDay(date, nonFixedRate, minimumHours, maxHours)
			if err != nil {
				return nil, fmt.Errorf("labor CSV row %d: %w", i+2, err)
			}

		default:
			return nil, fmt.Errorf("labor CSV row %d: invalid type: %s (expected 'fixed' or 'nonfixed')", i+2, record[1])
		}

		days = append(days, day)
	}

	return days, nil
}

// LoadTrucks loads truck departure schedules from a CSV file. Weekdays are
// semicolon-separated day names, e.g. "Mon;Wed;Fri".
func (l *Loader) LoadTrucks(filename string) ([]*entities.TruckSchedule, error) {
	records, err := readAll(filename, "trucks")
	if err != nil {
		return nil, err
	}

	expectedHeader := []string{"truck_id", "destination", "departure", "weekdays", "capacity_units", "capacity_pallets", "fixed_cost"}
	if !validateHeader(records[0], expectedHeader) {
		return nil, fmt.Errorf("trucks CSV header mismatch. Expected: %v, Got: %v", expectedHeader, records[0])
	}

	var trucks []*entities.TruckSchedule
	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("trucks CSV row %d: expected %d columns, got %d", i+2, len(expectedHeader), len(record))
		}

		departure, err := parseDeparture(record[2])
		if err != nil {
			return nil, fmt.Errorf("trucks CSV row %d: %w", i+2, err)
		}
		weekdays, err := parseWeekdays(record[3])
		if err != nil {
			return nil, fmt.Errorf("trucks CSV row %d: %w", i+2, err)
		}
		capacityUnits, err := parseQuantity(record[4], "capacity_units")
		if err != nil {
			return nil, fmt.Errorf("trucks CSV row %d: %w", i+2, err)
		}
		capacityPallets, err := parseQuantity(record[5], "capacity_pallets")
		if err != nil {
			return nil, fmt.Errorf("trucks CSV row %d: %w", i+2, err)
		}
		fixedCost, err := decimal.NewFromString(record[6])
		if err != nil {
			return nil, fmt.Errorf("trucks CSV row %d: invalid fixed_cost: %s", i+2, record[6])
		}

		truck, err := entities.NewTruckSchedule(entities.TruckID(record[0]), entities.LocationID(record[1]), departure, weekdays, capacityUnits, capacityPallets, fixedCost)
		if err != nil {
			return nil, fmt.Errorf("trucks CSV row %d: %w", i+2, err)
		}
		trucks = append(trucks, truck)
	}

	return trucks, nil
}

// LoadInventory loads opening cohort inventory from a CSV file. Cohorts are
// keyed as of the given date, which should be the planning horizon start.
func (l *Loader) LoadInventory(filename string, asOf entities.Date) (entities.CohortInventory, error) {
	records, err := readAll(filename, "inventory")
	if err != nil {
		return nil, err
	}

	expectedHeader := []string{"location", "product_id", "produce_date", "state", "units"}
	if !validateHeader(records[0], expectedHeader) {
		return nil, fmt.Errorf("inventory CSV header mismatch. Expected: %v, Got: %v", expectedHeader, records[0])
	}

	inv := entities.CohortInventory{}
	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("inventory CSV row %d: expected %d columns, got %d", i+2, len(expectedHeader), len(record))
		}

		produceDate, err := entities.ParseDate(record[2])
		if err != nil {
			return nil, fmt.Errorf("inventory CSV row %d: %w", i+2, err)
		}
		if produceDate > asOf {
			return nil, fmt.Errorf("inventory CSV row %d: produce_date %s is after the plan start %s", i+2, produceDate, asOf)
		}
		state, err := parseState(record[3])
		if err != nil {
			return nil, fmt.Errorf("inventory CSV row %d: %w", i+2, err)
		}
		units, err := parseQuantity(record[4], "units")
		if err != nil {
			return nil, fmt.Errorf("inventory CSV row %d: %w", i+2, err)
		}
		if units < 0 {
			return nil, fmt.Errorf("inventory CSV row %d: units cannot be negative, got %d", i+2, units)
		}

		inv.Add(entities.CohortKey{
			Location:    entities.LocationID(record[0]),
			Product:     entities.ProductID(record[1]),
			ProduceDate: produceDate,
			CurrentDate: asOf,
			State:       state,
		}, float64(units))
	}

	return inv, nil
}

// Helper functions for parsing CSV records

func readAll(filename, kind string) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file %s: %w", kind, filename, err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", kind, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%s CSV must have header and at least one data row", kind)
	}
	return records, nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}

func parseQuantity(s, field string) (entities.Quantity, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %s", field, s)
	}
	return entities.Quantity(v), nil
}

func parseHours(s, field string) (float64, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %s", field, s)
	}
	return v, nil
}

func parseRate(s, field string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return decimal.Zero, nil
	}
	v, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %s", field, s)
	}
	return v, nil
}

func parseLocationType(s string) (entities.LocationType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "manufacturing":
		return entities.Manufacturing, nil
	case "storage":
		return entities.Storage, nil
	case "breadroom":
		return entities.Breadroom, nil
	default:
		return entities.Manufacturing, fmt.Errorf("invalid type: %s (expected: Manufacturing, Storage, or Breadroom)", s)
	}
}

func parseCapability(s string) (entities.StorageCapability, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ambientonly":
		return entities.AmbientOnly, nil
	case "frozenonly":
		return entities.FrozenOnly, nil
	case "ambientandfrozen":
		return entities.AmbientAndFrozen, nil
	default:
		return entities.AmbientOnly, fmt.Errorf("invalid capability: %s (expected: AmbientOnly, FrozenOnly, or AmbientAndFrozen)", s)
	}
}

func parseState(s string) (entities.StorageState, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ambient":
		return entities.Ambient, nil
	case "frozen":
		return entities.Frozen, nil
	default:
		return entities.Ambient, fmt.Errorf("invalid state: %s (expected: Ambient or Frozen)", s)
	}
}

func parseDeparture(s string) (entities.DepartureType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "morning":
		return entities.MorningDeparture, nil
	case "afternoon":
		return entities.AfternoonDeparture, nil
	default:
		return entities.MorningDeparture, fmt.Errorf("invalid departure: %s (expected: Morning or Afternoon)", s)
	}
}

func parseWeekdays(s string) ([]time.Weekday, error) {
	names := map[string]time.Weekday{
		"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday,
		"wed": time.Wednesday, "thu": time.Thursday, "fri": time.Friday,
		"sat": time.Saturday,
	}
	var out []time.Weekday
	for _, part := range strings.Split(s, ";") {
		key := strings.ToLower(strings.TrimSpace(part))
		if len(key) > 3 {
			key = key[:3]
		}
		wd, ok := names[key]
		if !ok {
			return nil, fmt.Errorf("invalid weekday: %s", part)
		}
		out = append(out, wd)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("weekdays cannot be empty")
	}
	return out, nil
}
