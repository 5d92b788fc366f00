package model

import (
	"fmt"
	"strings"

	"github.com/bakeplan/bakeplan/pkg/application/services/cohorts"
	"github.com/bakeplan/bakeplan/pkg/domain/entities"
)

// Variable and constraint names are reconstructible from domain keys so
// the extractor can read solved values back without carrying a separate
// registry. Names must stay LP-format safe: no operators, no spaces.

func sanitize(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	return sb.String()
}

func dateTag(d entities.Date) string {
	return d.Time().Format("20060102")
}

func stateTag(s entities.StorageState) string {
	if s == entities.Frozen {
		return "f"
	}
	return "a"
}

// ProductionVar is daily produced units of a product
func ProductionVar(p entities.ProductID, d entities.Date) string {
	return fmt.Sprintf("prod_%s_%s", sanitize(string(p)), dateTag(d))
}

// CasesVar is the integer case count backing a production quantity
func CasesVar(p entities.ProductID, d entities.Date) string {
	return fmt.Sprintf("cases_%s_%s", sanitize(string(p)), dateTag(d))
}

// HoursVar is labor hours used on a day
func HoursVar(d entities.Date) string {
	return fmt.Sprintf("hours_%s", dateTag(d))
}

// OvertimeVar is overtime hours beyond the fixed allocation on a fixed day
func OvertimeVar(d entities.Date) string {
	return fmt.Sprintf("othours_%s", dateTag(d))
}

// PaidHoursVar is hours paid on a non-fixed day (>= used, >= minimum if active)
func PaidHoursVar(d entities.Date) string {
	return fmt.Sprintf("paidhours_%s", dateTag(d))
}

// ActiveVar is the any-production-today binary
func ActiveVar(d entities.Date) string {
	return fmt.Sprintf("active_%s", dateTag(d))
}

// ProductActiveVar is the product-runs-today binary (changeover accounting)
func ProductActiveVar(p entities.ProductID, d entities.Date) string {
	return fmt.Sprintf("pactive_%s_%s", sanitize(string(p)), dateTag(d))
}

// InventoryVar is end-of-day on-hand units of one cohort
func InventoryVar(k entities.CohortKey) string {
	return fmt.Sprintf("inv_%s_%s_p%s_c%s_%s",
		sanitize(string(k.Location)), sanitize(string(k.Product)),
		dateTag(k.ProduceDate), dateTag(k.CurrentDate), stateTag(k.State))
}

// ShipmentVar is units of one cohort moving over one leg
func ShipmentVar(k entities.ShipmentKey) string {
	return fmt.Sprintf("ship_%s_%s_%s_p%s_d%s",
		sanitize(string(k.Leg.From)), sanitize(string(k.Leg.To)),
		sanitize(string(k.Product)), dateTag(k.ProduceDate), dateTag(k.DeliverDate))
}

// AllocationVar is units of a cohort consumed against demand
func AllocationVar(k entities.AllocationKey) string {
	return fmt.Sprintf("alloc_%s_%s_p%s_%s",
		sanitize(string(k.Destination)), sanitize(string(k.Product)),
		dateTag(k.ProduceDate), dateTag(k.Date))
}

// TransferVar is units converted between states at one location on one day
func TransferVar(k cohorts.TransferKey) string {
	dir := "fa"
	if k.From == entities.Ambient {
		dir = "af"
	}
	return fmt.Sprintf("xfer_%s_%s_p%s_%s_%s",
		sanitize(string(k.Location)), sanitize(string(k.Product)),
		dateTag(k.ProduceDate), dateTag(k.Date), dir)
}

// DisposalVar is units of an expired cohort removed as waste
func DisposalVar(k entities.CohortKey) string {
	return fmt.Sprintf("disp_%s_%s_p%s_%s_%s",
		sanitize(string(k.Location)), sanitize(string(k.Product)),
		dateTag(k.ProduceDate), dateTag(k.CurrentDate), stateTag(k.State))
}

// ShortageVar is unmet demand slack for one demand cell
func ShortageVar(k entities.DemandKey) string {
	return fmt.Sprintf("short_%s_%s_%s",
		sanitize(string(k.Destination)), sanitize(string(k.Product)), dateTag(k.Date))
}

// TruckUsedVar is the truck-departs binary for a truck-day
func TruckUsedVar(t entities.TruckID, d entities.Date) string {
	return fmt.Sprintf("truckused_%s_%s", sanitize(string(t)), dateTag(d))
}

// TruckLoadVar is units of a product loaded on a truck-day
func TruckLoadVar(t entities.TruckID, p entities.ProductID, d entities.Date) string {
	return fmt.Sprintf("truckload_%s_%s_%s", sanitize(string(t)), sanitize(string(p)), dateTag(d))
}

// TruckPalletsVar is the integer pallet count behind a truck load
func TruckPalletsVar(t entities.TruckID, p entities.ProductID, d entities.Date) string {
	return fmt.Sprintf("pallets_%s_%s_%s", sanitize(string(t)), sanitize(string(p)), dateTag(d))
}
