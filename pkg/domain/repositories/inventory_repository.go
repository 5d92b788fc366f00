package repositories

import "github.com/bakeplan/bakeplan/pkg/domain/entities"

// InventoryRepository provides access to opening cohort inventory
type InventoryRepository interface {
	GetInventory() (entities.CohortInventory, error)
	LoadInventory(inv entities.CohortInventory) error
}
