package memory

import (
	"github.com/bakeplan/bakeplan/pkg/domain/entities"
	"github.com/bakeplan/bakeplan/pkg/domain/repositories"
)

// InventoryRepository provides in-memory opening inventory storage
type InventoryRepository struct {
	inv entities.CohortInventory
}

// NewInventoryRepository creates a new in-memory inventory repository
func NewInventoryRepository() *InventoryRepository {
	return &InventoryRepository{inv: entities.CohortInventory{}}
}

// Verify interface compliance
var _ repositories.InventoryRepository = (*InventoryRepository)(nil)

// LoadInventory accumulates cohort quantities into the repository
func (r *InventoryRepository) LoadInventory(inv entities.CohortInventory) error {
	for key, qty := range inv {
		r.inv.Add(key, qty)
	}
	return nil
}

// GetInventory returns a copy of the stored cohort inventory
func (r *InventoryRepository) GetInventory() (entities.CohortInventory, error) {
	out := make(entities.CohortInventory, len(r.inv))
	for key, qty := range r.inv {
		out.Add(key, qty)
	}
	return out, nil
}
