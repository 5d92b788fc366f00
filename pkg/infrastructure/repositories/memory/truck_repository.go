package memory

import (
	"github.com/bakeplan/bakeplan/pkg/domain/entities"
	"github.com/bakeplan/bakeplan/pkg/domain/repositories"
)

// TruckRepository provides in-memory truck schedule storage
type TruckRepository struct {
	trucks []*entities.TruckSchedule
}

// NewTruckRepository creates a new in-memory truck repository
func NewTruckRepository() *TruckRepository {
	return &TruckRepository{}
}

// Verify interface compliance
var _ repositories.TruckRepository = (*TruckRepository)(nil)

// LoadTrucks appends truck schedules to the repository
func (r *TruckRepository) LoadTrucks(trucks []*entities.TruckSchedule) error {
	r.trucks = append(r.trucks, trucks...)
	return nil
}

// GetTrucks returns all stored truck schedules
func (r *TruckRepository) GetTrucks() ([]*entities.TruckSchedule, error) {
	return append([]*entities.TruckSchedule(nil), r.trucks...), nil
}
