package memory

import (
	"github.com/bakeplan/bakeplan/pkg/domain/entities"
	"github.com/bakeplan/bakeplan/pkg/domain/repositories"
)

// LaborRepository provides in-memory labor calendar storage
type LaborRepository struct {
	days []*entities.LaborDay
}

// NewLaborRepository creates a new in-memory labor repository
func NewLaborRepository() *LaborRepository {
	return &LaborRepository{}
}

// Verify interface compliance
var _ repositories.LaborRepository = (*LaborRepository)(nil)

// LoadCalendar appends labor days to the repository
func (r *LaborRepository) LoadCalendar(days []*entities.LaborDay) error {
	r.days = append(r.days, days...)
	return nil
}

// GetCalendar builds a calendar from the stored days
func (r *LaborRepository) GetCalendar() (*entities.LaborCalendar, error) {
	return entities.NewLaborCalendar(r.days)
}
