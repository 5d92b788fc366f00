package memory

import (
	"github.com/bakeplan/bakeplan/pkg/domain/entities"
	"github.com/bakeplan/bakeplan/pkg/domain/repositories"
)

// ForecastRepository provides in-memory forecast storage
type ForecastRepository struct {
	entries []entities.ForecastEntry
}

// NewForecastRepository creates a new in-memory forecast repository
func NewForecastRepository() *ForecastRepository {
	return &ForecastRepository{}
}

// Verify interface compliance
var _ repositories.ForecastRepository = (*ForecastRepository)(nil)

// LoadForecast appends forecast entries to the repository
func (r *ForecastRepository) LoadForecast(entries []entities.ForecastEntry) error {
	r.entries = append(r.entries, entries...)
	return nil
}

// GetForecast aggregates the stored entries into a demand set
func (r *ForecastRepository) GetForecast() (*entities.DemandSet, error) {
	return entities.NewDemandSet(r.entries)
}
