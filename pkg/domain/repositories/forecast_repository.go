package repositories

import "github.com/bakeplan/bakeplan/pkg/domain/entities"

// ForecastRepository provides access to demand forecast data
type ForecastRepository interface {
	GetForecast() (*entities.DemandSet, error)
	LoadForecast(entries []entities.ForecastEntry) error
}
