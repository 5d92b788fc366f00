package repositories

import "github.com/bakeplan/bakeplan/pkg/domain/entities"

// TruckRepository provides access to scheduled truck departures
type TruckRepository interface {
	GetTrucks() ([]*entities.TruckSchedule, error)
	LoadTrucks(trucks []*entities.TruckSchedule) error
}
