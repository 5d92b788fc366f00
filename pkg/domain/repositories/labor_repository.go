package repositories

import "github.com/bakeplan/bakeplan/pkg/domain/entities"

// LaborRepository provides access to the labor calendar
type LaborRepository interface {
	GetCalendar() (*entities.LaborCalendar, error)
	LoadCalendar(days []*entities.LaborDay) error
}
