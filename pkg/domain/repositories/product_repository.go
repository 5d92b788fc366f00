package repositories

import "github.com/bakeplan/bakeplan/pkg/domain/entities"

// ProductRepository provides access to product master data
type ProductRepository interface {
	GetProducts() (map[entities.ProductID]*entities.Product, error)
	LoadProducts(products []*entities.Product) error
}
