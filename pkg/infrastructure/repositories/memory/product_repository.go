package memory

import (
	"fmt"

	"github.com/bakeplan/bakeplan/pkg/domain/entities"
	"github.com/bakeplan/bakeplan/pkg/domain/repositories"
)

// ProductRepository provides in-memory product master storage
type ProductRepository struct {
	products map[entities.ProductID]*entities.Product
}

// NewProductRepository creates a new in-memory product repository
func NewProductRepository() *ProductRepository {
	return &ProductRepository{products: make(map[entities.ProductID]*entities.Product)}
}

// Verify interface compliance
var _ repositories.ProductRepository = (*ProductRepository)(nil)

// LoadProducts stores products, rejecting duplicate ids
func (r *ProductRepository) LoadProducts(products []*entities.Product) error {
	for _, p := range products {
		if _, exists := r.products[p.ID]; exists {
			return fmt.Errorf("duplicate product %s", p.ID)
		}
		r.products[p.ID] = p
	}
	return nil
}

// GetProducts returns the stored products keyed by id
func (r *ProductRepository) GetProducts() (map[entities.ProductID]*entities.Product, error) {
	out := make(map[entities.ProductID]*entities.Product, len(r.products))
	for id, p := range r.products {
		out[id] = p
	}
	return out, nil
}
