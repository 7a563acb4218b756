// internal/domain/menu/repository.go
package menu

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Repository provides read-only access to the menu catalog
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new menu repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ItemByID retrieves a single active menu item
func (r *Repository) ItemByID(ctx context.Context, id uint) (*MenuItem, error) {
	var item MenuItem
	result := r.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&item)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("menu item %d not found or inactive", id)
		}
		return nil, fmt.Errorf("failed to retrieve menu item: %w", result.Error)
	}
	return &item, nil
}

// List retrieves active menu items, optionally filtered by category
func (r *Repository) List(ctx context.Context, category string) ([]MenuItem, error) {
	var items []MenuItem
	query := r.db.WithContext(ctx).Where("is_active = ?", true)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if err := query.Order("sort_order, category, name").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list menu items: %w", err)
	}
	return items, nil
}
