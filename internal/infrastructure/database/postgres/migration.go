// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"

	"github.com/your-org/tableorder-backend/internal/domain/menu"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	models := []interface{}{
		&menu.MenuItem{},
	}

	for _, model := range models {
		log.Printf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	log.Println("🔄 Creating additional database indexes...")

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_menu_items_category_active ON menu_items(category, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_menu_items_active ON menu_items(is_active)",
		"CREATE INDEX IF NOT EXISTS idx_menu_items_sort_order ON menu_items(sort_order)",
	}

	successCount := 0
	failCount := 0

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			log.Printf("⚠️ Failed to create index: %v", err)
			failCount++
		} else {
			successCount++
		}
	}

	log.Printf("✅ Created %d indexes successfully (%d failed)", successCount, failCount)
	return nil
}

// SeedInitialData inserts initial data into the database
func (m *Migration) SeedInitialData() error {
	log.Println("🌱 Seeding initial data...")

	if err := m.seedMenuItems(); err != nil {
		return fmt.Errorf("failed to seed menu items: %w", err)
	}

	log.Println("✅ Initial data seeding completed")
	return nil
}

// seedMenuItems inserts a starter menu when the table is empty
func (m *Migration) seedMenuItems() error {
	var count int64
	if err := m.db.Model(&menu.MenuItem{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Menu items already seeded, skipping")
		return nil
	}

	items := []menu.MenuItem{
		{
			Name:        "Margherita Pizza",
			Description: "Tomato, mozzarella and fresh basil",
			Category:    "Pizza",
			Price:       1200,
			IsActive:    true,
			SortOrder:   1,
			SizeVariants: menu.SizeVariantList{
				{Name: "Small", Price: 900},
				{Name: "Medium", Price: 1200},
				{Name: "Large", Price: 1500},
			},
			Extras: menu.OptionEntryList{
				{Name: "Extra Cheese", Price: 150},
				{Name: "Mushrooms", Price: 100},
			},
		},
		{
			Name:        "Classic Burger",
			Description: "Beef patty, lettuce, tomato and house sauce",
			Category:    "Burgers",
			Price:       1050,
			IsActive:    true,
			SortOrder:   2,
			Addons: menu.OptionEntryList{
				{Name: "Bacon", Price: 200},
				{Name: "Fried Egg", Price: 125},
			},
			VariantGroups: menu.VariantGroupList{
				{
					Name: "Doneness",
					Options: []menu.OptionEntry{
						{Name: "Medium", Price: 0},
						{Name: "Well Done", Price: 0},
					},
				},
			},
		},
		{
			Name:        "Caesar Salad",
			Description: "Romaine, parmesan, croutons and caesar dressing",
			Category:    "Salads",
			Price:       850,
			IsActive:    true,
			SortOrder:   3,
			Extras: menu.OptionEntryList{
				{Name: "Grilled Chicken", Price: 300},
			},
		},
		{
			Name:        "Fresh Lemonade",
			Description: "House-made with mint",
			Category:    "Drinks",
			Price:       400,
			IsActive:    true,
			SortOrder:   4,
			SizeVariants: menu.SizeVariantList{
				{Name: "Regular", Price: 400},
				{Name: "Large", Price: 550},
			},
		},
	}

	for _, item := range items {
		if err := m.db.Create(&item).Error; err != nil {
			return err
		}
	}

	log.Printf("Seeded %d menu items", len(items))
	return nil
}
