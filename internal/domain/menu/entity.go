// internal/domain/menu/entity.go
package menu

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// OptionCategory is the closed set of configurable axes a menu item exposes.
type OptionCategory string

const (
	CategorySize   OptionCategory = "size"
	CategoryExtras OptionCategory = "extras"
	CategoryAddons OptionCategory = "addons"
	// CategoryOption covers named variant groups ("Spice Level", "Crust", ...);
	// the group name travels in SelectedOption.Name.
	CategoryOption OptionCategory = "option"
)

// SelectedOption is one customer choice against a menu item's configurable axes.
type SelectedOption struct {
	Category OptionCategory `json:"category"`
	Name     string         `json:"name"`
	Value    string         `json:"value"`
}

// SizeVariant is a catalog-declared alternate absolute price for an item.
type SizeVariant struct {
	Name  string `json:"name"`
	Price int64  `json:"price"` // Absolute price in cents
}

// OptionEntry is a declared extra/addon/group option with a price adjustment.
type OptionEntry struct {
	Name       string `json:"name"`
	Price      int64  `json:"price,omitempty"`
	PriceDelta *int64 `json:"price_delta,omitempty"`
}

// Delta returns the price adjustment, preferring the explicit delta over
// the legacy price field.
func (e OptionEntry) Delta() int64 {
	if e.PriceDelta != nil {
		return *e.PriceDelta
	}
	return e.Price
}

// VariantGroup is a named set of mutually-relevant options.
type VariantGroup struct {
	Name    string        `json:"name"`
	Options []OptionEntry `json:"options"`
}

// JSONB column types

// SizeVariantList stores size variants as a JSONB column
type SizeVariantList []SizeVariant

// OptionEntryList stores extras/addons as a JSONB column
type OptionEntryList []OptionEntry

// VariantGroupList stores variant groups as a JSONB column
type VariantGroupList []VariantGroup

func (l SizeVariantList) Value() (driver.Value, error)  { return jsonbValue(l) }
func (l *SizeVariantList) Scan(src interface{}) error   { return jsonbScan(src, l) }
func (l OptionEntryList) Value() (driver.Value, error)  { return jsonbValue(l) }
func (l *OptionEntryList) Scan(src interface{}) error   { return jsonbScan(src, l) }
func (l VariantGroupList) Value() (driver.Value, error) { return jsonbValue(l) }
func (l *VariantGroupList) Scan(src interface{}) error  { return jsonbScan(src, l) }

func jsonbValue(v interface{}) (driver.Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func jsonbScan(src, dest interface{}) error {
	switch data := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(data, dest)
	case string:
		return json.Unmarshal([]byte(data), dest)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", src)
	}
}

// MenuItem represents a purchasable catalog item. The ordering engine treats
// it as read-only; menu management happens in a separate admin surface.
type MenuItem struct {
	ID            uint             `gorm:"primaryKey" json:"id"`
	Name          string           `gorm:"not null;size:255" json:"name"`
	Description   string           `gorm:"type:text" json:"description"`
	Category      string           `gorm:"size:100;index" json:"category"`
	Price         int64            `gorm:"not null" json:"price"` // Base price in cents
	IsActive      bool             `gorm:"default:true" json:"is_active"`
	SortOrder     int              `gorm:"default:0" json:"sort_order"`
	SizeVariants  SizeVariantList  `gorm:"type:jsonb" json:"size_variants,omitempty"`
	Extras        OptionEntryList  `gorm:"type:jsonb" json:"extras,omitempty"`
	Addons        OptionEntryList  `gorm:"type:jsonb" json:"addons,omitempty"`
	VariantGroups VariantGroupList `gorm:"type:jsonb" json:"variant_groups,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	DeletedAt     gorm.DeletedAt   `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (MenuItem) TableName() string {
	return "menu_items"
}
