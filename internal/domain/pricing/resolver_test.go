package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/your-org/tableorder-backend/internal/domain/menu"
)

func delta(v int64) *int64 { return &v }

func pizzaItem() *menu.MenuItem {
	return &menu.MenuItem{
		ID:    1,
		Name:  "Margherita",
		Price: 1000,
		SizeVariants: menu.SizeVariantList{
			{Name: "Small", Price: 800},
			{Name: "Large", Price: 1200},
		},
		Extras: menu.OptionEntryList{
			{Name: "Extra Cheese", PriceDelta: delta(100)},
			{Name: "Olives", Price: 50},
		},
		Addons: menu.OptionEntryList{
			{Name: "Garlic Dip", PriceDelta: delta(75)},
		},
		VariantGroups: menu.VariantGroupList{
			{Name: "Crust", Options: []menu.OptionEntry{
				{Name: "Thin", PriceDelta: delta(0)},
				{Name: "Stuffed", PriceDelta: delta(200)},
			}},
			{Name: "Size", Options: []menu.OptionEntry{
				{Name: "Large", PriceDelta: delta(99999)},
			}},
		},
	}
}

func TestResolveUnitPrice(t *testing.T) {
	tests := []struct {
		name     string
		selected []menu.SelectedOption
		want     int64
	}{
		{
			name:     "no selection defaults to lowest size variant",
			selected: nil,
			want:     800,
		},
		{
			name: "selected size variant replaces base price",
			selected: []menu.SelectedOption{
				{Category: menu.CategorySize, Name: "size", Value: "Large"},
			},
			want: 1200,
		},
		{
			name: "unknown size falls back to lowest variant",
			selected: []menu.SelectedOption{
				{Category: menu.CategorySize, Name: "size", Value: "Mega"},
			},
			want: 800,
		},
		{
			name: "extras delta added to default variant",
			selected: []menu.SelectedOption{
				{Category: menu.CategoryExtras, Name: "Extra Cheese", Value: "Extra Cheese"},
			},
			want: 900,
		},
		{
			name: "extras entry without delta falls back to price field",
			selected: []menu.SelectedOption{
				{Category: menu.CategoryExtras, Name: "Olives", Value: "Olives"},
			},
			want: 850,
		},
		{
			name: "addon and named group deltas stack",
			selected: []menu.SelectedOption{
				{Category: menu.CategorySize, Name: "size", Value: "Large"},
				{Category: menu.CategoryAddons, Name: "Garlic Dip", Value: "Garlic Dip"},
				{Category: menu.CategoryOption, Name: "Crust", Value: "Stuffed"},
			},
			want: 1475,
		},
		{
			name: "group literally named size is skipped",
			selected: []menu.SelectedOption{
				{Category: menu.CategoryOption, Name: "Size", Value: "Large"},
			},
			want: 800,
		},
		{
			name: "unmatched selections contribute zero",
			selected: []menu.SelectedOption{
				{Category: menu.CategoryExtras, Name: "Truffle", Value: "Truffle"},
				{Category: menu.CategoryOption, Name: "Sauce", Value: "BBQ"},
			},
			want: 800,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			item := pizzaItem()
			got := ResolveUnitPrice(item, tc.selected)
			assert.Equal(t, tc.want, got)

			// Determinism: a second call with identical inputs yields the same result.
			assert.Equal(t, got, ResolveUnitPrice(item, tc.selected))
		})
	}
}

func TestResolveUnitPriceWithoutVariants(t *testing.T) {
	item := &menu.MenuItem{ID: 2, Name: "Lemonade", Price: 350}
	assert.Equal(t, int64(350), ResolveUnitPrice(item, nil))
	assert.Equal(t, int64(350), ResolveUnitPrice(item, []menu.SelectedOption{
		{Category: menu.CategorySize, Name: "size", Value: "Large"},
	}))
}

func TestResolveUnitPriceFailsClosedOnNegativeVariant(t *testing.T) {
	item := &menu.MenuItem{
		ID:    3,
		Name:  "Broken",
		Price: 500,
		SizeVariants: menu.SizeVariantList{
			{Name: "Small", Price: -100},
		},
	}
	assert.Equal(t, int64(500), ResolveUnitPrice(item, nil))
	assert.Equal(t, int64(500), ResolveUnitPrice(item, []menu.SelectedOption{
		{Category: menu.CategorySize, Name: "size", Value: "Small"},
	}))
}

// Concrete scenario: base $10, sizes S=$8/L=$12, no size chosen, one $1 extra,
// quantity 2 gives a $9 unit price and an $18 line subtotal.
func TestResolveUnitPriceScenario(t *testing.T) {
	item := &menu.MenuItem{
		ID:    4,
		Name:  "Item A",
		Price: 1000,
		SizeVariants: menu.SizeVariantList{
			{Name: "S", Price: 800},
			{Name: "L", Price: 1200},
		},
		Extras: menu.OptionEntryList{
			{Name: "Topping", PriceDelta: delta(100)},
		},
	}
	unit := ResolveUnitPrice(item, []menu.SelectedOption{
		{Category: menu.CategoryExtras, Name: "Topping", Value: "Topping"},
	})
	assert.Equal(t, int64(900), unit)
	assert.Equal(t, int64(1800), unit*2)
}
