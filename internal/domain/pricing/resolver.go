// internal/domain/pricing/resolver.go
package pricing

import (
	"strings"

	"github.com/your-org/tableorder-backend/internal/domain/menu"
)

// ResolveUnitPrice computes the effective unit price in cents for an item
// under the given selection. It is a total function: unmatched or stale
// selections contribute zero instead of failing, so pricing never blocks
// the caller.
//
// Each option category has its own resolver; ResolveUnitPrice composes them:
// the size resolver picks the price basis, the remaining resolvers add deltas.
func ResolveUnitPrice(item *menu.MenuItem, selected []menu.SelectedOption) int64 {
	if item == nil {
		return 0
	}

	price := resolveSize(item, selected)
	price += resolveEntries(item.Extras, selected, menu.CategoryExtras)
	price += resolveEntries(item.Addons, selected, menu.CategoryAddons)
	price += resolveGroups(item.VariantGroups, selected)
	return price
}

// resolveSize returns the price basis: the selected size variant's absolute
// price, the lowest-priced variant when no size is chosen, or the base price
// when the item declares no variants. A variant with a negative price fails
// closed to the base price.
func resolveSize(item *menu.MenuItem, selected []menu.SelectedOption) int64 {
	if len(item.SizeVariants) == 0 {
		return item.Price
	}

	if chosen, ok := selectedValue(selected, menu.CategorySize, ""); ok {
		for _, v := range item.SizeVariants {
			if strings.EqualFold(v.Name, chosen) {
				if v.Price < 0 {
					return item.Price
				}
				return v.Price
			}
		}
	}

	// No size chosen (or the chosen one no longer exists): default to the
	// lowest-priced variant so the item can never be undercharged.
	lowest := item.SizeVariants[0].Price
	for _, v := range item.SizeVariants[1:] {
		if v.Price < lowest {
			lowest = v.Price
		}
	}
	if lowest < 0 {
		return item.Price
	}
	return lowest
}

// resolveEntries sums the deltas of declared extras/addons that the
// selection actually contains.
func resolveEntries(declared []menu.OptionEntry, selected []menu.SelectedOption, category menu.OptionCategory) int64 {
	var total int64
	for _, opt := range selected {
		if opt.Category != category {
			continue
		}
		name := opt.Name
		if name == "" {
			name = opt.Value
		}
		for _, entry := range declared {
			if strings.EqualFold(entry.Name, name) {
				total += entry.Delta()
				break
			}
		}
	}
	return total
}

// resolveGroups adds the delta of the chosen sub-option for every declared
// variant group other than one literally named "size" (that axis belongs to
// the size resolver).
func resolveGroups(groups []menu.VariantGroup, selected []menu.SelectedOption) int64 {
	var total int64
	for _, group := range groups {
		if strings.EqualFold(group.Name, "size") {
			continue
		}
		chosen, ok := selectedValue(selected, menu.CategoryOption, group.Name)
		if !ok {
			continue
		}
		for _, entry := range group.Options {
			if strings.EqualFold(entry.Name, chosen) {
				total += entry.Delta()
				break
			}
		}
	}
	return total
}

// selectedValue finds the value chosen for a category, optionally scoped to
// a group name. For the size category any selection in the category matches.
func selectedValue(selected []menu.SelectedOption, category menu.OptionCategory, groupName string) (string, bool) {
	for _, opt := range selected {
		if opt.Category != category {
			continue
		}
		if groupName != "" && !strings.EqualFold(opt.Name, groupName) {
			continue
		}
		return opt.Value, true
	}
	return "", false
}
