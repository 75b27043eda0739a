package catalog

import (
	"cmp"
	"slices"
)

// Candidates builds the trend item candidates for a device type. Catalog rows
// must apply to the device type and carry a standard type; overrides must carry
// a standard type. When an override and a catalog row share an address the
// override wins and the catalog row is dropped.
func Candidates(deviceType int, entries []Entry, overrides []Override) []TrendItem {
	overridden := make(map[int]struct{}, len(overrides))
	out := make([]TrendItem, 0, len(entries)+len(overrides))
	for _, o := range overrides {
		if o.StandardType == 0 {
			continue
		}
		overridden[o.Address] = struct{}{}
		out = append(out, TrendItem{
			StandardType: o.StandardType,
			Address:      o.Address,
			Description:  o.Description,
			UnitType:     o.UnitType,
			Source:       SourceOverride,
		})
	}
	for _, e := range entries {
		if e.StandardType == 0 || !Applies(e.DeviceType, deviceType) {
			continue
		}
		if _, ok := overridden[e.Address]; ok {
			continue
		}
		out = append(out, TrendItem{
			StandardType: e.StandardType,
			Address:      e.Address,
			Description:  e.Description,
			UnitType:     e.UnitType,
			Source:       SourceCatalog,
		})
	}
	return out
}

// Resolve produces the trend items of one node: candidates with at least one
// recorded point, one item per standard type, ordered by description, standard
// type and address.
func Resolve(deviceType int, entries []Entry, overrides []Override, recorded []int) []TrendItem {
	if len(recorded) == 0 {
		return []TrendItem{}
	}
	history := make(map[int]struct{}, len(recorded))
	for _, a := range recorded {
		history[a] = struct{}{}
	}

	candidates := Candidates(deviceType, entries, overrides)
	withHistory := candidates[:0]
	for _, c := range candidates {
		if _, ok := history[c.Address]; ok {
			withHistory = append(withHistory, c)
		}
	}
	SortItems(withHistory)
	return Dedup(withHistory)
}

// SortItems orders items by description, standard type, address and finally
// source so equal keys always land in the same order.
func SortItems(items []TrendItem) {
	slices.SortStableFunc(items, func(a, b TrendItem) int {
		return cmp.Or(
			cmp.Compare(a.Description, b.Description),
			cmp.Compare(a.StandardType, b.StandardType),
			cmp.Compare(a.Address, b.Address),
			cmp.Compare(b.Source, a.Source),
		)
	})
}

// Dedup keeps the first item of every standard type, preserving order.
func Dedup(items []TrendItem) []TrendItem {
	seen := make(map[int]struct{}, len(items))
	out := make([]TrendItem, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.StandardType]; ok {
			continue
		}
		seen[it.StandardType] = struct{}{}
		out = append(out, it)
	}
	return out
}

// Addresses returns the registers that carry standardType for a device.
// Override addresses for the type take priority: when the group redefines the
// type, catalog addresses are not consulted. Catalog addresses redefined by any
// override are never returned.
func Addresses(deviceType int, entries []Entry, overrides []Override, standardType int) []int {
	if standardType == 0 {
		return nil
	}
	var fromOverrides []int
	overridden := make(map[int]struct{}, len(overrides))
	for _, o := range overrides {
		if o.StandardType == 0 {
			continue
		}
		overridden[o.Address] = struct{}{}
		if o.StandardType == standardType {
			fromOverrides = append(fromOverrides, o.Address)
		}
	}
	if len(fromOverrides) > 0 {
		return sortedUnique(fromOverrides)
	}

	var fromCatalog []int
	for _, e := range entries {
		if e.StandardType != standardType || !Applies(e.DeviceType, deviceType) {
			continue
		}
		if _, ok := overridden[e.Address]; ok {
			continue
		}
		fromCatalog = append(fromCatalog, e.Address)
	}
	return sortedUnique(fromCatalog)
}

// FilterByType returns the items carrying standardType.
func FilterByType(items []TrendItem, standardType int) []TrendItem {
	out := []TrendItem{}
	for _, it := range items {
		if it.StandardType == standardType {
			out = append(out, it)
		}
	}
	return out
}

func sortedUnique(in []int) []int {
	slices.Sort(in)
	return slices.Compact(in)
}
