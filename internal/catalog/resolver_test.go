package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"welltrend/internal/catalog"
)

func TestApplies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		entryType  int
		deviceType int
		want       bool
	}{
		{"same type", 5, 5, true},
		{"wildcard", catalog.WildcardDeviceType, 5, true},
		{"legacy alias", catalog.LegacyAliasDeviceType, catalog.LegacyDeviceType, true},
		{"alias is one way", catalog.LegacyDeviceType, catalog.LegacyAliasDeviceType, false},
		{"alias only for legacy type", catalog.LegacyAliasDeviceType, 5, false},
		{"other type", 6, 5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, catalog.Applies(tt.entryType, tt.deviceType))
		})
	}
}

func TestCompatibleDeviceTypes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []int{5, catalog.WildcardDeviceType}, catalog.CompatibleDeviceTypes(5))
	assert.Equal(t, []int{17, catalog.WildcardDeviceType, 8}, catalog.CompatibleDeviceTypes(17))
	assert.Equal(t, []int{catalog.WildcardDeviceType}, catalog.CompatibleDeviceTypes(catalog.WildcardDeviceType))
}

func TestResolve(t *testing.T) {
	t.Parallel()

	t.Run("override wins on shared address", func(t *testing.T) {
		t.Parallel()

		entries := []catalog.Entry{
			{DeviceType: 5, Address: 100, StandardType: 10, Description: "Tubing Pressure", UnitType: 1},
		}
		overrides := []catalog.Override{
			{GroupID: "G1", Address: 100, StandardType: 10, Description: "Tubing Pressure (site)", UnitType: 7},
		}

		items := catalog.Resolve(5, entries, overrides, []int{100})
		require.Len(t, items, 1)
		assert.Equal(t, "Tubing Pressure (site)", items[0].Description)
		assert.Equal(t, 7, items[0].UnitType)
		assert.Equal(t, catalog.SourceOverride, items[0].Source)
	})

	t.Run("one item per standard type", func(t *testing.T) {
		t.Parallel()

		entries := []catalog.Entry{
			{DeviceType: 5, Address: 300, StandardType: 10, Description: "B"},
			{DeviceType: catalog.WildcardDeviceType, Address: 200, StandardType: 10, Description: "A"},
			{DeviceType: 5, Address: 100, StandardType: 11, Description: "C"},
		}

		items := catalog.Resolve(5, entries, nil, []int{100, 200, 300})
		require.Len(t, items, 2)
		assert.Equal(t, 200, items[0].Address)
		assert.Equal(t, 100, items[1].Address)

		again := catalog.Resolve(5, entries, nil, []int{300, 200, 100})
		assert.Equal(t, items, again)
	})

	t.Run("no history drops candidate", func(t *testing.T) {
		t.Parallel()

		entries := []catalog.Entry{
			{DeviceType: 5, Address: 100, StandardType: 10, Description: "A"},
			{DeviceType: 5, Address: 101, StandardType: 11, Description: "B"},
		}
		items := catalog.Resolve(5, entries, nil, []int{101})
		require.Len(t, items, 1)
		assert.Equal(t, 101, items[0].Address)
	})

	t.Run("node without history resolves empty", func(t *testing.T) {
		t.Parallel()

		entries := []catalog.Entry{{DeviceType: 5, Address: 100, StandardType: 10, Description: "A"}}
		items := catalog.Resolve(5, entries, nil, nil)
		require.NotNil(t, items)
		assert.Empty(t, items)
	})

	t.Run("rows without standard type are excluded", func(t *testing.T) {
		t.Parallel()

		entries := []catalog.Entry{{DeviceType: 5, Address: 100, Description: "untyped"}}
		overrides := []catalog.Override{{GroupID: "G1", Address: 101, Description: "untyped"}}
		assert.Empty(t, catalog.Resolve(5, entries, overrides, []int{100, 101}))
	})

	t.Run("legacy device uses alias rows", func(t *testing.T) {
		t.Parallel()

		entries := []catalog.Entry{
			{DeviceType: catalog.LegacyAliasDeviceType, Address: 2050, StandardType: catalog.StandardGasInjectionRate, Description: "Gas Injection Rate"},
			{DeviceType: 12, Address: 2051, StandardType: 55, Description: "Unrelated"},
		}
		items := catalog.Resolve(catalog.LegacyDeviceType, entries, nil, []int{2050, 2051})
		require.Len(t, items, 1)
		assert.Equal(t, catalog.StandardGasInjectionRate, items[0].StandardType)
		assert.Equal(t, 2050, items[0].Address)
		assert.Equal(t, catalog.SourceCatalog, items[0].Source)
	})

	t.Run("sorted by description then type then address", func(t *testing.T) {
		t.Parallel()

		entries := []catalog.Entry{
			{DeviceType: 5, Address: 3, StandardType: 30, Description: "Zeta"},
			{DeviceType: 5, Address: 2, StandardType: 21, Description: "Alpha"},
			{DeviceType: 5, Address: 1, StandardType: 20, Description: "Alpha"},
		}
		items := catalog.Resolve(5, entries, nil, []int{1, 2, 3})
		require.Len(t, items, 3)
		assert.Equal(t, []int{20, 21, 30}, []int{items[0].StandardType, items[1].StandardType, items[2].StandardType})
	})
}

func TestAddresses(t *testing.T) {
	t.Parallel()

	entries := []catalog.Entry{
		{DeviceType: catalog.WildcardDeviceType, Address: 500, StandardType: 10},
		{DeviceType: 5, Address: 501, StandardType: 10},
		{DeviceType: 5, Address: 502, StandardType: 11},
		{DeviceType: 6, Address: 503, StandardType: 10},
	}

	t.Run("catalog addresses without overrides", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, []int{500, 501}, catalog.Addresses(5, entries, nil, 10))
	})

	t.Run("override for type takes priority", func(t *testing.T) {
		t.Parallel()
		overrides := []catalog.Override{{GroupID: "G1", Address: 900, StandardType: 10}}
		assert.Equal(t, []int{900}, catalog.Addresses(5, entries, overrides, 10))
	})

	t.Run("redefined catalog address is skipped", func(t *testing.T) {
		t.Parallel()
		overrides := []catalog.Override{{GroupID: "G1", Address: 501, StandardType: 44}}
		assert.Equal(t, []int{500}, catalog.Addresses(5, entries, overrides, 10))
	})

	t.Run("unknown type", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, catalog.Addresses(5, entries, nil, 77))
		assert.Empty(t, catalog.Addresses(5, entries, nil, 0))
	})
}
