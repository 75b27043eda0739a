package catalog

import "fmt"

const (
	// WildcardDeviceType marks catalog rows that apply to every device type.
	WildcardDeviceType = 99

	// LegacyDeviceType also accepts rows declared for LegacyAliasDeviceType.
	LegacyDeviceType      = 17
	LegacyAliasDeviceType = 8
)

// Application is the artificial-lift application of a node.
type Application int

const (
	ApplicationUnknown Application = 0
	ApplicationRodPump Application = 3
	ApplicationESP     Application = 4
	ApplicationGasLift Application = 7
)

func (a Application) String() string {
	switch a {
	case ApplicationRodPump:
		return "rod_pump"
	case ApplicationESP:
		return "esp"
	case ApplicationGasLift:
		return "gas_lift"
	default:
		return fmt.Sprintf("application(%d)", int(a))
	}
}

// Standard parameter types used by the engine itself.
const (
	StandardRunTime          = 179
	StandardIdleTime         = 180
	StandardCycles           = 181
	StandardFrequency        = 92
	StandardGasInjectionRate = 191
)

// SourceKind tells where a trend item definition came from.
type SourceKind int

const (
	SourceCatalog SourceKind = iota
	SourceOverride
)

func (k SourceKind) String() string {
	if k == SourceOverride {
		return "override"
	}
	return "catalog"
}

func (k SourceKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *SourceKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "override":
		*k = SourceOverride
	case "catalog":
		*k = SourceCatalog
	default:
		return fmt.Errorf("unknown source %q", b)
	}
	return nil
}

// Node is what the engine needs to know about an asset.
type Node struct {
	NodeID      string
	AssetID     string
	DeviceType  int
	GroupID     string
	Application Application
}

// Entry is a built-in candidate register for a device type.
// StandardType 0 means the row has no standard parameter type.
type Entry struct {
	DeviceType   int
	Address      int
	StandardType int
	Description  string
	PhraseID     int
	UnitType     int
}

// Override is a facility tag: a group-scoped redefinition of a register.
// StandardType 0 means the tag has no standard parameter type.
type Override struct {
	GroupID      string
	Address      int
	StandardType int
	Description  string
	UnitType     int
}

// TrendItem is a resolved, caller-facing descriptor of one parameter of one node.
type TrendItem struct {
	StandardType int        `json:"standard_type"`
	Address      int        `json:"address"`
	Description  string     `json:"description"`
	UnitType     int        `json:"unit_type"`
	Source       SourceKind `json:"source"`
}

// Applies reports whether a catalog row declared for entryType is usable by a
// device of deviceType.
func Applies(entryType, deviceType int) bool {
	switch {
	case entryType == deviceType, entryType == WildcardDeviceType:
		return true
	case deviceType == LegacyDeviceType && entryType == LegacyAliasDeviceType:
		return true
	}
	return false
}

// CompatibleDeviceTypes lists every catalog device type that Applies to deviceType.
func CompatibleDeviceTypes(deviceType int) []int {
	types := []int{deviceType}
	if deviceType != WildcardDeviceType {
		types = append(types, WildcardDeviceType)
	}
	if deviceType == LegacyDeviceType {
		types = append(types, LegacyAliasDeviceType)
	}
	return types
}
