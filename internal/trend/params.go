package trend

import (
	"sort"
	"strings"

	"welltrend/internal/catalog"
)

// parameterTypes maps the public parameter names to standard types.
var parameterTypes = map[string]int{
	"runtime":            catalog.StandardRunTime,
	"idle_time":          catalog.StandardIdleTime,
	"cycles":             catalog.StandardCycles,
	"frequency":          catalog.StandardFrequency,
	"gas_injection_rate": catalog.StandardGasInjectionRate,
}

// ParameterType returns the standard type for a parameter name.
func ParameterType(name string) (int, bool) {
	t, ok := parameterTypes[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

// ParameterNames lists the recognized parameter names in order.
func ParameterNames() []string {
	names := make([]string, 0, len(parameterTypes))
	for n := range parameterTypes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
