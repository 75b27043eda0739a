package downtime

import (
	"fmt"
	"sort"
	"strings"
)

// Field reads one numeric column of a record.
type Field[R any] func(R) float64

var rodPumpFields = map[string]Field[RodPumpRecord]{
	"runtime":   func(r RodPumpRecord) float64 { return r.Runtime },
	"idle_time": func(r RodPumpRecord) float64 { return r.IdleTime },
	"cycles":    func(r RodPumpRecord) float64 { return r.Cycles },
}

var rateFields = map[string]Field[RateRecord]{
	"value": func(r RateRecord) float64 { return r.Value },
}

// RodPumpField looks up a rod pump column by name.
func RodPumpField(name string) (Field[RodPumpRecord], error) {
	return lookup(rodPumpFields, name)
}

// RateField looks up an ESP or gas lift column by name.
func RateField(name string) (Field[RateRecord], error) {
	return lookup(rateFields, name)
}

func RodPumpFieldNames() []string { return names(rodPumpFields) }

func RateFieldNames() []string { return names(rateFields) }

// Values projects records through f, preserving order.
func Values[R any](records []R, f Field[R]) []float64 {
	out := make([]float64, 0, len(records))
	for _, r := range records {
		out = append(out, f(r))
	}
	return out
}

func lookup[R any](fields map[string]Field[R], name string) (Field[R], error) {
	f, ok := fields[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown field %q (want one of %s)", name, strings.Join(names(fields), ", "))
	}
	return f, nil
}

func names[R any](fields map[string]Field[R]) []string {
	out := make([]string, 0, len(fields))
	for n := range fields {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
