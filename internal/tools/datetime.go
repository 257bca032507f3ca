package tools

import (
	"context"
	"time"

	"github.com/y0ug/mcptools/internal/registry"
)

func datetimeTool(now func() time.Time) registry.ToolDescriptor {
	return registry.ToolDescriptor{
		Name:        "get_datetime",
		Description: "Get current date and time information. Returns formatted date, time, and additional info.",
		Parameters: []registry.ParameterSpec{
			optional("timezone", registry.String("local"), "Timezone identifier (e.g., UTC, local)"),
		},
		Handler: func(_ context.Context, args registry.Args) (registry.Payload, error) {
			return datetimePayload(now(), args.Str("timezone")), nil
		},
	}
}

// datetimePayload reports t as local wall-clock time. The timezone label is
// echoed only; no conversion happens.
func datetimePayload(t time.Time, timezone string) registry.Payload {
	return registry.Payload{
		"date":        t.Format("2006-01-02"),
		"time":        t.Format("15:04:05"),
		"day_of_week": t.Weekday().String(),
		"iso_format":  isoFormat(t),
		"timestamp":   float64(t.UnixMicro()) / 1e6,
		"timezone":    timezone,
	}
}

// isoFormat leaves out the fraction when there are no whole microseconds.
func isoFormat(t time.Time) string {
	if t.Nanosecond()/1000 == 0 {
		return t.Format("2006-01-02T15:04:05")
	}
	return t.Format("2006-01-02T15:04:05.000000")
}
