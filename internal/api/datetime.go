// internal/api/datetime.go
package api

import (
	"fmt"
	"time"
)

// Layouts accepted for offset-less schedule datetimes.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// parseScheduleTime parses an ISO datetime string and normalizes it to UTC.
// Input carrying an explicit offset or Z is taken as given. Offset-less input
// is assumed to be at the configured default offset (IST, +05:30, unless
// overridden) before conversion.
func parseScheduleTime(value string, defaultOffsetMinutes int) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.UTC(), nil
	}

	zone := time.FixedZone("default", defaultOffsetMinutes*60)
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, value, zone); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("unparsable datetime %q", value)
}
