package tracker

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// ParseSchedule accepts either a Go duration ("60s", "5m") or a cron spec
// ("@every 1m", "*/5 * * * *"). Durations are rounded down to whole seconds
// with a one second minimum.
func ParseSchedule(spec string) (cron.Schedule, error) {
	if d, err := time.ParseDuration(spec); err == nil {
		if d <= 0 {
			return nil, fmt.Errorf("schedule interval must be positive, got %v", d)
		}

		return cron.Every(d), nil
	}

	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}

	return schedule, nil
}
