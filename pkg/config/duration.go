package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var dayDurationPattern = regexp.MustCompile(`^(\d+)d$`)

// ParseDuration parses a Go duration string and additionally accepts
// whole days ("2d"). Examples: "30s", "5m", "1h30m", "1d".
func ParseDuration(s string) (time.Duration, error) {
	value := strings.TrimSpace(s)
	if value == "" {
		return 0, fmt.Errorf("empty duration")
	}

	if matches := dayDurationPattern.FindStringSubmatch(value); matches != nil {
		days, err := strconv.Atoi(matches[1])
		if err != nil {
			return 0, fmt.Errorf("invalid duration value: %s", matches[1])
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must not be negative: %s", value)
	}
	return d, nil
}
