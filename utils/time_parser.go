package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseDuration parses the duration forms accepted across settings and
// request options. It understands everything time.ParseDuration does plus a
// whole-day suffix, e.g. "7d".
func ParseDuration(s string) (time.Duration, error) {
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid day count %q", days)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}
