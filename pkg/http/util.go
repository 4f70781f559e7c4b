package http

import (
	"time"

	xutil "SqueezeScan/pkg/util"
)

// ParseIntDefault parses s as an int, falling back to def when empty or invalid.
func ParseIntDefault(s string, def int) int { return xutil.ParseIntDefault(s, def) }

// ParseTime accepts RFC3339, RFC3339Nano, or unix seconds.
func ParseTime(s string) (time.Time, bool) { return xutil.ParseTime(s) }

// ParseTimeDefault parses s as a time, falling back to def when empty or invalid.
func ParseTimeDefault(s string, def time.Time) time.Time { return xutil.ParseTimeDefault(s, def) }
