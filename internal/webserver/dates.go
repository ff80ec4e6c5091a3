package webserver

import (
	"strconv"
	"strings"
	"time"
)

// isValidDate accepts only YYYY-MM-DD shapes: a four-digit year, month
// 1-12, day 1-31. Anything else (including traversal attempts) is
// rejected before it reaches a query.
func isValidDate(s string) bool {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return false
	}
	if len(parts[0]) != 4 {
		return false
	}
	for _, r := range parts[0] {
		if r < '0' || r > '9' {
			return false
		}
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return false
	}
	day, err := strconv.Atoi(parts[2])
	if err != nil || day < 1 || day > 31 {
		return false
	}
	return true
}

// formatDate renders a YYYY-MM-DD archive date as "Monday, August 24".
// Unparseable input comes back unchanged.
func formatDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("Monday, January 2")
}
