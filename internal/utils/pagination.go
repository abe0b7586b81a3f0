// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import "strconv"

// AtoiDefault parses s as an int and falls back to def when s is empty or
// not a plain integer. It exists for query parameters like ?limit=, where a
// bad value should mean "use the default", never an error. Input is not
// trimmed: " 42" is a client bug, not a 42.
//
// Example:
//
//	limit := utils.AtoiDefault(c.Query("limit"), 50)
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}
