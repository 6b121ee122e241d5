// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import "strconv"

// AtoiDefault converts a string to an int using strconv.Atoi, falling back
// to def when the string is empty or not a valid integer. It is the standard
// way handlers read optional numeric query parameters such as the queue
// display limit.
//
// Example:
//
//	limit := utils.AtoiDefault(c.Query("limit"), 0) // "25" -> 25
//	limit = utils.AtoiDefault("", 10)               // returns 10
//	limit = utils.AtoiDefault("x", 5)               // returns 5
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}
