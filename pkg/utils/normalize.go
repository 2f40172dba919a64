package utils

import "strings"

// NormalizeUpper trims and upper-cases free text fields
func NormalizeUpper(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}
