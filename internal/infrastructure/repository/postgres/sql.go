package postgres

import "strings"

func nullableString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func nullableInt64(value int64) *int64 {
	if value <= 0 {
		return nil
	}
	return &value
}
