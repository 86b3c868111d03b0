package handlers

import (
	"time"

	"optionsimulator/internal/models"
)

// GetCurrentTimestamp returns the current Unix timestamp in milliseconds
func GetCurrentTimestamp() int64 {
	return time.Now().UnixMilli()
}

// ParseValuationDate parses an optional YYYY-MM-DD date, defaulting to today
func ParseValuationDate(value string) (models.Date, error) {
	if value == "" {
		return models.Today(), nil
	}
	return models.ParseDate(value)
}
