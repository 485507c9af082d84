package models

import "fmt"

// Slot is a discrete bookable window derived from a schedule template.
// Slots are computed on demand and never persisted; a fresh query recomputes.
type Slot struct {
	Date        string `json:"date"` // "YYYY-MM-DD"
	Start       int    `json:"start"`
	End         int    `json:"end"`
	Duration    int    `json:"durationMinutes"`
	Label       string `json:"label"` // e.g., "09:00 - 09:30"
	IsAvailable bool   `json:"isAvailable"`
	IsBooked    bool   `json:"isBooked"`
}

// DaySummary reduces one generated day to its counts for preview display.
type DaySummary struct {
	Date           string `json:"date"`
	TotalSlots     int    `json:"totalSlots"`
	AvailableSlots int    `json:"availableSlots"`
}

// FormatClock renders minutes from midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
