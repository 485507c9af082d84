package scheduling

import (
	"clinicbook/models"
)

// GenerateSlots derives the ordered bookable slots for one calendar date.
//
// The effective working window comes from the override when present (a blocked
// date yields no slots, a custom window narrows the template's hours), else
// from the weekday template. Candidates step forward by the slot duration;
// a candidate that overlaps a break is discarded and generation resumes at the
// break's end. Overlap is half-open: a slot touching a break boundary is kept.
// Candidates whose end would pass the window end are dropped.
//
// A slot is marked booked when a non-cancelled appointment holds its start
// time, otherwise available. Output is ascending by start, slots never
// overlap, and the function performs no I/O: identical inputs produce an
// identical list.
func GenerateSlots(tmpl *models.ScheduleTemplate, override *models.AvailabilityOverride, date string, existing []models.Appointment) []models.Slot {
	if override != nil && override.Blocked {
		return nil
	}
	if tmpl == nil {
		return nil
	}

	start, end := tmpl.Start, tmpl.End
	if override != nil && override.Window != nil {
		if override.Window.Start > start {
			start = override.Window.Start
		}
		if override.Window.End < end {
			end = override.Window.End
		}
	}
	dur := tmpl.SlotDuration
	if dur <= 0 || start >= end {
		return nil
	}

	booked := make(map[int]bool, len(existing))
	for _, appt := range existing {
		if appt.Date == date && appt.Status != models.StatusCancelled {
			booked[appt.Start] = true
		}
	}

	var slots []models.Slot
	cur := start
	for cur+dur <= end {
		candidate := models.TimeWindow{Start: cur, End: cur + dur}
		if br, hit := firstOverlappingBreak(candidate, tmpl.Breaks); hit {
			// Overlap guarantees br.End > cur, so the cursor always advances.
			cur = br.End
			continue
		}
		slot := models.Slot{
			Date:     date,
			Start:    candidate.Start,
			End:      candidate.End,
			Duration: dur,
			Label:    models.FormatClock(candidate.Start) + " - " + models.FormatClock(candidate.End),
		}
		if booked[candidate.Start] {
			slot.IsBooked = true
		} else {
			slot.IsAvailable = true
		}
		slots = append(slots, slot)
		cur = candidate.End
	}
	return slots
}

func firstOverlappingBreak(candidate models.TimeWindow, breaks []models.TimeWindow) (models.TimeWindow, bool) {
	for _, br := range breaks {
		if candidate.Overlaps(br) {
			return br, true
		}
	}
	return models.TimeWindow{}, false
}

// Summarize reduces a generated slot list to its counts.
func Summarize(date string, slots []models.Slot) models.DaySummary {
	summary := models.DaySummary{Date: date, TotalSlots: len(slots)}
	for _, s := range slots {
		if s.IsAvailable {
			summary.AvailableSlots++
		}
	}
	return summary
}
