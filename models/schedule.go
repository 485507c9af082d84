package models

import (
	"fmt"
	"time"
)

// DateLayout is the canonical wire format for calendar dates.
const DateLayout = "2006-01-02"

// MinutesPerDay bounds every time-of-day value in the system.
const MinutesPerDay = 24 * 60

// TimeWindow is a half-open [Start, End) interval in minutes from midnight.
type TimeWindow struct {
	Start int `bson:"start" json:"start"`
	End   int `bson:"end" json:"end"`
}

// Overlaps reports whether two half-open windows intersect.
// Touching boundaries (w.End == other.Start) do not overlap.
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	return w.Start < other.End && w.End > other.Start
}

// ScheduleTemplate is a practitioner's recurring availability for one weekday.
// A practitioner owns at most one template per weekday (0=Sunday .. 6=Saturday).
type ScheduleTemplate struct {
	PractitionerID string       `bson:"practitioner_id" json:"practitionerId"`
	DayOfWeek      int          `bson:"day_of_week" json:"dayOfWeek"`
	Start          int          `bson:"start" json:"start"` // minutes from midnight (e.g., 540 for 9:00 AM)
	End            int          `bson:"end" json:"end"`
	SlotDuration   int          `bson:"slot_duration" json:"slotDurationMinutes"`
	Breaks         []TimeWindow `bson:"breaks,omitempty" json:"breaks,omitempty"`
	UpdatedAt      time.Time    `bson:"updated_at" json:"updatedAt"`
}

// Validate checks the template invariants: a positive working window, a
// positive slot duration, and sorted, non-overlapping breaks fully contained
// in the working window.
func (t ScheduleTemplate) Validate() error {
	if t.DayOfWeek < 0 || t.DayOfWeek > 6 {
		return fmt.Errorf("dayOfWeek must be in 0..6, got %d", t.DayOfWeek)
	}
	if t.Start < 0 || t.End > MinutesPerDay {
		return fmt.Errorf("working window [%d, %d] outside the day", t.Start, t.End)
	}
	if t.Start >= t.End {
		return fmt.Errorf("working window start %d must precede end %d", t.Start, t.End)
	}
	if t.SlotDuration <= 0 {
		return fmt.Errorf("slot duration must be positive, got %d", t.SlotDuration)
	}
	prevEnd := -1
	for i, b := range t.Breaks {
		if b.Start >= b.End {
			return fmt.Errorf("break %d: start %d must precede end %d", i, b.Start, b.End)
		}
		if b.Start < t.Start || b.End > t.End {
			return fmt.Errorf("break %d: [%d, %d] not contained in working window [%d, %d]", i, b.Start, b.End, t.Start, t.End)
		}
		if b.Start < prevEnd {
			return fmt.Errorf("break %d: breaks must be sorted and non-overlapping", i)
		}
		prevEnd = b.End
	}
	return nil
}

// AvailabilityOverride is a per-date exception to the weekly template.
// A blocked override removes the whole day; a custom window narrows its hours.
type AvailabilityOverride struct {
	PractitionerID string      `bson:"practitioner_id" json:"practitionerId"`
	Date           string      `bson:"date" json:"date"` // "YYYY-MM-DD"
	Blocked        bool        `bson:"blocked" json:"blocked"`
	Reason         string      `bson:"reason,omitempty" json:"reason,omitempty"`
	Window         *TimeWindow `bson:"window,omitempty" json:"window,omitempty"`
	UpdatedAt      time.Time   `bson:"updated_at" json:"updatedAt"`
}

// Validate checks the override shape. A custom window is only meaningful on an
// unblocked date.
func (o AvailabilityOverride) Validate() error {
	if _, err := time.Parse(DateLayout, o.Date); err != nil {
		return fmt.Errorf("invalid date %q: expected YYYY-MM-DD", o.Date)
	}
	if o.Window != nil {
		if o.Blocked {
			return fmt.Errorf("blocked override cannot carry a custom window")
		}
		if o.Window.Start < 0 || o.Window.End > MinutesPerDay || o.Window.Start >= o.Window.End {
			return fmt.Errorf("custom window [%d, %d] is not a valid interval", o.Window.Start, o.Window.End)
		}
	}
	return nil
}
