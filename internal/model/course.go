package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay is a clock time expressed as minutes since midnight.
// It serializes as "HH:MM" in JSON and query parameters.
type TimeOfDay int

// ParseTimeOfDay parses an "HH:MM" string into a TimeOfDay. A single-digit
// hour is accepted; anything beyond the two numeric components is not.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time %q: out of range", s)
	}
	return TimeOfDay(h*60 + m), nil
}

// String formats the time as "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// MarshalJSON encodes the time as an "HH:MM" string.
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes an "HH:MM" string.
func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Course represents a scheduled academic offering with capacity and a
// daily time window. Courses are soft-deactivated, never deleted.
type Course struct {
	ID          int       `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Credits     int       `json:"credits"`
	MaxCapacity int       `json:"max_capacity"`
	StartTime   TimeOfDay `json:"start_time"`
	EndTime     TimeOfDay `json:"end_time"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// OverlapsWindow reports whether the course's [start, end) window overlaps
// the given window. Touching boundaries (end == start) do not overlap.
func (c *Course) OverlapsWindow(start, end TimeOfDay) bool {
	return !(c.EndTime <= start || c.StartTime >= end)
}

// CourseSummary is the flat catalog read-model: course fields plus the
// count of non-cancelled enrollments. This is what the catalog cache
// serializes, avoiding the Course <-> Enrollment reference cycle.
type CourseSummary struct {
	ID          int       `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Credits     int       `json:"credits"`
	MaxCapacity int       `json:"max_capacity"`
	StartTime   TimeOfDay `json:"start_time"`
	EndTime     TimeOfDay `json:"end_time"`
	Active      bool      `json:"active"`
	Enrolled    int       `json:"enrolled"`
}

// CatalogFilters are the optional catalog search predicates. All supplied
// filters are applied as a conjunction against active courses.
type CatalogFilters struct {
	Query      string
	CreditsMin *int
	CreditsMax *int
	TimeStart  *TimeOfDay
	TimeEnd    *TimeOfDay
}

// Empty reports whether no filter is supplied (the cacheable case).
func (f CatalogFilters) Empty() bool {
	return f.Query == "" && f.CreditsMin == nil && f.CreditsMax == nil &&
		f.TimeStart == nil && f.TimeEnd == nil
}

// CourseRequest is the payload for creating or updating a course.
type CourseRequest struct {
	Code        string `json:"code" binding:"required,min=2,max=10"`
	Name        string `json:"name" binding:"required,min=2,max=100"`
	Credits     int    `json:"credits" binding:"required,min=1,max=10"`
	MaxCapacity int    `json:"max_capacity" binding:"required,min=1,max=100"`
	StartTime   string `json:"start_time" binding:"required"`
	EndTime     string `json:"end_time" binding:"required"`
	Active      *bool  `json:"active"`
}

// LastViewedCourse is the per-user session projection written when a
// course detail page is viewed. Best-effort: loss on restart is fine.
type LastViewedCourse struct {
	ID   int    `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}
