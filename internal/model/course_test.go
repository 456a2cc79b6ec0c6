package model

import "testing"

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    TimeOfDay
		wantErr bool
	}{
		{name: "morning", input: "08:00", want: 480},
		{name: "noon", input: "12:30", want: 750},
		{name: "midnight", input: "00:00", want: 0},
		{name: "end_of_day", input: "23:59", want: 1439},
		{name: "single_digit_hour", input: "9:15", want: 555},
		{name: "hour_out_of_range", input: "24:00", wantErr: true},
		{name: "minute_out_of_range", input: "10:60", wantErr: true},
		{name: "negative", input: "-1:00", wantErr: true},
		{name: "garbage", input: "morning", wantErr: true},
		{name: "trailing_garbage", input: "08:00xyz", wantErr: true},
		{name: "trailing_space", input: "08:00 ", wantErr: true},
		{name: "seconds_component", input: "12:30:45", wantErr: true},
		{name: "missing_minutes", input: "08:", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseTimeOfDay(%q) = %v, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTimeOfDay(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseTimeOfDay(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestTimeOfDayString(t *testing.T) {
	if got := TimeOfDay(480).String(); got != "08:00" {
		t.Errorf("String() = %q, want %q", got, "08:00")
	}
	if got := TimeOfDay(1439).String(); got != "23:59" {
		t.Errorf("String() = %q, want %q", got, "23:59")
	}
}

func TestCourseOverlapsWindow(t *testing.T) {
	course := &Course{StartTime: 480, EndTime: 600} // 08:00-10:00

	tests := []struct {
		name  string
		start TimeOfDay
		end   TimeOfDay
		want  bool
	}{
		{name: "identical", start: 480, end: 600, want: true},
		{name: "contained", start: 510, end: 570, want: true},
		{name: "overlaps_start", start: 420, end: 510, want: true},
		{name: "overlaps_end", start: 570, end: 660, want: true},
		{name: "surrounds", start: 420, end: 660, want: true},
		{name: "touching_before", start: 420, end: 480, want: false},
		{name: "touching_after", start: 600, end: 660, want: false},
		{name: "disjoint_before", start: 360, end: 420, want: false},
		{name: "disjoint_after", start: 660, end: 720, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := course.OverlapsWindow(tt.start, tt.end); got != tt.want {
				t.Errorf("OverlapsWindow(%v, %v) = %v, want %v", tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestCatalogFiltersEmpty(t *testing.T) {
	if !(CatalogFilters{}).Empty() {
		t.Error("zero filters should be empty")
	}

	credits := 3
	if (CatalogFilters{CreditsMin: &credits}).Empty() {
		t.Error("filters with credits should not be empty")
	}
	if (CatalogFilters{Query: "cs"}).Empty() {
		t.Error("filters with query should not be empty")
	}
}
