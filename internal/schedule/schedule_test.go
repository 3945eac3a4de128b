package schedule

import (
	"testing"
	"time"

	"github.com/handiism/djb-downloader/internal/model"
)

func date(y int, m time.Month, d int) model.Date {
	return model.Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func testPathConfig() *model.PathConfig {
	return &model.PathConfig{
		OutputDir:   "/shows",
		StationCode: "BSR",
	}
}

// January 2024 starts on a Monday, so Mondays fall on the 1st, 8th,
// 15th, 22nd and 29th.
func mondayRule(hours ...int) model.Schedule {
	return model.Schedule{
		Start:   date(2024, time.January, 1),
		End:     date(2024, time.January, 31),
		Weekday: model.Monday,
		Hours:   hours,
	}
}

func TestExpand_WeekdayAndBounds(t *testing.T) {
	airings := Expand([]model.Schedule{mondayRule(22, 23, 0)}, testPathConfig(), time.Time{})

	if len(airings) != 5 {
		t.Fatalf("got %d airings, want 5 (Mondays in January 2024)", len(airings))
	}

	wantDates := []string{"2024-01-01", "2024-01-08", "2024-01-15", "2024-01-22", "2024-01-29"}
	for i, airing := range airings {
		if got := airing.DateString(); got != wantDates[i] {
			t.Errorf("airing[%d] date = %s, want %s", i, got, wantDates[i])
		}
		if airing.Date.Weekday() != time.Monday {
			t.Errorf("airing[%d] falls on a %s", i, airing.Date.Weekday())
		}
	}
}

func TestExpand_SegmentRollover(t *testing.T) {
	airings := Expand([]model.Schedule{mondayRule(22, 23, 0)}, testPathConfig(), time.Time{})

	var jan8 *model.Airing
	for _, a := range airings {
		if a.DateString() == "2024-01-08" {
			jan8 = a
		}
	}
	if jan8 == nil {
		t.Fatal("no airing for 2024-01-08")
	}

	want := []struct {
		date string
		hour int
	}{
		{"2024-01-08", 22},
		{"2024-01-08", 23},
		{"2024-01-09", 0}, // the midnight hour belongs to the next calendar day
	}

	if len(jan8.Segments) != len(want) {
		t.Fatalf("got %d segments, want %d", len(jan8.Segments), len(want))
	}
	for i, w := range want {
		seg := jan8.Segments[i]
		if got := seg.Date.Format("2006-01-02"); got != w.date {
			t.Errorf("segment[%d] date = %s, want %s", i, got, w.date)
		}
		if seg.Hour != w.hour {
			t.Errorf("segment[%d] hour = %d, want %d", i, seg.Hour, w.hour)
		}
	}
}

func TestExpand_ResumeCutoff(t *testing.T) {
	rules := []model.Schedule{mondayRule(22)}
	cfg := testPathConfig()

	tests := []struct {
		name      string
		resume    time.Time
		wantDates []string
	}{
		{
			name:      "zero time keeps everything",
			resume:    time.Time{},
			wantDates: []string{"2024-01-01", "2024-01-08", "2024-01-15", "2024-01-22", "2024-01-29"},
		},
		{
			name:      "cutoff on an airing date keeps that date",
			resume:    time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
			wantDates: []string{"2024-01-15", "2024-01-22", "2024-01-29"},
		},
		{
			name:      "cutoff between airings",
			resume:    time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC),
			wantDates: []string{"2024-01-15", "2024-01-22", "2024-01-29"},
		},
		{
			name:      "cutoff past the range yields nothing",
			resume:    time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
			wantDates: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			airings := Expand(rules, cfg, tt.resume)
			if len(airings) != len(tt.wantDates) {
				t.Fatalf("got %d airings, want %d", len(airings), len(tt.wantDates))
			}
			for i, want := range tt.wantDates {
				if got := airings[i].DateString(); got != want {
					t.Errorf("airing[%d] = %s, want %s", i, got, want)
				}
			}
		})
	}
}

func TestExpand_StableOrderAcrossRules(t *testing.T) {
	first := mondayRule(22)
	second := model.Schedule{
		Start:   date(2024, time.January, 8),
		End:     date(2024, time.January, 8),
		Weekday: model.Monday,
		Hours:   []int{10},
	}

	airings := Expand([]model.Schedule{first, second}, testPathConfig(), time.Time{})

	// Jan 8 appears twice; the first rule's airing must come first.
	var jan8Hours []int
	for _, a := range airings {
		if a.DateString() == "2024-01-08" {
			jan8Hours = append(jan8Hours, a.Segments[0].Hour)
		}
	}
	if len(jan8Hours) != 2 {
		t.Fatalf("got %d airings on 2024-01-08, want 2", len(jan8Hours))
	}
	if jan8Hours[0] != 22 || jan8Hours[1] != 10 {
		t.Errorf("tie-break order = %v, want [22 10] (rule order)", jan8Hours)
	}

	// The merged list must still be sorted by date.
	for i := 1; i < len(airings); i++ {
		if airings[i].Date.Before(airings[i-1].Date) {
			t.Errorf("airings out of order at %d: %s after %s",
				i, airings[i].DateString(), airings[i-1].DateString())
		}
	}
}

func TestExpand_Deterministic(t *testing.T) {
	rules := []model.Schedule{
		mondayRule(22, 23, 0),
		{
			Start:   date(2024, time.January, 1),
			End:     date(2024, time.March, 31),
			Weekday: model.Thursday,
			Hours:   []int{20, 21},
		},
	}
	cfg := testPathConfig()
	resume := time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC)

	a := Expand(rules, cfg, resume)
	b := Expand(rules, cfg, resume)

	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].DateString() != b[i].DateString() {
			t.Errorf("airing[%d] differs: %s vs %s", i, a[i].DateString(), b[i].DateString())
		}
		for j := range a[i].Segments {
			if a[i].Segments[j].Filename != b[i].Segments[j].Filename {
				t.Errorf("airing[%d] segment[%d] differs", i, j)
			}
		}
	}
}

func TestExpand_DegenerateRules(t *testing.T) {
	tests := []struct {
		name string
		rule model.Schedule
	}{
		{
			name: "empty hours",
			rule: mondayRule(),
		},
		{
			name: "no weekday match in range",
			rule: model.Schedule{
				Start:   date(2024, time.January, 2), // Tuesday
				End:     date(2024, time.January, 7), // Sunday
				Weekday: model.Monday,
				Hours:   []int{22},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			airings := Expand([]model.Schedule{tt.rule}, testPathConfig(), time.Time{})
			if len(airings) != 0 {
				t.Errorf("got %d airings, want 0", len(airings))
			}
		})
	}
}
