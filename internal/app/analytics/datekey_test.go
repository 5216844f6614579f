package analytics

import (
	"testing"
	"time"
)

func TestWeekKey(t *testing.T) {
	cases := []struct {
		date string
		want string
	}{
		{"2025-01-01", "2025-W01"},
		{"2025-01-05", "2025-W02"}, // Sunday starts a new bucket: Jan 1 2025 is a Wednesday
		{"2025-01-10", "2025-W02"},
		{"2024-12-28", "2024-W52"},
		{"2025-12-31", "2025-W53"},
	}
	for _, c := range cases {
		if got := WeekKey(ParseDate(c.date)); got != c.want {
			t.Errorf("WeekKey(%s) = %s, want %s", c.date, got, c.want)
		}
	}
}

func TestIsConsecutiveDay(t *testing.T) {
	if !IsConsecutiveDay("2025-01-31", "2025-02-01") {
		t.Error("month boundary should be consecutive")
	}
	if !IsConsecutiveDay("2024-12-31", "2025-01-01") {
		t.Error("year boundary should be consecutive")
	}
	if IsConsecutiveDay("2025-01-01", "2025-01-03") {
		t.Error("two-day gap is not consecutive")
	}
	if IsConsecutiveDay("2025-01-02", "2025-01-01") {
		t.Error("backwards is not consecutive")
	}
}

func TestIsConsecutiveWeekYearWrap(t *testing.T) {
	if !IsConsecutiveWeek("2024-W52", "2025-W01") {
		t.Error("W52 to next year's W01 should be consecutive")
	}
	if !IsConsecutiveWeek("2020-W53", "2021-W01") {
		t.Error("W53 to next year's W01 should be consecutive")
	}
	if IsConsecutiveWeek("2024-W50", "2025-W01") {
		t.Error("W50 to next year's W01 should not be consecutive")
	}
	if !IsConsecutiveWeek("2025-W10", "2025-W11") {
		t.Error("adjacent weeks in one year should be consecutive")
	}
	if IsConsecutiveWeek("2025-W10", "2025-W12") {
		t.Error("skipped week should not be consecutive")
	}
}

func TestIsConsecutiveMonth(t *testing.T) {
	if !IsConsecutiveMonth("2025-03", "2025-04") {
		t.Error("adjacent months should be consecutive")
	}
	if !IsConsecutiveMonth("2024-12", "2025-01") {
		t.Error("December to January should be consecutive")
	}
	if IsConsecutiveMonth("2025-03", "2025-05") {
		t.Error("skipped month should not be consecutive")
	}
	if IsConsecutiveMonth("2024-11", "2025-01") {
		t.Error("November to next January should not be consecutive")
	}
}

func TestDayMonthKeys(t *testing.T) {
	d := time.Date(2025, time.July, 4, 15, 30, 0, 0, time.UTC)
	if got := DayKey(d); got != "2025-07-04" {
		t.Errorf("DayKey = %s", got)
	}
	if got := MonthKey(d); got != "2025-07" {
		t.Errorf("MonthKey = %s", got)
	}
}

func TestUniqueSorted(t *testing.T) {
	got := uniqueSorted([]string{"a", "a", "b", "c", "c", "c"})
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if out := uniqueSorted(nil); len(out) != 0 {
		t.Errorf("nil input should stay empty, got %v", out)
	}
}
