package streak

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseFrequency(t *testing.T) {
	tests := []struct {
		in      string
		kind    FrequencyKind
		times   int
		wantErr bool
	}{
		{"Daily", Daily, 0, false},
		{"Weekdays", Weekdays, 0, false},
		{"Weekends", Weekends, 0, false},
		{"3x/week", TimesPerWeek, 3, false},
		{"7x/week", TimesPerWeek, 7, false},
		{"0x/week", 0, 0, true},
		{"8x/week", 0, 0, true},
		{"daily", 0, 0, true},
		{"", 0, 0, true},
	}

	for _, tt := range tests {
		f, err := ParseFrequency(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseFrequency(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseFrequency(%q): %v", tt.in, err)
			continue
		}
		if f.Kind != tt.kind || f.Times != tt.times {
			t.Errorf("ParseFrequency(%q) = %+v", tt.in, f)
		}
	}
}

func TestCurrentConsecutiveDays(t *testing.T) {
	daily := Frequency{Kind: Daily}
	today := date(2024, 1, 10)

	completed := []time.Time{
		date(2024, 1, 10),
		date(2024, 1, 9),
		date(2024, 1, 8),
		date(2024, 1, 5), // gap at 01-06 and 01-07
	}

	if got := Current(daily, completed, today); got != 3 {
		t.Errorf("expected streak 3, got %d", got)
	}
}

func TestCurrentTodayPendingKeepsStreak(t *testing.T) {
	daily := Frequency{Kind: Daily}
	today := date(2024, 1, 10)

	// Done yesterday and the day before, not yet today.
	completed := []time.Time{date(2024, 1, 9), date(2024, 1, 8)}
	if got := Current(daily, completed, today); got != 2 {
		t.Errorf("expected streak 2, got %d", got)
	}

	// Last completion two days ago: the chain is broken.
	completed = []time.Time{date(2024, 1, 8), date(2024, 1, 7)}
	if got := Current(daily, completed, today); got != 0 {
		t.Errorf("expected streak 0, got %d", got)
	}
}

func TestCurrentUnmarkDecrementsByOne(t *testing.T) {
	daily := Frequency{Kind: Daily}
	today := date(2024, 3, 3)

	completed := []time.Time{date(2024, 3, 1), date(2024, 3, 2), date(2024, 3, 3)}
	if got := Current(daily, completed, today); got != 3 {
		t.Fatalf("expected streak 3, got %d", got)
	}

	// Unmarking the most recent day leaves the two below it.
	if got := Current(daily, completed[:2], today); got != 2 {
		t.Errorf("expected streak 2 after unmark, got %d", got)
	}
}

func TestCurrentWeekdaysSkipsWeekend(t *testing.T) {
	weekdays := Frequency{Kind: Weekdays}

	// 2024-01-05 is a Friday, 2024-01-08 a Monday.
	completed := []time.Time{date(2024, 1, 4), date(2024, 1, 5), date(2024, 1, 8)}
	if got := Current(weekdays, completed, date(2024, 1, 8)); got != 3 {
		t.Errorf("expected streak 3 across the weekend, got %d", got)
	}

	// Evaluated on Saturday the streak anchors on Friday's completion.
	if got := Current(weekdays, completed[:2], date(2024, 1, 6)); got != 2 {
		t.Errorf("expected streak 2 on Saturday, got %d", got)
	}
}

func TestCurrentEmptyLedger(t *testing.T) {
	if got := Current(Frequency{Kind: Daily}, nil, date(2024, 1, 1)); got != 0 {
		t.Errorf("expected 0 for empty ledger, got %d", got)
	}
}

func TestExpectedOccurrences(t *testing.T) {
	// 2024-01-01 is a Monday; the window covers two full weeks.
	start, end := date(2024, 1, 1), date(2024, 1, 14)

	tests := []struct {
		name string
		f    Frequency
		want int
	}{
		{"daily", Frequency{Kind: Daily}, 14},
		{"weekdays", Frequency{Kind: Weekdays}, 10},
		{"weekends", Frequency{Kind: Weekends}, 4},
		{"3x_week", Frequency{Kind: TimesPerWeek, Times: 3}, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.f.ExpectedOccurrences(start, end); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}

	if got := (Frequency{Kind: Daily}).ExpectedOccurrences(end, start); got != 0 {
		t.Errorf("inverted window: got %d, want 0", got)
	}
}

func TestCompletionRate(t *testing.T) {
	daily := Frequency{Kind: Daily}
	start, end := date(2024, 1, 1), date(2024, 1, 10)

	completed := []time.Time{
		date(2024, 1, 1), date(2024, 1, 2), date(2024, 1, 3),
		date(2024, 1, 5), date(2024, 1, 7),
	}
	if got := CompletionRate(daily, completed, start, end); got != 50 {
		t.Errorf("expected 50, got %d", got)
	}

	// Dates outside the window and duplicates are ignored.
	noisy := append([]time.Time{date(2023, 12, 31), date(2024, 1, 1)}, completed...)
	if got := CompletionRate(daily, noisy, start, end); got != 50 {
		t.Errorf("expected 50 with noise, got %d", got)
	}
}

func TestCompletionRateZeroExpected(t *testing.T) {
	// 2024-01-01..05 is Monday..Friday: no weekend days expected.
	weekends := Frequency{Kind: Weekends}
	got := CompletionRate(weekends, []time.Time{date(2024, 1, 2)}, date(2024, 1, 1), date(2024, 1, 5))
	if got != 0 {
		t.Errorf("expected 0 for zero expected occurrences, got %d", got)
	}
}

func TestCompletionRateClamped(t *testing.T) {
	// 1x/week over one week expects 1; completing three days must not
	// push the rate past 100.
	f := Frequency{Kind: TimesPerWeek, Times: 1}
	completed := []time.Time{date(2024, 1, 1), date(2024, 1, 2), date(2024, 1, 3)}
	if got := CompletionRate(f, completed, date(2024, 1, 1), date(2024, 1, 7)); got != 100 {
		t.Errorf("expected clamp at 100, got %d", got)
	}
}

func TestCheckInStreak(t *testing.T) {
	today := date(2024, 1, 10)
	dates := []time.Time{
		date(2024, 1, 10),
		date(2024, 1, 9),
		date(2024, 1, 8),
		date(2024, 1, 5),
	}

	if got := CheckInStreak(dates, today); got != 3 {
		t.Errorf("expected streak 3, got %d", got)
	}
}

func TestCheckInStreakNoCheckInToday(t *testing.T) {
	today := date(2024, 1, 10)
	dates := []time.Time{date(2024, 1, 9), date(2024, 1, 8)}

	if got := CheckInStreak(dates, today); got != 0 {
		t.Errorf("expected 0 without today's check-in, got %d", got)
	}
}

func TestDayNormalizesZone(t *testing.T) {
	// 2024-01-10 23:30 in UTC-5 is already 2024-01-11 in UTC. Day keeps the
	// wall-clock calendar date so every query and every ledger walk agrees
	// on what "today" is regardless of where the clock reading came from.
	est := time.FixedZone("EST", -5*3600)
	got := Day(time.Date(2024, 1, 10, 23, 30, 0, 0, est))

	want := date(2024, 1, 10)
	if !got.Equal(want) {
		t.Errorf("Day = %v, want %v", got, want)
	}
	if got.Location() != time.UTC {
		t.Errorf("Day location = %v, want UTC", got.Location())
	}
	if h, m, s := got.Clock(); h != 0 || m != 0 || s != 0 {
		t.Errorf("Day is not midnight: %02d:%02d:%02d", h, m, s)
	}
}
