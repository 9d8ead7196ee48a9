package schedule

import (
	"testing"
	"time"
)

func TestParseSchedule(t *testing.T) {
	sched, err := ParseSchedule("0 9 * * 1")
	if err != nil {
		t.Fatalf("ParseSchedule: %v", err)
	}

	// Wednesday -> next Monday 09:00.
	from := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	next := sched.Next(from)
	want := time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}
}

func TestParseScheduleRejectsSixFields(t *testing.T) {
	if _, err := ParseSchedule("* * * * * *"); err == nil {
		t.Error("expected error for 6-field expression")
	}
	if _, err := ParseSchedule("not a cron"); err == nil {
		t.Error("expected error for garbage expression")
	}
}
