package service

import (
	"fmt"
	"time"

	"github.com/noah-isme/attendance-api/internal/models"
)

// ComputeSummary derives gross, break and net work time from a log.
//
// Breaks pair positionally: each BreakStart closes at the first BreakEnd
// recorded after it, so one BreakEnd can close several starts. While the
// status is OnBreak and the log ends with a BreakStart, the open break runs
// until now. Work is measured from the first ClockIn to the first ClockOut
// (or now). All three results are clamped at zero.
func ComputeSummary(events []models.AttendanceEvent, status models.AttendanceStatus, now time.Time) models.WorkSummary {
	var totalBreak time.Duration

	// nextEnd[i] is the index of the first BreakEnd after i, or -1.
	nextEnd := make([]int, len(events))
	following := -1
	for i := len(events) - 1; i >= 0; i-- {
		nextEnd[i] = following
		if events[i].Kind == models.EventBreakEnd {
			following = i
		}
	}
	for i, ev := range events {
		if ev.Kind != models.EventBreakStart || nextEnd[i] < 0 {
			continue
		}
		totalBreak += events[nextEnd[i]].Timestamp.Sub(ev.Timestamp)
	}

	if n := len(events); n > 0 && status == models.StatusOnBreak && events[n-1].Kind == models.EventBreakStart {
		totalBreak += now.Sub(events[n-1].Timestamp)
	}

	start, ok := firstOfKind(events, models.EventClockIn)
	if !ok {
		return models.WorkSummary{}
	}
	end, ok := firstOfKind(events, models.EventClockOut)
	if !ok {
		end = now
	}
	gross := end.Sub(start)

	return models.WorkSummary{
		GrossWork:  clampZero(gross),
		TotalBreak: clampZero(totalBreak),
		NetWork:    clampZero(gross - totalBreak),
	}
}

func firstOfKind(events []models.AttendanceEvent, kind models.EventKind) (time.Time, bool) {
	for _, ev := range events {
		if ev.Kind == kind {
			return ev.Timestamp, true
		}
	}
	return time.Time{}, false
}

func clampZero(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}

// FormatDuration renders d as HH:MM:SS with sub-second precision truncated.
// Hours are not wrapped at 24; negative input renders as zero.
func FormatDuration(d time.Duration) string {
	total := int64(clampZero(d) / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, total/60%60, total%60)
}
