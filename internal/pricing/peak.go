package pricing

import "time"

// IsPeakHour reports whether now falls inside any of the configured peak
// windows. Bounds are inclusive on both ends. A window whose start is later
// than its end wraps past midnight: 23:00-02:00 matches 00:30.
func IsPeakHour(windows []PeakWindow, now time.Time) bool {
	current := now.Hour()*60 + now.Minute()

	for _, w := range windows {
		start, ok := parseClockMinutes(w.Start)
		if !ok {
			continue
		}
		end, ok := parseClockMinutes(w.End)
		if !ok {
			continue
		}

		if start <= end {
			if current >= start && current <= end {
				return true
			}
			continue
		}

		// Window crosses midnight.
		if current >= start || current <= end {
			return true
		}
	}

	return false
}

func parseClockMinutes(clock string) (int, bool) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}
