// Package derive computes the fields of a number record that are derived
// from other fields: the numerology sum of the mobile digits and the
// scheduled Non-RTS to RTS transition.
package derive

import (
	"time"

	"github.com/numtrack/numtrack/internal/models"
)

// DigitalRoot reduces the digits of mobile to a single digit by repeated
// digit summing. The result is 1-9, or 0 when every digit is zero.
// Non-digit runes are ignored.
func DigitalRoot(mobile string) int {
	sum := 0
	for _, r := range mobile {
		if r >= '0' && r <= '9' {
			sum += int(r - '0')
		}
	}

	for sum > 9 {
		next := 0
		for sum > 0 {
			next += sum % 10
			sum /= 10
		}
		sum = next
	}

	return sum
}

// EvaluateRTSTransition returns the record with status flipped to RTS and
// the scheduled date cleared when the date is due today or earlier. The
// comparison is date-only; time of day is ignored. Records that are not
// Non-RTS, have no scheduled date, or are due in the future come back
// unchanged. The function is pure: persisting the result and recording an
// activity entry are the caller's job.
func EvaluateRTSTransition(n models.Number, now time.Time) (models.Number, bool) {
	if n.Status != models.StatusNonRTS || n.RTSDate == nil {
		return n, false
	}

	if dateOnly(*n.RTSDate).After(dateOnly(now)) {
		return n, false
	}

	n.Status = models.StatusRTS
	n.RTSDate = nil
	return n, true
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
