package documents

import "time"

// Document expiry statuses, derived on read and never stored.
const (
	StatusValid    = "valid"
	StatusExpiring = "expiring"
	StatusExpired  = "expired"
)

// expiringWindow is the lookahead for the "expiring" status.
const expiringWindow = 30 * 24 * time.Hour

// Status classifies a document by its expiry date relative to today.
// Documents without an expiry date are always valid. Comparison is by
// calendar day: a document expiring today is still expiring, not expired.
func Status(dateExpiry *time.Time, today time.Time) string {
	if dateExpiry == nil {
		return StatusValid
	}
	day := today.Truncate(24 * time.Hour)
	expiry := dateExpiry.Truncate(24 * time.Hour)
	if expiry.Before(day) {
		return StatusExpired
	}
	if !expiry.After(day.Add(expiringWindow)) {
		return StatusExpiring
	}
	return StatusValid
}
