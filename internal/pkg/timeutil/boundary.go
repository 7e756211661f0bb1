package timeutil

import (
	"time"
)

// purgeZone is the fixed civil timezone the daily purge is anchored to
// (UTC+5:30). A fixed offset is used deliberately: no DST rules apply,
// and the boundary must not depend on the host's local timezone.
var purgeZone = time.FixedZone("IST", 5*60*60+30*60)

// CurrentBoundary returns the most recent civil midnight in the purge
// timezone at or before t, as an absolute instant.
func CurrentBoundary(t time.Time) time.Time {
	local := t.In(purgeZone)
	year, month, day := local.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, purgeZone)
}

// NextBoundary returns the purge boundary that follows t. With a fixed
// offset every civil day is exactly 24 hours long.
func NextBoundary(t time.Time) time.Time {
	return CurrentBoundary(t).Add(24 * time.Hour)
}

// UntilNextBoundary returns how long from t until the next purge boundary.
func UntilNextBoundary(t time.Time) time.Duration {
	return NextBoundary(t).Sub(t)
}
