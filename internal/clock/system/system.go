// Package system provides a real clock implementation.
package system

import "time"

// Platform charts roll over on the Korean calendar day, so Today is computed
// in Asia/Seoul regardless of host timezone.
const platformZone = "Asia/Seoul"

// Clock implements collect.Clock using time.Now.
type Clock struct {
	loc *time.Location
}

// New creates a new Clock. It falls back to a fixed KST offset when the
// host has no tzdata for Asia/Seoul.
func New() *Clock {
	loc, err := time.LoadLocation(platformZone)
	if err != nil {
		loc = time.FixedZone("KST", 9*60*60)
	}
	return &Clock{loc: loc}
}

// Now returns the current time in UTC.
func (c *Clock) Now() time.Time {
	return time.Now().UTC()
}

// Today returns the current calendar day in Asia/Seoul as YYYY-MM-DD.
func (c *Clock) Today() string {
	return time.Now().In(c.loc).Format("2006-01-02")
}
