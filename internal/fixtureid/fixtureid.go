// Package fixtureid generates the fresh, collision-free UIDs used by
// icalgo new.
package fixtureid

import "github.com/google/uuid"

// New returns a fresh UID suitable for a VEVENT's UID property.
func New() string {
	return uuid.NewString() + "@icalgo"
}
