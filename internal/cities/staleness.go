package cities

import "time"

// DefaultFreshnessWindow is how long a fetched temperature stays fresh.
const DefaultFreshnessWindow = 15 * time.Minute

// NeedsRefresh reports whether a city is eligible for a new weather fetch.
// A city that was never updated is always eligible; otherwise it becomes
// eligible once the elapsed time since updatedAt reaches the window.
func NeedsRefresh(updatedAt *time.Time, now time.Time, window time.Duration) bool {
	if updatedAt == nil {
		return true
	}
	return now.Sub(*updatedAt) >= window
}
