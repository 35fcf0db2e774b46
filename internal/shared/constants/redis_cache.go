package constants

import (
	"fmt"
	"time"
)

// Redis cache keys and TTLs.
// Pattern: boleteria:{module}:{identifier}

const (
	CACHE_PREFIX = "boleteria"
)

// Event catalog (semi-static)
const (
	CACHE_KEY_EVENT_DETAIL = CACHE_PREFIX + ":events:detail:uuid:" // + event-id
	CACHE_KEY_EVENTS_LIST  = CACHE_PREFIX + ":events:list"

	TTL_EVENT_DETAIL = 2 * time.Hour
	TTL_EVENTS_LIST  = 15 * time.Minute
)

// Purchase session cache. The entry is a mirror of the durable session with a
// sliding TTL equal to the inactivity window; there is exactly one entry per
// user.
const (
	CACHE_KEY_SESSION_BY_USER = "session:user:" // + user-id
)

func BuildEventDetailKey(eventID string) string {
	return CACHE_KEY_EVENT_DETAIL + eventID
}

func BuildEventsListKey(activeOnly bool) string {
	return fmt.Sprintf("%s:active:%t", CACHE_KEY_EVENTS_LIST, activeOnly)
}

func BuildSessionKey(userID string) string {
	return CACHE_KEY_SESSION_BY_USER + userID
}
