package purchase

import "time"

// Overridable for deterministic expiry tests.
var timeNow = time.Now
