package availability

import "time"

// timeNow is swapped in tests that need deterministic lock-expiry gating.
var timeNow = time.Now
