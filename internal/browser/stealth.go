package browser

import (
	"math/rand"
	"time"
)

// Jitter returns base stretched by a random factor in [1, 1+spread).
// Settle waits use it so scroll and pagination steps are not evenly spaced.
func Jitter(base time.Duration, spread float64) time.Duration {
	if base <= 0 || spread <= 0 {
		return base
	}
	return base + time.Duration(rand.Float64()*spread*float64(base))
}
