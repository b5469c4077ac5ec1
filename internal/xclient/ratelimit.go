package xclient

import (
	"os"
	"strconv"

	"golang.org/x/time/rate"
)

// newDefaultLimiter allows X_API_RPS requests per second (default 1, the
// v1.1 read windows are small) with an X_API_BURST burst (default 5).
func newDefaultLimiter() *rate.Limiter {
	rps := 1.0
	if v := os.Getenv("X_API_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			rps = f
		}
	}
	return rate.NewLimiter(rate.Limit(rps), getEnvInt("X_API_BURST", 5))
}
