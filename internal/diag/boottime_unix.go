//go:build unix

package diag

import (
	"time"

	"github.com/mackerelio/go-osstat/uptime"
)

// bootTime derives the host's boot time from its current uptime.
func bootTime() (time.Time, error) {
	up, err := uptime.Get()
	if err != nil {
		return time.Now(), err
	}
	return time.Now().Add(-up), nil
}
