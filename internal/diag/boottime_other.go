//go:build !unix

package diag

import "time"

// bootTime has no portable source outside unix (no /proc, no uptime
// syscall analogue); callers get the time CollectHost ran instead.
func bootTime() (time.Time, error) {
	return time.Now(), nil
}
