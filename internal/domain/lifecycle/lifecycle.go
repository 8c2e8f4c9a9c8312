// Package lifecycle holds shared start/stop constants.
package lifecycle

import "time"

// DefaultTimeout bounds graceful shutdown of a serving surface.
const DefaultTimeout = 10 * time.Second
