// Package delivery defines the entry points through which the application
// receives traffic.
package delivery

import "context"

// Delivery is a serving surface (HTTP today). Serve blocks until the listener
// stops; shutdown is driven by the Fx lifecycle.
type Delivery interface {
	Serve(ctx context.Context) error
}
