// Package contracts holds the small interfaces shared between pkg/app
// and the per-service handler packages.
package contracts

import "github.com/julienschmidt/httprouter"

// Handler is implemented by every service's HTTP surface; pkg/app mounts
// it behind the shared middleware stack.
type Handler interface {
	RegisterRoutes(*httprouter.Router)
}
