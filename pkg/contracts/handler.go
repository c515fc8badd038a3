package contracts

import "github.com/julienschmidt/httprouter"

// Handler is implemented by every domain HTTP handler that registers routes
// on the application router.
type Handler interface {
	RegisterRoutes(router *httprouter.Router)
}
