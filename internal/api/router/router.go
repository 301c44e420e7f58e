package router

import (
	"github.com/wb-go/wbf/ginext"

	"github.com/mox-desktop/moxnotify/internal/api/handlers/search"
)

// New wires the searcher endpoints.
func New(searchHandler *search.Handler) *ginext.Engine {
	e := ginext.New()
	e.Use(ginext.Logger())
	e.Use(ginext.Recovery())

	api := e.Group("/api")

	api.POST("/search", searchHandler.Search)

	return e
}
