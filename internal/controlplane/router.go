package controlplane

import (
	"github.com/wb-go/wbf/ginext"
)

// Router wires the collector-facing endpoints.
func Router(s *Service) *ginext.Engine {
	e := ginext.New()
	e.Use(ginext.Logger())
	e.Use(ginext.Recovery())

	api := e.Group("/api")

	api.GET("/session", s.HandleSession)
	api.GET("/active", s.HandleActive)

	return e
}
