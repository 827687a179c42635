package api

import (
	"net/http"
	"path"

	"github.com/julienschmidt/httprouter"
	"github.com/wgomg/aura/internal/utils/httputils"
)

type routeGroup struct {
	router *httprouter.Router
	prefix string
}

func newRouteGroup(router *httprouter.Router, prefix string) *routeGroup {
	return &routeGroup{router: router, prefix: prefix}
}

func (g *routeGroup) GET(p string, h httprouter.Handle) {
	g.router.GET(path.Join(g.prefix, p), h)
}

func (g *routeGroup) POST(p string, h httprouter.Handle) {
	g.router.POST(path.Join(g.prefix, p), h)
}

func RegisterRoutes(router *httprouter.Router, handler *Handler) {
	router.POST("/process_command", handler.ProcessCommand)
	router.GET("/get_examples", handler.GetExamples)

	api := newRouteGroup(router, "/api")
	api.POST("/match", handler.Match)
	api.GET("/examples", handler.Examples)
	api.GET("/commands/:id", handler.Command)
	api.GET("/commands/:id/location", handler.CommandLocation)

	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputils.JSONError(w, http.StatusNotFound, "Not found")
	})
	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputils.JSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
}
