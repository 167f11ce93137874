package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RouteRegistrar mounts routes on a gin group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router mounts registrars under /api/<version>
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
}

// RouterOption configures a Router
type RouterOption func(*Router)

// WithAPIVersion overrides the default v1 prefix
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) { r.apiVersion = version }
}

func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{engine: engine, apiVersion: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register queues registrars for Setup
func (r *Router) Register(registrars ...RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrars...)
	return r
}

// BasePath is the prefix every registrar is mounted under
func (r *Router) BasePath() string {
	return "/api/" + r.apiVersion
}

// Setup mounts every queued registrar on the engine
func (r *Router) Setup() {
	api := r.engine.Group(r.BasePath())
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// Group is a declarative route table for one area of the API. Nothing is
// mounted until RegisterRoutes, so a table can be built before the engine
// exists and mounted more than once in tests.
type Group struct {
	prefix     string
	middleware []gin.HandlerFunc
	routes     []route
	children   []*Group
}

type route struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// NewGroup starts a table under prefix ("" mounts at the parent)
func NewGroup(prefix string) *Group {
	return &Group{prefix: prefix}
}

// Use runs middleware before every route of the group and its children
func (g *Group) Use(middleware ...gin.HandlerFunc) *Group {
	g.middleware = append(g.middleware, middleware...)
	return g
}

// Handle adds a route; the permission check, if any, goes first in handlers
func (g *Group) Handle(method, path string, handlers ...gin.HandlerFunc) *Group {
	g.routes = append(g.routes, route{method: method, path: path, handlers: handlers})
	return g
}

func (g *Group) GET(path string, handlers ...gin.HandlerFunc) *Group {
	return g.Handle(http.MethodGet, path, handlers...)
}

func (g *Group) POST(path string, handlers ...gin.HandlerFunc) *Group {
	return g.Handle(http.MethodPost, path, handlers...)
}

func (g *Group) PUT(path string, handlers ...gin.HandlerFunc) *Group {
	return g.Handle(http.MethodPut, path, handlers...)
}

func (g *Group) PATCH(path string, handlers ...gin.HandlerFunc) *Group {
	return g.Handle(http.MethodPatch, path, handlers...)
}

func (g *Group) DELETE(path string, handlers ...gin.HandlerFunc) *Group {
	return g.Handle(http.MethodDelete, path, handlers...)
}

// Group adds a child table that inherits this group's middleware
func (g *Group) Group(prefix string) *Group {
	child := NewGroup(prefix)
	g.children = append(g.children, child)
	return child
}

// Count is the number of routes in the table, children included
func (g *Group) Count() int {
	n := len(g.routes)
	for _, c := range g.children {
		n += c.Count()
	}
	return n
}

// RegisterRoutes implements RouteRegistrar
func (g *Group) RegisterRoutes(rg *gin.RouterGroup) {
	mounted := rg.Group(g.prefix, g.middleware...)
	for _, r := range g.routes {
		mounted.Handle(r.method, r.path, r.handlers...)
	}
	for _, c := range g.children {
		c.RegisterRoutes(mounted)
	}
}
