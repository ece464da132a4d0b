package http

import (
	"github.com/gin-gonic/gin"
)

// RouteGroup is a set of routes mounted on the /api group.
type RouteGroup interface {
	RegisterRoutes(rg *gin.RouterGroup, cfg *RouterConfig)
}
