package v1

import (
	"github.com/gin-gonic/gin"

	"r2-dashboard/internal/interfaces/httpserver/handlers"
)

// Routes encapsulates API route registration.
type Routes struct {
	handlers *handlers.Provider
	session  gin.HandlerFunc
	optional gin.HandlerFunc
	setup    gin.HandlerFunc
}

// NewRoutes takes the session middleware, the non-rejecting session middleware used
// by setup and the setup gate.
func NewRoutes(provider *handlers.Provider, session, optional, setupGate gin.HandlerFunc) *Routes {
	return &Routes{handlers: provider, session: session, optional: optional, setup: setupGate}
}

// Register attaches all routes under the /api prefix.
func (r *Routes) Register(router gin.IRouter) {
	api := router.Group("/api")

	setup := api.Group("/setup", r.optional)
	setup.GET("/status", r.handlers.Setup.Status)
	setup.POST("/admin", r.handlers.Setup.CreateAdmin)
	setup.POST("/r2", r.handlers.Setup.ConfigureR2)

	authGroup := api.Group("/auth")
	authGroup.POST("/login", r.handlers.Auth.Login)
	authGroup.POST("/logout", r.handlers.Auth.Logout)
	authGroup.GET("/me", r.setup, r.session, r.handlers.Auth.Me)

	users := api.Group("/users", r.setup, r.session)
	users.GET("/:id", r.handlers.Users.Get)
	users.PATCH("/:id", r.handlers.Users.Update)
	users.DELETE("/:id", r.handlers.Users.Delete)

	buckets := api.Group("/buckets", r.setup, r.session)
	buckets.GET("", r.handlers.Buckets.List)
	buckets.POST("", r.handlers.Buckets.Create)
	buckets.DELETE("/:name", r.handlers.Buckets.Delete)

	buckets.GET("/:name/objects", r.handlers.Objects.List)
	buckets.POST("/:name/objects", r.handlers.Objects.Upload)
	buckets.POST("/:name/objects/delete", r.handlers.Objects.DeleteMany)
	buckets.GET("/:name/objects/*key", r.handlers.Objects.Download)
	buckets.DELETE("/:name/objects/*key", r.handlers.Objects.Delete)
	buckets.GET("/:name/presign", r.handlers.Objects.Presign)
}
