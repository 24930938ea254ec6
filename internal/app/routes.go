package app

import (
	"github.com/devopsenabler/identity-core/internal/database"
	"github.com/devopsenabler/identity-core/internal/middleware"
	"github.com/devopsenabler/identity-core/internal/modules/auth/auth"
	"github.com/devopsenabler/identity-core/internal/modules/system/health"
	"github.com/devopsenabler/identity-core/internal/pkg/denylist"
	pkgjwt "github.com/devopsenabler/identity-core/internal/pkg/jwt"
	pkgredis "github.com/devopsenabler/identity-core/internal/pkg/redis"
	"github.com/devopsenabler/identity-core/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(rc *pkgredis.Client, codec *pkgjwt.Codec, dl *denylist.Store) {
	r := a.router
	authMW := middleware.Auth(codec, dl)

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	r.Use(middleware.Idempotence(rc.Raw()))

	appInfo := gin.H{
		"name":    "identity-core",
		"version": "1.0.0",
	}
	r.GET("/", func(c *gin.Context) {
		response.OK(c, appInfo)
	})

	root := r.Group("")
	health.RegisterRoutes(root, a.db, rc)

	authSvc := auth.NewService(database.NewUsers(a.db), codec, dl, a.cfg.TokenTTL)
	auth.NewHandler(authSvc).RegisterRoutes(root, authMW)
}
