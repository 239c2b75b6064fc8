package api

import (
	"github.com/gin-gonic/gin"

	"github.com/clinicore/clinicore/internal/handlers"
	"github.com/clinicore/clinicore/internal/middleware"
)

func registerCatalogRoutes(api *gin.RouterGroup, svcs *serviceSet) {
	catalogHandler := handlers.NewCatalogHandler(svcs.catalog)
	matrixHandler := handlers.NewMatrixHandler(svcs.matrix)

	perms := api.Group("/permissions")
	{
		perms.GET("", middleware.RequirePermission(svcs.access, "ROLE_VIEW"), catalogHandler.List)
		perms.GET("/matrix", middleware.RequirePermission(svcs.access, "ROLE_VIEW"), matrixHandler.Get)
		perms.GET("/:code", middleware.RequirePermission(svcs.access, "ROLE_VIEW"), catalogHandler.Get)
	}
}
