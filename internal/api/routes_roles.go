package api

import (
	"github.com/gin-gonic/gin"

	"github.com/clinicore/clinicore/internal/handlers"
	"github.com/clinicore/clinicore/internal/middleware"
)

func registerRoleRoutes(api *gin.RouterGroup, svcs *serviceSet) {
	roleHandler := handlers.NewRoleHandler(svcs.roles)
	matrixHandler := handlers.NewMatrixHandler(svcs.matrix)

	roles := api.Group("/roles")
	{
		roles.GET("", middleware.RequirePermission(svcs.access, "ROLE_VIEW"), roleHandler.List)
		roles.GET("/:id", middleware.RequirePermission(svcs.access, "ROLE_VIEW"), roleHandler.Get)
		roles.POST("", middleware.RequirePermission(svcs.access, "ROLE_MANAGE"), roleHandler.Create)
		roles.PATCH("/:id", middleware.RequirePermission(svcs.access, "ROLE_MANAGE"), roleHandler.Update)
		roles.DELETE("/:id", middleware.RequirePermission(svcs.access, "ROLE_MANAGE"), roleHandler.Delete)
		roles.POST("/:id/duplicate", middleware.RequirePermission(svcs.access, "ROLE_MANAGE"), roleHandler.Duplicate)
		roles.POST("/:id/permissions/bulk", middleware.RequirePermission(svcs.access, "ROLE_MANAGE"), matrixHandler.BulkUpdate)
	}
}
