package api

import (
	"github.com/gin-gonic/gin"

	"github.com/clinicore/clinicore/internal/handlers"
	"github.com/clinicore/clinicore/internal/middleware"
)

func registerStaffRoutes(api *gin.RouterGroup, svcs *serviceSet) {
	assignmentHandler := handlers.NewAssignmentHandler(svcs.assignments)

	staff := api.Group("/staff")
	{
		staff.GET("/:id/access-profile", middleware.RequirePermission(svcs.access, "ROLE_VIEW"), assignmentHandler.GetAccessProfile)
		staff.PUT("/:id/roles", middleware.RequirePermission(svcs.access, "ROLE_MANAGE"), assignmentHandler.AssignRoles)
		staff.DELETE("/:id/roles/:roleID", middleware.RequirePermission(svcs.access, "ROLE_MANAGE"), assignmentHandler.RemoveRole)
	}
}
