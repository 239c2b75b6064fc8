package api

import (
	"github.com/gin-gonic/gin"

	"github.com/clinicore/clinicore/internal/handlers"
)

func registerAccessRoutes(api *gin.RouterGroup, svcs *serviceSet) {
	accessHandler := handlers.NewAccessHandler(svcs.access, svcs.rules)
	emergencyHandler := handlers.NewEmergencyHandler(svcs.emergency)

	// Any authenticated actor may ask questions about their own access; the
	// engine itself is the gate.
	access := api.Group("/access")
	{
		access.POST("/check", accessHandler.Check)
		access.GET("/permissions", accessHandler.MyPermissions)
		access.GET("/filter", accessHandler.ActiveFilter)
	}

	api.POST("/emergency-access", emergencyHandler.Request)
}
