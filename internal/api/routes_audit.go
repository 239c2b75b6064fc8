package api

import (
	"github.com/gin-gonic/gin"

	"github.com/clinicore/clinicore/internal/handlers"
	"github.com/clinicore/clinicore/internal/middleware"
)

func registerAuditRoutes(api *gin.RouterGroup, svcs *serviceSet) {
	auditHandler := handlers.NewAuditHandler(svcs.audit)

	audit := api.Group("/audit")
	{
		audit.GET("", middleware.RequirePermission(svcs.access, "AUDIT_VIEW"), auditHandler.List)
		audit.GET("/export", middleware.RequirePermission(svcs.access, "AUDIT_EXPORT"), auditHandler.Export)
	}
}
