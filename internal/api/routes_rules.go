package api

import (
	"github.com/gin-gonic/gin"

	"github.com/clinicore/clinicore/internal/handlers"
	"github.com/clinicore/clinicore/internal/middleware"
)

func registerRuleRoutes(api *gin.RouterGroup, svcs *serviceSet) {
	ruleHandler := handlers.NewRuleHandler(svcs.rules)

	rules := api.Group("/rules")
	{
		rules.GET("", middleware.RequirePermission(svcs.access, "ROLE_VIEW"), ruleHandler.List)
		rules.POST("", middleware.RequirePermission(svcs.access, "ROLE_MANAGE"), ruleHandler.Create)
		rules.PUT("/:id", middleware.RequirePermission(svcs.access, "ROLE_MANAGE"), ruleHandler.Update)
		rules.DELETE("/:id", middleware.RequirePermission(svcs.access, "ROLE_MANAGE"), ruleHandler.Delete)
	}
}
