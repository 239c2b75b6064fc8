package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clinicore/clinicore/internal/services"
	apperrors "github.com/clinicore/clinicore/pkg/errors"
	"github.com/clinicore/clinicore/pkg/response"
)

// RequirePermission gates a route on the actor holding the given permission
// code. System administrators pass implicitly through the access service.
func RequirePermission(access *services.AccessService, code string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, ok := ActorID(c)
		if !ok {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		allowed, err := access.HasPermission(c.Request.Context(), actorID, code)
		if err != nil {
			// Fail safe: an unanswerable check is a refusal, never a pass.
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    apperrors.ErrInternalServer.Code,
					"message": "permission check failed",
				},
			})
			return
		}
		if !allowed {
			response.Error(c, apperrors.ErrForbidden)
			c.Abort()
			return
		}

		c.Next()
	}
}
