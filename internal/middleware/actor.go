package middleware

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/clinicore/clinicore/pkg/errors"
	"github.com/clinicore/clinicore/pkg/response"
)

// CtxActorIDKey is the gin context key holding the resolved staff user ID.
const CtxActorIDKey = "actor_id"

// ActorHeader carries the staff user ID established by the upstream identity
// layer. Authentication itself happens before requests reach this service.
const ActorHeader = "X-Staff-User-ID"

// Actor extracts the acting staff user from the request header and stores it
// in the gin context. Requests without a parseable actor are rejected.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(ActorHeader))
		if raw == "" {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		actorID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || actorID == 0 {
			response.Error(c, apperrors.NewBadRequest("invalid "+ActorHeader+" header"))
			c.Abort()
			return
		}

		c.Set(CtxActorIDKey, uint(actorID))
		c.Next()
	}
}

// ActorID returns the staff user ID stored by the Actor middleware.
func ActorID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(CtxActorIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
