package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/clinicore/internal/cache"
	"github.com/clinicore/clinicore/internal/database/testutil"
	"github.com/clinicore/clinicore/internal/models"
	"github.com/clinicore/clinicore/internal/services"
)

func TestRequirePermissionWithoutActor(t *testing.T) {
	gin.SetMode(gin.TestMode)

	access := newTestAccessService(t)

	r := gin.New()
	r.GET("/secure", RequirePermission(access, "ROLE_VIEW"), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/secure", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequirePermissionEnforced(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithCatalog())
	resolver, err := services.NewResolver(db, cache.NewMemoryStore(), 0)
	require.NoError(t, err)
	access, err := services.NewAccessService(db, resolver, nil)
	require.NoError(t, err)
	roles, err := services.NewRoleService(db, nil, resolver)
	require.NoError(t, err)
	assignments, err := services.NewAssignmentService(db, nil, resolver)
	require.NoError(t, err)

	actor := &models.StaffUser{Username: "mw.viewer", IsActive: true}
	require.NoError(t, db.Create(actor).Error)

	role, err := roles.Create(context.Background(), services.CreateRoleInput{
		Name:            "Viewer",
		PermissionCodes: []string{"ROLE_VIEW"},
	})
	require.NoError(t, err)
	require.NoError(t, assignments.AssignRoles(context.Background(), services.AssignRolesInput{
		ActorID: actor.ID,
		RoleIDs: []uint{role.ID},
	}))

	r := gin.New()
	r.Use(Actor())
	r.GET("/secure", RequirePermission(access, "ROLE_VIEW"), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/locked", RequirePermission(access, "ROLE_MANAGE"), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set(ActorHeader, fmt.Sprint(actor.ID))
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/locked", nil)
	req.Header.Set(ActorHeader, fmt.Sprint(actor.ID))
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func newTestAccessService(t *testing.T) *services.AccessService {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithCatalog())
	resolver, err := services.NewResolver(db, cache.NewMemoryStore(), 0)
	require.NoError(t, err)
	access, err := services.NewAccessService(db, resolver, nil)
	require.NoError(t, err)
	return access
}
