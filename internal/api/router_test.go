package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/clinicore/internal/app"
	"github.com/clinicore/clinicore/internal/database/testutil"
	"github.com/clinicore/clinicore/internal/middleware"
	"github.com/clinicore/clinicore/internal/models"
	"github.com/clinicore/clinicore/internal/permissions"
)

func testConfig() *app.Config {
	cfg := &app.Config{}
	cfg.Monitoring.Health.Enabled = true
	cfg.Monitoring.Prometheus.Enabled = true
	cfg.Monitoring.Prometheus.Endpoint = "/metrics"
	cfg.Emergency.MinJustificationLength = 10
	return cfg
}

func TestNewRouterValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)

	_, err := NewRouter(nil, testConfig(), nil)
	require.Error(t, err)

	db := testutil.MustOpenTestDB(t, testutil.WithCatalog())
	_, err = NewRouter(db, nil, nil)
	require.Error(t, err)
}

func TestRouterHealthAndMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithCatalog())
	router, err := NewRouter(db, testConfig(), nil)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"status":"ok"`)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/metrics", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRouterEndToEndAccessCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithCatalog())
	router, err := NewRouter(db, testConfig(), nil)
	require.NoError(t, err)

	admin := &models.StaffUser{Username: "api.admin", IsActive: true}
	require.NoError(t, db.Create(admin).Error)

	var adminPerm models.Permission
	require.NoError(t, db.First(&adminPerm, "code = ?", permissions.CodeSystemAdmin).Error)

	role := &models.Role{
		Name:        "API Admin",
		RoleType:    models.RoleTypeCustom,
		IsActive:    true,
		Permissions: []models.Permission{adminPerm},
	}
	require.NoError(t, db.Create(role).Error)
	require.NoError(t, db.Create(&models.UserRole{StaffUserID: admin.ID, RoleID: role.ID}).Error)

	// Unauthenticated requests never reach the engine.
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/roles", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/api/roles", nil)
	req.Header.Set(middleware.ActorHeader, fmt.Sprint(admin.ID))
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	body := `{"resource_type":"patient","action":"view","attributes":{}}`
	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodPost, "/api/access/check", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.ActorHeader, fmt.Sprint(admin.ID))
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"allowed":true`)
}
