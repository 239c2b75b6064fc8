package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/clinicore/clinicore/internal/app"
	"github.com/clinicore/clinicore/internal/cache"
	"github.com/clinicore/clinicore/internal/handlers"
	"github.com/clinicore/clinicore/internal/middleware"
	"github.com/clinicore/clinicore/internal/services"
)

// NewRouter builds the Gin engine, wires middleware and registers all routes.
// Every protected route sits behind the actor middleware; authorization for
// administrative surfaces goes through the decision engine itself.
func NewRouter(db *gorm.DB, cfg *app.Config, store cache.Store) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	svcs, err := buildServices(db, cfg, store)
	if err != nil {
		return nil, err
	}

	r := gin.New()

	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())

	// Public operational endpoints
	if cfg.Monitoring.Health.Enabled {
		r.GET("/health", handlers.Health(db))
	}
	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	api := r.Group("/api")
	api.Use(middleware.Actor())

	registerRoleRoutes(api, svcs)
	registerCatalogRoutes(api, svcs)
	registerStaffRoutes(api, svcs)
	registerAccessRoutes(api, svcs)
	registerRuleRoutes(api, svcs)
	registerAuditRoutes(api, svcs)

	return r, nil
}

// serviceSet bundles the engine services built once per router.
type serviceSet struct {
	access      *services.AccessService
	audit       *services.AuditService
	catalog     *services.CatalogService
	roles       *services.RoleService
	assignments *services.AssignmentService
	rules       *services.RuleService
	emergency   *services.EmergencyService
	matrix      *services.MatrixService
}

func buildServices(db *gorm.DB, cfg *app.Config, store cache.Store) (*serviceSet, error) {
	if store == nil {
		store = cache.NewMemoryStore()
	}

	resolver, err := services.NewResolver(db, store, cfg.Cache.PermissionTTL)
	if err != nil {
		return nil, fmt.Errorf("initialise resolver: %w", err)
	}

	audit, err := services.NewAuditService(db)
	if err != nil {
		return nil, fmt.Errorf("initialise audit service: %w", err)
	}

	access, err := services.NewAccessService(db, resolver, audit)
	if err != nil {
		return nil, fmt.Errorf("initialise access service: %w", err)
	}

	catalog, err := services.NewCatalogService(db)
	if err != nil {
		return nil, fmt.Errorf("initialise catalog service: %w", err)
	}

	roles, err := services.NewRoleService(db, audit, resolver)
	if err != nil {
		return nil, fmt.Errorf("initialise role service: %w", err)
	}

	assignments, err := services.NewAssignmentService(db, audit, resolver)
	if err != nil {
		return nil, fmt.Errorf("initialise assignment service: %w", err)
	}

	rules, err := services.NewRuleService(db, audit, resolver)
	if err != nil {
		return nil, fmt.Errorf("initialise rule service: %w", err)
	}

	emergency, err := services.NewEmergencyService(access, audit, cfg.Emergency.MinJustificationLength)
	if err != nil {
		return nil, fmt.Errorf("initialise emergency service: %w", err)
	}

	matrix, err := services.NewMatrixService(db, audit, resolver)
	if err != nil {
		return nil, fmt.Errorf("initialise matrix service: %w", err)
	}

	return &serviceSet{
		access:      access,
		audit:       audit,
		catalog:     catalog,
		roles:       roles,
		assignments: assignments,
		rules:       rules,
		emergency:   emergency,
		matrix:      matrix,
	}, nil
}
