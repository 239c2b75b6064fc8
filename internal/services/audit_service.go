package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/clinicore/clinicore/internal/models"
)

// AuditEvent captures a single audit event to persist.
type AuditEvent struct {
	EventType    string
	Category     models.AuditCategory
	Action       string
	ResourceType string
	ResourceID   string
	ActorID      *uint
	OldValue     map[string]any
	NewValue     map[string]any
	Success      bool
	Reason       string
}

// AuditFilters encapsulates optional filters when querying audit logs.
type AuditFilters struct {
	ActorID      *uint
	Category     models.AuditCategory
	EventType    string
	ResourceType string
	Since        *time.Time
	Until        *time.Time
}

// AuditListOptions controls pagination and filtering for audit queries.
type AuditListOptions struct {
	Page     int
	PageSize int
	Filters  AuditFilters
}

// AuditService persists and retrieves audit log entries. It is write-only from
// the decision engine's perspective; the read paths exist for the compliance
// surface.
type AuditService struct {
	db *gorm.DB
}

// NewAuditService constructs an AuditService using the provided database handle.
func NewAuditService(db *gorm.DB) (*AuditService, error) {
	if db == nil {
		return nil, errors.New("audit service: db is required")
	}
	return &AuditService{db: db}, nil
}

// Log stores an audit event, marshalling old/new values into JSON form.
func (s *AuditService) Log(ctx context.Context, event AuditEvent) error {
	ctx = ensureContext(ctx)

	if strings.TrimSpace(event.EventType) == "" {
		return errors.New("audit service: event type is required")
	}
	if strings.TrimSpace(event.Action) == "" {
		return errors.New("audit service: action is required")
	}
	if event.Category == "" {
		return errors.New("audit service: category is required")
	}

	record := models.AuditLog{
		EventType:    strings.TrimSpace(event.EventType),
		Category:     event.Category,
		Action:       strings.TrimSpace(event.Action),
		ResourceType: strings.TrimSpace(event.ResourceType),
		ResourceID:   strings.TrimSpace(event.ResourceID),
		ActorID:      event.ActorID,
		Success:      event.Success,
		Reason:       strings.TrimSpace(event.Reason),
	}

	if event.OldValue != nil {
		encoded, err := json.Marshal(event.OldValue)
		if err != nil {
			return fmt.Errorf("audit service: marshal old value: %w", err)
		}
		record.OldValue = encoded
	}
	if event.NewValue != nil {
		encoded, err := json.Marshal(event.NewValue)
		if err != nil {
			return fmt.Errorf("audit service: marshal new value: %w", err)
		}
		record.NewValue = encoded
	}

	return s.db.WithContext(ctx).Create(&record).Error
}

// List returns paginated audit logs ordered by creation time descending.
func (s *AuditService) List(ctx context.Context, opts AuditListOptions) ([]models.AuditLog, int64, error) {
	ctx = ensureContext(ctx)

	page := opts.Page
	if page <= 0 {
		page = 1
	}
	perPage := opts.PageSize
	if perPage <= 0 || perPage > 200 {
		perPage = 50
	}

	var (
		results []models.AuditLog
		total   int64
	)

	query := s.db.WithContext(ctx).Model(&models.AuditLog{})
	query = applyAuditFilters(query, opts.Filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("audit service: count logs: %w", err)
	}

	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&results).Error; err != nil {
		return nil, 0, fmt.Errorf("audit service: list logs: %w", err)
	}

	return results, total, nil
}

// Export returns audit logs that match the provided filters without pagination.
func (s *AuditService) Export(ctx context.Context, filters AuditFilters) ([]models.AuditLog, error) {
	ctx = ensureContext(ctx)

	var logs []models.AuditLog
	query := s.db.WithContext(ctx).Model(&models.AuditLog{})
	query = applyAuditFilters(query, filters)

	if err := query.Order("created_at DESC").Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("audit service: export logs: %w", err)
	}

	return logs, nil
}

// CleanupOlderThan removes audit logs older than the supplied retention window (in days).
func (s *AuditService) CleanupOlderThan(ctx context.Context, retentionDays int) (int64, error) {
	ctx = ensureContext(ctx)

	if retentionDays <= 0 {
		return 0, errors.New("audit service: retentionDays must be positive")
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	result := s.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.AuditLog{})
	if result.Error != nil {
		return 0, fmt.Errorf("audit service: cleanup logs: %w", result.Error)
	}

	return result.RowsAffected, nil
}

func applyAuditFilters(query *gorm.DB, filters AuditFilters) *gorm.DB {
	if filters.ActorID != nil {
		query = query.Where("actor_id = ?", *filters.ActorID)
	}
	if filters.Category != "" {
		query = query.Where("category = ?", filters.Category)
	}
	if filters.EventType != "" {
		query = query.Where("event_type = ?", filters.EventType)
	}
	if filters.ResourceType != "" {
		query = query.Where("resource_type = ?", filters.ResourceType)
	}
	if filters.Since != nil {
		query = query.Where("created_at >= ?", *filters.Since)
	}
	if filters.Until != nil {
		query = query.Where("created_at <= ?", *filters.Until)
	}
	return query
}
