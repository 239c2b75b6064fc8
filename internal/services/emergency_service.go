package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/clinicore/clinicore/internal/models"
	"github.com/clinicore/clinicore/internal/permissions"
	"github.com/clinicore/clinicore/pkg/logger"
	"github.com/clinicore/clinicore/pkg/metrics"
)

// MinJustificationLength is the floor for break-the-glass justifications. It
// is a basic anti-abuse check, not a content-quality check.
const MinJustificationLength = 10

// EmergencyService validates and records break-the-glass overrides. It never
// unlocks a resource itself: the calling domain code is expected to honor the
// returned approval before proceeding.
type EmergencyService struct {
	access *AccessService
	audit  *AuditService
	log    *zap.Logger

	minJustification int
}

// NewEmergencyService constructs an EmergencyService. minJustification
// values below 1 fall back to the default floor.
func NewEmergencyService(access *AccessService, audit *AuditService, minJustification int) (*EmergencyService, error) {
	if access == nil {
		return nil, errors.New("emergency service: access service is required")
	}
	if audit == nil {
		// The audit record is the product here; without a sink the override
		// path must not exist at all.
		return nil, errors.New("emergency service: audit service is required")
	}
	if minJustification < 1 {
		minJustification = MinJustificationLength
	}
	return &EmergencyService{
		access:           access,
		audit:            audit,
		log:              logger.WithComponent("emergency"),
		minJustification: minJustification,
	}, nil
}

// RequestEmergencyAccess approves and records an emergency override for the
// target patient. It returns false when the justification is too short or
// the actor lacks the emergency-access permission. On approval the audit
// record is written before the result is returned; a failed audit write
// fails the request, because an unrecorded override is worse than a refused
// one.
func (s *EmergencyService) RequestEmergencyAccess(ctx context.Context, actorID uint, targetPatientID uint, justification string) (bool, error) {
	ctx = ensureContext(ctx)

	justification = strings.TrimSpace(justification)
	if len(justification) < s.minJustification {
		metrics.EmergencyAccessRequests.WithLabelValues("rejected").Inc()
		s.log.Warn("emergency access rejected: justification too short",
			zap.Uint("actor_id", actorID),
			zap.Uint("target_patient_id", targetPatientID),
		)
		recordAudit(s.audit, ctx, AuditEvent{
			EventType:    "emergency.rejected",
			Category:     models.AuditCategoryValidation,
			Action:       "request_emergency_access",
			ResourceType: "PATIENT",
			ResourceID:   fmt.Sprint(targetPatientID),
			ActorID:      &actorID,
			Success:      false,
			Reason:       fmt.Sprintf("justification shorter than %d characters", s.minJustification),
		})
		return false, nil
	}

	holds, err := s.access.HasPermission(ctx, actorID, permissions.CodeEmergencyAccess)
	if err != nil {
		metrics.EmergencyAccessRequests.WithLabelValues("rejected").Inc()
		return false, err
	}
	if !holds {
		metrics.EmergencyAccessRequests.WithLabelValues("rejected").Inc()
		recordAudit(s.audit, ctx, AuditEvent{
			EventType:    "emergency.rejected",
			Category:     models.AuditCategoryAuthorizationFailure,
			Action:       "request_emergency_access",
			ResourceType: "PATIENT",
			ResourceID:   fmt.Sprint(targetPatientID),
			ActorID:      &actorID,
			Success:      false,
			Reason:       "actor does not hold " + permissions.CodeEmergencyAccess,
		})
		return false, nil
	}

	// The justification text travels verbatim into the permanent record.
	if err := s.audit.Log(ctx, AuditEvent{
		EventType:    "emergency.granted",
		Category:     models.AuditCategoryEmergencyAccess,
		Action:       "request_emergency_access",
		ResourceType: "PATIENT",
		ResourceID:   fmt.Sprint(targetPatientID),
		ActorID:      &actorID,
		Success:      true,
		NewValue:     map[string]any{"justification": justification},
	}); err != nil {
		metrics.DroppedAuditWrites.Inc()
		s.log.Error("emergency access audit write failed; refusing override",
			zap.Uint("actor_id", actorID),
			zap.Uint("target_patient_id", targetPatientID),
			zap.Error(err),
		)
		return false, fmt.Errorf("emergency service: record override: %w", err)
	}

	metrics.EmergencyAccessRequests.WithLabelValues("granted").Inc()
	s.log.Warn("emergency access granted",
		zap.Uint("actor_id", actorID),
		zap.Uint("target_patient_id", targetPatientID),
	)

	return true, nil
}
