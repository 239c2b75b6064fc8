package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/clinicore/clinicore/pkg/logger"
	"github.com/clinicore/clinicore/pkg/metrics"
)

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func normaliseCodes(values []string) []string {
	if len(values) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(values))
	var out []string
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, exists := seen[value]; exists {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}

func containsCode(values []string, target string) bool {
	target = strings.TrimSpace(target)
	if target == "" {
		return false
	}
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}

func uniqueIDs(values []uint) []uint {
	if len(values) == 0 {
		return nil
	}

	seen := make(map[uint]struct{}, len(values))
	var out []uint
	for _, value := range values {
		if _, exists := seen[value]; exists {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}

// recordAudit persists the entry and escalates failures instead of absorbing
// them: an audit write that fails on a denial or override path is itself a
// security event, so it is logged at error level and counted.
func recordAudit(audit *AuditService, ctx context.Context, event AuditEvent) {
	if audit == nil {
		return
	}
	if err := audit.Log(ctx, event); err != nil {
		metrics.DroppedAuditWrites.Inc()
		logger.Error("audit write failed",
			zap.String("event_type", event.EventType),
			zap.String("category", string(event.Category)),
			zap.Error(err),
		)
	}
}
