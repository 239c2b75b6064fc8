package permissions

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Definition describes a permission known to the engine. Definitions are
// compiled in, registered at package initialisation, and synced to the
// database catalog on start-up.
type Definition struct {
	Code         string
	Name         string
	Category     string
	ResourceType string
	Sensitive    bool
	System       bool
}

// Well-known codes with engine-level meaning.
const (
	// CodeSystemAdmin unconditionally satisfies every access check.
	CodeSystemAdmin = "SYSTEM_ADMIN"
	// CodeEmergencyAccess gates the break-the-glass override path.
	CodeEmergencyAccess = "EMERGENCY_ACCESS"
)

type definitionRegistry struct {
	mu          sync.RWMutex
	definitions map[string]*Definition
}

var globalRegistry = &definitionRegistry{
	definitions: make(map[string]*Definition),
}

var (
	errNilDefinition = errors.New("permission: nil definition")
	errEmptyCode     = errors.New("permission: code is required")
	errDuplicateCode = errors.New("permission: already registered")
)

// CodeFor derives the conventional permission code for a resource/action pair,
// e.g. ("patient", "view") -> "PATIENT_VIEW".
func CodeFor(resourceType, action string) string {
	return strings.ToUpper(strings.TrimSpace(resourceType)) + "_" + strings.ToUpper(strings.TrimSpace(action))
}

// Register adds a permission definition to the global registry.
func Register(def *Definition) error {
	if def == nil {
		return errNilDefinition
	}

	code := strings.TrimSpace(def.Code)
	if code == "" {
		return errEmptyCode
	}

	cp := *def
	cp.Code = code
	cp.Category = strings.TrimSpace(cp.Category)
	cp.ResourceType = strings.TrimSpace(cp.ResourceType)

	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()

	if _, exists := globalRegistry.definitions[code]; exists {
		return fmt.Errorf("%w: %s", errDuplicateCode, code)
	}

	globalRegistry.definitions[code] = &cp
	return nil
}

// Get returns a copy of the definition when registered.
func Get(code string) (*Definition, bool) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	def, ok := globalRegistry.definitions[code]
	if !ok {
		return nil, false
	}
	cp := *def
	return &cp, true
}

// GetAll returns a copy of every registered definition keyed by code.
func GetAll() map[string]*Definition {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	out := make(map[string]*Definition, len(globalRegistry.definitions))
	for code, def := range globalRegistry.definitions {
		cp := *def
		out[code] = &cp
	}
	return out
}

// GetByCategory gathers definitions registered under the specified category,
// ordered by code for stable output.
func GetByCategory(category string) []*Definition {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	category = strings.TrimSpace(category)
	var defs []*Definition
	for _, def := range globalRegistry.definitions {
		if def.Category == category {
			cp := *def
			defs = append(defs, &cp)
		}
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Code < defs[j].Code })
	return defs
}

// Categories returns the distinct catalog categories in sorted order.
func Categories() []string {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	seen := make(map[string]struct{})
	var out []string
	for _, def := range globalRegistry.definitions {
		if _, ok := seen[def.Category]; ok {
			continue
		}
		seen[def.Category] = struct{}{}
		out = append(out, def.Category)
	}
	sort.Strings(out)
	return out
}

// reset clears registry entries. Intended for testing only.
func reset() {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.definitions = make(map[string]*Definition)
}
