package services

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	apperrors "github.com/clinicore/clinicore/pkg/errors"
)

var (
	// ErrRoleNotFound indicates the requested role does not exist.
	ErrRoleNotFound = apperrors.NewNotFound("Role not found")
	// ErrActorNotFound indicates the referenced staff user does not exist.
	ErrActorNotFound = apperrors.NewNotFound("Staff user not found")
	// ErrRuleNotFound indicates the requested data-access rule does not exist.
	ErrRuleNotFound = apperrors.NewNotFound("Data access rule not found")
	// ErrPermissionNotFound indicates a referenced catalog permission does not exist.
	ErrPermissionNotFound = apperrors.NewNotFound("Permission not found")
	// ErrSystemRoleImmutable rejects mutation or deletion of system roles.
	ErrSystemRoleImmutable = apperrors.NewInvariantViolation("System roles cannot be modified or deleted")
	// ErrRoleInUse blocks deletion of a role that still has live assignments.
	ErrRoleInUse = apperrors.NewInvariantViolation("Role is assigned to one or more staff users and cannot be deleted")
	// ErrDuplicateRoleName rejects a role name already used within the same scope.
	ErrDuplicateRoleName = apperrors.NewValidationFailure("Role name already exists in this scope")
)

// isUniqueConstraintError detects database uniqueness constraint violations across vendors.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr != nil && pgErr.Code == "23505" {
		return true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr != nil && myErr.Number == 1062 {
		return true
	}

	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "unique") ||
		strings.Contains(lower, "duplicate") ||
		strings.Contains(lower, "constraint")
}
