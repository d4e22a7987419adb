package store

import (
	"errors"
	"fmt"
)

// ConstraintError reports that an operation was refused because completing it
// would violate a data integrity rule, such as deleting a user who still has
// authored pages or posts. It is a refusal, not a store failure; callers
// branch on it with errors.As or IsConstraint.
type ConstraintError struct {
	// Entity is the kind of record the operation targeted.
	Entity string
	// Constraint names the rule that blocked the operation.
	Constraint string
	// Detail is a human-readable elaboration, safe to show an admin.
	Detail string
}

func (e *ConstraintError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: constraint %s violated", e.Entity, e.Constraint)
	}
	return fmt.Sprintf("%s: constraint %s violated: %s", e.Entity, e.Constraint, e.Detail)
}

// IsConstraint reports whether err is (or wraps) a ConstraintError.
func IsConstraint(err error) bool {
	var ce *ConstraintError
	return errors.As(err, &ce)
}

// MigrationError reports a failed schema migration step. The engine stops at
// the first failing step and leaves the stored version marker at the last
// version that completed, so a re-run resumes at the failed step.
type MigrationError struct {
	// From and To bound the step that failed.
	From, To string
	// Err is the underlying store error.
	Err error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("migrating %s to %s: %v", e.From, e.To, e.Err)
}

func (e *MigrationError) Unwrap() error { return e.Err }
