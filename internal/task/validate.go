package task

import (
	"slices"
	"strings"

	"github.com/twiced-technology-gmbh/planwatch/internal/clierr"
)

// ValidateStatus checks that a status is in the allowed list.
func ValidateStatus(status string, allowed []string) error {
	if slices.Contains(allowed, status) {
		return nil
	}
	return clierr.Newf(clierr.InvalidStatus, "invalid status %q", status).
		WithDetails(map[string]any{
			"status":  status,
			"allowed": allowed,
		})
}

// ValidateConstraintType checks that a constraint type is one of ConstraintTypes.
func ValidateConstraintType(ct string) error {
	if slices.Contains(ConstraintTypes, strings.ToUpper(ct)) {
		return nil
	}
	return clierr.Newf(clierr.InvalidConstraint, "invalid constraint type %q", ct).
		WithDetails(map[string]any{
			"constraint_type": ct,
			"allowed":         ConstraintTypes,
		})
}

// ValidateDuration rejects durations below one working day.
func ValidateDuration(n int) error {
	if n >= 1 {
		return nil
	}
	return clierr.Newf(clierr.InvalidDuration, "duration must be at least 1 day, got %d", n).
		WithDetails(map[string]any{"duration": n})
}

// ValidateDate returns a CLIError for invalid date input.
func ValidateDate(field, input string, err error) *clierr.Error {
	return clierr.Newf(clierr.InvalidDate, "invalid %s date: %v", field, err).
		WithDetails(map[string]any{
			"field": field,
			"input": input,
		})
}

// ValidateWorkingDays returns a CLIError for an unparseable working-day set.
func ValidateWorkingDays(input string, err error) *clierr.Error {
	return clierr.Newf(clierr.InvalidWorkingDays, "invalid working days: %v", err).
		WithDetails(map[string]any{"input": input})
}

// ValidateTaskID returns a CLIError for invalid task ID input.
func ValidateTaskID(input string) *clierr.Error {
	return clierr.Newf(clierr.InvalidTaskID, "invalid task ID %q", input).
		WithDetails(map[string]any{"input": input})
}

// ValidateAmbiguousID returns a CLIError for a prefix matching several tasks.
func ValidateAmbiguousID(ref string, candidates []string) *clierr.Error {
	return clierr.Newf(clierr.AmbiguousTaskID,
		"task ID %q is ambiguous (%d matches)", ref, len(candidates)).
		WithDetails(map[string]any{
			"input":      ref,
			"candidates": candidates,
		})
}

// ValidateSelfReference returns a CLIError for self-referencing dependency.
func ValidateSelfReference(id string) *clierr.Error {
	return clierr.Newf(clierr.SelfReference, "task cannot depend on itself (%s)", ShortID(id)).
		WithDetails(map[string]any{"id": id})
}

// ValidateDependencyNotFound returns a CLIError for missing dependency.
func ValidateDependencyNotFound(depID string) *clierr.Error {
	return clierr.Newf(clierr.DependencyNotFound, "dependency task %s not found", depID).
		WithDetails(map[string]any{"id": depID})
}

// ValidateCycle returns a CLIError describing a dependency cycle.
func ValidateCycle(path []string) *clierr.Error {
	short := make([]string, len(path))
	for i, id := range path {
		short[i] = ShortID(id)
	}
	return clierr.Newf(clierr.DependencyCycle,
		"dependencies form a cycle: %s", strings.Join(short, " -> ")).
		WithDetails(map[string]any{"cycle": path})
}

// ValidateDependencyIDs checks that every dependency exists among tasks and
// none refers back to selfID.
func ValidateDependencyIDs(tasks []*Task, selfID string, ids []string) error {
	known := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		known[t.ID] = true
	}
	for _, depID := range ids {
		if depID == selfID {
			return ValidateSelfReference(depID)
		}
		if !known[depID] {
			return ValidateDependencyNotFound(depID)
		}
	}
	return nil
}

// ValidateNoChanges returns a CLIError for a status move that changes nothing.
func ValidateNoChanges(id, status string) *clierr.Error {
	return clierr.Newf(clierr.NoChanges, "task %s is already %q", ShortID(id), status).
		WithDetails(map[string]any{"id": id, "status": status})
}
