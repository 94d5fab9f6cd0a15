// Package task handles task files and their frontmatter.
package task

import (
	"slices"
	"time"

	"github.com/twiced-technology-gmbh/planwatch/internal/date"
)

// Constraint types recognised on ConstraintDate. The scheduler treats all of
// them as a hard lower bound on the start date.
const (
	ConstraintSNET = "SNET" // start no earlier than
	ConstraintASAP = "ASAP"
	ConstraintMSO  = "MSO" // must start on
)

// ConstraintTypes lists the accepted constraint type values.
var ConstraintTypes = []string{ConstraintSNET, ConstraintASAP, ConstraintMSO}

// Task represents a scheduled project task parsed from a markdown file.
type Task struct {
	ID                string        `yaml:"id" json:"id"`
	Title             string        `yaml:"title" json:"title"`
	Status            string        `yaml:"status" json:"status"`
	Assignees         []string      `yaml:"assignees,omitempty" json:"assignees,omitempty"`
	EstimatedDuration int           `yaml:"estimated_duration" json:"estimated_duration"`
	ConstraintDate    date.Date     `yaml:"constraint_date,omitempty" json:"constraint_date,omitzero"`
	ConstraintType    string        `yaml:"constraint_type,omitempty" json:"constraint_type,omitempty"`
	WorkingDays       date.Weekdays `yaml:"working_days,omitempty" json:"working_days,omitzero"`
	Dependencies      []string      `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
	Start             date.Date     `yaml:"start" json:"start"`
	End               date.Date     `yaml:"end" json:"end"`

	IsDelayedByDependencies bool `yaml:"delayed_by_dependencies,omitempty" json:"delayed_by_dependencies"`

	Completed        bool      `yaml:"completed,omitempty" json:"completed"`
	OriginalEnd      date.Date `yaml:"original_end,omitempty" json:"original_end,omitzero"`
	OriginalDuration *int      `yaml:"original_duration,omitempty" json:"original_duration,omitempty"`

	Created time.Time `yaml:"created" json:"created"`
	Updated time.Time `yaml:"updated" json:"updated"`

	// Body is the markdown content below the frontmatter (not in YAML).
	Body string `yaml:"-" json:"body,omitempty"`

	// File is the path to the task file (not in YAML).
	File string `yaml:"-" json:"file,omitempty"`
}

// HasConstraint reports whether the task carries a constraint date.
func (t *Task) HasConstraint() bool {
	return !t.ConstraintDate.IsZero()
}

// DependsOn reports whether id is among the task's dependencies.
func (t *Task) DependsOn(id string) bool {
	return slices.Contains(t.Dependencies, id)
}

// Clone returns a deep copy of t.
func (t *Task) Clone() *Task {
	c := *t
	c.Assignees = slices.Clone(t.Assignees)
	c.Dependencies = slices.Clone(t.Dependencies)
	c.WorkingDays = t.WorkingDays.Clone()
	if t.OriginalDuration != nil {
		d := *t.OriginalDuration
		c.OriginalDuration = &d
	}
	return &c
}

// ShortID returns the first eight characters of the id, used in listings
// and file names.
func (t *Task) ShortID() string {
	return ShortID(t.ID)
}

// ShortID truncates id to its display prefix.
func ShortID(id string) string {
	const n = 8
	if len(id) <= n {
		return id
	}
	return id[:n]
}
