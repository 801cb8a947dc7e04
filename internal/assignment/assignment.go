// Package assignment turns classroom assignment records into scored tasks
// for a single viewer.
package assignment

import (
	"slices"
	"strings"
	"time"
)

// Assignment is the raw record as stored or imported.
type Assignment struct {
	ID             string   `yaml:"id" json:"id"`
	Title          string   `yaml:"title" json:"title"`
	Subject        string   `yaml:"subject,omitempty" json:"subject,omitempty"`
	Description    string   `yaml:"description,omitempty" json:"description,omitempty"`
	Deadline       string   `yaml:"deadline,omitempty" json:"deadline,omitempty"`
	EffortMinutes  int      `yaml:"effort_minutes,omitempty" json:"effortMinutes,omitempty"`
	Importance     float64  `yaml:"importance,omitempty" json:"importance,omitempty"`
	GradeWeight    float64  `yaml:"grade_weight,omitempty" json:"gradeWeight,omitempty"` // percent of final grade
	Status         string   `yaml:"status,omitempty" json:"status,omitempty"`
	IsGroup        bool     `yaml:"group,omitempty" json:"isGroup,omitempty"`
	SubmissionType string   `yaml:"submission_type,omitempty" json:"submissionType,omitempty"`
	Channel        string   `yaml:"channel,omitempty" json:"channel,omitempty"`
	Formats        []string `yaml:"formats,omitempty" json:"formats,omitempty"`
	ClassCode      string   `yaml:"class_code,omitempty" json:"classCode,omitempty"`
	GradeRoom      string   `yaml:"grade_room,omitempty" json:"gradeRoom,omitempty"`
	CreatedBy      string   `yaml:"created_by,omitempty" json:"createdBy,omitempty"`

	UpdatedAt time.Time `yaml:"-" json:"-"`
}

// Role distinguishes how a viewer relates to assignments.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

// Viewer is the user whose task list is being built.
type Viewer struct {
	ID             string
	Role           Role
	ClassCode      string
	GradeRoom      string
	ManagedClasses []string
}

// Visible reports whether a is shown to v. Students see work aimed at their
// class code or grade room; teachers see classes they manage or created.
func Visible(a Assignment, v Viewer) bool {
	switch v.Role {
	case RoleTeacher:
		if a.CreatedBy != "" && a.CreatedBy == v.ID {
			return true
		}
		return a.ClassCode != "" && slices.ContainsFunc(v.ManagedClasses, func(c string) bool {
			return strings.EqualFold(c, a.ClassCode)
		})
	default:
		if a.ClassCode != "" && strings.EqualFold(a.ClassCode, v.ClassCode) {
			return true
		}
		return a.GradeRoom != "" && strings.EqualFold(a.GradeRoom, v.GradeRoom)
	}
}

// Filter returns the assignments visible to v, preserving order.
func Filter(list []Assignment, v Viewer) []Assignment {
	out := make([]Assignment, 0, len(list))
	for _, a := range list {
		if Visible(a, v) {
			out = append(out, a)
		}
	}
	return out
}
