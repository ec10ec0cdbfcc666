package models

import (
	"errors"
	"time"
)

// ErrInvalidInput marks errors caused by user input rather than the store.
var ErrInvalidInput = errors.New("invalid input")

// GoalFields holds annual targets. A nil target is unset and counts as 0.
type GoalFields struct {
	Calls    *float64 `json:"calls,omitempty"`
	SpokeTo  *float64 `json:"spokeTo,omitempty"`
	ApptsSet *float64 `json:"apptsSet,omitempty"`
	Hours    *float64 `json:"hours,omitempty"`
}

// Goal is the goal document of a single agent.
type Goal struct {
	AgentName string `json:"agentName"`
	GoalFields
	UpdatedAt time.Time `json:"updatedAt"`
}

// Value dereferences an optional target.
func Value(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// Empty reports whether no target is supplied.
func (g GoalFields) Empty() bool {
	return g.Calls == nil && g.SpokeTo == nil && g.ApptsSet == nil && g.Hours == nil
}
