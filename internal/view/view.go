// Package view models which screen is active as an explicit state value.
package view

import (
	"errors"
	"sync"

	"github.com/UnknownOlympus/plutus/internal/models"
	"github.com/UnknownOlympus/plutus/internal/report"
)

// Screen is one of the application screens.
type Screen int

const (
	Dashboard Screen = iota
	TaskForm
	GoalForm
	TaskDetail
)

// ErrSubmitPending is returned when a form is submitted again before the first write resolved.
var ErrSubmitPending = errors.New("submission already in progress")

// WarningNoAgent is shown when goals are requested for the aggregate view.
const WarningNoAgent = "Select a specific agent before setting goals."

func (s Screen) String() string {
	switch s {
	case Dashboard:
		return "dashboard"
	case TaskForm:
		return "task-entry-form"
	case GoalForm:
		return "goal-entry-form"
	case TaskDetail:
		return "task-detail"
	default:
		return "unknown"
	}
}

// State is the complete view state. Transitions return a new value.
type State struct {
	Screen     Screen
	Agent      string
	SelectedID string
	Warning    string
	Err        string
	Pending    bool
}

// Back returns to the dashboard, keeping the agent filter.
func (s State) Back() State {
	return State{Screen: Dashboard, Agent: s.Agent}
}

// AddTask opens the task entry form from the dashboard.
func (s State) AddTask() State {
	if s.Screen != Dashboard {
		return s
	}
	return State{Screen: TaskForm, Agent: s.Agent}
}

// SetGoals opens the goal form for the selected agent. With no concrete agent the
// state is unchanged apart from a warning.
func (s State) SetGoals() State {
	if s.Screen != Dashboard {
		return s
	}
	if s.Agent == "" || s.Agent == report.AllAgents {
		s.Warning = WarningNoAgent
		return s
	}
	return State{Screen: GoalForm, Agent: s.Agent}
}

// SelectTask opens the detail screen for id and looks it up in the loaded tasks.
// The returned task is nil when id is unknown; the detail screen then shows a placeholder.
func (s State) SelectTask(id string, tasks []models.Task) (State, *models.Task) {
	if s.Screen != Dashboard {
		return s, nil
	}
	next := State{Screen: TaskDetail, Agent: s.Agent, SelectedID: id}
	for i := range tasks {
		if tasks[i].ID == id {
			found := tasks[i]
			return next, &found
		}
	}
	return next, nil
}

// BeginSubmit marks a form submission as in flight.
func (s State) BeginSubmit() (State, error) {
	if s.Pending {
		return s, ErrSubmitPending
	}
	s.Pending = true
	s.Err = ""
	return s, nil
}

// FinishSubmit resolves a submission: success returns to the dashboard, failure keeps
// the form open with the error.
func (s State) FinishSubmit(err error) State {
	if err == nil {
		return s.Back()
	}
	s.Pending = false
	s.Err = err.Error()
	return s
}

// Submissions tracks form tokens whose writes are still outstanding.
type Submissions struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewSubmissions initializes an empty token set.
func NewSubmissions() *Submissions {
	return &Submissions{inFlight: make(map[string]struct{})}
}

// Begin claims token. It returns ErrSubmitPending while the token is already claimed.
// An empty token is never tracked.
func (s *Submissions) Begin(token string) error {
	if token == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.inFlight[token]; ok {
		return ErrSubmitPending
	}
	s.inFlight[token] = struct{}{}
	return nil
}

// End releases token.
func (s *Submissions) End(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, token)
}
