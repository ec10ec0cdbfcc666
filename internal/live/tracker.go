// Package live keeps a report current while task and goal snapshots stream in.
package live

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/UnknownOlympus/plutus/internal/metrics"
	"github.com/UnknownOlympus/plutus/internal/models"
	"github.com/UnknownOlympus/plutus/internal/report"
)

// Tracker is the state container of one dashboard view (agent and year).
// Every snapshot triggers a full recomputation from the latest task and goal snapshots.
// A result is published only if nothing newer was published in the meantime.
type Tracker struct {
	agent   string
	year    int
	now     func() time.Time
	metrics *metrics.Metrics

	mu        sync.Mutex
	seq       uint64
	published uint64
	tasks     []models.Task
	goal      *models.Goal

	current atomic.Pointer[report.Report]
	updates chan struct{}
}

// NewTracker creates a tracker for agent and year. now defaults to time.Now.
func NewTracker(agent string, year int, now func() time.Time, metrics *metrics.Metrics) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{
		agent:   agent,
		year:    year,
		now:     now,
		metrics: metrics,
		updates: make(chan struct{}, 1),
	}
}

// SetTasks replaces the task snapshot. The slice must not be modified afterwards.
func (t *Tracker) SetTasks(tasks []models.Task) {
	t.mu.Lock()
	t.seq++
	seq := t.seq
	t.tasks = tasks
	goal := t.goal
	t.mu.Unlock()

	t.recompute(seq, tasks, goal)
}

// SetGoal replaces the goal snapshot. nil means the agent has no goals.
func (t *Tracker) SetGoal(goal *models.Goal) {
	t.mu.Lock()
	t.seq++
	seq := t.seq
	t.goal = goal
	tasks := t.tasks
	t.mu.Unlock()

	t.recompute(seq, tasks, goal)
}

// Report returns the latest published report, nil before the first snapshot.
func (t *Tracker) Report() *report.Report {
	return t.current.Load()
}

// Updates signals that a newer report was published. Signals coalesce.
func (t *Tracker) Updates() <-chan struct{} {
	return t.updates
}

func (t *Tracker) recompute(seq uint64, tasks []models.Task, goal *models.Goal) {
	result := report.Build(tasks, t.agent, t.year, goal, t.now())
	if t.metrics != nil {
		t.metrics.Recomputations.Inc()
	}

	if !t.publish(seq, &result) {
		return
	}

	select {
	case t.updates <- struct{}{}:
	default:
	}
}

func (t *Tracker) publish(seq uint64, result *report.Report) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if seq <= t.published {
		return false
	}
	t.published = seq
	t.current.Store(result)
	return true
}
