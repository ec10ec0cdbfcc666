package repository

import (
	"context"
	"time"

	"github.com/UnknownOlympus/plutus/internal/metrics"
	"github.com/UnknownOlympus/plutus/internal/models"
)

// Repository implements the task and goal stores on top of Database.
type Repository struct {
	db      Database
	metrics *metrics.Metrics
}

// TaskRepoIface is the append-only task store.
type TaskRepoIface interface {
	CreateTask(ctx context.Context, fields models.TaskFields) (string, error)
	ListTasks(ctx context.Context) ([]models.Task, error)
}

// GoalRepoIface is the per-agent goal store.
type GoalRepoIface interface {
	UpsertGoal(ctx context.Context, agentName string, fields models.GoalFields) error
	GetGoal(ctx context.Context, agentName string) (*models.Goal, error)
}

func NewTaskRepository(db Database, metrics *metrics.Metrics) TaskRepoIface {
	return &Repository{db: db, metrics: metrics}
}

func NewGoalRepository(db Database, metrics *metrics.Metrics) GoalRepoIface {
	return &Repository{db: db, metrics: metrics}
}

// observe records the duration of a query started at startTime.
func (r *Repository) observe(queryType string, startTime time.Time) {
	if r.metrics == nil {
		return
	}
	r.metrics.DBQueryDuration.WithLabelValues(queryType).Observe(time.Since(startTime).Seconds())
}
