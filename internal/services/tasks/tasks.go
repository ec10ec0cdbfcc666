package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/UnknownOlympus/plutus/internal/lib/logger/sl"
	"github.com/UnknownOlympus/plutus/internal/metrics"
	"github.com/UnknownOlympus/plutus/internal/models"
	"github.com/UnknownOlympus/plutus/internal/repository"
)

var (
	ErrAgentRequired = fmt.Errorf("%w: agent name is required", models.ErrInvalidInput)
	ErrDateRequired  = fmt.Errorf("%w: date is required", models.ErrInvalidInput)
)

type TaskService struct {
	log     *slog.Logger
	repo    repository.TaskRepoIface
	metrics *metrics.Metrics
}

func NewTaskService(log *slog.Logger, repo repository.TaskRepoIface, metrics *metrics.Metrics) *TaskService {
	return &TaskService{log: log, repo: repo, metrics: metrics}
}

func (ts *TaskService) initLogger(opn string) *slog.Logger {
	return sl.Op(ts.log, "task", opn)
}

func (ts *TaskService) countWrite(result string) {
	if ts.metrics == nil {
		return
	}
	ts.metrics.Writes.WithLabelValues("task", result).Inc()
}

// Validate checks the fields a task cannot be stored without.
// The agent name is checked for content but stored exactly as given.
func Validate(fields models.TaskFields) error {
	if strings.TrimSpace(fields.AgentName) == "" {
		return ErrAgentRequired
	}
	if fields.Date.IsZero() {
		return ErrDateRequired
	}
	return nil
}

// Create validates and stores a new task entry, returning its identifier.
// Validation failures never reach the store.
func (ts *TaskService) Create(ctx context.Context, fields models.TaskFields) (string, error) {
	const opn = "Tasks.Create"
	log := ts.initLogger(opn)

	if err := Validate(fields); err != nil {
		log.DebugContext(ctx, "Rejected task entry", sl.Err(err))
		return "", err
	}
	if fields.TaskType == "" {
		fields.TaskType = models.DefaultTaskType
	}

	taskID, err := ts.repo.CreateTask(ctx, fields)
	if err != nil {
		ts.countWrite("failure")
		log.ErrorContext(ctx, "Failed to save task", "agent", fields.AgentName, sl.Err(err))
		return "", fmt.Errorf("failed to save task for agent '%s': %w", fields.AgentName, err)
	}

	ts.countWrite("success")
	log.InfoContext(ctx, "Task saved", "id", taskID, "agent", fields.AgentName, "date", fields.Date.String())
	return taskID, nil
}

// List returns every stored task.
func (ts *TaskService) List(ctx context.Context) ([]models.Task, error) {
	tasks, err := ts.repo.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}
