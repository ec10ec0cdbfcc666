package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/UnknownOlympus/plutus/internal/models"
	"github.com/google/uuid"
)

const (
	insertTaskQuery = `
		INSERT INTO tasks (id, date, agent_name, task_type, counters)
		VALUES ($1, $2, $3, $4, $5);`
	listTasksQuery = `
		SELECT id, date, agent_name, task_type, counters, created_at
		FROM tasks
		ORDER BY date DESC, created_at DESC;`
)

// CreateTask stores a new task entry. The identifier and creation time are assigned here
// and by the database respectively.
func (r *Repository) CreateTask(ctx context.Context, fields models.TaskFields) (string, error) {
	defer r.observe("create_task", time.Now())

	counters, err := json.Marshal(fields.Counters)
	if err != nil {
		return "", fmt.Errorf("failed to encode task counters: %w", err)
	}

	taskID := uuid.NewString()
	_, err = r.db.Exec(ctx, insertTaskQuery, taskID, fields.Date.Time, fields.AgentName, fields.TaskType, counters)
	if err != nil {
		return "", fmt.Errorf("failed to insert new task for agent '%s': %w", fields.AgentName, err)
	}

	return taskID, nil
}

// ListTasks returns every task, newest date first.
func (r *Repository) ListTasks(ctx context.Context) ([]models.Task, error) {
	defer r.observe("list_tasks", time.Now())

	rows, err := r.db.Query(ctx, listTasksQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]models.Task, 0)
	for rows.Next() {
		var (
			task     models.Task
			date     time.Time
			counters []byte
		)
		if err = rows.Scan(&task.ID, &date, &task.AgentName, &task.TaskType, &counters, &task.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		task.Date = models.NewDay(date)
		if len(counters) > 0 {
			// counter decoding is tolerant, only a broken document fails here
			if err = json.Unmarshal(counters, &task.Counters); err != nil {
				return nil, fmt.Errorf("failed to decode counters of task '%s': %w", task.ID, err)
			}
		}
		tasks = append(tasks, task)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate task rows: %w", err)
	}

	return tasks, nil
}
