package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/UnknownOlympus/plutus/internal/models"
	"github.com/jackc/pgx/v5"
)

const (
	// Unset fields arrive as NULL and keep the stored value.
	upsertGoalQuery = `
		INSERT INTO goals (agent_name, calls, spoke_to, appts_set, hours)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (agent_name) DO UPDATE SET
			calls = COALESCE(EXCLUDED.calls, goals.calls),
			spoke_to = COALESCE(EXCLUDED.spoke_to, goals.spoke_to),
			appts_set = COALESCE(EXCLUDED.appts_set, goals.appts_set),
			hours = COALESCE(EXCLUDED.hours, goals.hours),
			updated_at = CURRENT_TIMESTAMP;`
	getGoalQuery = `
		SELECT agent_name, calls, spoke_to, appts_set, hours, updated_at
		FROM goals
		WHERE agent_name = $1;`
)

// UpsertGoal creates the goal document of agentName or merges fields into it.
func (r *Repository) UpsertGoal(ctx context.Context, agentName string, fields models.GoalFields) error {
	defer r.observe("upsert_goal", time.Now())

	_, err := r.db.Exec(ctx, upsertGoalQuery,
		agentName, fields.Calls, fields.SpokeTo, fields.ApptsSet, fields.Hours)
	if err != nil {
		return fmt.Errorf("failed to upsert goal for agent '%s': %w", agentName, err)
	}

	return nil
}

// GetGoal returns the goal of agentName, or nil when the agent has none.
func (r *Repository) GetGoal(ctx context.Context, agentName string) (*models.Goal, error) {
	defer r.observe("get_goal", time.Now())

	var goal models.Goal
	err := r.db.QueryRow(ctx, getGoalQuery, agentName).Scan(
		&goal.AgentName, &goal.Calls, &goal.SpokeTo, &goal.ApptsSet, &goal.Hours, &goal.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil //nolint:nilnil // absent goal is not an error
		}
		return nil, fmt.Errorf("failed to get goal for agent '%s': %w", agentName, err)
	}

	return &goal, nil
}
