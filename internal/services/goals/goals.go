package goals

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/UnknownOlympus/plutus/internal/lib/logger/sl"
	"github.com/UnknownOlympus/plutus/internal/metrics"
	"github.com/UnknownOlympus/plutus/internal/models"
	"github.com/UnknownOlympus/plutus/internal/report"
	"github.com/UnknownOlympus/plutus/internal/repository"
)

var (
	ErrAgentRequired = fmt.Errorf("%w: goals can only be set for a specific agent", models.ErrInvalidInput)
	ErrInvalidTarget = fmt.Errorf("%w: goal targets must be non-negative numbers", models.ErrInvalidInput)
)

type GoalService struct {
	log     *slog.Logger
	repo    repository.GoalRepoIface
	metrics *metrics.Metrics
}

func NewGoalService(log *slog.Logger, repo repository.GoalRepoIface, metrics *metrics.Metrics) *GoalService {
	return &GoalService{log: log, repo: repo, metrics: metrics}
}

func (gs *GoalService) initLogger(opn string) *slog.Logger {
	return sl.Op(gs.log, "goal", opn)
}

func (gs *GoalService) countWrite(result string) {
	if gs.metrics == nil {
		return
	}
	gs.metrics.Writes.WithLabelValues("goal", result).Inc()
}

// Validate rejects the aggregate pseudo-agent and negative or non-finite targets.
func Validate(agentName string, fields models.GoalFields) error {
	if strings.TrimSpace(agentName) == "" || agentName == report.AllAgents {
		return ErrAgentRequired
	}
	for _, target := range []*float64{fields.Calls, fields.SpokeTo, fields.ApptsSet, fields.Hours} {
		if target == nil {
			continue
		}
		if *target < 0 || math.IsNaN(*target) || math.IsInf(*target, 0) {
			return ErrInvalidTarget
		}
	}
	return nil
}

// Save merges fields into the goal document of agentName. Unset fields keep their stored value.
func (gs *GoalService) Save(ctx context.Context, agentName string, fields models.GoalFields) error {
	const opn = "Goals.Save"
	log := gs.initLogger(opn)

	if err := Validate(agentName, fields); err != nil {
		log.DebugContext(ctx, "Rejected goal update", "agent", agentName, sl.Err(err))
		return err
	}

	if err := gs.repo.UpsertGoal(ctx, agentName, fields); err != nil {
		gs.countWrite("failure")
		log.ErrorContext(ctx, "Failed to save goal", "agent", agentName, sl.Err(err))
		return fmt.Errorf("failed to save goals for agent '%s': %w", agentName, err)
	}

	gs.countWrite("success")
	log.InfoContext(ctx, "Goal saved", "agent", agentName)
	return nil
}

// Get returns the goal of agentName, nil if unset.
func (gs *GoalService) Get(ctx context.Context, agentName string) (*models.Goal, error) {
	goal, err := gs.repo.GetGoal(ctx, agentName)
	if err != nil {
		return nil, fmt.Errorf("failed to get goals: %w", err)
	}
	return goal, nil
}
