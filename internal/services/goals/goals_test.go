package goals_test

import (
	"log/slog"
	"math"
	"os"
	"testing"

	"github.com/UnknownOlympus/plutus/internal/metrics"
	"github.com/UnknownOlympus/plutus/internal/models"
	"github.com/UnknownOlympus/plutus/internal/report"
	"github.com/UnknownOlympus/plutus/internal/services/goals"
	mocks "github.com/UnknownOlympus/plutus/mock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 {
	return &v
}

func TestSave(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	t.Run("should merge supplied targets", func(t *testing.T) {
		mockRepo := mocks.NewGoalRepoIface(t)
		testMetrics := metrics.NewMetrics(prometheus.NewRegistry())
		service := goals.NewGoalService(logger, mockRepo, testMetrics)

		fields := models.GoalFields{Calls: ptr(120), Hours: ptr(0)}
		mockRepo.On("UpsertGoal", mock.Anything, "Jane", fields).Return(nil).Once()

		require.NoError(t, service.Save(t.Context(), "Jane", fields))
		assert.InDelta(t, 1.0, testutil.ToFloat64(testMetrics.Writes.WithLabelValues("goal", "success")), 1e-9)
	})

	t.Run("should refuse the aggregate view without a store write", func(t *testing.T) {
		mockRepo := mocks.NewGoalRepoIface(t)
		service := goals.NewGoalService(logger, mockRepo, metrics.NewMetrics(prometheus.NewRegistry()))

		for _, agent := range []string{report.AllAgents, "", " "} {
			err := service.Save(t.Context(), agent, models.GoalFields{Calls: ptr(1)})
			require.ErrorIs(t, err, goals.ErrAgentRequired)
		}
		mockRepo.AssertNotCalled(t, "UpsertGoal")
	})

	t.Run("should refuse invalid targets", func(t *testing.T) {
		mockRepo := mocks.NewGoalRepoIface(t)
		service := goals.NewGoalService(logger, mockRepo, metrics.NewMetrics(prometheus.NewRegistry()))

		for _, fields := range []models.GoalFields{
			{Calls: ptr(-1)},
			{Hours: ptr(math.NaN())},
			{SpokeTo: ptr(math.Inf(1))},
		} {
			err := service.Save(t.Context(), "Jane", fields)
			require.ErrorIs(t, err, goals.ErrInvalidTarget)
			require.ErrorIs(t, err, models.ErrInvalidInput)
		}
		mockRepo.AssertNotCalled(t, "UpsertGoal")
	})

	t.Run("should return error when the store fails", func(t *testing.T) {
		mockRepo := mocks.NewGoalRepoIface(t)
		testMetrics := metrics.NewMetrics(prometheus.NewRegistry())
		service := goals.NewGoalService(logger, mockRepo, testMetrics)

		mockRepo.On("UpsertGoal", mock.Anything, "Jane", mock.Anything).Return(assert.AnError).Once()

		err := service.Save(t.Context(), "Jane", models.GoalFields{ApptsSet: ptr(24)})

		require.ErrorIs(t, err, assert.AnError)
		assert.Contains(t, err.Error(), "failed to save goals for agent 'Jane'")
		assert.InDelta(t, 1.0, testutil.ToFloat64(testMetrics.Writes.WithLabelValues("goal", "failure")), 1e-9)
	})

	t.Run("should work without metrics", func(t *testing.T) {
		mockRepo := mocks.NewGoalRepoIface(t)
		service := goals.NewGoalService(logger, mockRepo, nil)

		mockRepo.On("UpsertGoal", mock.Anything, "Jane", mock.Anything).Return(nil).Once()
		mockRepo.On("UpsertGoal", mock.Anything, "Jane", mock.Anything).Return(assert.AnError).Once()

		require.NoError(t, service.Save(t.Context(), "Jane", models.GoalFields{Calls: ptr(10)}))
		require.ErrorIs(t, service.Save(t.Context(), "Jane", models.GoalFields{Calls: ptr(10)}), assert.AnError)
	})
}

func TestGet(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	mockRepo := mocks.NewGoalRepoIface(t)
	service := goals.NewGoalService(logger, mockRepo, metrics.NewMetrics(prometheus.NewRegistry()))

	goal := &models.Goal{AgentName: "Jane"}
	mockRepo.On("GetGoal", mock.Anything, "Jane").Return(goal, nil).Once()
	mockRepo.On("GetGoal", mock.Anything, "Bob").Return(nil, assert.AnError).Once()

	got, err := service.Get(t.Context(), "Jane")
	require.NoError(t, err)
	assert.Same(t, goal, got)

	_, err = service.Get(t.Context(), "Bob")
	require.ErrorIs(t, err, assert.AnError)
}
