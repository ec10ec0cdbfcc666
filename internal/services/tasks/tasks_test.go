package tasks_test

import (
	"log/slog"
	"os"
	"testing"

	"github.com/UnknownOlympus/plutus/internal/metrics"
	"github.com/UnknownOlympus/plutus/internal/models"
	"github.com/UnknownOlympus/plutus/internal/services/tasks"
	mocks "github.com/UnknownOlympus/plutus/mock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreate(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	day, err := models.ParseDay("2024-01-20")
	require.NoError(t, err)

	t.Run("should save a valid task with the default type", func(t *testing.T) {
		mockRepo := mocks.NewTaskRepoIface(t)
		testMetrics := metrics.NewMetrics(prometheus.NewRegistry())
		service := tasks.NewTaskService(logger, mockRepo, testMetrics)

		fields := models.TaskFields{Date: day, AgentName: "Jane", Counters: models.Counters{Calls: 7}}
		stored := fields
		stored.TaskType = models.DefaultTaskType
		mockRepo.On("CreateTask", mock.Anything, stored).Return("id-1", nil).Once()

		taskID, err := service.Create(t.Context(), fields)

		require.NoError(t, err)
		assert.Equal(t, "id-1", taskID)
		assert.InDelta(t, 1.0, testutil.ToFloat64(testMetrics.Writes.WithLabelValues("task", "success")), 1e-9)
	})

	t.Run("should reject a missing agent name without a store call", func(t *testing.T) {
		mockRepo := mocks.NewTaskRepoIface(t)
		service := tasks.NewTaskService(logger, mockRepo, metrics.NewMetrics(prometheus.NewRegistry()))

		_, err := service.Create(t.Context(), models.TaskFields{Date: day, AgentName: "  "})

		require.ErrorIs(t, err, tasks.ErrAgentRequired)
		require.ErrorIs(t, err, models.ErrInvalidInput)
		mockRepo.AssertNotCalled(t, "CreateTask")
	})

	t.Run("should reject a missing date", func(t *testing.T) {
		mockRepo := mocks.NewTaskRepoIface(t)
		service := tasks.NewTaskService(logger, mockRepo, metrics.NewMetrics(prometheus.NewRegistry()))

		_, err := service.Create(t.Context(), models.TaskFields{AgentName: "Jane"})

		require.ErrorIs(t, err, tasks.ErrDateRequired)
		mockRepo.AssertNotCalled(t, "CreateTask")
	})

	t.Run("should return error when failed to save task", func(t *testing.T) {
		mockRepo := mocks.NewTaskRepoIface(t)
		testMetrics := metrics.NewMetrics(prometheus.NewRegistry())
		service := tasks.NewTaskService(logger, mockRepo, testMetrics)

		mockRepo.On("CreateTask", mock.Anything, mock.Anything).Return("", assert.AnError).Once()

		_, err := service.Create(t.Context(), models.TaskFields{Date: day, AgentName: "Jane", TaskType: "Follow Up"})

		require.ErrorIs(t, err, assert.AnError)
		require.NotErrorIs(t, err, models.ErrInvalidInput)
		assert.Contains(t, err.Error(), "failed to save task for agent 'Jane'")
		assert.InDelta(t, 1.0, testutil.ToFloat64(testMetrics.Writes.WithLabelValues("task", "failure")), 1e-9)
	})

	t.Run("should work without metrics", func(t *testing.T) {
		mockRepo := mocks.NewTaskRepoIface(t)
		service := tasks.NewTaskService(logger, mockRepo, nil)

		mockRepo.On("CreateTask", mock.Anything, mock.Anything).Return("id-2", nil).Once()
		mockRepo.On("CreateTask", mock.Anything, mock.Anything).Return("", assert.AnError).Once()

		taskID, err := service.Create(t.Context(), models.TaskFields{Date: day, AgentName: "Jane"})
		require.NoError(t, err)
		assert.Equal(t, "id-2", taskID)

		_, err = service.Create(t.Context(), models.TaskFields{Date: day, AgentName: "Jane"})
		require.ErrorIs(t, err, assert.AnError)
	})
}

func TestList(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	mockRepo := mocks.NewTaskRepoIface(t)
	service := tasks.NewTaskService(logger, mockRepo, metrics.NewMetrics(prometheus.NewRegistry()))

	mockRepo.On("ListTasks", mock.Anything).Return([]models.Task{{ID: "a"}}, nil).Once()
	mockRepo.On("ListTasks", mock.Anything).Return(nil, assert.AnError).Once()

	got, err := service.List(t.Context())
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = service.List(t.Context())
	require.ErrorIs(t, err, assert.AnError)
}
