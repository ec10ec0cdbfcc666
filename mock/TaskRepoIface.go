package mocks

import (
	"context"

	"github.com/UnknownOlympus/plutus/internal/models"
	"github.com/stretchr/testify/mock"
)

// TaskRepoIface is a mock type for the TaskRepoIface type.
type TaskRepoIface struct {
	mock.Mock
}

// CreateTask provides a mock function with given fields: ctx, fields.
func (_m *TaskRepoIface) CreateTask(ctx context.Context, fields models.TaskFields) (string, error) {
	ret := _m.Called(ctx, fields)

	if rf, ok := ret.Get(0).(func(context.Context, models.TaskFields) (string, error)); ok {
		return rf(ctx, fields)
	}
	return ret.String(0), ret.Error(1)
}

// ListTasks provides a mock function with given fields: ctx.
func (_m *TaskRepoIface) ListTasks(ctx context.Context) ([]models.Task, error) {
	ret := _m.Called(ctx)

	if rf, ok := ret.Get(0).(func(context.Context) ([]models.Task, error)); ok {
		return rf(ctx)
	}
	var tasks []models.Task
	if v := ret.Get(0); v != nil {
		tasks = v.([]models.Task)
	}
	return tasks, ret.Error(1)
}

// NewTaskRepoIface creates a new instance of TaskRepoIface. It also registers a testing
// interface on the mock and a cleanup function to assert the mocks expectations.
func NewTaskRepoIface(t interface {
	mock.TestingT
	Cleanup(func())
},
) *TaskRepoIface {
	m := &TaskRepoIface{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
