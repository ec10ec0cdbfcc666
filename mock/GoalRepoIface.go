package mocks

import (
	"context"

	"github.com/UnknownOlympus/plutus/internal/models"
	"github.com/stretchr/testify/mock"
)

// GoalRepoIface is a mock type for the GoalRepoIface type.
type GoalRepoIface struct {
	mock.Mock
}

// UpsertGoal provides a mock function with given fields: ctx, agentName, fields.
func (_m *GoalRepoIface) UpsertGoal(ctx context.Context, agentName string, fields models.GoalFields) error {
	ret := _m.Called(ctx, agentName, fields)
	return ret.Error(0)
}

// GetGoal provides a mock function with given fields: ctx, agentName.
func (_m *GoalRepoIface) GetGoal(ctx context.Context, agentName string) (*models.Goal, error) {
	ret := _m.Called(ctx, agentName)

	if rf, ok := ret.Get(0).(func(context.Context, string) (*models.Goal, error)); ok {
		return rf(ctx, agentName)
	}
	var goal *models.Goal
	if v := ret.Get(0); v != nil {
		goal = v.(*models.Goal)
	}
	return goal, ret.Error(1)
}

// NewGoalRepoIface creates a new instance of GoalRepoIface. It also registers a testing
// interface on the mock and a cleanup function to assert the mocks expectations.
func NewGoalRepoIface(t interface {
	mock.TestingT
	Cleanup(func())
},
) *GoalRepoIface {
	m := &GoalRepoIface{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
