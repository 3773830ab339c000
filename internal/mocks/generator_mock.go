package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Corphon/ScriptBreakdown/internal/models"
)

// MockGenerator is a mock type for the services.Generator type
type MockGenerator struct {
	mock.Mock
}

// Generate provides a mock function with given fields: ctx, script
func (_m *MockGenerator) Generate(ctx context.Context, script string) (*models.ScriptBreakdown, error) {
	ret := _m.Called(ctx, script)

	var r0 *models.ScriptBreakdown
	if rf, ok := ret.Get(0).(func(context.Context, string) *models.ScriptBreakdown); ok {
		r0 = rf(ctx, script)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*models.ScriptBreakdown)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, script)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockGenerator creates a new instance of MockGenerator. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockGenerator(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockGenerator {
	m := &MockGenerator{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
