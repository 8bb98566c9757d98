package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pavelanni/studyplan/internal/model"
)

// MockExamResultSource is a mock implementation of performance.ExamResultSource
type MockExamResultSource struct {
	mock.Mock
}

func (m *MockExamResultSource) FindExamResults(ctx context.Context, studentID string) ([]model.ExamResult, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ExamResult), args.Error(1)
}
