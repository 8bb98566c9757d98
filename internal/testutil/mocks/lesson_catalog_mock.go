package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pavelanni/studyplan/internal/model"
)

// MockLessonCatalog is a mock implementation of recommend.LessonCatalog
type MockLessonCatalog struct {
	mock.Mock
}

func (m *MockLessonCatalog) FindLessonsBySubject(ctx context.Context, subject string) ([]model.Lesson, error) {
	args := m.Called(ctx, subject)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Lesson), args.Error(1)
}

func (m *MockLessonCatalog) FindLessonsBySubjectAndDifficulty(ctx context.Context, subject string, difficulty model.Difficulty) ([]model.Lesson, error) {
	args := m.Called(ctx, subject, difficulty)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Lesson), args.Error(1)
}
