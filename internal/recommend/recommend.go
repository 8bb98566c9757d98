// Package recommend matches a student's weak and strong subjects against the
// lesson catalog.
package recommend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pavelanni/studyplan/internal/model"
)

// LessonCatalog looks up lessons by subject.
type LessonCatalog interface {
	// FindLessonsBySubject returns lessons in ascending difficulty order.
	FindLessonsBySubject(ctx context.Context, subject string) ([]model.Lesson, error)
	FindLessonsBySubjectAndDifficulty(ctx context.Context, subject string, difficulty model.Difficulty) ([]model.Lesson, error)
}

// Analyzer produces the summary recommendations are built from.
type Analyzer interface {
	Analyze(ctx context.Context, studentID string) (model.PerformanceSummary, error)
}

// Phrases renders the reason attached to each recommendation.
type Phrases interface {
	Improve(ctx context.Context, subject string) string
	Challenge(ctx context.Context, subject string) string
}

// EnglishPhrases is the built-in English wording.
type EnglishPhrases struct{}

func (EnglishPhrases) Improve(_ context.Context, subject string) string {
	return "This will help improve your performance in " + subject
}

func (EnglishPhrases) Challenge(_ context.Context, subject string) string {
	return "Challenge yourself in " + subject
}

// Recommender builds recommendation sets.
type Recommender struct {
	analyzer Analyzer
	catalog  LessonCatalog
	phrases  Phrases
}

// New creates a Recommender. A nil phrases falls back to EnglishPhrases.
func New(analyzer Analyzer, catalog LessonCatalog, phrases Phrases) *Recommender {
	if phrases == nil {
		phrases = EnglishPhrases{}
	}
	return &Recommender{analyzer: analyzer, catalog: catalog, phrases: phrases}
}

// Recommend analyzes studentID and returns lessons for weak subjects
// (every lesson, high priority) followed by advanced lessons for strong
// subjects (medium priority).
func (r *Recommender) Recommend(ctx context.Context, studentID string) (model.RecommendationSet, error) {
	summary, err := r.analyzer.Analyze(ctx, studentID)
	if err != nil {
		return model.RecommendationSet{}, err
	}

	set := model.NewRecommendationSet()
	set.PrioritySubjects = append(set.PrioritySubjects, summary.WeakAreas...)

	for _, subject := range summary.WeakAreas {
		lessons, err := r.catalog.FindLessonsBySubject(ctx, subject)
		if err != nil {
			return model.RecommendationSet{}, fmt.Errorf("find lessons for %q: %w", subject, err)
		}
		reason := r.phrases.Improve(ctx, subject)
		for _, l := range lessons {
			set.RecommendedLessons = append(set.RecommendedLessons, model.RecommendationEntry{
				Subject:  subject,
				Title:    l.Title,
				Priority: model.PriorityHigh,
				Reason:   reason,
			})
		}
	}

	for _, subject := range summary.StrongAreas {
		lessons, err := r.catalog.FindLessonsBySubjectAndDifficulty(ctx, subject, model.DifficultyAdvanced)
		if err != nil {
			return model.RecommendationSet{}, fmt.Errorf("find advanced lessons for %q: %w", subject, err)
		}
		reason := r.phrases.Challenge(ctx, subject)
		for _, l := range lessons {
			set.RecommendedLessons = append(set.RecommendedLessons, model.RecommendationEntry{
				Subject:  subject,
				Title:    l.Title,
				Priority: model.PriorityMedium,
				Reason:   reason,
			})
		}
	}

	slog.Debug("built recommendations",
		"student_id", studentID,
		"priority_subjects", len(set.PrioritySubjects),
		"lessons", len(set.RecommendedLessons),
	)
	return set, nil
}
