// Package performance turns a student's exam results into a per-subject
// summary with weak and strong areas.
package performance

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pavelanni/studyplan/internal/model"
)

// ExamResultSource fetches a student's exam results.
type ExamResultSource interface {
	FindExamResults(ctx context.Context, studentID string) ([]model.ExamResult, error)
}

// Thresholds are the classification cut-offs. Both bounds are exclusive:
// a mean equal to either bound is neither weak nor strong.
type Thresholds struct {
	WeakBelow   float64
	StrongAbove float64
}

// DefaultThresholds returns the standard 70/85 cut-offs.
func DefaultThresholds() Thresholds {
	return Thresholds{WeakBelow: 70, StrongAbove: 85}
}

// Validate rejects cut-offs where the weak band would overlap the strong one.
func (t Thresholds) Validate() error {
	if t.WeakBelow > t.StrongAbove {
		return fmt.Errorf("weak threshold %v is above strong threshold %v", t.WeakBelow, t.StrongAbove)
	}
	return nil
}

// Band is the classification of one subject's mean score.
type Band int

const (
	BandNeutral Band = iota
	BandWeak
	BandStrong
)

func (b Band) String() string {
	switch b {
	case BandWeak:
		return "weak"
	case BandStrong:
		return "strong"
	default:
		return "neutral"
	}
}

// Classify places a mean score in a band. Weak is checked first.
func (t Thresholds) Classify(avg float64) Band {
	switch {
	case avg < t.WeakBelow:
		return BandWeak
	case avg > t.StrongAbove:
		return BandStrong
	default:
		return BandNeutral
	}
}

// Analyzer builds performance summaries.
type Analyzer struct {
	results    ExamResultSource
	thresholds Thresholds
}

// NewAnalyzer creates an Analyzer reading from src.
func NewAnalyzer(src ExamResultSource, thresholds Thresholds) *Analyzer {
	return &Analyzer{results: src, thresholds: thresholds}
}

// Analyze summarizes every exam result recorded for studentID. A student
// with no results gets a zero summary, not an error.
func (a *Analyzer) Analyze(ctx context.Context, studentID string) (model.PerformanceSummary, error) {
	results, err := a.results.FindExamResults(ctx, studentID)
	if err != nil {
		return model.PerformanceSummary{}, fmt.Errorf("find exam results: %w", err)
	}
	summary := Summarize(results, a.thresholds)
	slog.Debug("analyzed performance",
		"student_id", studentID,
		"results", len(results),
		"average", summary.AverageScore,
		"weak", summary.WeakAreas,
		"strong", summary.StrongAreas,
	)
	return summary, nil
}

// Summarize computes a summary from results already in memory.
func Summarize(results []model.ExamResult, thresholds Thresholds) model.PerformanceSummary {
	summary := model.NewPerformanceSummary()
	if len(results) == 0 {
		return summary
	}

	scores := make([]float64, 0, len(results))
	for _, r := range results {
		subject := r.SubjectName()
		score := r.ScoreValue()
		scores = append(scores, score)

		if _, seen := summary.SubjectScores[subject]; !seen {
			summary.Subjects = append(summary.Subjects, subject)
		}
		summary.SubjectScores[subject] = append(summary.SubjectScores[subject], score)
	}

	// Mean of every score, not of the per-subject means.
	summary.AverageScore = mean(scores)

	for _, subject := range summary.Subjects {
		switch thresholds.Classify(mean(summary.SubjectScores[subject])) {
		case BandWeak:
			summary.WeakAreas = append(summary.WeakAreas, subject)
		case BandStrong:
			summary.StrongAreas = append(summary.StrongAreas, subject)
		}
	}
	return summary
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
