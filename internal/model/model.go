package model

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// DefaultSubjectName is used for exam results that carry no subject name.
const DefaultSubjectName = "Unknown"

// Priority marks how urgently a lesson is recommended.
type Priority string

const (
	// PriorityHigh is attached to lessons for weak subjects.
	PriorityHigh Priority = "high"
	// PriorityMedium is attached to advanced lessons for strong subjects.
	PriorityMedium Priority = "medium"
)

// Difficulty is a lesson difficulty. Catalogs store either a number
// ("1", "2") or a label ("beginner", "advanced").
type Difficulty string

// DifficultyAdvanced is the label used to pick challenge lessons.
const DifficultyAdvanced Difficulty = "advanced"

// UnmarshalJSON accepts both JSON numbers and JSON strings.
func (d *Difficulty) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*d = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*d = Difficulty(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*d = Difficulty(n.String())
	return nil
}

// MarshalJSON writes numeric difficulties as numbers and labels as strings.
func (d Difficulty) MarshalJSON() ([]byte, error) {
	if d.IsNumeric() {
		return []byte(d), nil
	}
	return json.Marshal(string(d))
}

// IsNumeric reports whether the difficulty is a plain number.
func (d Difficulty) IsNumeric() bool {
	if d == "" {
		return false
	}
	if _, err := strconv.ParseFloat(string(d), 64); err != nil {
		return false
	}
	return json.Valid([]byte(d))
}

// SubjectRef is the subject embedded in an exam result.
type SubjectRef struct {
	Name *string `json:"name,omitempty" yaml:"name,omitempty"`
}

// ExamResult is one exam attempt by a student.
type ExamResult struct {
	ID        int64       `json:"id,omitempty" yaml:"id,omitempty"`
	StudentID string      `json:"studentId" yaml:"studentId"`
	Subject   *SubjectRef `json:"subject,omitempty" yaml:"subject,omitempty"`
	Score     *float64    `json:"score,omitempty" yaml:"score,omitempty"`
}

// SubjectName returns the subject name, or DefaultSubjectName when the
// result has no subject or the subject has no name.
func (r ExamResult) SubjectName() string {
	if r.Subject == nil || r.Subject.Name == nil {
		return DefaultSubjectName
	}
	return *r.Subject.Name
}

// ScoreValue returns the score, or 0 when it is absent.
func (r ExamResult) ScoreValue() float64 {
	if r.Score == nil {
		return 0
	}
	return *r.Score
}

// Lesson is an entry in the lesson catalog.
type Lesson struct {
	ID         int64      `json:"id,omitempty" yaml:"id,omitempty"`
	Subject    string     `json:"subject" yaml:"subject"`
	Title      string     `json:"title" yaml:"title"`
	Difficulty Difficulty `json:"difficulty" yaml:"difficulty"`
}

// PerformanceSummary aggregates a student's exam results.
type PerformanceSummary struct {
	AverageScore  float64              `json:"average_score"`
	SubjectScores map[string][]float64 `json:"subject_scores"`
	WeakAreas     []string             `json:"weak_areas"`
	StrongAreas   []string             `json:"strong_areas"`

	// Subjects lists the keys of SubjectScores in first-encounter order.
	Subjects []string `json:"-"`
}

// NewPerformanceSummary returns a summary with empty, non-nil collections.
func NewPerformanceSummary() PerformanceSummary {
	return PerformanceSummary{
		SubjectScores: map[string][]float64{},
		WeakAreas:     []string{},
		StrongAreas:   []string{},
		Subjects:      []string{},
	}
}

// RecommendationEntry is one suggested lesson.
type RecommendationEntry struct {
	Subject  string   `json:"subject"`
	Title    string   `json:"title"`
	Priority Priority `json:"priority"`
	Reason   string   `json:"reason"`
}

// RecommendationSet is the result of a recommendation run.
type RecommendationSet struct {
	PrioritySubjects   []string              `json:"priority_subjects"`
	RecommendedLessons []RecommendationEntry `json:"recommended_lessons"`
	// NextSteps is reserved; nothing populates it yet.
	NextSteps []string `json:"next_steps"`
}

// NewRecommendationSet returns a set with empty, non-nil collections.
func NewRecommendationSet() RecommendationSet {
	return RecommendationSet{
		PrioritySubjects:   []string{},
		RecommendedLessons: []RecommendationEntry{},
		NextSteps:          []string{},
	}
}

// ErrorResponse is written instead of a result when a request cannot run.
type ErrorResponse struct {
	Error string `json:"error"`
}
