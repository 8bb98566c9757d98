// Package testutil holds fixtures shared by package tests.
package testutil

import "github.com/pavelanni/studyplan/internal/model"

// Result builds an exam result with a named subject and a score.
func Result(studentID, subject string, score float64) model.ExamResult {
	return model.ExamResult{
		StudentID: studentID,
		Subject:   &model.SubjectRef{Name: &subject},
		Score:     &score,
	}
}

// Lesson builds a catalog lesson.
func Lesson(subject, title string, difficulty model.Difficulty) model.Lesson {
	return model.Lesson{Subject: subject, Title: title, Difficulty: difficulty}
}
