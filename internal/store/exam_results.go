package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"

	"github.com/pavelanni/studyplan/internal/model"
)

// ImportExamResults stores all results in a single transaction.
func (s *Store) ImportExamResults(ctx context.Context, results []model.ExamResult) (int, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	for i, r := range results {
		if _, err := insertExamResult(ctx, tx, s.sq, r); err != nil {
			return 0, fmt.Errorf("exam result %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	slog.Debug("imported exam results", "count", len(results))
	return len(results), nil
}

// FindExamResults returns every result recorded for studentID. The ID is
// matched verbatim and no ordering is requested.
func (s *Store) FindExamResults(ctx context.Context, studentID string) ([]model.ExamResult, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query, args, err := s.sq.
		Select("id", "student_id", "subject_name", "score").
		From("exam_results").
		Where(squirrel.Eq{"student_id": studentID}).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var results []model.ExamResult
	for rows.Next() {
		var (
			r       model.ExamResult
			subject sql.NullString
			score   sql.NullFloat64
		)
		if err := rows.Scan(&r.ID, &r.StudentID, &subject, &score); err != nil {
			return nil, err
		}
		if subject.Valid {
			name := subject.String
			r.Subject = &model.SubjectRef{Name: &name}
		}
		if score.Valid {
			v := score.Float64
			r.Score = &v
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// ExamResultCount returns the number of stored exam results.
func (s *Store) ExamResultCount(ctx context.Context) (int, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM exam_results`).Scan(&count)
	return count, err
}

// queryRower is satisfied by both *sql.DB and *sql.Tx.
type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func insertExamResult(ctx context.Context, runner queryRower, sq squirrel.StatementBuilderType, r model.ExamResult) (int64, error) {
	var subject any
	if r.Subject != nil && r.Subject.Name != nil {
		subject = *r.Subject.Name
	}
	var score any
	if r.Score != nil {
		score = *r.Score
	}

	query, args, err := sq.
		Insert("exam_results").
		Columns("student_id", "subject_name", "score").
		Values(r.StudentID, subject, score).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, err
	}
	var id int64
	err = runner.QueryRowContext(ctx, query, args...).Scan(&id)
	return id, err
}
