package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"

	"github.com/pavelanni/studyplan/internal/model"
)

var lessonColumns = []string{"id", "subject", "title", "difficulty"}

// ImportLessons stores all lessons in a single transaction.
func (s *Store) ImportLessons(ctx context.Context, lessons []model.Lesson) (int, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	for i, l := range lessons {
		if _, err := insertLesson(ctx, tx, s.sq, l); err != nil {
			return 0, fmt.Errorf("lesson %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	slog.Debug("imported lessons", "count", len(lessons))
	return len(lessons), nil
}

// FindLessonsBySubject returns the lessons for subject in ascending
// difficulty order: numbers first in numeric order, then labels.
func (s *Store) FindLessonsBySubject(ctx context.Context, subject string) ([]model.Lesson, error) {
	return s.findLessons(ctx, s.sq.
		Select(lessonColumns...).
		From("lessons").
		Where(squirrel.Eq{"subject": subject}).
		OrderBy(difficultyOrder(s.dialect)...))
}

// numericDifficulty matches difficulties stored as plain numbers. It avoids
// "?" so Dollar placeholder rewriting leaves it alone.
const numericDifficulty = `'^-{0,1}[0-9]+(\.[0-9]+){0,1}([eE][-+]{0,1}[0-9]+){0,1}$'`

// difficultyOrder returns ORDER BY terms for ascending difficulty. SQLite
// gets this from the column's NUMERIC affinity; Postgres stores TEXT, so
// numeric values are ranked first and cast before comparing.
func difficultyOrder(d Dialect) []string {
	if d != DialectPostgres {
		return []string{"difficulty ASC"}
	}
	return []string{
		"CASE WHEN difficulty ~ " + numericDifficulty + " THEN 0 ELSE 1 END ASC",
		"CASE WHEN difficulty ~ " + numericDifficulty + " THEN difficulty::numeric END ASC",
		"difficulty ASC",
	}
}

// FindLessonsBySubjectAndDifficulty returns the lessons for subject at
// exactly the given difficulty. No ordering is requested.
func (s *Store) FindLessonsBySubjectAndDifficulty(ctx context.Context, subject string, difficulty model.Difficulty) ([]model.Lesson, error) {
	return s.findLessons(ctx, s.sq.
		Select(lessonColumns...).
		From("lessons").
		Where(squirrel.Eq{"subject": subject, "difficulty": string(difficulty)}))
}

// LessonCount returns the number of lessons in the catalog.
func (s *Store) LessonCount(ctx context.Context) (int, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM lessons`).Scan(&count)
	return count, err
}

func (s *Store) findLessons(ctx context.Context, q squirrel.SelectBuilder) ([]model.Lesson, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var lessons []model.Lesson
	for rows.Next() {
		var (
			l          model.Lesson
			difficulty string
		)
		if err := rows.Scan(&l.ID, &l.Subject, &l.Title, &difficulty); err != nil {
			return nil, err
		}
		l.Difficulty = model.Difficulty(difficulty)
		lessons = append(lessons, l)
	}
	return lessons, rows.Err()
}

func insertLesson(ctx context.Context, runner queryRower, sq squirrel.StatementBuilderType, l model.Lesson) (int64, error) {
	query, args, err := sq.
		Insert("lessons").
		Columns("subject", "title", "difficulty").
		Values(l.Subject, l.Title, string(l.Difficulty)).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, err
	}
	var id int64
	err = runner.QueryRowContext(ctx, query, args...).Scan(&id)
	return id, err
}
