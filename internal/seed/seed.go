// Package seed loads exam results and lessons from JSON or YAML documents
// into a store.
package seed

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pavelanni/studyplan/internal/model"
)

// Target is where decoded documents are written.
type Target interface {
	GetImportedFileHash(ctx context.Context, path string) (string, error)
	SetImportedFileHash(ctx context.Context, path, hash string) error
	ImportExamResults(ctx context.Context, results []model.ExamResult) (int, error)
	ImportLessons(ctx context.Context, lessons []model.Lesson) (int, error)
}

// Outcome describes what happened to one file.
type Outcome string

const (
	OutcomeImported  Outcome = "imported"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeChanged   Outcome = "changed"
)

// DecodeExamResults parses a list of exam results. Files ending in .yaml or
// .yml are read as YAML, anything else as JSON.
func DecodeExamResults(path string, data []byte) ([]model.ExamResult, error) {
	var results []model.ExamResult
	if err := decode(path, data, &results); err != nil {
		return nil, err
	}
	for i, r := range results {
		if r.Score != nil && (math.IsNaN(*r.Score) || math.IsInf(*r.Score, 0)) {
			return nil, fmt.Errorf("parse %s: exam result %d: score %v is not a finite number", path, i, *r.Score)
		}
	}
	return results, nil
}

// DecodeLessons parses a list of lessons.
func DecodeLessons(path string, data []byte) ([]model.Lesson, error) {
	var lessons []model.Lesson
	if err := decode(path, data, &lessons); err != nil {
		return nil, err
	}
	return lessons, nil
}

func decode(path string, data []byte, out any) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, out); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return nil
}

// ImportExamResultsFile imports an exam results document once. Files already
// imported with the same content are skipped; files whose content changed
// since the last import are refused so existing rows are not duplicated.
func ImportExamResultsFile(ctx context.Context, t Target, path string) (Outcome, int, error) {
	return importFile(ctx, t, path, func(data []byte) (int, error) {
		results, err := DecodeExamResults(path, data)
		if err != nil {
			return 0, err
		}
		return t.ImportExamResults(ctx, results)
	})
}

// ImportLessonsFile imports a lesson catalog document once.
func ImportLessonsFile(ctx context.Context, t Target, path string) (Outcome, int, error) {
	return importFile(ctx, t, path, func(data []byte) (int, error) {
		lessons, err := DecodeLessons(path, data)
		if err != nil {
			return 0, err
		}
		return t.ImportLessons(ctx, lessons)
	})
}

func importFile(ctx context.Context, t Target, path string, load func([]byte) (int, error)) (Outcome, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", 0, fmt.Errorf("read %s: %w", path, err)
	}

	hash := sha256sum(data)
	storedHash, err := t.GetImportedFileHash(ctx, path)
	if err != nil {
		return "", 0, fmt.Errorf("check import status for %s: %w", path, err)
	}
	if storedHash == hash {
		slog.Info("seed file unchanged, skipping", "path", path)
		return OutcomeUnchanged, 0, nil
	}
	if storedHash != "" {
		slog.Warn("seed file changed since last import, skipping to avoid duplicate rows", "path", path)
		return OutcomeChanged, 0, nil
	}

	n, err := load(data)
	if err != nil {
		return "", 0, err
	}
	if err := t.SetImportedFileHash(ctx, path, hash); err != nil {
		return "", 0, fmt.Errorf("record import for %s: %w", path, err)
	}
	slog.Info("imported seed file", "path", path, "count", n)
	return OutcomeImported, n, nil
}

func sha256sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
