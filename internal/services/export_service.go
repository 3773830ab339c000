// internal/services/export_service.go
package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	apperrors "github.com/Corphon/ScriptBreakdown/internal/errors"
	"github.com/Corphon/ScriptBreakdown/internal/models"
	"github.com/Corphon/ScriptBreakdown/internal/storage"
)

const (
	// ExportFileName is the name of the downloaded file
	ExportFileName = "scene_breakdown.json"
	// ExportContentType is served with the download
	ExportContentType = "application/json; charset=utf-8"
)

// ExportService renders breakdowns for copy and download
type ExportService struct {
	storage *storage.FileStorage
}

// NewExportService creates an exporter; store may be nil when nothing is
// written to disk.
func NewExportService(store *storage.FileStorage) *ExportService {
	return &ExportService{storage: store}
}

// RenderBreakdown serializes b as UTF-8 JSON with two-space indentation,
// unescaped HTML characters and no trailing newline. The output is the
// same text a browser produces with JSON.stringify(b, null, 2).
func RenderBreakdown(b *models.ScriptBreakdown) ([]byte, error) {
	if b == nil {
		return nil, apperrors.NewValidationError("there is no breakdown to export", nil)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b.Clone().Normalize()); err != nil {
		return nil, fmt.Errorf("failed to encode breakdown: %w", err)
	}

	out := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
	return unescapeLineSeparators(out), nil
}

// Export renders b into a downloadable result
func (s *ExportService) Export(b *models.ScriptBreakdown) (*models.ExportResult, error) {
	content, err := RenderBreakdown(b)
	if err != nil {
		return nil, err
	}
	return &models.ExportResult{
		FileName:    ExportFileName,
		ContentType: ExportContentType,
		Content:     content,
		FileSize:    int64(len(content)),
		SceneCount:  b.SceneCount(),
		GeneratedAt: time.Now(),
	}, nil
}

// SaveToDir writes the rendered breakdown as ExportFileName inside dir
func (s *ExportService) SaveToDir(b *models.ScriptBreakdown, dir string) (*models.ExportResult, error) {
	if s.storage == nil {
		return nil, apperrors.NewConfigError("export storage is not configured", nil)
	}

	result, err := s.Export(b)
	if err != nil {
		return nil, err
	}

	path, err := s.storage.SaveTextFile(dir, result.FileName, result.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to save export: %w", err)
	}
	result.FilePath = path
	return result, nil
}

// unescapeLineSeparators turns the \u2028 and \u2029 escapes that
// encoding/json always emits back into raw characters. Escapes are walked
// pairwise so an escaped backslash followed by "u2028" is left alone.
func unescapeLineSeparators(b []byte) []byte {
	if !bytes.Contains(b, []byte(`\u202`)) {
		return b
	}

	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if b[i] != '\\' || i+1 >= len(b) {
			out = append(out, b[i])
			continue
		}
		if b[i+1] == 'u' && i+5 < len(b) && string(b[i+2:i+5]) == "202" && (b[i+5] == '8' || b[i+5] == '9') {
			if b[i+5] == '8' {
				out = append(out, "\u2028"...)
			} else {
				out = append(out, "\u2029"...)
			}
			i += 5
			continue
		}
		out = append(out, b[i], b[i+1])
		i++
	}
	return out
}
