// internal/models/export.go
package models

import (
	"time"
)

// ExportResult is a rendered breakdown ready to hand to the user
type ExportResult struct {
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Content     []byte    `json:"-"`
	FilePath    string    `json:"file_path,omitempty"` // set when written to disk
	FileSize    int64     `json:"file_size"`
	SceneCount  int       `json:"scene_count"`
	GeneratedAt time.Time `json:"generated_at"`
}
