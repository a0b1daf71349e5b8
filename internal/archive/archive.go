// Package archive stores exported schedule PDFs on the local filesystem or
// in an S3-compatible bucket.
package archive

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/zulandar/drillplan/internal/config"
	"github.com/zulandar/drillplan/internal/models"
)

// ContentTypePDF is the content type of archived schedules.
const ContentTypePDF = "application/pdf"

// Sink stores a named object and returns where it ended up.
type Sink interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
}

// Open selects the Sink configured in cfg.
func Open(ctx context.Context, cfg config.ArchiveConfig) (Sink, error) {
	switch cfg.Driver {
	case config.ArchiveFS, "":
		return NewFSSink(cfg.Dir)
	case config.ArchiveS3:
		return NewS3Sink(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("archive: unknown driver %q", cfg.Driver)
	}
}

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Key returns the object key for an exported schedule, of the form
// schedules/<yyyy-mm-dd>-<sport>-<age>.pdf.
func Key(s *models.Schedule) string {
	day := s.GeneratedAt.UTC().Format("2006-01-02")
	return fmt.Sprintf("schedules/%s-%s-%s.pdf", day, keyPart(s.Sport), keyPart(s.AgeCategory))
}

func keyPart(v string) string {
	v = strings.Trim(unsafeKeyChars.ReplaceAllString(v, "-"), "-")
	if v == "" {
		return "any"
	}
	return v
}

// cleanKey rejects keys that would escape the sink root.
func cleanKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("archive: empty key")
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, "..") {
		return "", fmt.Errorf("archive: invalid key %q", key)
	}
	return filepath.ToSlash(filepath.Clean(key)), nil
}
