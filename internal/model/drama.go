package model

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// maxTitleLen caps the sanitized title portion of a drama folder name so that
// deeply nested download roots stay within Windows path limits.
const maxTitleLen = 30

// Drama represents one series in the remote catalog.
//
// A Drama is an immutable snapshot of what the listing endpoint reported at
// crawl time: the remote book ID, display title and the chapter count claimed
// by the catalog. Local paths are computed once at construction via PathConfig.
//
// Example:
//
//	cfg := &PathConfig{DownloadsPath: "/data/dramas"}
//	d := NewDrama("41000101", "Love at the Crossroads", 78, coverURL, cfg)
//	// d.Path = "/data/dramas/41000101_Love at the Crossroads"
type Drama struct {
	// ID is the remote-assigned book identifier, unique within one crawl.
	ID string

	// Title is the display title as reported by the catalog.
	Title string

	// ChapterCount is the total number of episodes the catalog reported
	// at listing time. It may exceed the number of downloadable episodes.
	ChapterCount int

	// CoverURL is the cover image URL. Empty string means no cover.
	CoverURL string

	// Path is the computed local directory for this drama's files,
	// named {id}_{sanitizedTitle}.
	Path string

	// CoverPath is the local file path for the cover image.
	// Empty if the drama has no cover.
	CoverPath string
}

// PathConfig holds the filesystem layout settings for downloaded dramas.
type PathConfig struct {
	// DownloadsPath is the root directory under which one folder per
	// drama is created.
	DownloadsPath string
}

// NewDrama creates a Drama with computed local paths.
//
// The folder name is derived deterministically from the ID and the sanitized
// title, so repeated runs resolve the same drama to the same directory.
func NewDrama(id, title string, chapterCount int, coverURL string, cfg *PathConfig) *Drama {
	d := &Drama{
		ID:           id,
		Title:        title,
		ChapterCount: chapterCount,
		CoverURL:     coverURL,
	}

	d.Path = filepath.Join(cfg.DownloadsPath, d.folderName())
	if d.HasCover() {
		d.CoverPath = filepath.Join(d.Path, "cover.jpg")
	}

	return d
}

// HasCover returns true if a cover image is available for download.
func (d *Drama) HasCover() bool {
	return d.CoverURL != ""
}

func (d *Drama) folderName() string {
	title := sanitizeFileName(d.Title)
	if title == "" {
		title = "Drama"
	}
	if len(title) > maxTitleLen {
		title = strings.TrimRight(title[:maxTitleLen], " ")
	}
	return fmt.Sprintf("%s_%s", d.ID, title)
}

// sanitizeFileName removes or replaces characters that are invalid in
// file/folder names.
//
// The following transformations are applied:
//   - Invalid characters (<>:"/\|?* and control chars) are replaced with underscore
//   - Trailing dots are removed (Windows limitation)
//   - Multiple whitespace is collapsed to single space
//   - Leading/trailing whitespace is removed
func sanitizeFileName(name string) string {
	invalidChars := regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	name = invalidChars.ReplaceAllString(name, "_")

	name = regexp.MustCompile(`\.+$`).ReplaceAllString(name, "")

	name = regexp.MustCompile(`\s+`).ReplaceAllString(name, " ")

	return strings.Trim(name, " ")
}
