package model

import (
	"fmt"
	"path/filepath"
)

// MediaExt is the file extension used for every downloaded episode.
const MediaExt = ".mp4"

// Episode represents a single downloadable unit of a drama.
//
// Each episode belongs to exactly one Drama and is fetched independently:
// the outcome of one episode's download never affects its siblings.
type Episode struct {
	// Drama is a reference to the parent drama.
	Drama *Drama

	// ID is the remote chapter identifier.
	ID string

	// Index is the 0-based ordinal of the episode within the drama,
	// used for ordering and filename derivation.
	Index int

	// Title is the episode title, if the catalog reported one.
	Title string

	// VideoURL is the resolved source URL for the episode's media payload.
	VideoURL string

	// Path is the computed local file path, {chapterId}_{index}.mp4
	// inside the drama folder.
	Path string
}

// NewEpisode creates an Episode with its computed local path.
func NewEpisode(drama *Drama, id string, index int, title, videoURL string) *Episode {
	e := &Episode{
		Drama:    drama,
		ID:       id,
		Index:    index,
		Title:    title,
		VideoURL: videoURL,
	}

	e.Path = filepath.Join(drama.Path, e.fileName())

	return e
}

func (e *Episode) fileName() string {
	return fmt.Sprintf("%s_%d%s", sanitizeFileName(e.ID), e.Index, MediaExt)
}
