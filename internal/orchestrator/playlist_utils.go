package orchestrator

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"archive-remix/internal/archive"
	"archive-remix/internal/isotime"
	"archive-remix/internal/smil"
)

// ErrEmptyWindow is returned when a document or period is requested for an
// empty chunk list. Early in a window this is expected and transient.
var ErrEmptyWindow = errors.New("no chunks in window")

// SortChunks returns a copy of chunks ordered by start time. Chunks with the
// same start keep their listing order.
func SortChunks(chunks []archive.Chunk) []archive.Chunk {
	sorted := make([]archive.Chunk, len(chunks))
	copy(sorted, chunks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})
	return sorted
}

// ChunkURL resolves a chunk path against baseURL.
func ChunkURL(baseURL, path string) string {
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// BuildDocument returns a SMIL document whose body plays one video per chunk
// in start order.
func BuildDocument(chunks []archive.Chunk, baseURL string) (*smil.Document, error) {
	if len(chunks) == 0 {
		return nil, ErrEmptyWindow
	}

	doc := smil.NewDocument()
	for _, c := range SortChunks(chunks) {
		video, err := smil.NewVideo(ChunkURL(baseURL, c.Path), smil.ClipRange{})
		if err != nil {
			return nil, fmt.Errorf("chunk %s: %w", c.Path, err)
		}
		if err := doc.Append(video); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// PeriodID returns "{name}-{first start}--{last end}" for chunks sorted by
// start. It names the rendered files handed to the packaging tools.
func PeriodID(name string, chunks []archive.Chunk) (string, error) {
	if len(chunks) == 0 {
		return "", ErrEmptyWindow
	}
	return fmt.Sprintf("%s-%s--%s",
		name, isotime.Format(chunks[0].Start), isotime.Format(chunks[len(chunks)-1].End)), nil
}
