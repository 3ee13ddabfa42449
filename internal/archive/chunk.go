// Package archive maps a time window onto the interval-aligned chunk paths
// written by the archiver and reconciles them against a bucket listing.
package archive

import (
	"fmt"
	"time"

	"archive-remix/internal/isotime"
)

// DefaultExtension is the file extension of archived chunks.
const DefaultExtension = ".ismv"

// Epoch is the default origin of the bucket grid.
var Epoch = time.Unix(0, 0).UTC()

// Chunk is one archived segment covering [Start, End).
type Chunk struct {
	Start time.Time
	End   time.Time
	Path  string
}

// Equal reports whether c and o describe the same chunk.
func (c Chunk) Equal(o Chunk) bool {
	return c.Path == o.Path && c.Start.Equal(o.Start) && c.End.Equal(o.End)
}

// ChunkPath returns "{channel}/{date}/{start}--{end}{ext}" with instants in
// UTC and the date taken from start.
func ChunkPath(channel string, start, end time.Time, ext string) string {
	return fmt.Sprintf("%s/%s/%s--%s%s",
		channel, isotime.Date(start), isotime.Format(start), isotime.Format(end), ext)
}

// Changed reports whether cur differs from prev in length, content or order.
func Changed(prev, cur []Chunk) bool {
	if len(prev) != len(cur) {
		return true
	}
	for i := range prev {
		if !prev[i].Equal(cur[i]) {
			return true
		}
	}
	return false
}
