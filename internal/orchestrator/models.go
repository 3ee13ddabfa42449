package orchestrator

import (
	"time"

	"archive-remix/internal/archive"
)

// Rendering is the last successfully packaged playlist for an output name.
// It is published to the repository so the status server can serve it.
type Rendering struct {
	Name       string    `json:"name"`
	Period     string    `json:"period"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Chunks     int       `json:"chunks"`
	MP4        string    `json:"mp4"`
	ISML       string    `json:"isml"`
	RenderedAt time.Time `json:"rendered_at"`

	// Markup is served on its own endpoint.
	Markup []byte `json:"-"`
}

// Outcome summarises what a reconciliation tick did.
type Outcome string

const (
	// OutcomeUnchanged means the chunk set matched the previous tick.
	OutcomeUnchanged Outcome = "unchanged"
	// OutcomeEmptyWindow means the chunk set changed to empty and was skipped.
	OutcomeEmptyWindow Outcome = "empty_window"
	// OutcomeRendered means a new document was rendered and packaged.
	OutcomeRendered Outcome = "rendered"
	// OutcomeFailed means a packaging tool failed; the chunk set will be
	// retried on the next tick.
	OutcomeFailed Outcome = "failed"
)

// TickResult is returned by Assembler.Tick.
type TickResult struct {
	Outcome Outcome
	Period  string
	Chunks  []archive.Chunk
	Markup  []byte
}
