package smil

import (
	"fmt"
	"regexp"
	"time"

	"archive-remix/internal/isotime"
)

var wallclockPattern = regexp.MustCompile(`wallclock\((.*)\)`)

// Wallclock encodes t as a wallclock() clip value in UTC.
func Wallclock(t time.Time) string {
	return "wallclock(" + isotime.Format(t) + ")"
}

// StripWallclock returns the contents of a wallclock() wrapper, or s
// unchanged when there is none.
func StripWallclock(s string) string {
	if m := wallclockPattern.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

// ParseInstant reads a clip value in either wallclock or bare ISO-8601 form.
func ParseInstant(s string) (time.Time, error) {
	return isotime.Parse(StripWallclock(s))
}

// ClipRange bounds playback of a par or media element. A zero Begin or End
// means the bound is absent. Rendered instants carry at most microsecond
// precision; the constructors truncate to it so a rendered range parses
// back equal.
type ClipRange struct {
	Begin time.Time
	End   time.Time
}

func (c ClipRange) truncate() ClipRange {
	return ClipRange{Begin: c.Begin.Truncate(time.Microsecond), End: c.End.Truncate(time.Microsecond)}
}

// ParseClipRange builds a range from attribute values. Empty strings leave
// the corresponding bound absent.
func ParseClipRange(begin, end string) (ClipRange, error) {
	var c ClipRange
	if begin != "" {
		t, err := ParseInstant(begin)
		if err != nil {
			return ClipRange{}, fmt.Errorf("clipBegin: %w", err)
		}
		c.Begin = t
	}
	if end != "" {
		t, err := ParseInstant(end)
		if err != nil {
			return ClipRange{}, fmt.Errorf("clipEnd: %w", err)
		}
		c.End = t
	}
	return c, nil
}

func (c ClipRange) apply(el *Element) {
	if !c.Begin.IsZero() {
		el.Set("clipBegin", Wallclock(c.Begin))
	}
	if !c.End.IsZero() {
		el.Set("clipEnd", Wallclock(c.End))
	}
}

func (c ClipRange) equal(o ClipRange) bool {
	return c.Begin.Equal(o.Begin) && c.End.Equal(o.End)
}

// MediaType is the tag of a media element.
type MediaType string

const (
	MediaVideo MediaType = "video"
	MediaAudio MediaType = "audio"
)

// MediaItem is a video or audio leaf referencing Src.
type MediaItem struct {
	typ  MediaType
	src  string
	Clip ClipRange
}

// NewMediaItem validates typ and src.
func NewMediaItem(typ MediaType, src string, clip ClipRange) (*MediaItem, error) {
	if typ != MediaVideo && typ != MediaAudio {
		return nil, fmt.Errorf("smil: media type must be video or audio, got %q", typ)
	}
	if src == "" {
		return nil, fmt.Errorf("smil: %s src: %w", typ, ErrMissingAttribute)
	}
	return &MediaItem{typ: typ, src: src, Clip: clip.truncate()}, nil
}

// NewVideo returns a video item.
func NewVideo(src string, clip ClipRange) (*MediaItem, error) {
	return NewMediaItem(MediaVideo, src, clip)
}

// NewAudio returns an audio item.
func NewAudio(src string, clip ClipRange) (*MediaItem, error) {
	return NewMediaItem(MediaAudio, src, clip)
}

func (m *MediaItem) Kind() Kind { return KindMedia }
func (m *MediaItem) node()      {}

func (m *MediaItem) Type() MediaType { return m.typ }
func (m *MediaItem) Src() string     { return m.src }

func (m *MediaItem) Element() *Element {
	el := NewElement(string(m.typ))
	el.Set("src", m.src)
	m.Clip.apply(el)
	return el
}

// Meta is a name/content pair in the document head.
type Meta struct {
	name    string
	content string
}

func NewMeta(name, content string) (*Meta, error) {
	if name == "" {
		return nil, fmt.Errorf("smil: meta name: %w", ErrMissingAttribute)
	}
	if content == "" {
		return nil, fmt.Errorf("smil: meta content: %w", ErrMissingAttribute)
	}
	return &Meta{name: name, content: content}, nil
}

func (m *Meta) Kind() Kind { return KindMeta }
func (m *Meta) node()      {}

func (m *Meta) Name() string    { return m.name }
func (m *Meta) Content() string { return m.content }

func (m *Meta) Element() *Element {
	el := NewElement("meta")
	el.Set("name", m.name)
	el.Set("content", m.content)
	return el
}
