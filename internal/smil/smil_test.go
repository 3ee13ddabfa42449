package smil

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustVideo(t *testing.T, src string, clip ClipRange) *MediaItem {
	t.Helper()
	v, err := NewVideo(src, clip)
	require.NoError(t, err)
	return v
}

func mustMeta(t *testing.T, name, content string) *Meta {
	t.Helper()
	m, err := NewMeta(name, content)
	require.NoError(t, err)
	return m
}

func TestVideo_ElementWithoutClip(t *testing.T) {
	v := mustVideo(t, "a", ClipRange{})

	assert.Equal(t, `<video src="a"/>`, v.Element().String())
}

func TestVideo_ElementWithClipBegin(t *testing.T) {
	begin := time.Date(2020, 5, 1, 12, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	v := mustVideo(t, "a", ClipRange{Begin: begin})

	assert.Equal(t, `<video src="a" clipBegin="wallclock(2020-05-01T10:00:00Z)"/>`, v.Element().String())
}

func TestVideo_AttributeOrder(t *testing.T) {
	begin := time.Date(2020, 5, 1, 10, 0, 0, 0, time.UTC)
	v := mustVideo(t, "a", ClipRange{Begin: begin, End: begin.Add(time.Minute)})

	assert.Equal(t,
		`<video src="a" clipBegin="wallclock(2020-05-01T10:00:00Z)" clipEnd="wallclock(2020-05-01T10:01:00Z)"/>`,
		v.Element().String())
}

func TestAudio_Element(t *testing.T) {
	a, err := NewAudio("track.mp4", ClipRange{})
	require.NoError(t, err)

	assert.Equal(t, MediaAudio, a.Type())
	assert.Equal(t, `<audio src="track.mp4"/>`, a.Element().String())
}

func TestNewMediaItem_Validation(t *testing.T) {
	_, err := NewVideo("", ClipRange{})
	assert.ErrorIs(t, err, ErrMissingAttribute)

	_, err = NewMediaItem("image", "a.png", ClipRange{})
	assert.Error(t, err)
}

func TestNewMeta_Validation(t *testing.T) {
	_, err := NewMeta("", "x")
	assert.ErrorIs(t, err, ErrMissingAttribute)

	_, err = NewMeta("x", "")
	assert.ErrorIs(t, err, ErrMissingAttribute)
}

func TestSequence_RejectsMeta(t *testing.T) {
	seq := &Sequence{}
	err := seq.Append(mustMeta(t, "k", "v"))

	require.ErrorIs(t, err, ErrInvalidChild)
	var ice *InvalidChildError
	require.True(t, errors.As(err, &ice))
	assert.Equal(t, KindSequence, ice.Parent)
	assert.Equal(t, KindMeta, ice.Child)
	assert.Equal(t, 0, seq.Len())
}

func TestParallel_RejectsMetaAndHead(t *testing.T) {
	par := &Parallel{}

	assert.ErrorIs(t, par.Append(mustMeta(t, "k", "v")), ErrInvalidChild)
	assert.ErrorIs(t, par.Insert(0, &Head{}), ErrInvalidChild)
	assert.ErrorIs(t, par.Append(NewDocument()), ErrInvalidChild)
	assert.ErrorIs(t, par.Append(nil), ErrInvalidChild)
}

func TestContainers_RejectTypedNil(t *testing.T) {
	seq := &Sequence{}
	for _, n := range []Node{(*Sequence)(nil), (*Parallel)(nil), (*MediaItem)(nil)} {
		err := seq.Append(n)
		require.ErrorIs(t, err, ErrInvalidChild)
		var ice *InvalidChildError
		require.True(t, errors.As(err, &ice))
		assert.Equal(t, Kind(0), ice.Child)
	}
	assert.ErrorIs(t, seq.Insert(0, (*Parallel)(nil)), ErrInvalidChild)
	assert.ErrorIs(t, (&Head{}).Append((*Meta)(nil)), ErrInvalidChild)
	assert.Equal(t, 0, seq.Len())
	assert.NotPanics(t, func() { Render(seq) })
}

func TestHead_RejectsBodyNodes(t *testing.T) {
	head := &Head{}

	assert.ErrorIs(t, head.Append(&Sequence{}), ErrInvalidChild)
	assert.ErrorIs(t, head.Append(&Parallel{}), ErrInvalidChild)
	assert.ErrorIs(t, head.Append(mustVideo(t, "a", ClipRange{})), ErrInvalidChild)
	require.NoError(t, head.Append(mustMeta(t, "k", "v")))
	assert.Equal(t, 1, head.Len())
}

func TestSequence_InsertPreservesOrder(t *testing.T) {
	seq, err := NewSequence(mustVideo(t, "a", ClipRange{}), mustVideo(t, "c", ClipRange{}))
	require.NoError(t, err)

	require.NoError(t, seq.Insert(1, mustVideo(t, "b", ClipRange{})))
	require.NoError(t, seq.Insert(0, mustVideo(t, "start", ClipRange{})))
	require.NoError(t, seq.Insert(seq.Len(), mustVideo(t, "end", ClipRange{})))

	var srcs []string
	for _, n := range seq.Children() {
		srcs = append(srcs, n.(*MediaItem).Src())
	}
	assert.Equal(t, []string{"start", "a", "b", "c", "end"}, srcs)
}

func TestSequence_PositionalErrors(t *testing.T) {
	seq := &Sequence{}

	assert.ErrorIs(t, seq.Insert(1, &Sequence{}), ErrIndexOutOfRange)
	assert.ErrorIs(t, seq.Remove(0), ErrIndexOutOfRange)
	assert.ErrorIs(t, seq.Set(0, &Sequence{}), ErrIndexOutOfRange)
	assert.Nil(t, seq.At(3))
}

func TestSequence_SetValidates(t *testing.T) {
	seq, err := NewSequence(mustVideo(t, "a", ClipRange{}))
	require.NoError(t, err)

	assert.ErrorIs(t, seq.Set(0, mustMeta(t, "k", "v")), ErrInvalidChild)
	require.NoError(t, seq.Set(0, &Parallel{}))
	assert.Equal(t, KindParallel, seq.At(0).Kind())

	require.NoError(t, seq.Remove(0))
	assert.Equal(t, 0, seq.Len())
}

func TestRender_Document(t *testing.T) {
	doc := NewDocument()
	require.NoError(t, doc.AddMeta("title", "event"))
	require.NoError(t, doc.Append(mustVideo(t, "http://h/b/1.ismv", ClipRange{})))
	require.NoError(t, doc.Append(mustVideo(t, "http://h/b/2.ismv", ClipRange{})))

	want := strings.Join([]string{
		"<?xml version='1.0' encoding='UTF-8'?>",
		`<smil xmlns="http://www.w3.org/2001/SMIL20/Language">`,
		`  <head>`,
		`    <meta name="title" content="event"/>`,
		`  </head>`,
		`  <body>`,
		`    <seq>`,
		`      <video src="http://h/b/1.ismv"/>`,
		`      <video src="http://h/b/2.ismv"/>`,
		`    </seq>`,
		`  </body>`,
		`</smil>`,
		``,
	}, "\n")
	assert.Equal(t, want, string(Render(doc)))
}

func TestRender_EmptyDocument(t *testing.T) {
	want := strings.Join([]string{
		"<?xml version='1.0' encoding='UTF-8'?>",
		`<smil xmlns="http://www.w3.org/2001/SMIL20/Language">`,
		`  <head/>`,
		`  <body>`,
		`    <seq/>`,
		`  </body>`,
		`</smil>`,
		``,
	}, "\n")
	assert.Equal(t, want, string(Render(&Document{})))
}

func TestRender_EscapesAttributes(t *testing.T) {
	v := mustVideo(t, `a?x=1&y="2"`, ClipRange{})

	assert.Equal(t, `<video src="a?x=1&amp;y=&#34;2&#34;"/>`, v.Element().String())
}

func buildNestedDocument(t *testing.T) *Document {
	t.Helper()
	begin := time.Date(2021, 1, 2, 3, 4, 5, 0, time.UTC)
	end := begin.Add(90 * time.Second)

	inner, err := NewSequence(
		mustVideo(t, "v1", ClipRange{Begin: begin}),
		mustVideo(t, "v2", ClipRange{End: end}),
	)
	require.NoError(t, err)
	audio, err := NewAudio("a1", ClipRange{Begin: begin, End: end})
	require.NoError(t, err)
	par, err := NewParallel(ClipRange{Begin: begin, End: end}, inner, audio)
	require.NoError(t, err)

	doc := NewDocument()
	require.NoError(t, doc.AddMeta("name", "event"))
	require.NoError(t, doc.AddMeta("channel", "ch1"))
	require.NoError(t, doc.Append(mustVideo(t, "intro", ClipRange{})))
	require.NoError(t, doc.Append(par))
	require.NoError(t, doc.Append(&Sequence{}))
	return doc
}

func TestRoundTrip_Document(t *testing.T) {
	doc := buildNestedDocument(t)

	parsed, err := ParseDocument(Render(doc))
	require.NoError(t, err)

	assert.True(t, Equal(doc, parsed))
	assert.True(t, SameMarkup(doc, parsed))
	assert.Equal(t, string(Render(doc)), string(Render(parsed)))
}

func TestRoundTrip_EachNodeKind(t *testing.T) {
	begin := time.Date(2021, 1, 2, 3, 4, 5, 0, time.UTC)
	par, err := NewParallel(ClipRange{End: begin}, mustVideo(t, "x", ClipRange{}))
	require.NoError(t, err)
	seq, err := NewSequence(par)
	require.NoError(t, err)
	head := &Head{}
	require.NoError(t, head.Append(mustMeta(t, "k", "v")))

	for _, n := range []Node{seq, par, head, mustMeta(t, "k", "v"), mustVideo(t, "x", ClipRange{Begin: begin})} {
		parsed, err := Parse(Render(n))
		require.NoError(t, err, n.Kind().String())
		assert.True(t, Equal(n, parsed), n.Kind().String())
	}
}

func TestParse_NormalizesInstants(t *testing.T) {
	data := `<par xmlns="http://www.w3.org/2001/SMIL20/Language" clipBegin="wallclock(2021-01-02T04:04:05+01:00)" clipEnd="2021-01-02T03:05:00Z"><video src="a"/></par>`

	n, err := Parse([]byte(data))
	require.NoError(t, err)
	par := n.(*Parallel)

	assert.True(t, par.Clip.Begin.Equal(time.Date(2021, 1, 2, 3, 4, 5, 0, time.UTC)))
	assert.True(t, par.Clip.End.Equal(time.Date(2021, 1, 2, 3, 5, 0, 0, time.UTC)))
	assert.Equal(t,
		`<par clipBegin="wallclock(2021-01-02T03:04:05Z)" clipEnd="wallclock(2021-01-02T03:05:00Z)"><video src="a"/></par>`,
		par.Element().String())
}

func TestParse_SkipsUnknownChildren(t *testing.T) {
	data := `<seq><img src="x"/><video src="a"/><text>hi</text><audio src="b"/></seq>`

	n, err := Parse([]byte(data))
	require.NoError(t, err)

	seq := n.(*Sequence)
	require.Equal(t, 2, seq.Len())
	assert.Equal(t, MediaVideo, seq.At(0).(*MediaItem).Type())
	assert.Equal(t, MediaAudio, seq.At(1).(*MediaItem).Type())
}

func TestParse_BodyMediaWithoutSeq(t *testing.T) {
	data := `<smil><head/><body><video src="a"/><video src="b"/></body></smil>`

	doc, err := ParseDocument([]byte(data))
	require.NoError(t, err)

	assert.Equal(t, 2, doc.Body.Len())
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]string{
		"not xml":        "this is not markup",
		"empty":          "",
		"unclosed":       "<smil><head/>",
		"unknown root":   "<playlist/>",
		"missing head":   "<smil><body><seq/></body></smil>",
		"missing body":   "<smil><head/></smil>",
		"video no src":   "<video/>",
		"meta no name":   `<meta content="x"/>`,
		"bad clip begin": `<video src="a" clipBegin="wallclock(later)"/>`,
		"bad nested":     `<smil><head/><body><seq><par clipEnd="soon"/></seq></body></smil>`,
		"trailing junk":  "<seq/><this is not xml",
		"two roots":      `<video src="a"/><audio src="b"/>`,
		"trailing text":  "<seq/>tail",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			n, err := Parse([]byte(data))
			assert.ErrorIs(t, err, ErrMalformedMarkup)
			assert.Nil(t, n)
		})
	}
}

func TestParse_AllowsTrailingWhitespaceAndComments(t *testing.T) {
	n, err := Parse([]byte("<seq/>\n<!-- done -->\n"))

	require.NoError(t, err)
	assert.Equal(t, KindSequence, n.Kind())
}

func TestParse_MalformedTimestampIsReported(t *testing.T) {
	_, err := Parse([]byte(`<video src="a" clipEnd="wallclock(2021-13-45T00:00:00Z)"/>`))

	assert.ErrorIs(t, err, ErrMalformedMarkup)
	assert.ErrorIs(t, err, ErrMalformedTimestamp)
}

func TestParseDocument_RejectsOtherRoots(t *testing.T) {
	_, err := ParseDocument([]byte(`<seq/>`))

	assert.ErrorIs(t, err, ErrMalformedMarkup)
}

func TestParseClipRange(t *testing.T) {
	c, err := ParseClipRange("wallclock(1970-01-01T00:00:04Z)", "")
	require.NoError(t, err)
	assert.True(t, c.Begin.Equal(time.Unix(4, 0)))
	assert.True(t, c.End.IsZero())

	_, err = ParseClipRange("", "tomorrow")
	assert.ErrorIs(t, err, ErrMalformedTimestamp)
}

func TestStripWallclock(t *testing.T) {
	assert.Equal(t, "2020-01-01T00:00:00Z", StripWallclock("wallclock(2020-01-01T00:00:00Z)"))
	assert.Equal(t, "2020-01-01T00:00:00Z", StripWallclock("2020-01-01T00:00:00Z"))
}

func TestCompare_UsesRenderedMarkup(t *testing.T) {
	a := mustVideo(t, "a", ClipRange{})
	b := mustVideo(t, "b", ClipRange{})

	assert.Equal(t, -1, Compare(a, b))
	assert.Equal(t, 1, Compare(b, a))
	assert.Equal(t, 0, Compare(a, mustVideo(t, "a", ClipRange{})))
	assert.False(t, SameMarkup(a, b))
}

func TestEqual_InstantZonesIgnored(t *testing.T) {
	utc := time.Date(2021, 1, 2, 3, 4, 5, 0, time.UTC)
	local := utc.In(time.FixedZone("X", -5*3600))

	assert.True(t, Equal(mustVideo(t, "a", ClipRange{Begin: utc}), mustVideo(t, "a", ClipRange{Begin: local})))
	assert.False(t, Equal(mustVideo(t, "a", ClipRange{Begin: utc}), mustVideo(t, "a", ClipRange{})))
	assert.False(t, Equal(&Sequence{}, &Parallel{}))
}

func TestRoundTrip_SubMicrosecondClip(t *testing.T) {
	begin := time.Date(2021, 6, 1, 12, 0, 0, 123456789, time.UTC)
	v := mustVideo(t, "a", ClipRange{Begin: begin})
	par, err := NewParallel(ClipRange{End: begin}, v)
	require.NoError(t, err)

	assert.True(t, v.Clip.Begin.Equal(begin.Truncate(time.Microsecond)))
	back, err := Parse(Render(par))
	require.NoError(t, err)
	assert.True(t, Equal(par, back))
}
