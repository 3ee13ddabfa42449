package smil

import "bytes"

// Document is the smil root. Body is always present; a nil Head or Body is
// rendered as empty.
type Document struct {
	Head *Head
	Body *Sequence
}

// NewDocument returns a document with an empty head and body.
func NewDocument() *Document {
	return &Document{Head: &Head{}, Body: &Sequence{}}
}

func (d *Document) Kind() Kind { return KindDocument }
func (d *Document) node()      {}

// Append adds n to the end of the body sequence.
func (d *Document) Append(n Node) error {
	if d.Body == nil {
		d.Body = &Sequence{}
	}
	return d.Body.Append(n)
}

// AddMeta appends a name/content entry to the head.
func (d *Document) AddMeta(name, content string) error {
	m, err := NewMeta(name, content)
	if err != nil {
		return err
	}
	if d.Head == nil {
		d.Head = &Head{}
	}
	return d.Head.Append(m)
}

func (d *Document) Element() *Element {
	el := NewElement("smil")

	head := NewElement("head")
	if d.Head != nil {
		head = d.Head.Element()
	}
	body := NewElement("body")
	if d.Body != nil {
		body.Append(d.Body.Element())
	} else {
		body.Append(NewElement("seq"))
	}

	el.Append(head, body)
	return el
}

// Render serializes n as a UTF-8 markup document with the SMIL namespace
// declared on its top element.
func Render(n Node) []byte {
	return marshalDocument(n.Element())
}

// Compare orders two nodes by their rendered markup. Each call renders both
// nodes in full.
func Compare(a, b Node) int {
	return bytes.Compare(Render(a), Render(b))
}

// SameMarkup reports whether a and b render to identical bytes.
func SameMarkup(a, b Node) bool {
	return Compare(a, b) == 0
}

// Equal reports whether a and b have the same structure: node kinds, child
// order, attribute values and clip instants. Instants are compared as points
// in time, so differing zones do not matter.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case *Document:
		y := b.(*Document)
		return Equal(headOrEmpty(x.Head), headOrEmpty(y.Head)) &&
			Equal(bodyOrEmpty(x.Body), bodyOrEmpty(y.Body))
	case *Head:
		return equalNodes(x.items.nodes, b.(*Head).items.nodes)
	case *Sequence:
		return equalNodes(x.items.nodes, b.(*Sequence).items.nodes)
	case *Parallel:
		y := b.(*Parallel)
		return x.Clip.equal(y.Clip) && equalNodes(x.items.nodes, y.items.nodes)
	case *MediaItem:
		y := b.(*MediaItem)
		return x.typ == y.typ && x.src == y.src && x.Clip.equal(y.Clip)
	case *Meta:
		y := b.(*Meta)
		return x.name == y.name && x.content == y.content
	}
	return false
}

func equalNodes(a, b []Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func headOrEmpty(h *Head) *Head {
	if h == nil {
		return &Head{}
	}
	return h
}

func bodyOrEmpty(s *Sequence) *Sequence {
	if s == nil {
		return &Sequence{}
	}
	return s
}
