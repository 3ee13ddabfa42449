package smil

// Sequence is a seq element. Children play one after another in order.
// The zero value is an empty sequence.
type Sequence struct {
	items children
}

// NewSequence returns a sequence holding nodes in order.
func NewSequence(nodes ...Node) (*Sequence, error) {
	s := &Sequence{}
	for _, n := range nodes {
		if err := s.Append(n); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Sequence) Kind() Kind { return KindSequence }
func (s *Sequence) node()      {}

// Insert places n at index, shifting later children right.
func (s *Sequence) Insert(index int, n Node) error { return s.items.insert(KindSequence, index, n) }

// Append places n after the last child.
func (s *Sequence) Append(n Node) error { return s.items.append(KindSequence, n) }

// Set replaces the child at index.
func (s *Sequence) Set(index int, n Node) error { return s.items.set(KindSequence, index, n) }

// Remove deletes the child at index.
func (s *Sequence) Remove(index int) error { return s.items.remove(index) }

// Len returns the number of children.
func (s *Sequence) Len() int { return len(s.items.nodes) }

// At returns the child at index, or nil when index is out of range.
func (s *Sequence) At(index int) Node { return s.items.at(index) }

// Children returns a copy of the ordered children.
func (s *Sequence) Children() []Node { return s.items.list() }

func (s *Sequence) Element() *Element {
	el := NewElement("seq")
	s.items.render(el)
	return el
}

// Parallel is a par element: children play simultaneously, optionally
// clipped to Clip.
type Parallel struct {
	items children
	Clip  ClipRange
}

// NewParallel returns a par holding nodes, clipped to clip.
func NewParallel(clip ClipRange, nodes ...Node) (*Parallel, error) {
	p := &Parallel{Clip: clip.truncate()}
	for _, n := range nodes {
		if err := p.Append(n); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Parallel) Kind() Kind { return KindParallel }
func (p *Parallel) node()      {}

func (p *Parallel) Insert(index int, n Node) error { return p.items.insert(KindParallel, index, n) }
func (p *Parallel) Append(n Node) error            { return p.items.append(KindParallel, n) }
func (p *Parallel) Set(index int, n Node) error    { return p.items.set(KindParallel, index, n) }
func (p *Parallel) Remove(index int) error         { return p.items.remove(index) }
func (p *Parallel) Len() int                       { return len(p.items.nodes) }
func (p *Parallel) At(index int) Node              { return p.items.at(index) }
func (p *Parallel) Children() []Node               { return p.items.list() }

func (p *Parallel) Element() *Element {
	el := NewElement("par")
	p.items.render(el)
	p.Clip.apply(el)
	return el
}

// Head holds the document's meta entries.
type Head struct {
	items children
}

func (h *Head) Kind() Kind { return KindHead }
func (h *Head) node()      {}

func (h *Head) Insert(index int, n Node) error { return h.items.insert(KindHead, index, n) }
func (h *Head) Append(n Node) error            { return h.items.append(KindHead, n) }
func (h *Head) Remove(index int) error         { return h.items.remove(index) }
func (h *Head) Len() int                       { return len(h.items.nodes) }

// Metas returns the meta entries in order.
func (h *Head) Metas() []*Meta {
	out := make([]*Meta, 0, len(h.items.nodes))
	for _, n := range h.items.nodes {
		out = append(out, n.(*Meta))
	}
	return out
}

func (h *Head) Element() *Element {
	el := NewElement("head")
	h.items.render(el)
	return el
}
