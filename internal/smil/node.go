// Package smil models the subset of SMIL 2.0 used to describe a remix
// playlist: a document with a head of meta entries and a body holding a
// tree of seq, par, video and audio elements.
//
// Node kinds form a closed set. Containers check every inserted node against
// the kinds they accept and reject the rest with an *InvalidChildError.
package smil

import (
	"errors"
	"fmt"

	"archive-remix/internal/isotime"
)

var (
	// ErrInvalidChild is matched by every rejected insertion.
	ErrInvalidChild = errors.New("invalid child")

	// ErrMalformedTimestamp is returned when a clip attribute is not an
	// ISO-8601 instant once the wallclock wrapper is removed.
	ErrMalformedTimestamp = isotime.ErrMalformedTimestamp

	// ErrMalformedMarkup is returned when parse input is not well formed or
	// does not have the expected structure.
	ErrMalformedMarkup = errors.New("malformed markup")

	// ErrMissingAttribute is returned when a required attribute is empty.
	ErrMissingAttribute = errors.New("missing required attribute")

	// ErrIndexOutOfRange is returned by positional container operations.
	ErrIndexOutOfRange = errors.New("index out of range")
)

// Kind identifies the variant of a Node.
type Kind int

const (
	KindDocument Kind = iota + 1
	KindHead
	KindSequence
	KindParallel
	KindMedia
	KindMeta
)

func (k Kind) String() string {
	switch k {
	case KindDocument:
		return "smil"
	case KindHead:
		return "head"
	case KindSequence:
		return "seq"
	case KindParallel:
		return "par"
	case KindMedia:
		return "media"
	case KindMeta:
		return "meta"
	default:
		return "unknown"
	}
}

// Node is implemented only by the types of this package.
type Node interface {
	Kind() Kind
	// Element renders the node and its subtree. It has no side effects.
	Element() *Element

	node()
}

// InvalidChildError reports a node that its parent does not accept.
type InvalidChildError struct {
	Parent Kind
	Child  Kind
}

func (e *InvalidChildError) Error() string {
	if e.Child == 0 {
		return fmt.Sprintf("smil: nil is not a valid child of %s", e.Parent)
	}
	return fmt.Sprintf("smil: %s is not a valid child of %s", e.Child, e.Parent)
}

func (e *InvalidChildError) Unwrap() error { return ErrInvalidChild }

// allowedChildren returns the kinds accepted under parent.
func allowedChildren(parent Kind) []Kind {
	switch parent {
	case KindSequence, KindParallel:
		return []Kind{KindSequence, KindParallel, KindMedia}
	case KindHead:
		return []Kind{KindMeta}
	default:
		return nil
	}
}

func checkChild(parent Kind, child Node) error {
	if isNil(child) {
		return &InvalidChildError{Parent: parent}
	}
	k := child.Kind()
	for _, allowed := range allowedChildren(parent) {
		if k == allowed {
			return nil
		}
	}
	return &InvalidChildError{Parent: parent, Child: k}
}

// isNil reports whether n is nil or a typed nil pointer.
func isNil(n Node) bool {
	switch v := n.(type) {
	case nil:
		return true
	case *Document:
		return v == nil
	case *Head:
		return v == nil
	case *Sequence:
		return v == nil
	case *Parallel:
		return v == nil
	case *MediaItem:
		return v == nil
	case *Meta:
		return v == nil
	}
	return false
}

// children is the ordered storage shared by all containers. The owning
// container passes its own kind so membership is checked on every write.
type children struct {
	nodes []Node
}

func (c *children) insert(parent Kind, index int, child Node) error {
	if err := checkChild(parent, child); err != nil {
		return err
	}
	if index < 0 || index > len(c.nodes) {
		return fmt.Errorf("%w: insert at %d, length %d", ErrIndexOutOfRange, index, len(c.nodes))
	}
	c.nodes = append(c.nodes, nil)
	copy(c.nodes[index+1:], c.nodes[index:])
	c.nodes[index] = child
	return nil
}

func (c *children) append(parent Kind, child Node) error {
	return c.insert(parent, len(c.nodes), child)
}

func (c *children) set(parent Kind, index int, child Node) error {
	if err := checkChild(parent, child); err != nil {
		return err
	}
	if index < 0 || index >= len(c.nodes) {
		return fmt.Errorf("%w: set at %d, length %d", ErrIndexOutOfRange, index, len(c.nodes))
	}
	c.nodes[index] = child
	return nil
}

func (c *children) remove(index int) error {
	if index < 0 || index >= len(c.nodes) {
		return fmt.Errorf("%w: remove at %d, length %d", ErrIndexOutOfRange, index, len(c.nodes))
	}
	c.nodes = append(c.nodes[:index], c.nodes[index+1:]...)
	return nil
}

func (c *children) at(index int) Node {
	if index < 0 || index >= len(c.nodes) {
		return nil
	}
	return c.nodes[index]
}

func (c *children) list() []Node {
	out := make([]Node, len(c.nodes))
	copy(out, c.nodes)
	return out
}

func (c *children) render(el *Element) {
	for _, n := range c.nodes {
		el.Append(n.Element())
	}
}
