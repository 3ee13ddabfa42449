package smil

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Namespace is the default namespace declared on the top element of every
// rendered document.
const Namespace = "http://www.w3.org/2001/SMIL20/Language"

const xmlDeclaration = "<?xml version='1.0' encoding='UTF-8'?>\n"

// Attr is a single markup attribute. Attribute order is preserved.
type Attr struct {
	Name  string
	Value string
}

// Element is a minimal markup element tree. Rendering keeps attribute order
// and writes childless elements in self-closing form.
type Element struct {
	Tag      string
	Attrs    []Attr
	Children []*Element
}

// NewElement returns an element with no attributes and no children.
func NewElement(tag string) *Element {
	return &Element{Tag: tag}
}

// Set replaces the value of an existing attribute or appends a new one.
func (e *Element) Set(name, value string) {
	for i := range e.Attrs {
		if e.Attrs[i].Name == name {
			e.Attrs[i].Value = value
			return
		}
	}
	e.Attrs = append(e.Attrs, Attr{Name: name, Value: value})
}

// Get returns the value of the named attribute.
func (e *Element) Get(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Append adds children at the tail.
func (e *Element) Append(children ...*Element) {
	e.Children = append(e.Children, children...)
}

// Find returns the first direct child with the given tag.
func (e *Element) Find(tag string) *Element {
	for _, c := range e.Children {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

// String returns the compact form of the element, without declaration or
// namespace.
func (e *Element) String() string {
	var b strings.Builder
	e.write(&b, -1)
	return b.String()
}

// write renders e into b. A negative depth produces compact output; any other
// depth pretty prints with two-space indentation.
func (e *Element) write(b *strings.Builder, depth int) {
	pretty := depth >= 0
	if pretty {
		b.WriteString(strings.Repeat("  ", depth))
	}
	b.WriteByte('<')
	b.WriteString(e.Tag)
	for _, a := range e.Attrs {
		b.WriteByte(' ')
		b.WriteString(a.Name)
		b.WriteString(`="`)
		writeEscaped(b, a.Value)
		b.WriteByte('"')
	}
	if len(e.Children) == 0 {
		b.WriteString("/>")
		if pretty {
			b.WriteByte('\n')
		}
		return
	}
	b.WriteByte('>')
	if pretty {
		b.WriteByte('\n')
	}
	for _, c := range e.Children {
		next := -1
		if pretty {
			next = depth + 1
		}
		c.write(b, next)
	}
	if pretty {
		b.WriteString(strings.Repeat("  ", depth))
	}
	b.WriteString("</")
	b.WriteString(e.Tag)
	b.WriteByte('>')
	if pretty {
		b.WriteByte('\n')
	}
}

func writeEscaped(b *strings.Builder, s string) {
	var buf bytes.Buffer
	// xml.EscapeText only fails when the writer does.
	_ = xml.EscapeText(&buf, []byte(s))
	b.Write(buf.Bytes())
}

// marshalDocument renders e as a standalone UTF-8 document with the SMIL
// namespace declared on e.
func marshalDocument(e *Element) []byte {
	root := *e
	root.Attrs = append([]Attr{{Name: "xmlns", Value: Namespace}}, e.Attrs...)

	var b strings.Builder
	b.WriteString(xmlDeclaration)
	root.write(&b, 0)
	return []byte(b.String())
}

// decodeElement reads the single root element of data into an Element tree
// using local names only. Namespace declarations are dropped. Anything other
// than whitespace, comments or processing instructions after the root is an
// error.
func decodeElement(data []byte) (*Element, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var (
		root   *Element
		stack  []*Element
		closed bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			switch {
			case root == nil:
				return nil, errors.New("no root element")
			case !closed:
				return nil, errors.New("unexpected end of input")
			}
			return root, nil
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if closed {
				return nil, fmt.Errorf("extra content after root element: <%s>", t.Name.Local)
			}
			el := NewElement(t.Name.Local)
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
					continue
				}
				el.Attrs = append(el.Attrs, Attr{Name: a.Name.Local, Value: a.Value})
			}
			if len(stack) == 0 {
				root = el
			} else {
				stack[len(stack)-1].Append(el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				closed = true
			}
		case xml.CharData:
			if len(stack) == 0 && len(bytes.TrimSpace(t)) > 0 {
				return nil, errors.New("text outside root element")
			}
		}
	}
}
