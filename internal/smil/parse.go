package smil

import "fmt"

// Parse reads markup and returns the node matching its root tag: smil,
// head, seq, par, video, audio or meta. No partial result is returned on
// error.
func Parse(data []byte) (Node, error) {
	root, err := decodeElement(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMarkup, err)
	}
	return parseElement(root)
}

// ParseDocument is Parse restricted to a smil root.
func ParseDocument(data []byte) (*Document, error) {
	n, err := Parse(data)
	if err != nil {
		return nil, err
	}
	doc, ok := n.(*Document)
	if !ok {
		return nil, fmt.Errorf("%w: root is %s, want smil", ErrMalformedMarkup, n.Kind())
	}
	return doc, nil
}

func parseElement(el *Element) (Node, error) {
	switch el.Tag {
	case "smil":
		return parseDocument(el)
	case "head":
		return parseHead(el)
	case "seq":
		return parseSequence(el)
	case "par":
		return parseParallel(el)
	case "video", "audio":
		return parseMedia(el)
	case "meta":
		return parseMeta(el)
	default:
		return nil, fmt.Errorf("%w: unrecognized root element %q", ErrMalformedMarkup, el.Tag)
	}
}

func parseDocument(el *Element) (*Document, error) {
	headEl := el.Find("head")
	if headEl == nil {
		return nil, fmt.Errorf("%w: smil has no head", ErrMalformedMarkup)
	}
	bodyEl := el.Find("body")
	if bodyEl == nil {
		return nil, fmt.Errorf("%w: smil has no body", ErrMalformedMarkup)
	}

	head, err := parseHead(headEl)
	if err != nil {
		return nil, err
	}

	doc := &Document{Head: head}
	for _, c := range bodyEl.Children {
		switch c.Tag {
		case "seq":
			seq, err := parseSequence(c)
			if err != nil {
				return nil, err
			}
			// The first seq is the body root; any further ones nest under it.
			if doc.Body == nil {
				doc.Body = seq
				continue
			}
			if err := doc.Body.Append(seq); err != nil {
				return nil, err
			}
		case "par", "video", "audio":
			n, err := parseElement(c)
			if err != nil {
				return nil, err
			}
			if err := doc.Append(n); err != nil {
				return nil, err
			}
		}
	}
	if doc.Body == nil {
		doc.Body = &Sequence{}
	}
	return doc, nil
}

func parseHead(el *Element) (*Head, error) {
	head := &Head{}
	for _, c := range el.Children {
		if c.Tag != "meta" {
			continue
		}
		m, err := parseMeta(c)
		if err != nil {
			return nil, err
		}
		if err := head.Append(m); err != nil {
			return nil, err
		}
	}
	return head, nil
}

// parseChildren fills a seq or par container. Unknown tags are skipped.
func parseChildren(el *Element, add func(Node) error) error {
	for _, c := range el.Children {
		switch c.Tag {
		case "seq", "par", "video", "audio":
			n, err := parseElement(c)
			if err != nil {
				return err
			}
			if err := add(n); err != nil {
				return err
			}
		}
	}
	return nil
}

func parseSequence(el *Element) (*Sequence, error) {
	seq := &Sequence{}
	if err := parseChildren(el, seq.Append); err != nil {
		return nil, err
	}
	return seq, nil
}

func parseParallel(el *Element) (*Parallel, error) {
	clip, err := parseClipAttrs(el)
	if err != nil {
		return nil, err
	}
	par := &Parallel{Clip: clip}
	if err := parseChildren(el, par.Append); err != nil {
		return nil, err
	}
	return par, nil
}

func parseMedia(el *Element) (*MediaItem, error) {
	src, ok := el.Get("src")
	if !ok {
		return nil, fmt.Errorf("%w: %s has no src", ErrMalformedMarkup, el.Tag)
	}
	clip, err := parseClipAttrs(el)
	if err != nil {
		return nil, err
	}
	m, err := NewMediaItem(MediaType(el.Tag), src, clip)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedMarkup, err)
	}
	return m, nil
}

func parseMeta(el *Element) (*Meta, error) {
	name, _ := el.Get("name")
	content, _ := el.Get("content")
	m, err := NewMeta(name, content)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedMarkup, err)
	}
	return m, nil
}

func parseClipAttrs(el *Element) (ClipRange, error) {
	begin, _ := el.Get("clipBegin")
	end, _ := el.Get("clipEnd")
	clip, err := ParseClipRange(begin, end)
	if err != nil {
		return ClipRange{}, fmt.Errorf("%w: %s %w", ErrMalformedMarkup, el.Tag, err)
	}
	return clip, nil
}
