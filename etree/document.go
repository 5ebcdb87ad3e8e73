// Package etree provides the XML document backend, built on beevik/etree.
//
// Selectors are etree path expressions, not CSS: "item" matches child
// elements, "//item" matches descendants anywhere below the document root,
// and paths starting with "/" are document-rooted regardless of scope. The
// engine's default collection selector resolves to every descendant element
// of the scope; use "./*" for direct children.
package etree

import (
	"strings"

	"github.com/beevik/etree"
	"github.com/qretaio/html2json"
)

var _ html2json.Parser = (*Parser)(nil)

// Parser parses XML source into documents the engine can evaluate.
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse implements html2json.Parser.
func (p *Parser) Parse(src string) (html2json.Document, error) {
	return Parse(src)
}

// Parse parses XML source text into a document. Unlike the HTML backend,
// XML parsing is strict: malformed input is an error, not a best effort.
func Parse(src string) (html2json.Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(src); err != nil {
		return nil, html2json.Errorf(html2json.EINVALID, "failed to parse XML: %v", err)
	}
	return &Document{doc: doc}, nil
}

// Extract parses XML source and evaluates a spec against it in one call.
func Extract(src string, spec *html2json.Spec) (any, error) {
	doc, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return html2json.Extract(doc, spec)
}

var _ html2json.Document = (*Document)(nil)

// Document wraps a parsed etree document.
type Document struct {
	doc *etree.Document
}

// Root returns the document node.
func (d *Document) Root() html2json.Node {
	return &Node{el: &d.doc.Element}
}

var _ html2json.Node = (*Node)(nil)

// Node wraps a single etree element.
type Node struct {
	el *etree.Element
}

// Text returns the concatenated character data of the element and all its
// descendants, in document order.
func (n *Node) Text() string {
	var sb strings.Builder
	collectText(n.el, &sb)
	return sb.String()
}

func collectText(el *etree.Element, sb *strings.Builder) {
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			sb.WriteString(t.Data)
		case *etree.Element:
			collectText(t, sb)
		}
	}
}

// Content returns the element's inner XML: child elements serialized in
// place with character data re-escaped between them.
func (n *Node) Content() string {
	var sb strings.Builder
	for _, tok := range n.el.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			sb.WriteString(xmlEscaper.Replace(t.Data))
		case *etree.Element:
			tmp := etree.NewDocument()
			tmp.SetRoot(t.Copy())
			if out, err := tmp.WriteToString(); err == nil {
				sb.WriteString(out)
			}
		}
	}
	return sb.String()
}

var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Attr returns the value of the named attribute on the element.
func (n *Node) Attr(name string) (string, bool) {
	if a := n.el.SelectAttr(name); a != nil {
		return a.Value, true
	}
	return "", false
}

// Find returns elements matching the path expression, in document order.
func (n *Node) Find(selector string) ([]html2json.Node, error) {
	if selector == html2json.Universal {
		return wrapElements(descendants(n.el)), nil
	}
	p, err := etree.CompilePath(selector)
	if err != nil {
		return nil, html2json.Errorf(html2json.EINVALID, "invalid path %q: %v", selector, err)
	}
	return wrapElements(n.el.FindElementsPath(p)), nil
}

// FindSibling searches each following sibling element in turn and returns
// the matches from the first sibling that contains any.
func (n *Node) FindSibling(selector string) ([]html2json.Node, error) {
	parent := n.el.Parent()
	if parent == nil {
		return nil, nil
	}
	siblings := parent.ChildElements()
	after := -1
	for i, el := range siblings {
		if el == n.el {
			after = i
			break
		}
	}
	if after < 0 {
		return nil, nil
	}
	for _, sib := range siblings[after+1:] {
		found, err := (&Node{el: sib}).Find(selector)
		if err != nil {
			return nil, err
		}
		if len(found) > 0 {
			return found, nil
		}
	}
	return nil, nil
}

func descendants(el *etree.Element) []*etree.Element {
	var out []*etree.Element
	for _, c := range el.ChildElements() {
		out = append(out, c)
		out = append(out, descendants(c)...)
	}
	return out
}

func wrapElements(els []*etree.Element) []html2json.Node {
	if len(els) == 0 {
		return nil
	}
	nodes := make([]html2json.Node, len(els))
	for i, el := range els {
		nodes[i] = &Node{el: el}
	}
	return nodes
}
